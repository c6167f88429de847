package stream

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scout/internal/constants"
	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// Client opens research runs on the backend and feeds their events to a Dispatcher.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a Client for the backend at baseURL. timeout bounds
// connecting and waiting for response headers; the stream itself runs until
// the context is canceled.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultBackendTimeout
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		ResponseHeaderTimeout: timeout,
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: transport},
		logger:  logger.With().Str("component", "stream_client").Logger(),
	}
}

// Run starts a research run for topic and applies its events until the backend
// sends complete, the stream ends, or ctx is canceled. A stream that ends
// without a complete event returns ErrStreamEnded.
func (c *Client) Run(ctx context.Context, topic string, d *Dispatcher) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("topic %w", scouterrors.ErrEmptyValue)
	}

	u := c.baseURL + "/api/research?" + url.Values{"topic": {topic}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build research request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach research backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", scouterrors.ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(body)))
	}

	c.logger.Info().Str("topic", topic).Msg("research stream opened")
	d.Begin(ctx, topic)

	r := NewReader(resp.Body)
	for {
		msg, err := r.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if IsEOF(err) {
				return scouterrors.ErrStreamEnded
			}
			return fmt.Errorf("failed to read research stream: %w", err)
		}
		if d.Apply(ctx, msg) {
			c.logger.Info().Str("record_id", d.RecordID()).Msg("research stream completed")
			return nil
		}
	}
}
