package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scout/internal/activetask"
	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/research"
)

// Dispatcher applies backend events to the stores.
type Dispatcher struct {
	task     *activetask.Store
	research *research.Store
	logger   zerolog.Logger

	mu          sync.Mutex
	recordID    string
	gotReport   bool
	isCompleted bool
}

// NewDispatcher creates a Dispatcher writing into the given stores.
func NewDispatcher(task *activetask.Store, rs *research.Store, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		task:     task,
		research: rs,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Begin starts a fresh task for topic and clears the previous report.
func (d *Dispatcher) Begin(ctx context.Context, topic string) {
	d.mu.Lock()
	d.recordID = ""
	d.gotReport = false
	d.isCompleted = false
	d.mu.Unlock()

	d.task.StartTask(ctx, topic)
	d.research.Reset()
	d.research.SetTopic(topic)
}

// Apply handles one message and reports whether it completed the run.
// Unknown message types are ignored.
func (d *Dispatcher) Apply(ctx context.Context, msg Message) bool {
	if msg.RecordID != "" {
		d.mu.Lock()
		d.recordID = msg.RecordID
		d.mu.Unlock()
	}

	switch msg.Type {
	case TypeLog:
		d.task.AddLog(ctx, logLevel(msg.Level), msg.Message)
	case TypeStage:
		if msg.Stage != "" {
			d.task.SetStage(ctx, msg.Stage)
		}
	case TypeStats:
		if msg.Stats != nil {
			d.task.UpdateStats(ctx, *msg.Stats)
		}
	case TypeProgress:
		if msg.Percent != nil {
			d.task.SetProgress(ctx, *msg.Percent)
		}
	case TypeReport:
		d.applyReport(ctx, msg.Data)
	case TypeError:
		d.task.AddLog(ctx, constants.LogError, msg.Message)
	case TypeComplete:
		d.task.MarkCompleted(ctx)
		d.mu.Lock()
		got := d.gotReport
		d.isCompleted = true
		d.mu.Unlock()
		if got {
			d.research.MarkCompleted()
		}
		return true
	default:
		d.logger.Debug().Str("type", string(msg.Type)).Msg("ignoring unknown event type")
	}
	return false
}

// RecordID returns the backend history record id seen in the stream, if any.
func (d *Dispatcher) RecordID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recordID
}

// Completed reports whether a complete event has been applied since Begin.
func (d *Dispatcher) Completed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isCompleted
}

// insights is the analysis block the backend attaches to its report event.
type insights struct {
	KeyFindings []string `json:"key_findings"`
	Summary     string   `json:"summary"`
}

// applyReport loads a report payload. The backend nests summary and findings
// under "insights"; they are lifted to the store's own keys unless the payload
// already carries them.
func (d *Dispatcher) applyReport(ctx context.Context, data json.RawMessage) {
	if len(data) == 0 {
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		d.reportFailed(ctx, err)
		return
	}

	if raw, ok := fields["insights"]; ok {
		var in insights
		if err := json.Unmarshal(raw, &in); err == nil {
			if _, ok := fields["keyFindings"]; !ok && in.KeyFindings != nil {
				fields["keyFindings"], _ = json.Marshal(in.KeyFindings)
			}
			if _, ok := fields["summary"]; !ok && in.Summary != "" {
				fields["summary"], _ = json.Marshal(in.Summary)
			}
		}
		delete(fields, "insights")
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		d.reportFailed(ctx, err)
		return
	}
	if err := d.research.LoadFromJSON(payload); err != nil {
		d.reportFailed(ctx, err)
		return
	}

	d.mu.Lock()
	d.gotReport = true
	d.mu.Unlock()
}

func (d *Dispatcher) reportFailed(ctx context.Context, err error) {
	d.logger.Warn().Err(err).Msg("failed to load report event")
	d.task.AddLog(ctx, constants.LogWarning, "received an unreadable report")
}

func logLevel(s string) constants.LogLevel {
	l := constants.LogLevel(s)
	if l.IsValid() {
		return l
	}
	return constants.LogInfo
}
