package tui

import (
	"encoding/json"
	"errors"
	"io"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// JSONOutput writes one JSON object per message for scripts and pipes.
type JSONOutput struct {
	encoder *json.Encoder
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{encoder: json.NewEncoder(w)}
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type jsonError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Action  string `json:"action,omitempty"`
}

// Success outputs {"type":"success","message":...}.
func (o *JSONOutput) Success(msg string) {
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(jsonMessage{Type: "success", Message: msg})
}

// Error outputs the error with its friendly message and wrapped cause.
func (o *JSONOutput) Error(err error) {
	msg, action := scouterrors.Actionable(err)
	out := jsonError{Type: "error", Message: msg, Action: action}
	if msg != err.Error() {
		out.Details = err.Error()
	} else if inner := errors.Unwrap(err); inner != nil {
		out.Details = inner.Error()
	}
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(out)
}

// Warning outputs {"type":"warning","message":...}.
func (o *JSONOutput) Warning(msg string) {
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(jsonMessage{Type: "warning", Message: msg})
}

// Info outputs {"type":"info","message":...}.
func (o *JSONOutput) Info(msg string) {
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(jsonMessage{Type: "info", Message: msg})
}

// Table outputs rows as an array of objects keyed by header.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				obj[h] = row[i]
			} else {
				obj[h] = ""
			}
		}
		result = append(result, obj)
	}
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(result)
}

// JSON outputs an arbitrary value.
func (o *JSONOutput) JSON(v any) error {
	return o.encoder.Encode(v)
}
