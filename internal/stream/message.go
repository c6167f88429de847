// Package stream consumes the research backend's Server-Sent-Events feed and
// applies each event to the active-task and research stores.
package stream

import (
	"encoding/json"

	"github.com/mrz1836/scout/internal/activetask"
)

// Type is the kind of a backend event.
type Type string

// Event types emitted by the research backend.
const (
	TypeLog      Type = "log"
	TypeStage    Type = "stage"
	TypeStats    Type = "stats"
	TypeProgress Type = "progress"
	TypeReport   Type = "report"
	TypeError    Type = "error"
	TypeComplete Type = "complete"
)

// Message is one decoded event. Only the fields relevant to Type are set.
type Message struct {
	Type     Type                    `json:"type"`
	RecordID string                  `json:"recordId,omitempty"`
	Level    string                  `json:"level,omitempty"`
	Message  string                  `json:"message,omitempty"`
	Stage    string                  `json:"stage,omitempty"`
	Stats    *activetask.StatsUpdate `json:"stats,omitempty"`
	Percent  *int                    `json:"percent,omitempty"`
	Data     json.RawMessage         `json:"data,omitempty"`
}
