// Package activetask tracks the single research task that is currently running
// (or was most recently completed) and mirrors it to persistent storage.
package activetask

import (
	"slices"

	"github.com/mrz1836/scout/internal/constants"
)

// LogEntry is one line of the task's activity log.
type LogEntry struct {
	// Time is the wall-clock time the entry was added, formatted 15:04:05.
	Time    string             `json:"time"`
	Level   constants.LogLevel `json:"level"`
	Message string             `json:"message"`
}

// Stats holds the task's running counters.
type Stats struct {
	NotesFound        int `json:"notesFound"`
	ContentsAnalyzed  int `json:"contentsAnalyzed"`
	InsightsExtracted int `json:"insightsExtracted"`
}

// StatsUpdate is a partial Stats. Nil fields are left unchanged by UpdateStats.
type StatsUpdate struct {
	NotesFound        *int `json:"notesFound,omitempty"`
	ContentsAnalyzed  *int `json:"contentsAnalyzed,omitempty"`
	InsightsExtracted *int `json:"insightsExtracted,omitempty"`
}

// Task is the active-task state. Its JSON encoding is the persisted snapshot.
type Task struct {
	Topic           string   `json:"topic"`
	IsRunning       bool     `json:"isRunning"`
	Stage           string   `json:"stage"`
	CompletedStages []string `json:"completedStages"`
	// StartTime is unix milliseconds; 0 means not started.
	StartTime int64 `json:"startTime"`
	// FinalElapsedTime is whole seconds frozen at completion; 0 means not set.
	FinalElapsedTime int64      `json:"finalElapsedTime"`
	Logs             []LogEntry `json:"logs"`
	Stats            Stats      `json:"stats"`
	Progress         int        `json:"progress"`
}

// defaultTask returns the empty state with non-nil slices so it encodes as [].
func defaultTask() Task {
	return Task{
		CompletedStages: []string{},
		Logs:            []LogEntry{},
	}
}

// clone returns a deep copy of t.
func (t Task) clone() Task {
	c := t
	c.CompletedStages = slices.Clone(t.CompletedStages)
	c.Logs = slices.Clone(t.Logs)
	if c.CompletedStages == nil {
		c.CompletedStages = []string{}
	}
	if c.Logs == nil {
		c.Logs = []LogEntry{}
	}
	return c
}

// snapshot returns a deep copy with the log trimmed to the most recent entries.
func (t Task) snapshot() Task {
	c := t.clone()
	if n := len(c.Logs); n > constants.SnapshotLogLimit {
		c.Logs = c.Logs[n-constants.SnapshotLogLimit:]
	}
	return c
}

// Active reports whether the task is running.
func (t Task) Active() bool {
	return t.IsRunning && t.Topic != ""
}

// Completed reports whether the task finished and still holds logs to inspect.
func (t Task) Completed() bool {
	return !t.IsRunning && t.Topic != "" && len(t.Logs) > 0
}

// Status is the task plus its derived fields, as served to views.
type Status struct {
	Task

	ElapsedTime      int64  `json:"elapsedTime"`
	HasActiveTask    bool   `json:"hasActiveTask"`
	HasCompletedTask bool   `json:"hasCompletedTask"`
	Tick             uint64 `json:"tick"`
}
