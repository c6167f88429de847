// Package constants provides centralized constant values used throughout scout.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Storage keys and file names used for state persistence.
const (
	// ActiveTaskKey is the fixed storage key holding the active-task snapshot.
	ActiveTaskKey = "activeTask"

	// SnapshotExt is the file extension used by the file storage backend.
	SnapshotExt = ".json"

	// LockExt is appended to a snapshot file name to form its lock file.
	LockExt = ".lock"

	// HistoryDBFileName is the SQLite database holding archived reports.
	HistoryDBFileName = "history.db"
)

// Directory names used by scout for organizing data.
const (
	// ScoutHome is the hidden directory name where scout stores all its data.
	// This directory is created in the user's home directory.
	ScoutHome = ".scout"

	// StateDir is the directory holding persisted store snapshots.
	StateDir = "state"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Snapshot limits.
const (
	// SnapshotLogLimit is the number of most recent log entries kept in a persisted
	// active-task snapshot. The in-memory log is not capped.
	SnapshotLogLimit = 100

	// MaxProgress is the upper bound of the progress percentage.
	MaxProgress = 100
)

// Timing defaults.
const (
	// DefaultTickInterval is how often live views refresh the elapsed time.
	DefaultTickInterval = time.Second

	// LockTimeout is the maximum duration to wait for acquiring a file lock.
	LockTimeout = 5 * time.Second

	// LockRetryInterval is the wait between non-blocking lock attempts.
	LockRetryInterval = 50 * time.Millisecond

	// DefaultBackendTimeout bounds the initial connection to the research backend.
	// The event stream itself is bounded only by the caller's context.
	DefaultBackendTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful HTTP server shutdown.
	ShutdownTimeout = 10 * time.Second

	// DefaultReadTimeout bounds reading an HTTP request.
	DefaultReadTimeout = 15 * time.Second

	// MinTickInterval is the fastest allowed live refresh.
	MinTickInterval = 100 * time.Millisecond
)

// LogTimeFormat is the 24-hour wall-clock format stamped on task log entries.
const LogTimeFormat = "15:04:05"
