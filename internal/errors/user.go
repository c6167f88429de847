package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice (not a map) because errors.Is() needs chain traversal for wrapped errors.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "The task state file is locked by another scout process.",
			Action:  "Wait for the other process to finish, or remove a stale .lock file in the state directory.",
		},
	},
	{
		err: ErrUnknownBackend,
		info: ErrorInfo{
			Message: "The configured storage backend is not supported.",
			Action:  "Set storage.backend to one of: file, redis, memory.",
		},
	},
	{
		err: ErrConfigInvalidStorage,
		info: ErrorInfo{
			Message: "The storage configuration is invalid.",
			Action:  "Run 'scout config show' and fix the storage section.",
		},
	},
	{
		err: ErrConfigInvalidServer,
		info: ErrorInfo{
			Message: "The server configuration is invalid.",
			Action:  "Check server.addr and server timeouts in your config.",
		},
	},
	{
		err: ErrConfigInvalidBackend,
		info: ErrorInfo{
			Message: "The research backend configuration is invalid.",
			Action:  "Set backend.url to the research service base URL (e.g. http://localhost:8000).",
		},
	},
	{
		err: ErrUnexpectedStatus,
		info: ErrorInfo{
			Message: "The research backend rejected the request.",
			Action:  "Check that the backend is running and the topic is at least two characters long.",
		},
	},
	{
		err: ErrStreamEnded,
		info: ErrorInfo{
			Message: "The research backend closed the stream before the task completed.",
			Action:  "Run 'scout task status' to inspect the partial progress and retry.",
		},
	},
	{
		err: ErrRecordNotFound,
		info: ErrorInfo{
			Message: "No history record with that id exists.",
			Action:  "Run 'scout history list' to see archived reports.",
		},
	},
	{
		err: ErrNoActiveTask,
		info: ErrorInfo{
			Message: "There is no research task in progress.",
			Action:  "Start one with 'scout task start <topic>' or 'scout watch <topic>'.",
		},
	},
	{
		err: ErrInvalidReport,
		info: ErrorInfo{
			Message: "The report file is not valid JSON.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Unknown output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrUserCanceled,
		info: ErrorInfo{
			Message: "Operation canceled.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error, following wrapped chains.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested action.
// The action is empty when there is nothing the user can do.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
