// Package errors provides centralized error handling for scout.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrPathTraversal indicates a storage key or filename tried to escape its directory.
	ErrPathTraversal = errors.New("path traversal not allowed")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrSnapshotNotFound indicates no persisted snapshot exists under a storage key.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrStorageDisabled indicates the persistence backend is unavailable.
	ErrStorageDisabled = errors.New("storage disabled")

	// ErrUnknownBackend indicates an unsupported storage backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidStorage indicates an invalid storage configuration value.
	ErrConfigInvalidStorage = errors.New("invalid storage configuration")

	// ErrConfigInvalidServer indicates an invalid server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrConfigInvalidBackend indicates an invalid research backend configuration value.
	ErrConfigInvalidBackend = errors.New("invalid backend configuration")

	// ErrInvalidDuration indicates that a duration format is invalid.
	ErrInvalidDuration = errors.New("invalid duration format")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrJSONErrorOutput indicates an error was already written as JSON to the output.
	// Commands return it so cobra does not print the error a second time.
	ErrJSONErrorOutput = errors.New("error already output as JSON")

	// ErrInvalidReport indicates a report payload could not be decoded.
	ErrInvalidReport = errors.New("invalid report payload")

	// ErrSectionNotFound indicates an outline section id does not exist.
	ErrSectionNotFound = errors.New("section not found")

	// ErrRecordNotFound indicates a history record does not exist.
	ErrRecordNotFound = errors.New("history record not found")

	// ErrRouteNotFound indicates no route matches a path.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMissingRouteParam indicates a required route parameter was not supplied.
	ErrMissingRouteParam = errors.New("missing route parameter")

	// ErrUnexpectedStatus indicates the research backend answered with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected backend status")

	// ErrStreamEnded indicates the backend event stream closed before completion.
	ErrStreamEnded = errors.New("event stream ended before completion")

	// ErrNoActiveTask indicates an operation needs a running task but none exists.
	ErrNoActiveTask = errors.New("no active task")

	// ErrUserCanceled indicates the user declined a confirmation prompt.
	ErrUserCanceled = errors.New("canceled by user")
)
