package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ErrNoMessage is returned when the queue is empty
var ErrNoMessage = errors.New("no messages in queue")

// ErrInvalidTransition is returned when a job status change would move
// backwards in the lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrExternalIDSet is returned when a provider job ID would be overwritten.
var ErrExternalIDSet = errors.New("external job id already set")

// ValidationError reports a malformed request parameter. Not retried,
// surfaced to the caller as a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// UpstreamError wraps a failed provider API call with enough context to
// decide between retry and permanent failure.
type UpstreamError struct {
	Provider   string // "elevenlabs", "dolby", "twelvelabs"
	Operation  string // e.g. "submit_dubbing", "get_status"
	StatusCode int    // HTTP status from the provider, 0 for transport errors
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed with status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Operation, e.Message)
}

// Retryable reports whether the upstream call is worth retrying. Client
// errors other than rate limiting are permanent.
func (e *UpstreamError) Retryable() bool {
	if e.StatusCode == 0 {
		return true // transport error
	}
	if e.StatusCode == 429 {
		return true
	}
	return e.StatusCode >= 500
}
