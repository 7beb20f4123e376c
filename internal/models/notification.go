package models

import "time"

// Notification is the transient event fanned out to subscribers of a
// correlation id. Never persisted, no replay for late subscribers.
type Notification struct {
	CorrelationID string         `json:"-"`
	Kind          JobKind        `json:"kind"`
	JobID         string         `json:"job_id"`
	Status        JobStatus      `json:"status"`
	ResultURL     string         `json:"result_url,omitempty"`
	Error         string         `json:"error,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}
