package models

// PollTask is the structure stored in the queue. One exists per pending
// status check of an external provider job.
type PollTask struct {
	JobID         string  `json:"job_id"` // References the job record
	Kind          JobKind `json:"kind"`   // Routes to the right handler and collection
	Attempt       int     `json:"attempt"`
	CorrelationID string  `json:"correlation_id"` // Notification key, normally the owner's user id
}

// Next returns the follow-up task for a job that is still processing.
func (t PollTask) Next() PollTask {
	t.Attempt++
	return t
}
