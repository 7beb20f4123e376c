package models

import (
	"time"
)

// JobStatus is the lifecycle state of a long-running provider job.
// Transitions move forward only: pending -> processing -> {completed, failed}.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are permitted.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// rank orders statuses along the lifecycle so transitions can be checked
// for forward movement. Terminal states share the highest rank.
func (s JobStatus) rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusProcessing:
		return 1
	case JobStatusCompleted, JobStatusFailed:
		return 2
	default:
		return -1
	}
}

// JobRecord is the shared shape of every provider job document. The three
// concrete job types embed it; storage-level transition guards operate on
// this struct alone.
type JobRecord struct {
	ID            string    `json:"id"`
	ExternalJobID string    `json:"external_job_id,omitempty" badgerhold:"index"`
	Status        JobStatus `json:"status" badgerhold:"index"`
	UserID        string    `json:"user_id" badgerhold:"index"` // owner and notification correlation key
	MediaID       string    `json:"media_id"`
	MediaType     MediaType `json:"media_type"`
	ResultKey     string    `json:"result_key,omitempty"` // object storage key, set iff completed
	Error         string    `json:"error,omitempty"`      // provider failure detail, set on failed
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SetExternalJobID records the provider's job id. It is write-once.
func (r *JobRecord) SetExternalJobID(id string) error {
	if r.ExternalJobID != "" && r.ExternalJobID != id {
		return ErrExternalIDSet
	}
	r.ExternalJobID = id
	return nil
}

// Transition applies a forward-only status change in memory. Moving to the
// same or an earlier state returns ErrInvalidTransition; re-applying any
// terminal state to an already-terminal record is reported via
// ErrInvalidTransition as well so callers can treat it as a no-op.
func (r *JobRecord) Transition(to JobStatus) error {
	if r.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	if to.rank() <= r.Status.rank() && !to.IsTerminal() {
		return ErrInvalidTransition
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

// DubbingJob tracks one ElevenLabs dubbing operation. Dubs can produce one
// artifact per target language; ResultKey holds the primary language's key
// and LanguageResults all of them.
type DubbingJob struct {
	JobRecord

	SourceLanguage  string            `json:"source_language,omitempty"`
	TargetLanguages []string          `json:"target_languages"`
	NumSpeakers     int               `json:"num_speakers,omitempty"`
	TimeRange       *TimeRange        `json:"time_range,omitempty"`
	LanguageResults map[string]string `json:"language_results,omitempty"` // target language -> object key
}

// TimeRange bounds a dub to a slice of the source media, in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Validate checks the range against the source duration when known.
func (t *TimeRange) Validate(duration float64) error {
	if t.Start < 0 || t.End <= t.Start {
		return &ValidationError{Field: "time_range", Message: "end must be greater than start and start must be non-negative"}
	}
	if duration > 0 && t.End > duration {
		return &ValidationError{Field: "time_range", Message: "range exceeds source media duration"}
	}
	return nil
}

// EnhanceJob tracks one Dolby Media Enhance operation.
type EnhanceJob struct {
	JobRecord
	Settings *EnhanceSettings `json:"settings,omitempty"`
	// OutputURL is the provider-side location the enhanced media lands
	// in, recorded at submission so the finalizer can fetch it later.
	OutputURL string `json:"output_url,omitempty"`
}

// DiagnoseJob tracks one Dolby Media Diagnose operation. The provider
// returns the diagnosis inline on completion; there is no artifact to
// download, so ResultKey points at the rendered PDF report when one has
// been generated.
type DiagnoseJob struct {
	JobRecord
	Diagnosis *Diagnosis `json:"diagnosis,omitempty"`
	Summary   string     `json:"summary,omitempty"` // LLM plain-language summary
}

// JobKind discriminates poll tasks and job collections.
type JobKind string

const (
	JobKindDubbing  JobKind = "dubbing"
	JobKindEnhance  JobKind = "enhance"
	JobKindDiagnose JobKind = "diagnose"
)

// Validate returns an error for any value outside the known set.
func (k JobKind) Validate() error {
	switch k {
	case JobKindDubbing, JobKindEnhance, JobKindDiagnose:
		return nil
	default:
		return &ValidationError{Field: "kind", Message: "unknown job kind " + string(k)}
	}
}
