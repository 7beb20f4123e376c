package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_ForwardOnly(t *testing.T) {
	job := JobRecord{ID: "dub_1", Status: JobStatusPending}

	require.NoError(t, job.Transition(JobStatusProcessing))
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.False(t, job.UpdatedAt.IsZero())

	// Backwards moves are rejected
	err := job.Transition(JobStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, JobStatusProcessing, job.Status)

	require.NoError(t, job.Transition(JobStatusCompleted))
	assert.Equal(t, JobStatusCompleted, job.Status)
}

func TestTransition_PendingStraightToTerminal(t *testing.T) {
	// A webhook can land before the first poll marks the job processing
	job := JobRecord{ID: "enh_1", Status: JobStatusPending}
	require.NoError(t, job.Transition(JobStatusFailed))
	assert.Equal(t, JobStatusFailed, job.Status)
}

func TestTransition_TerminalIsFinal(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
	}{
		{"completed to failed", JobStatusCompleted, JobStatusFailed},
		{"completed to completed", JobStatusCompleted, JobStatusCompleted},
		{"failed to completed", JobStatusFailed, JobStatusCompleted},
		{"failed to processing", JobStatusFailed, JobStatusProcessing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := JobRecord{ID: "dub_1", Status: tt.from}
			err := job.Transition(tt.to)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, job.Status)
		})
	}
}

func TestSetExternalJobID_WriteOnce(t *testing.T) {
	job := JobRecord{ID: "dub_1", Status: JobStatusPending}

	require.NoError(t, job.SetExternalJobID("ext-1"))
	assert.Equal(t, "ext-1", job.ExternalJobID)

	// Same value is idempotent
	require.NoError(t, job.SetExternalJobID("ext-1"))

	// A different value is rejected
	err := job.SetExternalJobID("ext-2")
	assert.ErrorIs(t, err, ErrExternalIDSet)
	assert.Equal(t, "ext-1", job.ExternalJobID)
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusProcessing.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
}

func TestTimeRange_Validate(t *testing.T) {
	tests := []struct {
		name     string
		rng      TimeRange
		duration float64
		wantErr  bool
	}{
		{"valid range", TimeRange{Start: 0, End: 30}, 60, false},
		{"valid with unknown duration", TimeRange{Start: 5, End: 10}, 0, false},
		{"negative start", TimeRange{Start: -1, End: 10}, 60, true},
		{"end before start", TimeRange{Start: 10, End: 5}, 60, true},
		{"end equals start", TimeRange{Start: 10, End: 10}, 60, true},
		{"end beyond duration", TimeRange{Start: 0, End: 90}, 60, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rng.Validate(tt.duration)
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJobKind_Validate(t *testing.T) {
	assert.NoError(t, JobKindDubbing.Validate())
	assert.NoError(t, JobKindEnhance.Validate())
	assert.NoError(t, JobKindDiagnose.Validate())
	assert.Error(t, JobKind("transcode").Validate())
	assert.Error(t, JobKind("").Validate())
}
