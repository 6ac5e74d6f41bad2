package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/stratum/internal/core/domain"
)

func TestJobState_CanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.JobState
		ok       bool
	}{
		{domain.JobPending, domain.JobReady, true},
		{domain.JobPending, domain.JobSkipped, true},
		{domain.JobPending, domain.JobRunning, false},
		{domain.JobReady, domain.JobRunning, true},
		{domain.JobReady, domain.JobSkipped, false},
		{domain.JobRunning, domain.JobSucceeded, true},
		{domain.JobRunning, domain.JobFailed, true},
		{domain.JobRunning, domain.JobReady, true},
		{domain.JobRunning, domain.JobCancelled, true},
		{domain.JobSucceeded, domain.JobFailed, false},
		{domain.JobSkipped, domain.JobReady, false},
		{domain.JobCancelled, domain.JobRunning, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to))

			_, err := tt.from.Transition(tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidJobTransition)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, domain.IsRetryable(domain.ErrRemoteUnavailable))
	assert.True(t, domain.IsRetryable(domain.ErrDigestMismatch))
	assert.False(t, domain.IsRetryable(domain.ErrBuildFailed))
	assert.False(t, domain.IsRetryable(&domain.StagingError{Err: domain.ErrSandboxEscape, Path: "/x"}))
	assert.False(t, domain.IsRetryable(nil))
}
