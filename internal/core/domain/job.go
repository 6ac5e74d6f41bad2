package domain

import "go.trai.ch/zerr"

// JobKind identifies the queue a job is dispatched from.
type JobKind uint8

const (
	// JobFetch imports an element's sources into the CAS.
	JobFetch JobKind = iota
	// JobBuild computes keys, checks the caches and builds on a miss.
	JobBuild
	// JobPush uploads a built artifact to the remote.
	JobPush
)

// JobKinds lists every kind in dispatch order.
var JobKinds = []JobKind{JobFetch, JobBuild, JobPush}

func (k JobKind) String() string {
	switch k {
	case JobFetch:
		return "fetch"
	case JobBuild:
		return "build"
	case JobPush:
		return "push"
	default:
		return "unknown"
	}
}

// JobState is the lifecycle state of a job.
type JobState uint8

const (
	// JobPending waits for its dependencies.
	JobPending JobState = iota
	// JobReady has all dependencies succeeded and waits for a free slot.
	JobReady
	// JobRunning is executing.
	JobRunning
	// JobSucceeded finished successfully.
	JobSucceeded
	// JobFailed finished with an error.
	JobFailed
	// JobSkipped never ran because a dependency failed or was skipped.
	JobSkipped
	// JobCancelled never finished because the run was interrupted.
	JobCancelled
)

func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobReady:
		return "ready"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	case JobSkipped:
		return "skipped"
	case JobCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s JobState) Terminal() bool {
	return s >= JobSucceeded
}

// CanTransition reports whether the state machine allows moving from s to next.
// A running job goes back to ready when it is retried.
func (s JobState) CanTransition(next JobState) bool {
	switch s {
	case JobPending:
		return next == JobReady || next == JobSkipped || next == JobCancelled
	case JobReady:
		return next == JobRunning || next == JobCancelled
	case JobRunning:
		return next == JobSucceeded || next == JobFailed || next == JobCancelled || next == JobReady
	default:
		return false
	}
}

// Transition returns next if the move is allowed.
func (s JobState) Transition(next JobState) (JobState, error) {
	if !s.CanTransition(next) {
		err := zerr.With(zerr.Wrap(ErrInvalidJobTransition, "illegal transition"), "from", s.String())
		return s, zerr.With(err, "to", next.String())
	}
	return next, nil
}
