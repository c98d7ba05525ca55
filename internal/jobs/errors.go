package jobs

import "errors"

// Domain errors for the jobs package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, jobs.ErrDuplicateJob) {
//	    // publish rejection on the status topic
//	}
var (
	// ErrIncompleteJob is returned when a submitted job is missing one
	// of its four required fields.
	ErrIncompleteJob = errors.New("jobs: incomplete job (kind, topic, payload and time are required)")

	// ErrUnknownKind is returned when the kind is not daily, interval or once.
	ErrUnknownKind = errors.New("jobs: unknown kind")

	// ErrInvalidTime is returned when the time field doesn't fit the kind.
	ErrInvalidTime = errors.New("jobs: invalid time")

	// ErrDuplicateJob is returned when an identical tuple is already stored.
	ErrDuplicateJob = errors.New("jobs: duplicate job")
)
