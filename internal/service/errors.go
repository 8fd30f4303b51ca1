package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation marks bad input: malformed times, out-of-range
	// durations, missing fields.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a session overlap rejected on an explicit edit.
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks a transition the lifecycle rules do not allow,
	// like rescheduling a completed session.
	ErrForbidden = errors.New("forbidden")
)

// ConflictError carries the conflicting session's window so the caller can
// show the user what is in the way. It matches ErrConflict under errors.Is.
type ConflictError struct {
	With  string
	Start time.Time
	End   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("this time conflicts with: %s (%s - %s)",
		e.With, e.Start.Format("3:04 PM"), e.End.Format("3:04 PM"))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
