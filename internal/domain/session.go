package domain

import "time"

const (
	// MinSessionMinutes and MaxSessionMinutes bound the duration of any
	// stored session.
	MinSessionMinutes = 5
	MaxSessionMinutes = 480
)

type StudySession struct {
	ID          string
	UserID      string
	SubjectID   *string
	TaskID      *string
	StartTime   time.Time // UTC
	EndTime     time.Time // UTC
	Status      SessionStatus
	EnergyLevel *EnergyLevel
	GeneratedBy GeneratedBy
	IsPinned    bool
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DurationMinutes returns the session length in whole minutes.
func (s *StudySession) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime).Minutes())
}

// Overlaps reports strict interval overlap with the given range.
func (s *StudySession) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}

// Active reports whether the session represents work the persistence
// protocol must never destroy.
func (s *StudySession) Active() bool {
	switch s.Status {
	case SessionCompleted, SessionPartial, SessionInProgress:
		return true
	}
	return false
}

// Preserved reports whether a regeneration must leave this session untouched:
// active work, or anything the user pinned.
func (s *StudySession) Preserved() bool {
	return s.Active() || s.IsPinned
}
