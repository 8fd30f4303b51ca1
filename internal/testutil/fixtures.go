package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/timekit"
)

var testEmailCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithTimezone(tz string) UserOption {
	return func(u *domain.User) {
		u.Timezone = tz
	}
}

func WithWeeklyHours(h int) UserOption {
	return func(u *domain.User) {
		u.WeeklyStudyHours = h
	}
}

func WithSessionLimits(maxSession, breakMin int) UserOption {
	return func(u *domain.User) {
		u.MaxSessionMin = maxSession
		u.BreakMin = breakMin
	}
}

func WithWindows(windows ...domain.StudyWindow) UserOption {
	return func(u *domain.User) {
		u.PreferredWindows = windows
	}
}

func WithAPIToken(token string) UserOption {
	return func(u *domain.User) {
		u.APIToken = token
	}
}

func WithCalendarToken(token string) UserOption {
	return func(u *domain.User) {
		u.CalendarToken = &token
	}
}

func NewTestUser(opts ...UserOption) *domain.User {
	now := time.Now().UTC()
	n := testEmailCounter.Add(1)
	u := &domain.User{
		ID:               uuid.New().String(),
		Email:            fmt.Sprintf("student%d@example.com", n),
		FullName:         "Test Student",
		Timezone:         "UTC",
		WeeklyStudyHours: 10,
		PreferredWindows: domain.DefaultWindows(),
		MaxSessionMin:    120,
		BreakMin:         15,
		APIToken:         fmt.Sprintf("test-token-%d", n),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Subject options
type SubjectOption func(*domain.Subject)

func WithSubjectPriority(p domain.SubjectPriority) SubjectOption {
	return func(s *domain.Subject) {
		s.Priority = p
	}
}

func WithDifficulty(d domain.SubjectDifficulty) SubjectOption {
	return func(s *domain.Subject) {
		s.Difficulty = d
	}
}

func WithExamDate(d timekit.LocalDate) SubjectOption {
	return func(s *domain.Subject) {
		s.ExamDate = &d
	}
}

func NewTestSubject(userID, name string, opts ...SubjectOption) *domain.Subject {
	now := time.Now().UTC()
	s := &domain.Subject{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       name,
		Priority:   domain.SubjectMedium,
		Difficulty: domain.DifficultyMedium,
		Workload:   3,
		Color:      "#4A90D9",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Task options
type TaskOption func(*domain.Task)

func WithSubjectID(id string) TaskOption {
	return func(t *domain.Task) {
		t.SubjectID = &id
	}
}

func WithDeadline(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.Deadline = &d
	}
}

func WithEstimatedMin(m int) TaskOption {
	return func(t *domain.Task) {
		t.EstimatedMin = m
	}
}

func WithTaskPriority(p domain.TaskPriority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithCompleted(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.IsCompleted = true
		t.CompletedAt = &at
		t.Status = domain.TaskCompleted
	}
}

func WithRecurrence(p domain.RecurrencePattern) TaskOption {
	return func(t *domain.Task) {
		t.IsRecurringTemplate = true
		t.RecurrencePattern = &p
	}
}

func WithTemplateID(id string) TaskOption {
	return func(t *domain.Task) {
		t.RecurringTemplateID = &id
	}
}

func NewTestTask(userID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		EstimatedMin: 60,
		Priority:     domain.PriorityMedium,
		Status:       domain.TaskTodo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Session options
type SessionOption func(*domain.StudySession)

func WithTaskID(id string) SessionOption {
	return func(s *domain.StudySession) {
		s.TaskID = &id
	}
}

func WithSessionSubject(id string) SessionOption {
	return func(s *domain.StudySession) {
		s.SubjectID = &id
	}
}

func WithStatus(st domain.SessionStatus) SessionOption {
	return func(s *domain.StudySession) {
		s.Status = st
	}
}

func WithGeneratedBy(g domain.GeneratedBy) SessionOption {
	return func(s *domain.StudySession) {
		s.GeneratedBy = g
	}
}

func WithPinned() SessionOption {
	return func(s *domain.StudySession) {
		s.IsPinned = true
	}
}

func WithNotes(n string) SessionOption {
	return func(s *domain.StudySession) {
		s.Notes = n
	}
}

func NewTestSession(userID string, start time.Time, minutes int, opts ...SessionOption) *domain.StudySession {
	now := time.Now().UTC()
	s := &domain.StudySession{
		ID:          uuid.New().String(),
		UserID:      userID,
		StartTime:   start.UTC(),
		EndTime:     start.UTC().Add(time.Duration(minutes) * time.Minute),
		Status:      domain.SessionPlanned,
		GeneratedBy: domain.GeneratedManual,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Constraint options
type ConstraintOption func(*domain.ScheduleConstraint)

func WithRecurringWindow(days []int, start, end timekit.LocalTime) ConstraintOption {
	return func(c *domain.ScheduleConstraint) {
		c.IsRecurring = true
		c.DaysOfWeek = days
		c.StartTime = &start
		c.EndTime = &end
		c.StartDatetime = nil
		c.EndDatetime = nil
	}
}

func WithOneOffWindow(start, end time.Time) ConstraintOption {
	return func(c *domain.ScheduleConstraint) {
		c.IsRecurring = false
		c.DaysOfWeek = nil
		c.StartTime = nil
		c.EndTime = nil
		c.StartDatetime = &start
		c.EndDatetime = &end
	}
}

func WithConstraintType(t domain.ConstraintType) ConstraintOption {
	return func(c *domain.ScheduleConstraint) {
		c.Type = t
	}
}

func NewTestConstraint(userID, name string, opts ...ConstraintOption) *domain.ScheduleConstraint {
	now := time.Now().UTC()
	c := &domain.ScheduleConstraint{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Type:        domain.ConstraintBusy,
		IsRecurring: true,
		DaysOfWeek:  []int{0},
		StartTime:   &timekit.LocalTime{Hour: 9},
		EndTime:     &timekit.LocalTime{Hour: 10},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewTestEnergy(userID string, day timekit.LocalDate, level domain.EnergyLevel) *domain.DailyEnergy {
	now := time.Now().UTC()
	return &domain.DailyEnergy{
		ID:        uuid.New().String(),
		UserID:    userID,
		Day:       day,
		Level:     level,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reflection options
type ReflectionOption func(*domain.DailyReflection)

func WithUserReflection(worked, challenging string) ReflectionOption {
	return func(r *domain.DailyReflection) {
		r.Origin = domain.ReflectionUser
		r.Worked = &worked
		r.Challenging = &challenging
	}
}

func WithAutoSummary(summary, suggestion string) ReflectionOption {
	return func(r *domain.DailyReflection) {
		r.Origin = domain.ReflectionAuto
		r.Summary = &summary
		r.Suggestion = &suggestion
	}
}

func NewTestReflection(userID string, day timekit.LocalDate, opts ...ReflectionOption) *domain.DailyReflection {
	now := time.Now().UTC()
	r := &domain.DailyReflection{
		ID:        uuid.New().String(),
		UserID:    userID,
		Day:       day,
		Origin:    domain.ReflectionUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
