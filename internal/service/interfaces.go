package service

import (
	"context"
	"time"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
)

// ScheduleService owns plan generation: the weekly regeneration pipeline
// (recurrence expansion, overdue rescheduling, weighting, planning, coach
// optimization, persistence) and the ephemeral micro plan.
type ScheduleService interface {
	// GenerateWeeklyPlan rebuilds the user's week and persists it in one
	// transaction, preserving pinned and in-flight sessions. useCoach gates
	// the optional coach-optimization pass.
	GenerateWeeklyPlan(ctx context.Context, userID string, useCoach bool) (*contract.WeeklyPlan, error)
	// MicroPlan fills the next free minutes without touching the database.
	MicroPlan(ctx context.Context, userID string, minutes int, energy *domain.EnergyLevel) ([]contract.EphemeralSession, error)
	// ListUpcomingSessions returns sessions that ended less than an hour
	// ago or lie in the future, ordered by start time.
	ListUpcomingSessions(ctx context.Context, userID string) ([]contract.SessionView, error)
}

// SessionService owns the lifecycle of individual stored sessions.
type SessionService interface {
	Create(ctx context.Context, userID string, req contract.SessionCreate) (*contract.SessionView, error)
	Update(ctx context.Context, userID, sessionID string, req contract.SessionUpdate) (*contract.SessionView, error)
	// Start marks the session in progress, demoting any other in-progress
	// session of the same user to partial.
	Start(ctx context.Context, userID, sessionID string) (*contract.SessionView, error)
	Delete(ctx context.Context, userID, sessionID string) error
}

// RecurrenceService manages recurring-task templates and their instances.
type RecurrenceService interface {
	// GenerateInstances materializes upcoming instances for every template
	// of the user, weeksAhead into the future (0 means the default horizon).
	// It returns the number of instances created.
	GenerateInstances(ctx context.Context, userID string, weeksAhead int, force bool) (int, error)
	// RollForward creates the next instance after a completed one.
	RollForward(ctx context.Context, completedTaskID string) error
	// RemoveRecurrence detaches a template: uncompleted future instances are
	// deleted, the rest keep their data but lose the template link. Returns
	// the number of deleted instances.
	RemoveRecurrence(ctx context.Context, templateID string) (int, error)
	// UpdatePattern rewrites the template's pattern and reflows uncompleted,
	// untouched instances onto the new occurrence sequence.
	UpdatePattern(ctx context.Context, templateID string, pattern *domain.RecurrencePattern, endDate *time.Time) error
}

// WorkloadService produces feasibility warnings before and after generation.
type WorkloadService interface {
	AnalyzePre(ctx context.Context, userID string) (*contract.PreAnalysis, error)
	AnalyzePost(ctx context.Context, userID string, plan *contract.WeeklyPlan) (*contract.PostAnalysis, error)
}

// CalendarService owns the iCalendar feed and both token lifecycles.
type CalendarService interface {
	// Feed renders the iCalendar document for a calendar token.
	Feed(ctx context.Context, calendarToken string) ([]byte, error)
	EnsureCalendarToken(ctx context.Context, userID string) (string, error)
	RotateCalendarToken(ctx context.Context, userID string) (string, error)
	DeleteCalendarToken(ctx context.Context, userID string) error

	CreatePlanShare(ctx context.Context, userID string, days int) (string, time.Time, error)
	RevokePlanShare(ctx context.Context, userID string) error
	// SharedPlan resolves a share token into the owner's current week.
	SharedPlan(ctx context.Context, shareToken string) (*contract.SharedPlan, error)
}

// AnalyticsService exposes adherence aggregates over recent sessions.
type AnalyticsService interface {
	Overview(ctx context.Context, userID string) (*contract.AnalyticsOverview, error)
	// StudyingNow counts distinct users with an in-progress session. The
	// result is cached briefly.
	StudyingNow(ctx context.Context) (int, error)
}
