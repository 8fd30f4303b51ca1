package repository

import (
	"context"
	"time"

	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/timekit"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByAPIToken(ctx context.Context, token string) (*domain.User, error)
	GetByCalendarToken(ctx context.Context, token string) (*domain.User, error)
	GetByPlanShareToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

type SubjectRepo interface {
	Create(ctx context.Context, s *domain.Subject) error
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Subject, error)
	Update(ctx context.Context, s *domain.Subject) error
	Delete(ctx context.Context, id string) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	ListBySubject(ctx context.Context, subjectID string) ([]*domain.Task, error)
	ListTemplates(ctx context.Context, userID string) ([]*domain.Task, error)
	ListInstances(ctx context.Context, templateID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.StudySession) error
	GetByID(ctx context.Context, id string) (*domain.StudySession, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.StudySession, error)
	// ListRange returns sessions whose start falls in [from, to), ordered
	// by start time.
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.StudySession, error)
	ListByStatus(ctx context.Context, userID string, statuses ...domain.SessionStatus) ([]*domain.StudySession, error)
	// CountActiveUsers counts distinct users with an in-progress session.
	CountActiveUsers(ctx context.Context) (int, error)
	// DeleteReplaceable removes planned and skipped unpinned sessions whose
	// start falls in [from, to); everything the user touched survives.
	DeleteReplaceable(ctx context.Context, userID string, from, to time.Time) error
	Update(ctx context.Context, s *domain.StudySession) error
	Delete(ctx context.Context, id string) error
}

type ConstraintRepo interface {
	Create(ctx context.Context, c *domain.ScheduleConstraint) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleConstraint, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.ScheduleConstraint, error)
	Update(ctx context.Context, c *domain.ScheduleConstraint) error
	Delete(ctx context.Context, id string) error
}

type EnergyRepo interface {
	// Upsert inserts or replaces the single report for (user, day).
	Upsert(ctx context.Context, e *domain.DailyEnergy) error
	GetByDay(ctx context.Context, userID string, day timekit.LocalDate) (*domain.DailyEnergy, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.DailyEnergy, error)
	Delete(ctx context.Context, userID string, day timekit.LocalDate) error
}

type ReflectionRepo interface {
	// Upsert inserts or replaces the single reflection for (user, day).
	Upsert(ctx context.Context, r *domain.DailyReflection) error
	GetByDay(ctx context.Context, userID string, day timekit.LocalDate) (*domain.DailyReflection, error)
	ListRange(ctx context.Context, userID string, from, to timekit.LocalDate) ([]*domain.DailyReflection, error)
	Delete(ctx context.Context, userID string, day timekit.LocalDate) error
}
