package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartstudy/companion/internal/coach"
	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/scheduler"
	"github.com/smartstudy/companion/internal/timekit"
)

const (
	// staleInProgressAfter is how long past its end an in-progress session
	// may sit before regeneration settles it as partial.
	staleInProgressAfter = 2 * time.Hour
	// stalePlannedAfter is the grace period after a planned session's end
	// before regeneration marks it skipped.
	stalePlannedAfter = 15 * time.Minute
	// upcomingGrace keeps just-finished sessions visible in the upcoming
	// list for a while.
	upcomingGrace = time.Hour
)

type scheduleService struct {
	users       repository.UserRepo
	subjects    repository.SubjectRepo
	tasks       repository.TaskRepo
	sessions    repository.SessionRepo
	constraints repository.ConstraintRepo
	energy      repository.EnergyRepo
	uow         db.UnitOfWork
	coach       coach.Adapter
	logger      *slog.Logger
	now         func() time.Time
}

func NewScheduleService(
	users repository.UserRepo,
	subjects repository.SubjectRepo,
	tasks repository.TaskRepo,
	sessions repository.SessionRepo,
	constraints repository.ConstraintRepo,
	energy repository.EnergyRepo,
	uow db.UnitOfWork,
	adapter coach.Adapter,
	logger *slog.Logger,
) ScheduleService {
	if adapter == nil {
		adapter = coach.NoopAdapter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleService{
		users:       users,
		subjects:    subjects,
		tasks:       tasks,
		sessions:    sessions,
		constraints: constraints,
		energy:      energy,
		uow:         uow,
		coach:       adapter,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *scheduleService) GenerateWeeklyPlan(ctx context.Context, userID string, useCoach bool) (*contract.WeeklyPlan, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := userLocation(user)
	reference := timekit.RoundToNearest(s.now(), 5)

	var plan *contract.WeeklyPlan
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txSessions := repository.NewSQLiteSessionRepo(tx)

		if _, err := expandUserTemplates(ctx, txTasks, userID, defaultRecurrenceWeeks, false, reference); err != nil {
			return fmt.Errorf("expanding recurring templates: %w", err)
		}

		tasks, err := txTasks.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		subjects, err := repository.NewSQLiteSubjectRepo(tx).ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		constraints, err := repository.NewSQLiteConstraintRepo(tx).ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		energyReports, err := repository.NewSQLiteEnergyRepo(tx).ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		changed, report := scheduler.RescheduleOverdue(tasks, reference, loc)
		for _, task := range changed {
			task.UpdatedAt = reference
			if err := txTasks.Update(ctx, task); err != nil {
				return fmt.Errorf("persisting rescheduled task %s: %w", task.ID, err)
			}
		}

		energyByDay := make(map[timekit.LocalDate]domain.EnergyLevel, len(energyReports))
		for _, e := range energyReports {
			energyByDay[e.Day] = e.Level
		}

		weighted := scheduler.CalculateWeights(tasks, subjects, reference, loc)
		plan = scheduler.BuildWeeklyPlan(scheduler.PlanInput{
			User:        user,
			Tasks:       weighted,
			Constraints: constraints,
			EnergyByDay: energyByDay,
			Reference:   reference,
			Location:    loc,
		})

		var explanation string
		if useCoach {
			explanation = s.optimize(ctx, user, plan, tasks, subjects)
		}
		if parts := joinNonEmpty(report.Summary, explanation); parts != "" {
			plan.OptimizationExplanation = &parts
		}

		if err := s.settleStaleSessions(ctx, txSessions, userID, reference); err != nil {
			return err
		}
		return s.persistPlan(ctx, txSessions, user, plan, loc, reference)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// optimize runs the coach adapter over the deterministic plan. Any failure
// keeps the deterministic result; an unavailable coach is not an error.
func (s *scheduleService) optimize(ctx context.Context, user *domain.User, plan *contract.WeeklyPlan, tasks []*domain.Task, subjects []*domain.Subject) string {
	result, err := s.coach.OptimizeWeeklyPlan(ctx, coach.OptimizeInput{
		User:     user,
		Plan:     plan,
		Tasks:    tasks,
		Subjects: subjects,
	})
	if err != nil {
		if err != coach.ErrUnavailable {
			s.logger.Warn("coach optimization failed, keeping deterministic plan",
				"user_id", user.ID, "error", err)
		}
		return ""
	}
	if result.Plan != nil {
		*plan = *result.Plan
	}
	return result.Explanation
}

// settleStaleSessions resolves sessions the user never closed out: an
// in-progress session well past its end becomes partial, a planned session
// whose slot has passed becomes skipped.
func (s *scheduleService) settleStaleSessions(ctx context.Context, sessions repository.SessionRepo, userID string, now time.Time) error {
	stale, err := sessions.ListByStatus(ctx, userID, domain.SessionInProgress, domain.SessionPlanned)
	if err != nil {
		return err
	}
	for _, sess := range stale {
		switch {
		case sess.Status == domain.SessionInProgress && now.Sub(sess.EndTime) > staleInProgressAfter:
			sess.Status = domain.SessionPartial
		case sess.Status == domain.SessionPlanned && now.Sub(sess.EndTime) > stalePlannedAfter:
			sess.Status = domain.SessionSkipped
		default:
			continue
		}
		sess.UpdatedAt = now
		if err := sessions.Update(ctx, sess); err != nil {
			return fmt.Errorf("settling stale session %s: %w", sess.ID, err)
		}
	}
	return nil
}

// persistPlan replaces the replaceable sessions in the plan's window with the
// freshly generated blocks, skipping any block that would overlap a session
// the user has touched.
func (s *scheduleService) persistPlan(ctx context.Context, sessions repository.SessionRepo, user *domain.User, plan *contract.WeeklyPlan, loc *time.Location, now time.Time) error {
	if len(plan.Days) == 0 {
		return nil
	}
	from := plan.Days[0].Day
	lastDay := plan.Days[len(plan.Days)-1].Day
	to := timekit.LocalDateOf(lastDay, loc).AddDays(1).MidnightIn(loc)

	if err := sessions.DeleteReplaceable(ctx, user.ID, from, to); err != nil {
		return fmt.Errorf("clearing replaceable sessions: %w", err)
	}
	preserved, err := sessions.ListRange(ctx, user.ID, from, to)
	if err != nil {
		return err
	}

	for _, day := range plan.Days {
		for _, block := range day.Sessions {
			if overlapsAny(block.StartTime, block.EndTime, preserved) {
				continue
			}
			sess := &domain.StudySession{
				ID:          uuid.New().String(),
				UserID:      user.ID,
				SubjectID:   block.SubjectID,
				TaskID:      block.TaskID,
				StartTime:   block.StartTime,
				EndTime:     block.EndTime,
				Status:      domain.SessionPlanned,
				EnergyLevel: block.EnergyLevel,
				GeneratedBy: block.GeneratedBy,
				Notes:       block.Focus,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := sessions.Create(ctx, sess); err != nil {
				return fmt.Errorf("persisting planned session: %w", err)
			}
		}
	}
	return nil
}

func (s *scheduleService) MicroPlan(ctx context.Context, userID string, minutes int, energy *domain.EnergyLevel) ([]contract.EphemeralSession, error) {
	if minutes < domain.MinSessionMinutes {
		return nil, fmt.Errorf("%w: micro plan needs at least %d minutes", ErrValidation, domain.MinSessionMinutes)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := userLocation(user)
	reference := s.now()

	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjects.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := domain.EnergyMedium
	if energy != nil {
		level = *energy
	} else if report, err := s.energy.GetByDay(ctx, userID, timekit.LocalDateOf(reference, loc)); err == nil {
		level = report.Level
	}

	queue := scheduler.CalculateWeights(tasks, subjects, reference, loc)
	return scheduler.MicroPlan(queue, minutes, level, user, reference), nil
}

func (s *scheduleService) ListUpcomingSessions(ctx context.Context, userID string) ([]contract.SessionView, error) {
	all, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cutoff := s.now().Add(-upcomingGrace)

	var upcoming []*domain.StudySession
	for _, sess := range all {
		if !sess.EndTime.Before(cutoff) {
			upcoming = append(upcoming, sess)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartTime.Before(upcoming[j].StartTime)
	})

	idx, err := buildFocusIndex(ctx, s.tasks, s.subjects, userID)
	if err != nil {
		return nil, err
	}
	return sessionViews(upcoming, idx), nil
}

func overlapsAny(start, end time.Time, sessions []*domain.StudySession) bool {
	for _, sess := range sessions {
		if sess.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
