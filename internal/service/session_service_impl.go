package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/db"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/repository"
)

// uncompleteGraceWindow protects a manual completion tick: a task completed
// less than this long ago is never auto-uncompleted.
const uncompleteGraceWindow = time.Hour

type sessionService struct {
	users    repository.UserRepo
	subjects repository.SubjectRepo
	tasks    repository.TaskRepo
	sessions repository.SessionRepo
	uow      db.UnitOfWork
	now      func() time.Time
}

func NewSessionService(
	users repository.UserRepo,
	subjects repository.SubjectRepo,
	tasks repository.TaskRepo,
	sessions repository.SessionRepo,
	uow db.UnitOfWork,
) SessionService {
	return &sessionService{
		users:    users,
		subjects: subjects,
		tasks:    tasks,
		sessions: sessions,
		uow:      uow,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a manual session. Manual sessions are always allowed to
// overlap whatever is already on the calendar, and they are born pinned so
// regeneration never sweeps them away.
func (s *sessionService) Create(ctx context.Context, userID string, req contract.SessionCreate) (*contract.SessionView, error) {
	if err := validateSessionTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	now := s.now()
	sess := &domain.StudySession{
		ID:          uuid.New().String(),
		UserID:      userID,
		SubjectID:   req.SubjectID,
		TaskID:      req.TaskID,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Status:      domain.SessionPlanned,
		GeneratedBy: domain.GeneratedManual,
		IsPinned:    true,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

func (s *sessionService) Update(ctx context.Context, userID, sessionID string, req contract.SessionUpdate) (*contract.SessionView, error) {
	if req.Status != nil && !domain.ValidSessionStatuses[string(*req.Status)] {
		return nil, fmt.Errorf("%w: unknown session status %q", ErrValidation, *req.Status)
	}
	now := s.now()

	var updated *domain.StudySession
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSessions := repository.NewSQLiteSessionRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		sess, err := txSessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.UserID != userID {
			return fmt.Errorf("session: %w", repository.ErrNotFound)
		}

		timeEdit := req.StartTime != nil || req.EndTime != nil
		if timeEdit && sess.Status == domain.SessionCompleted {
			return fmt.Errorf("%w: completed sessions keep their recorded time", ErrForbidden)
		}

		if timeEdit {
			newStart, newEnd := resolveEditedTimes(sess, req.StartTime, req.EndTime)
			if err := validateSessionTimes(newStart, newEnd); err != nil {
				return err
			}
			// Shrinking inside the old slot cannot create a new overlap,
			// so only a move or a grow is checked.
			if !within(newStart, newEnd, sess.StartTime, sess.EndTime) {
				if err := s.checkConflicts(ctx, tx, sess, newStart, newEnd); err != nil {
					return err
				}
			}
			sess.StartTime = newStart
			sess.EndTime = newEnd
		}

		statusChanged := false
		if req.Status != nil && *req.Status != sess.Status {
			sess.Status = *req.Status
			statusChanged = true
		}
		if req.IsPinned != nil {
			sess.IsPinned = *req.IsPinned
		}
		if req.Notes != nil {
			sess.Notes = *req.Notes
		}

		sess.UpdatedAt = now
		if err := txSessions.Update(ctx, sess); err != nil {
			return err
		}

		if statusChanged && sess.TaskID != nil {
			if err := propagateToTask(ctx, txTasks, txSessions, *sess.TaskID, now); err != nil {
				return err
			}
		}
		updated = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// Start marks the session in progress. A user studies one thing at a time:
// any other in-progress session is settled as partial first.
func (s *sessionService) Start(ctx context.Context, userID, sessionID string) (*contract.SessionView, error) {
	now := s.now()

	var started *domain.StudySession
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSessions := repository.NewSQLiteSessionRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		sess, err := txSessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.UserID != userID {
			return fmt.Errorf("session: %w", repository.ErrNotFound)
		}

		running, err := txSessions.ListByStatus(ctx, userID, domain.SessionInProgress)
		if err != nil {
			return err
		}
		for _, other := range running {
			if other.ID == sess.ID {
				continue
			}
			other.Status = domain.SessionPartial
			other.UpdatedAt = now
			if err := txSessions.Update(ctx, other); err != nil {
				return err
			}
			if other.TaskID != nil {
				if err := propagateToTask(ctx, txTasks, txSessions, *other.TaskID, now); err != nil {
					return err
				}
			}
		}

		sess.Status = domain.SessionInProgress
		sess.UpdatedAt = now
		if err := txSessions.Update(ctx, sess); err != nil {
			return err
		}
		started = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, started)
}

// Delete removes a session the planner or the user can spare: planned or
// skipped, and either pinned or manually created. Generated unpinned
// sessions belong to the planner and are replaced, not deleted.
func (s *sessionService) Delete(ctx context.Context, userID, sessionID string) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	if sess.Status != domain.SessionPlanned && sess.Status != domain.SessionSkipped {
		return fmt.Errorf("%w: only planned or skipped sessions can be deleted", ErrForbidden)
	}
	if !sess.IsPinned && sess.GeneratedBy != domain.GeneratedManual {
		return fmt.Errorf("%w: generated sessions are replaced by regeneration, not deleted", ErrForbidden)
	}
	return s.sessions.Delete(ctx, sessionID)
}

// resolveEditedTimes fills the unsupplied bound so a single-bound edit keeps
// the session's old duration.
func resolveEditedTimes(sess *domain.StudySession, start, end *time.Time) (time.Time, time.Time) {
	duration := sess.EndTime.Sub(sess.StartTime)
	switch {
	case start != nil && end != nil:
		return start.UTC(), end.UTC()
	case start != nil:
		return start.UTC(), start.UTC().Add(duration)
	default:
		return end.UTC().Add(-duration), end.UTC()
	}
}

func validateSessionTimes(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: session must start before it ends", ErrValidation)
	}
	minutes := int(end.Sub(start).Minutes())
	if minutes < domain.MinSessionMinutes || minutes > domain.MaxSessionMinutes {
		return fmt.Errorf("%w: session length must be between %d and %d minutes",
			ErrValidation, domain.MinSessionMinutes, domain.MaxSessionMinutes)
	}
	return nil
}

// within reports whether [start, end) lies inside [outerStart, outerEnd).
func within(start, end, outerStart, outerEnd time.Time) bool {
	return !start.Before(outerStart) && !end.After(outerEnd)
}

// checkConflicts rejects the new window when it overlaps any other
// non-completed session of the same user.
func (s *sessionService) checkConflicts(ctx context.Context, tx db.DBTX, sess *domain.StudySession, start, end time.Time) error {
	txSessions := repository.NewSQLiteSessionRepo(tx)
	others, err := txSessions.ListByStatus(ctx, sess.UserID,
		domain.SessionPlanned, domain.SessionInProgress, domain.SessionPartial, domain.SessionSkipped)
	if err != nil {
		return err
	}
	for _, other := range others {
		if other.ID == sess.ID || !other.Overlaps(start, end) {
			continue
		}
		idx, err := buildFocusIndex(ctx, repository.NewSQLiteTaskRepo(tx), repository.NewSQLiteSubjectRepo(tx), sess.UserID)
		if err != nil {
			return err
		}
		return &ConflictError{With: idx.Focus(other), Start: other.StartTime, End: other.EndTime}
	}
	return nil
}

// propagateToTask recomputes the task's session-derived minutes and applies
// the auto-completion rules. Runs inside the caller's transaction.
func propagateToTask(ctx context.Context, tasks repository.TaskRepo, sessions repository.SessionRepo, taskID string, now time.Time) error {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	taskSessions, err := sessions.ListByTask(ctx, taskID)
	if err != nil {
		return err
	}
	actual := 0
	for _, sess := range taskSessions {
		if sess.Status == domain.SessionCompleted || sess.Status == domain.SessionPartial {
			actual += sess.DurationMinutes()
		}
	}
	task.ActualMin = actual
	total := task.TotalMinutesSpent()

	completedNow := false
	switch {
	case total >= task.EstimatedMin && task.EstimatedMin > 0 && !task.IsCompleted && !task.PreventAutoCompletion:
		task.IsCompleted = true
		task.Status = domain.TaskCompleted
		completedAt := now
		task.CompletedAt = &completedAt
		completedNow = true
	case total < task.EstimatedMin && task.IsCompleted:
		// The grace window protects a fresh manual tick from being undone
		// by a session edit.
		if !task.PreventAutoCompletion && task.CompletedAt != nil && now.Sub(*task.CompletedAt) > uncompleteGraceWindow {
			task.IsCompleted = false
			task.CompletedAt = nil
			task.Status = domain.TaskTodo
		}
	}

	task.UpdatedAt = now
	if err := tasks.Update(ctx, task); err != nil {
		return err
	}

	if completedNow && task.RecurringTemplateID != nil {
		return rollForward(ctx, tasks, task.ID, now)
	}
	return nil
}

func (s *sessionService) view(ctx context.Context, sess *domain.StudySession) (*contract.SessionView, error) {
	idx, err := buildFocusIndex(ctx, s.tasks, s.subjects, sess.UserID)
	if err != nil {
		return nil, err
	}
	v := sessionView(sess, idx.Focus(sess))
	return &v, nil
}
