package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/ical"
	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/timekit"
)

const (
	// feedLookback and feedHorizon bound the sessions included in a feed.
	feedLookback = 7 * 24 * time.Hour
	feedHorizon  = 28 * 24 * time.Hour

	// uidDomain makes event UIDs globally unique across feeds.
	uidDomain = "companion.smartstudy"

	defaultShareDays = 7
	maxShareDays     = 90
)

type calendarService struct {
	users       repository.UserRepo
	subjects    repository.SubjectRepo
	tasks       repository.TaskRepo
	sessions    repository.SessionRepo
	constraints repository.ConstraintRepo
	now         func() time.Time
}

func NewCalendarService(
	users repository.UserRepo,
	subjects repository.SubjectRepo,
	tasks repository.TaskRepo,
	sessions repository.SessionRepo,
	constraints repository.ConstraintRepo,
) CalendarService {
	return &calendarService{
		users:       users,
		subjects:    subjects,
		tasks:       tasks,
		sessions:    sessions,
		constraints: constraints,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *calendarService) Feed(ctx context.Context, calendarToken string) ([]byte, error) {
	user, err := s.users.GetByCalendarToken(ctx, calendarToken)
	if err != nil {
		return nil, err
	}
	loc := userLocation(user)
	now := s.now()

	sessions, err := s.sessions.ListRange(ctx, user.ID, now.Add(-feedLookback), now.Add(feedHorizon))
	if err != nil {
		return nil, err
	}
	constraints, err := s.constraints.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	idx, err := buildFocusIndex(ctx, s.tasks, s.subjects, user.ID)
	if err != nil {
		return nil, err
	}

	feed := &ical.Feed{
		Name:     "Study Schedule",
		Timezone: user.Timezone,
		Now:      now,
	}
	for _, sess := range sessions {
		feed.Events = append(feed.Events, ical.Event{
			UID:         fmt.Sprintf("ssc-session-%s@%s", sess.ID, uidDomain),
			Summary:     idx.Focus(sess),
			Description: sess.Notes,
			Start:       sess.StartTime,
			End:         sess.EndTime,
			Status:      icalStatus(sess.Status),
		})
	}

	today := timekit.LocalDateOf(now, loc)
	for _, c := range constraints {
		if c.IsRecurring {
			if c.StartTime == nil || c.EndTime == nil {
				continue
			}
			feed.Weekly = append(feed.Weekly, ical.WeeklyEvent{
				UID:         fmt.Sprintf("ssc-constraint-%s@%s", c.ID, uidDomain),
				Summary:     c.Name,
				Description: c.Description,
				Days:        c.DaysOfWeek,
				Start:       *c.StartTime,
				End:         *c.EndTime,
				Anchor:      today,
			})
			continue
		}
		if c.StartDatetime == nil || c.EndDatetime == nil {
			continue
		}
		feed.Events = append(feed.Events, ical.Event{
			UID:         fmt.Sprintf("ssc-constraint-%s@%s", c.ID, uidDomain),
			Summary:     c.Name,
			Description: c.Description,
			Start:       *c.StartDatetime,
			End:         *c.EndDatetime,
			Status:      "CONFIRMED",
		})
	}
	return feed.Encode(), nil
}

func icalStatus(status domain.SessionStatus) string {
	switch status {
	case domain.SessionPlanned:
		return "TENTATIVE"
	case domain.SessionSkipped:
		return "CANCELLED"
	default:
		return "CONFIRMED"
	}
}

// EnsureCalendarToken returns the user's feed token, minting one on first use.
func (s *calendarService) EnsureCalendarToken(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.CalendarToken != nil && *user.CalendarToken != "" {
		return *user.CalendarToken, nil
	}
	return s.setCalendarToken(ctx, user)
}

// RotateCalendarToken replaces the feed token; the old URL stops working.
func (s *calendarService) RotateCalendarToken(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.setCalendarToken(ctx, user)
}

func (s *calendarService) setCalendarToken(ctx context.Context, user *domain.User) (string, error) {
	token := newOpaqueToken()
	user.CalendarToken = &token
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	return token, nil
}

func (s *calendarService) DeleteCalendarToken(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.CalendarToken = nil
	user.UpdatedAt = s.now()
	return s.users.Update(ctx, user)
}

// CreatePlanShare mints a share token valid for the given number of days.
func (s *calendarService) CreatePlanShare(ctx context.Context, userID string, days int) (string, time.Time, error) {
	if days < 0 || days > maxShareDays {
		return "", time.Time{}, fmt.Errorf("%w: share duration must be between 1 and %d days", ErrValidation, maxShareDays)
	}
	if days == 0 {
		days = defaultShareDays
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}

	token := newOpaqueToken()
	expires := s.now().AddDate(0, 0, days)
	user.PlanShareToken = &token
	user.PlanShareExpiresAt = &expires
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

func (s *calendarService) RevokePlanShare(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.PlanShareToken = nil
	user.PlanShareExpiresAt = nil
	user.UpdatedAt = s.now()
	return s.users.Update(ctx, user)
}

// SharedPlan resolves a share token into the owner's current week, Monday
// through Sunday in the owner's timezone. Expired tokens read as missing.
func (s *calendarService) SharedPlan(ctx context.Context, shareToken string) (*contract.SharedPlan, error) {
	user, err := s.users.GetByPlanShareToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if user.PlanShareExpiresAt == nil || user.PlanShareExpiresAt.Before(now) {
		return nil, fmt.Errorf("plan share: %w", repository.ErrNotFound)
	}
	loc := userLocation(user)

	today := timekit.LocalDateOf(now, loc)
	monday := today.AddDays(-today.Weekday())
	weekStart := monday.MidnightIn(loc)
	weekEnd := monday.AddDays(7).MidnightIn(loc)

	sessions, err := s.sessions.ListRange(ctx, user.ID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	idx, err := buildFocusIndex(ctx, s.tasks, s.subjects, user.ID)
	if err != nil {
		return nil, err
	}

	plan := &contract.SharedPlan{
		OwnerName: user.FullName,
		Timezone:  user.Timezone,
		WeekStart: weekStart,
		ExpiresAt: *user.PlanShareExpiresAt,
		Days:      make([]contract.SharedDay, 7),
	}
	for i := range plan.Days {
		plan.Days[i] = contract.SharedDay{Day: monday.AddDays(i).MidnightIn(loc)}
	}
	for _, sess := range sessions {
		offset := monday.DaysUntil(timekit.LocalDateOf(sess.StartTime, loc))
		if offset < 0 || offset > 6 {
			continue
		}
		plan.Days[offset].Sessions = append(plan.Days[offset].Sessions, sessionView(sess, idx.Focus(sess)))
	}
	return plan, nil
}
