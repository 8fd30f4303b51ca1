package service

import (
	"context"
	"sync"
	"time"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/timekit"
)

const (
	// streakMinMinutes is the qualifying bar for a day to count toward the
	// study streak.
	streakMinMinutes = 30
	// streakLookbackDays caps how far back the streak walk goes.
	streakLookbackDays = 30
	trendDays          = 7

	// studyingNowTTL is how long the live-user count may be served stale.
	studyingNowTTL = 90 * time.Second
)

type analyticsService struct {
	users    repository.UserRepo
	subjects repository.SubjectRepo
	tasks    repository.TaskRepo
	sessions repository.SessionRepo
	now      func() time.Time

	mu             sync.Mutex
	studyingCount  int
	studyingCached time.Time
}

func NewAnalyticsService(
	users repository.UserRepo,
	subjects repository.SubjectRepo,
	tasks repository.TaskRepo,
	sessions repository.SessionRepo,
) AnalyticsService {
	return &analyticsService{
		users:    users,
		subjects: subjects,
		tasks:    tasks,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *analyticsService) Overview(ctx context.Context, userID string) (*contract.AnalyticsOverview, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := userLocation(user)
	now := s.now()
	today := timekit.LocalDateOf(now, loc)

	// One query covers both the 7-day aggregates and the streak walk.
	history, err := s.sessions.ListRange(ctx, userID,
		now.AddDate(0, 0, -(streakLookbackDays+1)), now.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	idx, err := buildFocusIndex(ctx, s.tasks, s.subjects, userID)
	if err != nil {
		return nil, err
	}

	weekCutoff := now.AddDate(0, 0, -trendDays)
	var total, skipped, completed int
	distribution := make(map[string]int)
	scheduledByDay := make(map[timekit.LocalDate]int)
	completedByDay := make(map[timekit.LocalDate]int)
	doneMinutesByDay := make(map[timekit.LocalDate]int)

	for _, sess := range history {
		day := timekit.LocalDateOf(sess.StartTime, loc)
		done := sess.Status == domain.SessionCompleted || sess.Status == domain.SessionPartial
		if done {
			doneMinutesByDay[day] += sess.DurationMinutes()
		}

		if sess.StartTime.Before(weekCutoff) || sess.StartTime.After(now) {
			continue
		}
		total++
		switch sess.Status {
		case domain.SessionSkipped:
			skipped++
		case domain.SessionCompleted:
			completed++
		}
		scheduledByDay[day] += sess.DurationMinutes()
		if done {
			completedByDay[day] += sess.DurationMinutes()
			distribution[idx.SubjectName(sess)] += sess.DurationMinutes()
		}
	}

	adherence := 0.0
	if denom := total - skipped; denom > 0 {
		adherence = float64(completed) / float64(denom)
	}

	trend := make([]contract.TrendPoint, 0, trendDays)
	for offset := trendDays - 1; offset >= 0; offset-- {
		day := today.AddDays(-offset)
		trend = append(trend, contract.TrendPoint{
			Day:              day,
			DayString:        day.String(),
			CompletedMinutes: completedByDay[day],
			ScheduledMinutes: scheduledByDay[day],
		})
	}

	return &contract.AnalyticsOverview{
		AdherenceRate:    adherence,
		StreakDays:       streakLength(doneMinutesByDay, today),
		TimeDistribution: distribution,
		Trend:            trend,
	}, nil
}

// streakLength counts consecutive qualifying days ending today or yesterday.
// Today joins the streak as soon as it qualifies but an unfinished today
// does not break it.
func streakLength(doneMinutes map[timekit.LocalDate]int, today timekit.LocalDate) int {
	streak := 0
	if doneMinutes[today] >= streakMinMinutes {
		streak++
	}
	for back := 1; back <= streakLookbackDays; back++ {
		if doneMinutes[today.AddDays(-back)] < streakMinMinutes {
			break
		}
		streak++
	}
	return streak
}

func (s *analyticsService) StudyingNow(ctx context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	if !s.studyingCached.IsZero() && now.Sub(s.studyingCached) < studyingNowTTL {
		count := s.studyingCount
		s.mu.Unlock()
		return count, nil
	}
	s.mu.Unlock()

	count, err := s.sessions.CountActiveUsers(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.studyingCount = count
	s.studyingCached = now
	s.mu.Unlock()
	return count, nil
}
