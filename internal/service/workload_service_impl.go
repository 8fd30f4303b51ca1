package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/scheduler"
	"github.com/smartstudy/companion/internal/timekit"
)

const (
	// completionRateWindow is how far back the historical completion rate
	// looks.
	completionRateWindow = 30 * 24 * time.Hour
	defaultCompletionRate = 0.65
	minCompletionRate     = 0.5
	maxCompletionRate     = 0.95

	hardCapacityFactor = 1.5
	softCapacityFactor = 1.3

	heavyDayHours      = 6.0
	heavyStreakLength  = 3
	imbalanceThreshold = 2.5
	clusterMinTasks    = 3
	deadlineBufferMin  = 2.0 // hours

	examPrepWindowMin = 14 // days
	examPrepWindowMax = 28

	constraintImpactShare = 0.3
)

type workloadService struct {
	users       repository.UserRepo
	subjects    repository.SubjectRepo
	tasks       repository.TaskRepo
	sessions    repository.SessionRepo
	constraints repository.ConstraintRepo
	now         func() time.Time
}

func NewWorkloadService(
	users repository.UserRepo,
	subjects repository.SubjectRepo,
	tasks repository.TaskRepo,
	sessions repository.SessionRepo,
	constraints repository.ConstraintRepo,
) WorkloadService {
	return &workloadService{
		users:       users,
		subjects:    subjects,
		tasks:       tasks,
		sessions:    sessions,
		constraints: constraints,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *workloadService) AnalyzePre(ctx context.Context, userID string) (*contract.PreAnalysis, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := userLocation(user)
	now := s.now()
	today := timekit.LocalDateOf(now, loc)

	allTasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjects.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	constraints, err := s.constraints.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	open := openTasks(allTasks)
	taskHours := 0.0
	for _, t := range open {
		taskHours += float64(t.RemainingMinutes) / 60
	}

	hoursPerDay := windowHoursPerDay(user.PreferredWindows)
	blockedHours := blockedHoursThisWeek(constraints, today, loc)
	availableHours := max(hoursPerDay*7-blockedHours, 0)

	rate, err := s.completionRate(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	realistic := float64(user.WeeklyStudyHours) * rate

	var warnings []contract.Warning
	warnings = append(warnings, capacityWarnings(taskHours, realistic)...)
	if taskHours > availableHours {
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnTimeInsufficient,
			Severity: contract.SeverityHard,
			Title:    "Not enough study time configured",
			Message: fmt.Sprintf("Your tasks need %.1f hours this week but your study windows only offer %.1f.",
				taskHours, availableHours),
			Suggestions: []string{
				"Add another study window or widen an existing one",
				"Push the least urgent deadlines out a few days",
			},
		})
	}
	if float64(user.WeeklyStudyHours) > availableHours {
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnGoalMismatch,
			Severity: contract.SeveritySoft,
			Title:    "Weekly goal exceeds your windows",
			Message: fmt.Sprintf("Your goal of %d hours per week does not fit into %.1f hours of configured windows.",
				user.WeeklyStudyHours, availableHours),
			Suggestions: []string{"Lower the weekly goal or open up more study time"},
		})
	}
	warnings = append(warnings, deadlineRiskWarnings(open, availableHours, today, loc)...)
	warnings = append(warnings, deadlineClusterWarnings(open, today, loc)...)
	warnings = append(warnings, examPrepWarnings(open, subjects, today)...)
	if windowHours := hoursPerDay * 7; windowHours > 0 && blockedHours > windowHours*constraintImpactShare {
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnConstraintsImpact,
			Severity: contract.SeveritySoft,
			Title:    "Constraints eat into your study time",
			Message: fmt.Sprintf("Constraints block %.1f of your %.1f weekly window hours.",
				blockedHours, windowHours),
			Suggestions: []string{"Review recurring constraints that overlap your study windows"},
		})
	}

	return &contract.PreAnalysis{
		Warnings: warnings,
		Metrics: contract.PreAnalysisMetrics{
			TotalTaskHours:    taskHours,
			AvailableHours:    availableHours,
			RealisticCapacity: realistic,
			CompletionRate:    rate,
			WeeklyGoalHours:   user.WeeklyStudyHours,
			HoursPerDay:       hoursPerDay,
		},
	}, nil
}

func (s *workloadService) AnalyzePost(ctx context.Context, userID string, plan *contract.WeeklyPlan) (*contract.PostAnalysis, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: plan required", ErrValidation)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := userLocation(user)

	allTasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	constraints, err := s.constraints.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	open := openTasks(allTasks)
	hoursPerDay := windowHoursPerDay(user.PreferredWindows)

	type dayLoad struct {
		date  timekit.LocalDate
		hours float64
		empty bool
	}
	loads := make([]dayLoad, 0, len(plan.Days))
	scheduledByTask := make(map[string]time.Time) // task id -> last block end
	totalScheduled := 0.0
	distribution := make(map[string]float64, len(plan.Days))

	for _, day := range plan.Days {
		date := timekit.LocalDateOf(day.Day, loc)
		hours := 0.0
		for _, block := range day.Sessions {
			hours += block.EndTime.Sub(block.StartTime).Hours()
			if block.TaskID != nil {
				if last, ok := scheduledByTask[*block.TaskID]; !ok || block.EndTime.After(last) {
					scheduledByTask[*block.TaskID] = block.EndTime
				}
			}
		}
		loads = append(loads, dayLoad{date: date, hours: hours, empty: len(day.Sessions) == 0})
		totalScheduled += hours
		distribution[day.Day.In(loc).Weekday().String()] = hours
	}

	var warnings []contract.Warning

	// Day overload.
	var overloaded []map[string]any
	maxOverload := 0.0
	for _, d := range loads {
		if hoursPerDay > 0 && d.hours > hoursPerDay {
			overloaded = append(overloaded, map[string]any{
				"date": d.date.String(), "scheduled_hours": d.hours, "available_hours": hoursPerDay,
			})
			if d.hours-hoursPerDay > maxOverload {
				maxOverload = d.hours - hoursPerDay
			}
		}
	}
	if len(overloaded) > 0 {
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnDayOverload,
			Severity: contract.SeverityHard,
			Title:    "Some days are overloaded",
			Message: fmt.Sprintf("%d day(s) carry more study time than their windows allow, up to %.1f hours over.",
				len(overloaded), maxOverload),
			Suggestions: []string{"Spread sessions onto lighter days", "Extend the windows on busy days"},
			Details:     map[string]any{"overloaded_days": overloaded},
		})
	}

	// Unscheduled tasks.
	var unscheduled []*scheduler.WeightedTask
	unscheduledHours := 0.0
	for _, t := range open {
		if _, ok := scheduledByTask[t.Task.ID]; !ok {
			unscheduled = append(unscheduled, t)
			unscheduledHours += float64(t.RemainingMinutes) / 60
		}
	}
	if len(unscheduled) > 0 {
		titles := make([]string, 0, 5)
		for _, t := range unscheduled {
			if len(titles) == 5 {
				break
			}
			titles = append(titles, t.Task.Title)
		}
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnUnscheduledTasks,
			Severity: contract.SeverityHard,
			Title:    "Tasks did not fit into the week",
			Message: fmt.Sprintf("%d task(s) totalling %.1f hours got no session this week.",
				len(unscheduled), unscheduledHours),
			Suggestions: []string{"Free up time or move their deadlines", "Shrink their estimates if they are padded"},
			Details:     map[string]any{"tasks": titles},
		})
	}

	// Schedule imbalance across non-empty days.
	imbalance := 1.0
	minHours, maxHours := 0.0, 0.0
	for _, d := range loads {
		if d.hours <= 0 {
			continue
		}
		if minHours == 0 || d.hours < minHours {
			minHours = d.hours
		}
		if d.hours > maxHours {
			maxHours = d.hours
		}
	}
	if minHours > 0 {
		imbalance = maxHours / minHours
	}
	if imbalance > imbalanceThreshold {
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnScheduleImbalance,
			Severity: contract.SeveritySoft,
			Title:    "Uneven week",
			Message: fmt.Sprintf("Your heaviest day has %.1fx the study time of your lightest.",
				imbalance),
			Suggestions: []string{"Shift a session or two from the heaviest day"},
		})
	}

	// Consecutive heavy days.
	streak, longest := 0, 0
	for _, d := range loads {
		if d.hours > heavyDayHours {
			streak++
			longest = max(longest, streak)
		} else {
			streak = 0
		}
	}
	if longest >= heavyStreakLength {
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnConsecutiveHeavyDays,
			Severity: contract.SeveritySoft,
			Title:    "Long stretch of heavy days",
			Message: fmt.Sprintf("%d consecutive days with more than %.0f hours of study time.",
				longest, heavyDayHours),
			Suggestions: []string{"Plan a lighter recovery day in the middle"},
		})
	}

	// Deadline buffer.
	var tight []map[string]any
	for _, t := range open {
		deadline := t.Task.Deadline
		lastEnd, ok := scheduledByTask[t.Task.ID]
		if deadline == nil || !ok {
			continue
		}
		buffer := deadline.Sub(lastEnd).Hours()
		if buffer > 0 && buffer < deadlineBufferMin {
			tight = append(tight, map[string]any{
				"task": t.Task.Title, "buffer_hours": buffer,
			})
		}
	}
	if len(tight) > 0 {
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnNoDeadlineBuffer,
			Severity: contract.SeveritySoft,
			Title:    "Cutting it close",
			Message:  fmt.Sprintf("%d task(s) finish less than %.0f hours before their deadline.", len(tight), deadlineBufferMin),
			Suggestions: []string{
				"Pull the final session earlier to leave review time",
			},
			Details: map[string]any{"tasks": tight},
		})
	}

	// Constraints blocking entire days.
	var blockedDays []string
	for _, d := range loads {
		if !d.empty || len(user.PreferredWindows) == 0 {
			continue
		}
		applicable := false
		for _, c := range constraints {
			if c.AppliesOn(d.date, loc) {
				applicable = true
				break
			}
		}
		if applicable && scheduler.FreeMinutesOn(d.date, user.PreferredWindows, constraints, loc) == 0 {
			blockedDays = append(blockedDays, d.date.String())
		}
	}
	if len(blockedDays) > 0 {
		warnings = append(warnings, contract.Warning{
			Type:     contract.WarnConstraintsBlocking,
			Severity: contract.SeverityHard,
			Title:    "Constraints block entire days",
			Message:  fmt.Sprintf("%d day(s) have study windows that are completely blocked by constraints.", len(blockedDays)),
			Suggestions: []string{
				"Add a window outside the blocked hours on those days",
			},
			Details: map[string]any{"days": blockedDays},
		})
	}

	return &contract.PostAnalysis{
		Warnings: warnings,
		Metrics: contract.PostAnalysisMetrics{
			TotalScheduledHours:  totalScheduled,
			UnscheduledHours:     unscheduledHours,
			UnscheduledTaskCount: len(unscheduled),
			DailyDistribution:    distribution,
			ImbalanceRatio:       imbalance,
		},
	}, nil
}

// openTasks reuses the weight engine's filter: schedulable tasks with their
// remaining minutes attached. Weights are computed against "now" but only
// the remaining minutes matter here.
func openTasks(tasks []*domain.Task) []*scheduler.WeightedTask {
	var open []*scheduler.WeightedTask
	for _, t := range tasks {
		if !t.Schedulable() {
			continue
		}
		open = append(open, &scheduler.WeightedTask{Task: t, RemainingMinutes: t.RemainingMinutes()})
	}
	return open
}

func windowHoursPerDay(windows []domain.StudyWindow) float64 {
	if len(windows) == 0 {
		windows = domain.DefaultWindows()
	}
	minutes := 0
	for _, w := range windows {
		minutes += w.SpanMinutes()
	}
	return float64(minutes) / 60
}

// blockedHoursThisWeek sums constraint-blocked hours over the next seven
// local days.
func blockedHoursThisWeek(constraints []*domain.ScheduleConstraint, today timekit.LocalDate, loc *time.Location) float64 {
	minutes := 0.0
	for offset := 0; offset < 7; offset++ {
		day := today.AddDays(offset)
		for _, c := range constraints {
			if !c.AppliesOn(day, loc) {
				continue
			}
			if c.IsRecurring {
				minutes += float64(c.BlockedMinutes())
			} else if c.StartDatetime != nil && c.EndDatetime != nil {
				minutes += c.EndDatetime.Sub(*c.StartDatetime).Minutes()
			}
		}
	}
	return minutes / 60
}

func (s *workloadService) completionRate(ctx context.Context, userID string, now time.Time) (float64, error) {
	recent, err := s.sessions.ListRange(ctx, userID, now.Add(-completionRateWindow), now)
	if err != nil {
		return 0, err
	}
	if len(recent) == 0 {
		return defaultCompletionRate, nil
	}
	completed := 0
	for _, sess := range recent {
		if sess.Status == domain.SessionCompleted {
			completed++
		}
	}
	rate := float64(completed) / float64(len(recent))
	return min(max(rate, minCompletionRate), maxCompletionRate), nil
}

func capacityWarnings(taskHours, realistic float64) []contract.Warning {
	if realistic <= 0 {
		return nil
	}
	var severity contract.WarningSeverity
	switch {
	case taskHours > realistic*hardCapacityFactor:
		severity = contract.SeverityHard
	case taskHours > realistic*softCapacityFactor:
		severity = contract.SeveritySoft
	default:
		return nil
	}
	return []contract.Warning{{
		Type:     contract.WarnCapacityExceeded,
		Severity: severity,
		Title:    "Workload exceeds realistic capacity",
		Message: fmt.Sprintf("Your tasks need %.1f hours but your realistic weekly capacity is %.1f.",
			taskHours, realistic),
		Suggestions: []string{
			"Drop or defer the least important tasks",
			"Raise your weekly study goal if you can sustain it",
		},
	}}
}

func deadlineRiskWarnings(open []*scheduler.WeightedTask, availableHours float64, today timekit.LocalDate, loc *time.Location) []contract.Warning {
	var risks []contract.DeadlineRisk
	for _, t := range open {
		if t.Task.Deadline == nil {
			continue
		}
		daysUntil := today.DaysUntil(timekit.LocalDateOf(*t.Task.Deadline, loc))
		if daysUntil < 0 {
			continue // overdue tasks are the rescheduler's problem
		}
		needed := float64(t.RemainingMinutes) / 60
		availableBefore := availableHours / 7 * float64(min(daysUntil, 7))
		if needed <= availableBefore {
			continue
		}
		risks = append(risks, contract.DeadlineRisk{
			TaskID:         t.Task.ID,
			TaskTitle:      t.Task.Title,
			HoursNeeded:    needed,
			HoursAvailable: availableBefore,
			HoursShort:     needed - availableBefore,
			DaysUntil:      daysUntil,
		})
	}
	if len(risks) == 0 {
		return nil
	}
	severe := false
	for _, r := range risks {
		if r.HoursShort > 2 {
			severe = true
			break
		}
	}
	if !severe {
		return nil
	}
	return []contract.Warning{{
		Type:     contract.WarnDeadlineRisk,
		Severity: contract.SeverityHard,
		Title:    "Deadlines at risk",
		Message:  fmt.Sprintf("%d task(s) cannot be finished before their deadline with the time available.", len(risks)),
		Suggestions: []string{
			"Move the deadline or shrink the scope",
			"Prioritize these tasks in the next few days",
		},
		Details: map[string]any{"at_risk": risks},
	}}
}

func deadlineClusterWarnings(open []*scheduler.WeightedTask, today timekit.LocalDate, loc *time.Location) []contract.Warning {
	byDay := make(map[timekit.LocalDate][]*scheduler.WeightedTask)
	for _, t := range open {
		if t.Task.Deadline == nil {
			continue
		}
		day := timekit.LocalDateOf(*t.Task.Deadline, loc)
		if until := today.DaysUntil(day); until < 0 || until > 7 {
			continue
		}
		byDay[day] = append(byDay[day], t)
	}

	var clusters []contract.DeadlineCluster
	for day, tasks := range byDay {
		if len(tasks) < clusterMinTasks {
			continue
		}
		cluster := contract.DeadlineCluster{
			Date:       day,
			DateString: day.String(),
			TaskCount:  len(tasks),
		}
		for _, t := range tasks {
			cluster.TotalHours += float64(t.RemainingMinutes) / 60
			cluster.TaskTitles = append(cluster.TaskTitles, t.Task.Title)
		}
		clusters = append(clusters, cluster)
	}
	if len(clusters) == 0 {
		return nil
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Date.Before(clusters[j].Date) })
	return []contract.Warning{{
		Type:     contract.WarnDeadlineClustering,
		Severity: contract.SeveritySoft,
		Title:    "Deadlines pile up",
		Message:  fmt.Sprintf("%d day(s) this week have three or more deadlines.", len(clusters)),
		Suggestions: []string{
			"Start the clustered tasks earlier in the week",
		},
		Details: map[string]any{"clusters": clusters},
	}}
}

func examPrepWarnings(open []*scheduler.WeightedTask, subjects []*domain.Subject, today timekit.LocalDate) []contract.Warning {
	tasksBySubject := make(map[string]int)
	for _, t := range open {
		if t.Task.SubjectID != nil {
			tasksBySubject[*t.Task.SubjectID]++
		}
	}

	var missing []string
	for _, subj := range subjects {
		if subj.ExamDate == nil {
			continue
		}
		until := today.DaysUntil(*subj.ExamDate)
		if until < examPrepWindowMin || until > examPrepWindowMax {
			continue
		}
		if tasksBySubject[subj.ID] == 0 {
			missing = append(missing, subj.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []contract.Warning{{
		Type:     contract.WarnExamPrepMissing,
		Severity: contract.SeverityHard,
		Title:    "Exam coming up with no prep tasks",
		Message:  fmt.Sprintf("%d subject(s) have an exam in two to four weeks and no open tasks.", len(missing)),
		Suggestions: []string{
			"Create revision tasks for these subjects now",
		},
		Details: map[string]any{"subjects": missing},
	}}
}
