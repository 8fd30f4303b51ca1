package scheduler

import (
	"sort"
	"time"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/timekit"
)

// noiseFloorMinutes is the threshold below which a remainder is treated as
// noise: a task with this little work left is dropped from the queue, and a
// window with this little room left is skipped for the rest of the day.
const noiseFloorMinutes = 10

// PlanInput carries everything the weekly planner needs. Tasks must already
// be weighted and sorted; the planner depletes their RemainingMinutes as it
// allocates across the seven days.
type PlanInput struct {
	User        *domain.User
	Tasks       []*WeightedTask
	Constraints []*domain.ScheduleConstraint
	EnergyByDay map[timekit.LocalDate]domain.EnergyLevel
	Reference   time.Time
	Location    *time.Location
}

// BuildWeeklyPlan produces a seven-day plan starting on the local day that
// contains the reference instant. Sessions are never placed before the
// reference time, so regenerating mid-day only fills the remainder of today.
func BuildWeeklyPlan(in PlanInput) *contract.WeeklyPlan {
	startDate := timekit.LocalDateOf(in.Reference, in.Location)
	priorities := taskPriorityIndex(in.Tasks)

	queue := in.Tasks
	days := make([]contract.DailyPlan, 0, 7)
	for offset := 0; offset < 7; offset++ {
		dayDate := startDate.AddDays(offset)
		dayStart := dayDate.MidnightIn(in.Location)

		windows := windowsForDay(dayStart, in.User.PreferredWindows, in.Location)
		available := excludeConstraints(windows, constraintsForDay(in.Constraints, dayDate, in.Location))

		sortQueueForDay(queue, dayDate, in.Location)

		var energy *domain.EnergyLevel
		if level, ok := in.EnergyByDay[dayDate]; ok {
			energy = &level
		}

		sessions := allocateDay(available, &queue, energy, in.User, in.Reference)
		sessions = insertBreaks(sessions, in.User.BreakMin)
		sessions = InterleaveSubjects(sessions, priorities)

		days = append(days, contract.DailyPlan{Day: dayStart, Sessions: sessions})
	}

	return &contract.WeeklyPlan{
		UserID:      in.User.ID,
		GeneratedAt: in.Reference,
		Days:        days,
	}
}

// interval is a half-open UTC range.
type interval struct {
	start time.Time
	end   time.Time
}

// windowsForDay resolves the user's preferred windows onto one local day.
// An empty or unusable preference list falls back to the default window set.
func windowsForDay(dayStart time.Time, prefs []domain.StudyWindow, loc *time.Location) []interval {
	windows := prefs
	if len(windows) == 0 {
		windows = domain.DefaultWindows()
	}
	ranges := make([]interval, 0, len(windows))
	for _, w := range windows {
		start, end := w.Range()
		s, e := timekit.WindowToUTCRange(dayStart, start, end, loc)
		ranges = append(ranges, interval{start: s, end: e})
	}
	return ranges
}

// constraintsForDay filters the user's constraints down to those relevant on
// the given local date.
func constraintsForDay(constraints []*domain.ScheduleConstraint, day timekit.LocalDate, loc *time.Location) []*domain.ScheduleConstraint {
	var relevant []*domain.ScheduleConstraint
	for _, c := range constraints {
		if c.AppliesOn(day, loc) {
			relevant = append(relevant, c)
		}
	}
	return relevant
}

// excludeConstraints drops every window that overlaps a constraint. Windows
// are not split around constraints; a partially blocked window is unusable
// for the whole day.
func excludeConstraints(windows []interval, constraints []*domain.ScheduleConstraint) []interval {
	if len(constraints) == 0 {
		return windows
	}
	var free []interval
	for _, w := range windows {
		blocked := false
		for _, c := range constraints {
			if constraintOverlaps(w, c) {
				blocked = true
				break
			}
		}
		if !blocked {
			free = append(free, w)
		}
	}
	return free
}

func constraintOverlaps(w interval, c *domain.ScheduleConstraint) bool {
	if c.StartDatetime != nil && c.EndDatetime != nil {
		return w.start.Before(*c.EndDatetime) && c.StartDatetime.Before(w.end)
	}
	if c.StartTime != nil && c.EndTime != nil {
		// Project the wall-clock constraint onto the window's own day.
		cStart := time.Date(w.start.Year(), w.start.Month(), w.start.Day(),
			c.StartTime.Hour, c.StartTime.Minute, 0, 0, w.start.Location())
		cEnd := time.Date(w.start.Year(), w.start.Month(), w.start.Day(),
			c.EndTime.Hour, c.EndTime.Minute, 0, 0, w.start.Location())
		if !cEnd.After(cStart) {
			cEnd = cEnd.AddDate(0, 0, 1)
		}
		return w.start.Before(cEnd) && cStart.Before(w.end)
	}
	return false
}

// FreeMinutesOn reports how many study minutes survive on the given local
// day once constraints have knocked out the user's windows. The workload
// analyzer uses it to tell an empty day apart from a fully blocked one.
func FreeMinutesOn(day timekit.LocalDate, prefs []domain.StudyWindow, constraints []*domain.ScheduleConstraint, loc *time.Location) int {
	dayStart := day.MidnightIn(loc)
	available := excludeConstraints(windowsForDay(dayStart, prefs, loc), constraintsForDay(constraints, day, loc))
	total := 0
	for _, w := range available {
		total += int(w.end.Sub(w.start).Minutes())
	}
	return total
}

// sortQueueForDay reorders the queue so tasks whose deadline falls on or
// before the given local day come first. Within the urgent and normal groups
// the weight order is preserved; the order then holds for the whole day's
// allocation, there is no re-sort mid-day.
func sortQueueForDay(queue []*WeightedTask, day timekit.LocalDate, loc *time.Location) {
	urgent := func(wt *WeightedTask) int {
		if wt.Task.Deadline == nil {
			return 1
		}
		due := timekit.LocalDateOf(*wt.Task.Deadline, loc)
		if due.After(day) {
			return 1
		}
		return 0
	}
	sort.SliceStable(queue, func(i, j int) bool {
		ui, uj := urgent(queue[i]), urgent(queue[j])
		if ui != uj {
			return ui < uj
		}
		return queue[i].Weight > queue[j].Weight
	})
}

// allocateDay walks the day's free windows in order and hands out sessions
// from the front of the queue. The queue is shared across days so partially
// scheduled tasks carry their remainder forward.
func allocateDay(windows []interval, queue *[]*WeightedTask, energy *domain.EnergyLevel, user *domain.User, now time.Time) []contract.StudyBlock {
	var sessions []contract.StudyBlock
	sessionCap := time.Duration(EnergyCap(energy, user.MaxSessionMin)) * time.Minute
	breakDur := time.Duration(user.BreakMin) * time.Minute

	for _, w := range windows {
		pointer := w.start
		if now.After(pointer) {
			pointer = now
		}

		for pointer.Before(w.end) && len(*queue) > 0 {
			current := (*queue)[0]

			if current.RemainingMinutes <= noiseFloorMinutes {
				*queue = (*queue)[1:]
				continue
			}

			windowRemaining := w.end.Sub(pointer)
			if windowRemaining <= noiseFloorMinutes*time.Minute {
				break
			}

			length := sessionCap
			if d := time.Duration(current.RemainingMinutes) * time.Minute; d < length {
				length = d
			}
			if windowRemaining < length {
				length = windowRemaining
			}

			sessions = append(sessions, makeBlock(current, pointer, length, energy, domain.GeneratedWeekly))
			pointer = pointer.Add(length + breakDur)
			current.RemainingMinutes -= int(length.Minutes())
			if current.RemainingMinutes <= 0 {
				*queue = (*queue)[1:]
			}
		}
	}
	return sessions
}

func makeBlock(wt *WeightedTask, start time.Time, length time.Duration, energy *domain.EnergyLevel, origin domain.GeneratedBy) contract.StudyBlock {
	block := contract.StudyBlock{
		StartTime:   start,
		EndTime:     start.Add(length),
		TaskID:      &wt.Task.ID,
		Focus:       wt.Task.Title,
		EnergyLevel: energy,
		GeneratedBy: origin,
	}
	if wt.Subject != nil {
		block.SubjectID = &wt.Subject.ID
	}
	return block
}

// insertBreaks pushes each session forward until the gap to its predecessor
// is at least the user's break length. Shifts cascade through the rest of
// the day.
func insertBreaks(sessions []contract.StudyBlock, breakMin int) []contract.StudyBlock {
	required := time.Duration(breakMin) * time.Minute
	for i := 0; i+1 < len(sessions); i++ {
		gap := sessions[i+1].StartTime.Sub(sessions[i].EndTime)
		if gap < required {
			shift := required - gap
			sessions[i+1].StartTime = sessions[i+1].StartTime.Add(shift)
			sessions[i+1].EndTime = sessions[i+1].EndTime.Add(shift)
		}
	}
	return sessions
}

func taskPriorityIndex(tasks []*WeightedTask) map[string]domain.TaskPriority {
	index := make(map[string]domain.TaskPriority, len(tasks))
	for _, wt := range tasks {
		index[wt.Task.ID] = wt.Task.Priority
	}
	return index
}
