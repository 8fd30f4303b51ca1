// Package scheduler turns a user's tasks, subjects, constraints and energy
// reports into study plans. Everything here is purely functional over
// in-memory inputs; the service layer loads state and persists results.
package scheduler

import (
	"sort"
	"time"

	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/timekit"
)

var priorityWeight = map[domain.TaskPriority]float64{
	domain.PriorityLow:      0.8,
	domain.PriorityMedium:   1.0,
	domain.PriorityHigh:     1.3,
	domain.PriorityCritical: 1.6,
}

var difficultyWeight = map[domain.SubjectDifficulty]float64{
	domain.DifficultyEasy:   0.9,
	domain.DifficultyMedium: 1.0,
	domain.DifficultyHard:   1.25,
}

var energySessionCap = map[domain.EnergyLevel]int{
	domain.EnergyLow:    45,
	domain.EnergyMedium: 90,
	domain.EnergyHigh:   120,
}

// criticalWeightFloor keeps critical tasks above any high-priority task
// regardless of subject and deadline modifiers.
const criticalWeightFloor = 2.0

// WeightedTask is a schedulable task with its computed urgency weight and a
// mutable remaining-minutes counter that the allocator depletes as it hands
// out sessions across the week.
type WeightedTask struct {
	Weight           float64
	Task             *domain.Task
	Subject          *domain.Subject
	RemainingMinutes int
}

// CalculateWeights scores every schedulable task and returns them sorted by
// descending weight. Completed tasks, recurring templates and tasks with no
// remaining work are dropped.
func CalculateWeights(tasks []*domain.Task, subjects []*domain.Subject, reference time.Time, loc *time.Location) []*WeightedTask {
	subjectByID := make(map[string]*domain.Subject, len(subjects))
	for _, s := range subjects {
		subjectByID[s.ID] = s
	}

	var weighted []*WeightedTask
	for _, task := range tasks {
		if !task.Schedulable() {
			continue
		}

		var subject *domain.Subject
		if task.SubjectID != nil {
			subject = subjectByID[*task.SubjectID]
		}

		weight := priorityWeight[task.Priority]
		if subject != nil {
			weight *= subjectModifier(subject, reference, loc)
		}
		weight *= deadlineModifier(task.Deadline, reference)
		weight += float64(task.EstimatedMin) / 120

		if task.Priority == domain.PriorityCritical && weight < criticalWeightFloor {
			weight = criticalWeightFloor
		}

		weighted = append(weighted, &WeightedTask{
			Weight:           weight,
			Task:             task,
			Subject:          subject,
			RemainingMinutes: task.RemainingMinutes(),
		})
	}

	sort.SliceStable(weighted, func(i, j int) bool {
		return weighted[i].Weight > weighted[j].Weight
	})
	return weighted
}

// subjectModifier scales by subject difficulty and ramps up over the last 30
// days before an exam. Exams already past contribute nothing.
func subjectModifier(subject *domain.Subject, reference time.Time, loc *time.Location) float64 {
	modifier := difficultyWeight[subject.Difficulty]
	if subject.ExamDate == nil {
		return modifier
	}

	today := timekit.LocalDateOf(reference, loc)
	days := today.DaysUntil(*subject.ExamDate)
	if days >= 0 {
		urgency := float64(max(0, 30-days)) / 30
		modifier *= 1 + urgency*0.5
	}
	return modifier
}

// deadlineModifier ramps from 1.0 seven days out to 2.0 at the deadline, with
// a flat 1.75 once the deadline has passed. Tasks without a deadline get the
// lowest modifier.
func deadlineModifier(deadline *time.Time, reference time.Time) float64 {
	if deadline == nil {
		return 1.0
	}
	deltaDays := deadline.Sub(reference).Hours() / 24
	if deltaDays <= 0 {
		return 1.75
	}
	pressure := (7 - deltaDays) / 7
	if pressure < 0 {
		pressure = 0
	}
	return 1 + pressure
}

// EnergyCap returns the session length ceiling for the day's reported energy,
// never exceeding the user's own maximum. A missing report counts as medium.
func EnergyCap(level *domain.EnergyLevel, userMax int) int {
	effective := domain.EnergyMedium
	if level != nil {
		effective = *level
	}
	capMin, ok := energySessionCap[effective]
	if !ok {
		return userMax
	}
	return min(capMin, userMax)
}
