package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/timekit"
)

func TestCalculateWeights_SkipsUnschedulable(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tasks := []*domain.Task{
		{ID: "done", Title: "Done", Priority: domain.PriorityHigh, EstimatedMin: 60, IsCompleted: true},
		{ID: "template", Title: "Template", Priority: domain.PriorityHigh, EstimatedMin: 60, IsRecurringTemplate: true},
		{ID: "spent", Title: "Spent", Priority: domain.PriorityHigh, EstimatedMin: 60, ActualMin: 60},
		{ID: "open", Title: "Open", Priority: domain.PriorityMedium, EstimatedMin: 60},
	}

	weighted := CalculateWeights(tasks, nil, now, time.UTC)
	require.Len(t, weighted, 1)
	assert.Equal(t, "open", weighted[0].Task.ID)
	assert.Equal(t, 60, weighted[0].RemainingMinutes)
}

func TestCalculateWeights_CriticalFloor(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	// Worst case for a critical task: easy subject, no deadline, tiny
	// estimate. 1.6 * 0.9 + 30/120 = 1.69, lifted to the floor.
	subjID := "s1"
	subjects := []*domain.Subject{{ID: subjID, Difficulty: domain.DifficultyEasy}}
	tasks := []*domain.Task{
		{ID: "crit", Title: "Crit", SubjectID: &subjID, Priority: domain.PriorityCritical, EstimatedMin: 30},
	}

	weighted := CalculateWeights(tasks, subjects, now, time.UTC)
	require.Len(t, weighted, 1)
	assert.Equal(t, 2.0, weighted[0].Weight)
}

func TestCalculateWeights_CriticalOutranksHighWithoutDeadline(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	// High with no deadline: 1.3 + 60/120 = 1.8. The critical floor of 2.0
	// keeps the critical task ahead of it.
	tasks := []*domain.Task{
		{ID: "high", Title: "High", Priority: domain.PriorityHigh, EstimatedMin: 60},
		{ID: "crit", Title: "Crit", Priority: domain.PriorityCritical, EstimatedMin: 30},
	}

	weighted := CalculateWeights(tasks, nil, now, time.UTC)
	require.Len(t, weighted, 2)
	assert.Equal(t, "crit", weighted[0].Task.ID)
	assert.Equal(t, "high", weighted[1].Task.ID)
}

func TestDeadlineModifier(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	assert.Equal(t, 1.75, deadlineModifier(&past, now))

	far := now.Add(14 * 24 * time.Hour)
	assert.Equal(t, 1.0, deadlineModifier(&far, now))

	atDeadline := now
	assert.Equal(t, 1.75, deadlineModifier(&atDeadline, now))

	halfWeek := now.Add(3*24*time.Hour + 12*time.Hour)
	assert.InDelta(t, 1.5, deadlineModifier(&halfWeek, now), 0.001)

	assert.Equal(t, 1.0, deadlineModifier(nil, now))
}

func TestSubjectModifier_ExamUrgency(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	examIn15 := timekit.LocalDate{Year: 2025, Month: time.June, Day: 17}
	subject := &domain.Subject{Difficulty: domain.DifficultyMedium, ExamDate: &examIn15}
	assert.InDelta(t, 1.25, subjectModifier(subject, now, time.UTC), 0.001)

	examPast := timekit.LocalDate{Year: 2025, Month: time.May, Day: 1}
	subject = &domain.Subject{Difficulty: domain.DifficultyHard, ExamDate: &examPast}
	assert.Equal(t, 1.25, subjectModifier(subject, now, time.UTC))

	examFar := timekit.LocalDate{Year: 2025, Month: time.December, Day: 1}
	subject = &domain.Subject{Difficulty: domain.DifficultyEasy, ExamDate: &examFar}
	assert.Equal(t, 0.9, subjectModifier(subject, now, time.UTC))
}

func TestEnergyCap(t *testing.T) {
	low := domain.EnergyLow
	high := domain.EnergyHigh

	assert.Equal(t, 45, EnergyCap(&low, 90))
	assert.Equal(t, 90, EnergyCap(&high, 90), "user max bounds the energy cap")
	assert.Equal(t, 90, EnergyCap(nil, 120), "missing report counts as medium")
}
