package scheduler

import (
	"time"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
)

// MicroPlan fills a short ad-hoc study burst starting now. Blocks are handed
// out from the front of the weighted queue under the same energy cap and
// noise rules as the weekly planner; the result is ephemeral and never
// persisted. The queue keeps its weight order throughout, so a partially
// consumed task stays at the front until it is done or dropped.
func MicroPlan(queue []*WeightedTask, minutes int, energy domain.EnergyLevel, user *domain.User, reference time.Time) []contract.EphemeralSession {
	priorities := taskPriorityIndex(queue)

	sessionCap := time.Duration(EnergyCap(&energy, user.MaxSessionMin)) * time.Minute
	breakDur := time.Duration(user.BreakMin) * time.Minute
	remaining := time.Duration(minutes) * time.Minute
	pointer := reference

	var blocks []contract.StudyBlock
	for remaining > 5*time.Minute && len(queue) > 0 {
		current := queue[0]

		if current.RemainingMinutes <= noiseFloorMinutes {
			queue = queue[1:]
			continue
		}
		if remaining <= noiseFloorMinutes*time.Minute {
			break
		}

		length := sessionCap
		if d := time.Duration(current.RemainingMinutes) * time.Minute; d < length {
			length = d
		}
		if remaining < length {
			length = remaining
		}

		blocks = append(blocks, makeBlock(current, pointer, length, &energy, domain.GeneratedMicro))
		pointer = pointer.Add(length + breakDur)
		remaining -= length
		current.RemainingMinutes -= int(length.Minutes())
		if current.RemainingMinutes <= 0 {
			queue = queue[1:]
		}
	}

	blocks = InterleaveSubjects(blocks, priorities)

	sessions := make([]contract.EphemeralSession, 0, len(blocks))
	for _, b := range blocks {
		sessions = append(sessions, contract.EphemeralSession{
			StartTime:   b.StartTime,
			EndTime:     b.EndTime,
			SubjectID:   b.SubjectID,
			TaskID:      b.TaskID,
			Focus:       b.Focus,
			EnergyLevel: b.EnergyLevel,
			GeneratedBy: b.GeneratedBy,
		})
	}
	return sessions
}
