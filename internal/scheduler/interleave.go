package scheduler

import (
	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
)

// InterleaveSubjects reorders a day's sessions for subject variety without
// ever displacing a critical task. Only adjacent non-critical sessions of the
// same subject are candidates, and the look-ahead for a swap partner stops at
// the first critical session so nothing is pulled above one.
func InterleaveSubjects(sessions []contract.StudyBlock, priorities map[string]domain.TaskPriority) []contract.StudyBlock {
	if len(sessions) < 2 || len(priorities) == 0 {
		return sessions
	}

	isCritical := func(s contract.StudyBlock) bool {
		if s.TaskID == nil {
			return false
		}
		return priorities[*s.TaskID] == domain.PriorityCritical
	}
	sameSubject := func(a, b contract.StudyBlock) bool {
		if (a.SubjectID == nil) != (b.SubjectID == nil) {
			return false
		}
		return a.SubjectID == nil || *a.SubjectID == *b.SubjectID
	}

	for i := 0; i < len(sessions)-1; i++ {
		if isCritical(sessions[i]) || isCritical(sessions[i+1]) {
			continue
		}
		if !sameSubject(sessions[i], sessions[i+1]) {
			continue
		}
		for j := i + 2; j < len(sessions); j++ {
			if isCritical(sessions[j]) {
				break
			}
			if !sameSubject(sessions[i], sessions[j]) {
				sessions[i+1], sessions[j] = sessions[j], sessions[i+1]
			}
			break
		}
	}
	return sessions
}
