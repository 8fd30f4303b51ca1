package domain

import (
	"time"

	"github.com/smartstudy/companion/internal/timekit"
)

type Subject struct {
	ID         string
	UserID     string
	Name       string
	Priority   SubjectPriority
	Difficulty SubjectDifficulty
	Workload   int // relative weight, 1..5
	ExamDate   *timekit.LocalDate
	Color      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
