package domain

import (
	"time"

	"github.com/smartstudy/companion/internal/timekit"
)

// DailyEnergy is the user's self-reported energy for one local date.
// At most one row exists per (user, day).
type DailyEnergy struct {
	ID        string
	UserID    string
	Day       timekit.LocalDate
	Level     EnergyLevel
	CreatedAt time.Time
	UpdatedAt time.Time
}
