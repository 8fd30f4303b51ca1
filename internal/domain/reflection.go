package domain

import (
	"time"

	"github.com/smartstudy/companion/internal/timekit"
)

// DailyReflection is either user-authored (worked/challenging filled in) or
// an auto-generated end-of-day summary. Origin records which; rows written
// before the column existed are classified on read by the nullness of the
// user-authored fields.
type DailyReflection struct {
	ID          string
	UserID      string
	Day         timekit.LocalDate
	Origin      ReflectionOrigin
	Worked      *string
	Challenging *string
	Summary     *string
	Suggestion  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InferOrigin applies the legacy convention: both user-authored fields null
// means the row was auto-generated.
func InferOrigin(worked, challenging *string) ReflectionOrigin {
	if worked == nil && challenging == nil {
		return ReflectionAuto
	}
	return ReflectionUser
}
