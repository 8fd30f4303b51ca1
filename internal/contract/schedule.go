// Package contract defines the request/response shapes exchanged between the
// service layer and its callers (HTTP surface, CLI, tests).
package contract

import (
	"time"

	"github.com/smartstudy/companion/internal/domain"
)

// StudyBlock is one scheduled study interval inside a plan. Times are UTC.
type StudyBlock struct {
	StartTime   time.Time           `json:"start_time"`
	EndTime     time.Time           `json:"end_time"`
	SubjectID   *string             `json:"subject_id,omitempty"`
	TaskID      *string             `json:"task_id,omitempty"`
	Focus       string              `json:"focus"`
	EnergyLevel *domain.EnergyLevel `json:"energy_level,omitempty"`
	GeneratedBy domain.GeneratedBy  `json:"generated_by"`
}

// DurationMinutes returns the block length in whole minutes.
func (b *StudyBlock) DurationMinutes() int {
	return int(b.EndTime.Sub(b.StartTime).Minutes())
}

// DailyPlan is one day of a weekly plan. Day is the UTC instant of local
// midnight for that day.
type DailyPlan struct {
	Day      time.Time    `json:"day"`
	Sessions []StudyBlock `json:"sessions"`
}

type WeeklyPlan struct {
	UserID                  string      `json:"user_id"`
	GeneratedAt             time.Time   `json:"generated_at"`
	Days                    []DailyPlan `json:"days"`
	OptimizationExplanation *string     `json:"optimization_explanation,omitempty"`
}

// EphemeralSession is a micro-plan block. It is never persisted and
// deliberately carries no ID.
type EphemeralSession struct {
	StartTime   time.Time           `json:"start_time"`
	EndTime     time.Time           `json:"end_time"`
	SubjectID   *string             `json:"subject_id,omitempty"`
	TaskID      *string             `json:"task_id,omitempty"`
	Focus       string              `json:"focus"`
	EnergyLevel *domain.EnergyLevel `json:"energy_level,omitempty"`
	GeneratedBy domain.GeneratedBy  `json:"generated_by"`
}

// RescheduledTask describes one overdue task the generator pulled forward.
type RescheduledTask struct {
	TaskID           string              `json:"task_id"`
	Title            string              `json:"title"`
	DaysOverdue      int                 `json:"days_overdue"`
	OriginalDeadline time.Time           `json:"original_deadline"`
	NewDeadline      time.Time           `json:"new_deadline"`
	NewPriority      domain.TaskPriority `json:"new_priority"`
}

// NeedsAttentionTask describes a task too far overdue to auto-reschedule.
type NeedsAttentionTask struct {
	TaskID           string    `json:"task_id"`
	Title            string    `json:"title"`
	DaysOverdue      int       `json:"days_overdue"`
	OriginalDeadline time.Time `json:"original_deadline"`
}

// RescheduleReport summarizes the overdue-task pass that runs before
// planning.
type RescheduleReport struct {
	Rescheduled    []RescheduledTask    `json:"rescheduled"`
	NeedsAttention []NeedsAttentionTask `json:"needs_attention"`
	Summary        string               `json:"summary,omitempty"`
}

// SessionCreate is the payload for a manual session.
type SessionCreate struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	SubjectID *string   `json:"subject_id,omitempty"`
	TaskID    *string   `json:"task_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// SessionUpdate is a partial session edit; nil fields are left unchanged.
type SessionUpdate struct {
	Status    *domain.SessionStatus `json:"status,omitempty"`
	StartTime *time.Time            `json:"start_time,omitempty"`
	EndTime   *time.Time            `json:"end_time,omitempty"`
	IsPinned  *bool                 `json:"is_pinned,omitempty"`
	Notes     *string               `json:"notes,omitempty"`
}

// SharedDay is one local day of a read-only shared plan.
type SharedDay struct {
	Day      time.Time     `json:"day"`
	Sessions []SessionView `json:"sessions"`
}

// SharedPlan is the current week as seen through a plan-share token.
type SharedPlan struct {
	OwnerName string      `json:"owner_name"`
	Timezone  string      `json:"timezone"`
	WeekStart time.Time   `json:"week_start"`
	ExpiresAt time.Time   `json:"expires_at"`
	Days      []SharedDay `json:"days"`
}

// SessionView is the serialized form of a stored session, with the display
// focus resolved from its task, subject, or notes.
type SessionView struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	SubjectID   *string               `json:"subject_id,omitempty"`
	TaskID      *string               `json:"task_id,omitempty"`
	StartTime   time.Time             `json:"start_time"`
	EndTime     time.Time             `json:"end_time"`
	Status      domain.SessionStatus  `json:"status"`
	EnergyLevel *domain.EnergyLevel   `json:"energy_level,omitempty"`
	GeneratedBy domain.GeneratedBy    `json:"generated_by"`
	IsPinned    bool                  `json:"is_pinned"`
	Notes       string                `json:"notes,omitempty"`
	Focus       string                `json:"focus,omitempty"`
}
