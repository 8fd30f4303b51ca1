package contract

import "github.com/smartstudy/companion/internal/timekit"

type WarningSeverity string

const (
	SeverityHard WarningSeverity = "hard"
	SeveritySoft WarningSeverity = "soft"
)

type WarningType string

const (
	WarnCapacityExceeded      WarningType = "capacity_exceeded"
	WarnTimeInsufficient      WarningType = "time_insufficient"
	WarnGoalMismatch          WarningType = "goal_mismatch"
	WarnDeadlineRisk          WarningType = "deadline_risk"
	WarnDeadlineClustering    WarningType = "deadline_clustering"
	WarnExamPrepMissing       WarningType = "exam_prep_missing"
	WarnConstraintsImpact     WarningType = "constraints_impact"
	WarnDayOverload           WarningType = "day_overload"
	WarnUnscheduledTasks      WarningType = "unscheduled_tasks"
	WarnScheduleImbalance     WarningType = "schedule_imbalance"
	WarnConsecutiveHeavyDays  WarningType = "consecutive_heavy_days"
	WarnNoDeadlineBuffer      WarningType = "no_deadline_buffer"
	WarnConstraintsBlocking   WarningType = "constraints_blocking_all_time"
)

// Warning is one analyzer finding. Details carries the warning-type-specific
// payload (task lists, clusters, blocked days).
type Warning struct {
	Type        WarningType     `json:"type"`
	Severity    WarningSeverity `json:"severity"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Details     any             `json:"details,omitempty"`
}

// PreAnalysisMetrics are the aggregates behind the pre-generation warnings.
type PreAnalysisMetrics struct {
	TotalTaskHours    float64 `json:"total_task_hours"`
	AvailableHours    float64 `json:"available_hours_per_week"`
	RealisticCapacity float64 `json:"realistic_capacity"`
	CompletionRate    float64 `json:"completion_rate"`
	WeeklyGoalHours   int     `json:"weekly_goal"`
	HoursPerDay       float64 `json:"hours_per_day"`
}

type PreAnalysis struct {
	Warnings []Warning          `json:"warnings"`
	Metrics  PreAnalysisMetrics `json:"metrics"`
}

// PostAnalysisMetrics are the aggregates behind the post-generation warnings.
type PostAnalysisMetrics struct {
	TotalScheduledHours  float64            `json:"total_scheduled_hours"`
	UnscheduledHours     float64            `json:"unscheduled_hours"`
	UnscheduledTaskCount int                `json:"unscheduled_task_count"`
	DailyDistribution    map[string]float64 `json:"daily_distribution"`
	ImbalanceRatio       float64            `json:"imbalance_ratio"`
}

type PostAnalysis struct {
	Warnings []Warning           `json:"warnings"`
	Metrics  PostAnalysisMetrics `json:"metrics"`
}

// DeadlineRisk is the per-task detail behind WarnDeadlineRisk.
type DeadlineRisk struct {
	TaskID         string  `json:"task_id"`
	TaskTitle      string  `json:"task_title"`
	HoursNeeded    float64 `json:"hours_needed"`
	HoursAvailable float64 `json:"hours_available"`
	HoursShort     float64 `json:"hours_short"`
	DaysUntil      int     `json:"days_until_deadline"`
}

// DeadlineCluster groups tasks due on one day.
type DeadlineCluster struct {
	Date       timekit.LocalDate `json:"-"`
	DateString string            `json:"deadline_date"`
	TaskCount  int               `json:"task_count"`
	TotalHours float64           `json:"total_hours"`
	TaskTitles []string          `json:"tasks"`
}

// TrendPoint is one day of the productivity trend.
type TrendPoint struct {
	Day              timekit.LocalDate `json:"-"`
	DayString        string            `json:"day"`
	CompletedMinutes int               `json:"completed_minutes"`
	ScheduledMinutes int               `json:"scheduled_minutes"`
}

// AnalyticsOverview bundles the adherence aggregates exposed alongside the
// scheduler.
type AnalyticsOverview struct {
	AdherenceRate    float64           `json:"adherence_rate"`
	StreakDays       int               `json:"streak_days"`
	TimeDistribution map[string]int    `json:"time_distribution"` // subject name -> minutes
	Trend            []TrendPoint      `json:"trend"`
}
