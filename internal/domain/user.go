package domain

import "time"

type User struct {
	ID               string
	Email            string
	FullName         string
	Timezone         string // IANA name, e.g. "Asia/Singapore"
	WeeklyStudyHours int
	PreferredWindows []StudyWindow
	MaxSessionMin    int
	BreakMin         int

	APIToken           string
	CalendarToken      *string
	PlanShareToken     *string
	PlanShareExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
