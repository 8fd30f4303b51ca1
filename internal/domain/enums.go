package domain

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// Escalate returns the next priority step up, capped at critical.
func (p TaskPriority) Escalate() TaskPriority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	case PriorityHigh:
		return PriorityCritical
	}
	return p
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskOnHold     TaskStatus = "on_hold"
	TaskCompleted  TaskStatus = "completed"
)

type SubjectPriority string

const (
	SubjectLow    SubjectPriority = "low"
	SubjectMedium SubjectPriority = "medium"
	SubjectHigh   SubjectPriority = "high"
)

type SubjectDifficulty string

const (
	DifficultyEasy   SubjectDifficulty = "easy"
	DifficultyMedium SubjectDifficulty = "medium"
	DifficultyHard   SubjectDifficulty = "hard"
)

type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

type SessionStatus string

const (
	SessionPlanned    SessionStatus = "planned"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionPartial    SessionStatus = "partial"
	SessionSkipped    SessionStatus = "skipped"
)

type GeneratedBy string

const (
	GeneratedWeekly GeneratedBy = "weekly"
	GeneratedMicro  GeneratedBy = "micro"
	GeneratedManual GeneratedBy = "manual"
)

type ConstraintType string

const (
	ConstraintClass   ConstraintType = "class"
	ConstraintBusy    ConstraintType = "busy"
	ConstraintBlocked ConstraintType = "blocked"
	ConstraintNoStudy ConstraintType = "no_study"
)

type ReflectionOrigin string

const (
	ReflectionUser ReflectionOrigin = "user"
	ReflectionAuto ReflectionOrigin = "auto"
)

// ValidTaskPriorities is the canonical set of accepted priority strings.
var ValidTaskPriorities = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}

// ValidSessionStatuses is the canonical set of accepted session status strings.
var ValidSessionStatuses = map[string]bool{
	"planned": true, "in_progress": true, "completed": true,
	"partial": true, "skipped": true,
}
