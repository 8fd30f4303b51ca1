package domain

// Subtask is an ordered checklist entry stored inline on a task.
type Subtask struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Completed    bool   `json:"completed"`
	EstimatedMin *int   `json:"estimated_minutes,omitempty"`
	Notes        string `json:"notes,omitempty"`
}
