package tasks

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Task struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	DueDate      time.Time  `json:"due_date"`
	CreationDate time.Time  `json:"creation_date"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}
