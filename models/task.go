package models

type Task struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskList is the full persisted state: tasks in creation order plus the
// counter used for the next id.
type TaskList struct {
	Tasks  []Task `json:"tasks"`
	NextID int    `json:"nextIdNumber"`
}
