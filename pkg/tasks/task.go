package tasks

// Task is one item of the remote task list.
type Task struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type descriptionBody struct {
	Description string `json:"description"`
}
