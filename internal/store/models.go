package store

// User is provisioned on first OAuth login and never mutated afterwards.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Project is owned by exactly one user. Only the owner may read or mutate
// it, and ownership of its tasks is resolved through it.
type Project struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"ownerId"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

// NewProject is the create payload. OwnerID is always overwritten with the
// caller's id before insert, whatever the client sent.
type NewProject struct {
	Title   string `json:"title"`
	OwnerID int64  `json:"ownerId"`
}

// PatchProject carries the only mutable project field.
type PatchProject struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Task has no owner column; authorization goes through its parent project.
type Task struct {
	ID         int64  `json:"id"`
	ProjectID  int64  `json:"projectId"`
	TaskListID *int64 `json:"taskListId"`
	Title      string `json:"title"`
	Completed  bool   `json:"completed"`
}

// NewTask is the create payload.
type NewTask struct {
	Title      string `json:"title"`
	ProjectID  int64  `json:"projectId"`
	TaskListID *int64 `json:"taskListId"`
}
