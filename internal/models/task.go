package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskInReview   TaskStatus = "in_review"
	TaskDone       TaskStatus = "done"
)

// TaskPriority orders tasks within a column.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Task is a workspace-scoped unit of work. CreatedBy and AssigneeID drive the
// edit-own capability check: a non-manager may edit only tasks they created or
// are assigned to.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	WorkspaceID uuid.UUID    `json:"workspace_id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	SprintID    *uuid.UUID   `json:"sprint_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssigneeID  *uuid.UUID   `json:"assignee_id,omitempty"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// OwnedBy reports whether the given user created the task or is assigned to it.
func (t *Task) OwnedBy(userID uuid.UUID) bool {
	if t.CreatedBy == userID {
		return true
	}
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
