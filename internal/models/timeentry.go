package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry is a logged unit of work against a task. Anyone logs their own
// time; approval is a manager/admin capability.
type TimeEntry struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	TaskID      uuid.UUID `json:"task_id"`
	UserID      uuid.UUID `json:"user_id"`
	Minutes     int       `json:"minutes"`
	Note        string    `json:"note,omitempty"`
	WorkDate    time.Time `json:"work_date"`
	Approved    bool      `json:"approved"`
	ApprovedBy  *uuid.UUID `json:"approved_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
