package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teamforge/backend/internal/rbac"
)

// Membership binds one user to one workspace with exactly one role.
// At most one membership exists per (workspace, user) pair.
type Membership struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        rbac.Role `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member is a membership joined with user details for member listings.
type Member struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     rbac.Role `json:"role"`
	AddedAt  time.Time `json:"added_at"`
}
