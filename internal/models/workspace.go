package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace belongs to exactly one company. InviteCode lets existing users
// join as employees without an explicit invitation.
type Workspace struct {
	ID         uuid.UUID `json:"id"`
	CompanyID  uuid.UUID `json:"company_id"`
	Name       string    `json:"name"`
	OwnerID    uuid.UUID `json:"owner_id"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
