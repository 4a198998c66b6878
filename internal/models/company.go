package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyStatus is the lifecycle state of a company tenant.
type CompanyStatus string

const (
	CompanyActive        CompanyStatus = "active"
	CompanyPendingDelete CompanyStatus = "pending_delete"
	CompanyDeleted       CompanyStatus = "deleted"
)

// Company represents a platform tenant. Exactly one designated admin user is
// bound at creation. deleteRequested=true implies status=pending_delete.
type Company struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	AdminUserID         uuid.UUID     `json:"admin_user_id"`
	AdminEmail          string        `json:"admin_email"`
	Status              CompanyStatus `json:"status"`
	DeleteRequested     bool          `json:"delete_requested"`
	DeleteRequestedAt   *time.Time    `json:"delete_requested_at,omitempty"`
	DeleteRequestReason string        `json:"delete_request_reason,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}
