package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
)

// Repository handles company persistence and the atomic provisioning unit.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a companies repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const companyColumns = `id, name, description, admin_user_id, admin_email, status,
	delete_requested, delete_requested_at, COALESCE(delete_request_reason, ''), created_at, updated_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var co models.Company
	err := row.Scan(&co.ID, &co.Name, &co.Description, &co.AdminUserID, &co.AdminEmail, &co.Status,
		&co.DeleteRequested, &co.DeleteRequestedAt, &co.DeleteRequestReason, &co.CreatedAt, &co.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &co, nil
}

// GetByID returns a company by ID, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	const q = `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	co, err := scanCompany(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return co, nil
}

// List returns all companies, newest first.
func (r *Repository) List(ctx context.Context) ([]*models.Company, error) {
	const q = `SELECT ` + companyColumns + ` FROM companies ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Company
	for rows.Next() {
		co, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, co)
	}
	return list, rows.Err()
}

// UpdateProfile updates a company's name and description.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, name, description string) (*models.Company, error) {
	const q = `UPDATE companies SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + companyColumns
	co, err := scanCompany(r.pool.QueryRow(ctx, q, id, name, description))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return co, nil
}

// RequestDelete flips an active company to pending_delete. The status
// predicate makes check and transition one atomic step, so a concurrent
// duplicate request loses and sees zero rows.
func (r *Repository) RequestDelete(ctx context.Context, id uuid.UUID, reason string) (*models.Company, error) {
	const q = `UPDATE companies
		SET status = 'pending_delete', delete_requested = TRUE,
			delete_requested_at = NOW(), delete_request_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING ` + companyColumns
	co, err := scanCompany(r.pool.QueryRow(ctx, q, id, reason))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return co, nil
}

// ApproveDelete soft-deletes a pending company. The request metadata is kept
// for audit; delete_requested is cleared because the request is resolved.
func (r *Repository) ApproveDelete(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	const q = `UPDATE companies
		SET status = 'deleted', delete_requested = FALSE, updated_at = NOW()
		WHERE id = $1 AND status = 'pending_delete'
		RETURNING ` + companyColumns
	co, err := scanCompany(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return co, nil
}

// RejectDelete returns a pending company to active and clears all deletion
// request metadata.
func (r *Repository) RejectDelete(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	const q = `UPDATE companies
		SET status = 'active', delete_requested = FALSE,
			delete_requested_at = NULL, delete_request_reason = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'pending_delete'
		RETURNING ` + companyColumns
	co, err := scanCompany(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return co, nil
}

// ProvisionResult is everything created by a company provisioning.
type ProvisionResult struct {
	Company    *models.Company   `json:"company"`
	Workspace  *models.Workspace `json:"workspace"`
	Admin      models.UserPublic `json:"admin"`
	adminFull  *models.User
}

// AdminUser returns the full seed admin record (with password hash) for
// post-provisioning steps such as recovery-mail delivery.
func (p *ProvisionResult) AdminUser() *models.User { return p.adminFull }

// Provision creates the admin user, the company, its seed workspace, and the
// seed ADMIN membership in a single transaction. Either all four records
// exist afterwards or none do.
func (r *Repository) Provision(ctx context.Context, companyName, description, adminName, adminEmail, passwordHash, workspaceName, inviteCode string) (*ProvisionResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var admin models.User
	err = tx.QueryRow(ctx, `INSERT INTO users (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, full_name, is_super_admin, created_at, updated_at`,
		adminEmail, passwordHash, adminName).
		Scan(&admin.ID, &admin.Email, &admin.Password, &admin.FullName, &admin.IsSuperAdmin, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}

	var co models.Company
	err = tx.QueryRow(ctx, `INSERT INTO companies (name, description, admin_user_id, admin_email)
		VALUES ($1, $2, $3, $4)
		RETURNING `+companyColumns,
		companyName, description, admin.ID, admin.Email).
		Scan(&co.ID, &co.Name, &co.Description, &co.AdminUserID, &co.AdminEmail, &co.Status,
			&co.DeleteRequested, &co.DeleteRequestedAt, &co.DeleteRequestReason, &co.CreatedAt, &co.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}

	var ws models.Workspace
	err = tx.QueryRow(ctx, `INSERT INTO workspaces (company_id, name, owner_id, invite_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, company_id, name, owner_id, invite_code, created_at, updated_at`,
		co.ID, workspaceName, admin.ID, inviteCode).
		Scan(&ws.ID, &ws.CompanyID, &ws.Name, &ws.OwnerID, &ws.InviteCode, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO memberships (workspace_id, user_id, role) VALUES ($1, $2, $3)`,
		ws.ID, admin.ID, string(rbac.RoleAdmin))
	if err != nil {
		return nil, fmt.Errorf("create seed membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &ProvisionResult{
		Company:   &co,
		Workspace: &ws,
		Admin:     admin.ToPublic(),
		adminFull: &admin,
	}, nil
}
