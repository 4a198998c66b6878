package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
)

// Directory is the canonical membership store. Find is the single lookup
// every authorization decision is built on. Create/UpdateRole/Delete are raw
// mutations; integrity rules live in Service, which lets the service be
// unit-tested against an in-memory directory.
type Directory interface {
	Find(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Membership, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
	Create(ctx context.Context, m *models.Membership) error
	UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository is the PostgreSQL-backed membership directory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a memberships repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const membershipColumns = `id, workspace_id, user_id, role, created_at, updated_at`

func scanMembership(row pgx.Row) (*models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Find returns the membership for (workspace, user), or nil when the user is
// not a member. Unknown ids are not an error.
func (r *Repository) Find(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships WHERE workspace_id = $1 AND user_id = $2`
	m, err := scanMembership(r.pool.QueryRow(ctx, q, workspaceID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetByID returns a membership by id, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`
	m, err := scanMembership(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByWorkspace returns the full roster of a workspace.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships WHERE workspace_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListByUser returns every membership the user holds across workspaces.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships WHERE user_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Create inserts a membership. Violating the (workspace_id, user_id) unique
// index surfaces as a database error; callers treat it as a conflict.
func (r *Repository) Create(ctx context.Context, m *models.Membership) error {
	const q = `INSERT INTO memberships (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.WorkspaceID, m.UserID, string(m.Role)).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// UpdateRole sets the role of a membership. Raw mutation, no integrity checks.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) error {
	const q = `UPDATE memberships SET role = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, string(role))
	return err
}

// Delete removes a membership. Raw mutation, no integrity checks.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	return err
}

// ListMembers returns memberships joined with user details for member listings.
func (r *Repository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error) {
	const q = `SELECT m.id, m.user_id, u.email, u.full_name, m.role, m.created_at
		FROM memberships m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.UserID, &m.Email, &m.FullName, &m.Role, &m.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
