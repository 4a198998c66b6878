package workspaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamforge/backend/internal/models"
)

// Repository handles workspace persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a workspaces repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const workspaceColumns = `id, company_id, name, owner_id, invite_code, created_at, updated_at`

func scanWorkspace(row pgx.Row) (*models.Workspace, error) {
	var w models.Workspace
	err := row.Scan(&w.ID, &w.CompanyID, &w.Name, &w.OwnerID, &w.InviteCode, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByID returns a workspace by ID, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	const q = `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`
	w, err := scanWorkspace(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetByInviteCode returns a workspace by invite code, or nil when no
// workspace carries it.
func (r *Repository) GetByInviteCode(ctx context.Context, code string) (*models.Workspace, error) {
	const q = `SELECT ` + workspaceColumns + ` FROM workspaces WHERE invite_code = $1`
	w, err := scanWorkspace(r.pool.QueryRow(ctx, q, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListByIDs returns the workspaces with the given ids.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Workspace, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = ANY($1) ORDER BY name`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// UpdateName renames a workspace.
func (r *Repository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.Workspace, error) {
	const q = `UPDATE workspaces SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + workspaceColumns
	w, err := scanWorkspace(r.pool.QueryRow(ctx, q, id, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// RotateInviteCode replaces a workspace's invite code, invalidating the old one.
func (r *Repository) RotateInviteCode(ctx context.Context, id uuid.UUID, code string) (*models.Workspace, error) {
	const q = `UPDATE workspaces SET invite_code = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + workspaceColumns
	w, err := scanWorkspace(r.pool.QueryRow(ctx, q, id, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
