package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamforge/backend/internal/models"
)

// Repository handles project persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a projects repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, workspace_id, name, description, status, created_by, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a project.
func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	const q = `INSERT INTO projects (workspace_id, name, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.WorkspaceID, p.Name, p.Description, p.Status, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a project scoped to a workspace, or nil when absent.
// Scoping by workspace in the query keeps cross-tenant ids unresolvable.
func (r *Repository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND workspace_id = $2`
	p, err := scanProject(r.pool.QueryRow(ctx, q, id, workspaceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByWorkspace returns the workspace's projects.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE workspace_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update edits a project's name, description and status.
func (r *Repository) Update(ctx context.Context, workspaceID, id uuid.UUID, name, description string, status models.ProjectStatus) (*models.Project, error) {
	const q = `UPDATE projects SET name = $3, description = $4, status = $5, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING ` + projectColumns
	p, err := scanProject(r.pool.QueryRow(ctx, q, id, workspaceID, name, description, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a project and cascades to its sprints and tasks.
func (r *Repository) Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
