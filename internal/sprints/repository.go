package sprints

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamforge/backend/internal/models"
)

// Repository handles sprint persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a sprints repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sprintColumns = `id, workspace_id, project_id, name, goal, status, start_date, end_date, created_at, updated_at`

func scanSprint(row pgx.Row) (*models.Sprint, error) {
	var s models.Sprint
	err := row.Scan(&s.ID, &s.WorkspaceID, &s.ProjectID, &s.Name, &s.Goal, &s.Status,
		&s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a sprint.
func (r *Repository) Create(ctx context.Context, s *models.Sprint) error {
	const q = `INSERT INTO sprints (workspace_id, project_id, name, goal, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.WorkspaceID, s.ProjectID, s.Name, s.Goal, s.Status, s.StartDate, s.EndDate).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a sprint scoped to a workspace, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Sprint, error) {
	const q = `SELECT ` + sprintColumns + ` FROM sprints WHERE id = $1 AND workspace_id = $2`
	s, err := scanSprint(r.pool.QueryRow(ctx, q, id, workspaceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByProject returns a project's sprints.
func (r *Repository) ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]*models.Sprint, error) {
	const q = `SELECT ` + sprintColumns + ` FROM sprints
		WHERE workspace_id = $1 AND project_id = $2
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, workspaceID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Sprint
	for rows.Next() {
		s, err := scanSprint(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update rewrites a sprint's mutable fields.
func (r *Repository) Update(ctx context.Context, s *models.Sprint) (*models.Sprint, error) {
	const q = `UPDATE sprints SET name = $3, goal = $4, status = $5, start_date = $6, end_date = $7, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING ` + sprintColumns
	updated, err := scanSprint(r.pool.QueryRow(ctx, q, s.ID, s.WorkspaceID, s.Name, s.Goal, s.Status, s.StartDate, s.EndDate))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a sprint; its tasks drop back to the backlog via
// ON DELETE SET NULL.
func (r *Repository) Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sprints WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
