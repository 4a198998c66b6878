package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamforge/backend/internal/models"
)

// Repository handles task persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tasks repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, workspace_id, project_id, sprint_id, title, description, status, priority,
	assignee_id, created_by, due_date, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.WorkspaceID, &t.ProjectID, &t.SprintID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.AssigneeID, &t.CreatedBy, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a task.
func (r *Repository) Create(ctx context.Context, t *models.Task) error {
	const q = `INSERT INTO tasks (workspace_id, project_id, sprint_id, title, description, status, priority, assignee_id, created_by, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.WorkspaceID, t.ProjectID, t.SprintID, t.Title, t.Description,
		t.Status, t.Priority, t.AssigneeID, t.CreatedBy, t.DueDate).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a task scoped to a workspace, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND workspace_id = $2`
	t, err := scanTask(r.pool.QueryRow(ctx, q, id, workspaceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByProject returns a project's tasks.
func (r *Repository) ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]*models.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks
		WHERE workspace_id = $1 AND project_id = $2
		ORDER BY created_at DESC`
	return r.list(ctx, q, workspaceID, projectID)
}

// ListBySprint returns a sprint's tasks.
func (r *Repository) ListBySprint(ctx context.Context, workspaceID, sprintID uuid.UUID) ([]*models.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks
		WHERE workspace_id = $1 AND sprint_id = $2
		ORDER BY created_at DESC`
	return r.list(ctx, q, workspaceID, sprintID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update rewrites a task's mutable fields.
func (r *Repository) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	const q = `UPDATE tasks SET title = $3, description = $4, status = $5, priority = $6,
			assignee_id = $7, sprint_id = $8, due_date = $9, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING ` + taskColumns
	updated, err := scanTask(r.pool.QueryRow(ctx, q, t.ID, t.WorkspaceID, t.Title, t.Description,
		t.Status, t.Priority, t.AssigneeID, t.SprintID, t.DueDate))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
