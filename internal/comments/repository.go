package comments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamforge/backend/internal/models"
)

// Repository handles comment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a comments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const commentColumns = `id, workspace_id, task_id, user_id, body, created_at, updated_at`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var cm models.Comment
	err := row.Scan(&cm.ID, &cm.WorkspaceID, &cm.TaskID, &cm.UserID, &cm.Body, &cm.CreatedAt, &cm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// Create inserts a comment.
func (r *Repository) Create(ctx context.Context, cm *models.Comment) error {
	const q = `INSERT INTO comments (workspace_id, task_id, user_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, cm.WorkspaceID, cm.TaskID, cm.UserID, cm.Body).
		Scan(&cm.ID, &cm.CreatedAt, &cm.UpdatedAt)
}

// GetByID returns a comment scoped to a workspace, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Comment, error) {
	const q = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1 AND workspace_id = $2`
	cm, err := scanComment(r.pool.QueryRow(ctx, q, id, workspaceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cm, nil
}

// ListByTask returns a task's comments oldest first.
func (r *Repository) ListByTask(ctx context.Context, workspaceID, taskID uuid.UUID) ([]*models.Comment, error) {
	const q = `SELECT ` + commentColumns + ` FROM comments
		WHERE workspace_id = $1 AND task_id = $2
		ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, workspaceID, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Comment
	for rows.Next() {
		cm, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cm)
	}
	return list, rows.Err()
}

// UpdateBody rewrites a comment's body.
func (r *Repository) UpdateBody(ctx context.Context, workspaceID, id uuid.UUID, body string) (*models.Comment, error) {
	const q = `UPDATE comments SET body = $3, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING ` + commentColumns
	cm, err := scanComment(r.pool.QueryRow(ctx, q, id, workspaceID, body))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cm, nil
}

// Delete removes a comment.
func (r *Repository) Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
