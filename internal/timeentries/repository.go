package timeentries

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamforge/backend/internal/models"
)

// Repository handles time entry persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a time entries repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `id, workspace_id, task_id, user_id, minutes, note, work_date, approved, approved_by, created_at, updated_at`

func scanEntry(row pgx.Row) (*models.TimeEntry, error) {
	var e models.TimeEntry
	err := row.Scan(&e.ID, &e.WorkspaceID, &e.TaskID, &e.UserID, &e.Minutes, &e.Note,
		&e.WorkDate, &e.Approved, &e.ApprovedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a time entry.
func (r *Repository) Create(ctx context.Context, e *models.TimeEntry) error {
	const q = `INSERT INTO time_entries (workspace_id, task_id, user_id, minutes, note, work_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.WorkspaceID, e.TaskID, e.UserID, e.Minutes, e.Note, e.WorkDate).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns a time entry scoped to a workspace, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.TimeEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM time_entries WHERE id = $1 AND workspace_id = $2`
	e, err := scanEntry(r.pool.QueryRow(ctx, q, id, workspaceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByTask returns a task's time entries.
func (r *Repository) ListByTask(ctx context.Context, workspaceID, taskID uuid.UUID) ([]*models.TimeEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM time_entries
		WHERE workspace_id = $1 AND task_id = $2
		ORDER BY work_date DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, q, workspaceID, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Approve marks an entry approved. The approved predicate makes replays
// visible as zero rows.
func (r *Repository) Approve(ctx context.Context, workspaceID, id, approverID uuid.UUID) (*models.TimeEntry, error) {
	const q = `UPDATE time_entries SET approved = TRUE, approved_by = $3, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2 AND approved = FALSE
		RETURNING ` + entryColumns
	e, err := scanEntry(r.pool.QueryRow(ctx, q, id, workspaceID, approverID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes a time entry.
func (r *Repository) Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM time_entries WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
