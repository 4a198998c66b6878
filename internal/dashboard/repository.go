package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Summary holds the workspace-wide aggregate counts every member may see.
type Summary struct {
	Projects       int `json:"projects"`
	ActiveSprints  int `json:"active_sprints"`
	OpenTasks      int `json:"open_tasks"`
	DoneTasks      int `json:"done_tasks"`
	Members        int `json:"members"`
	LoggedMinutes  int `json:"logged_minutes"`
	PendingMinutes int `json:"pending_minutes"`
}

// MemberLoad is the per-member workload breakdown behind the full dashboard.
type MemberLoad struct {
	UserID        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AssignedTasks int       `json:"assigned_tasks"`
	OpenTasks     int       `json:"open_tasks"`
	LoggedMinutes int       `json:"logged_minutes"`
}

// Repository runs the dashboard aggregate queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a dashboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const summaryQuery = `SELECT
	(SELECT COUNT(*) FROM projects WHERE workspace_id = $1),
	(SELECT COUNT(*) FROM sprints WHERE workspace_id = $1 AND status = 'active'),
	(SELECT COUNT(*) FROM tasks WHERE workspace_id = $1 AND status <> 'done'),
	(SELECT COUNT(*) FROM tasks WHERE workspace_id = $1 AND status = 'done'),
	(SELECT COUNT(*) FROM memberships WHERE workspace_id = $1),
	(SELECT COALESCE(SUM(minutes), 0) FROM time_entries WHERE workspace_id = $1),
	(SELECT COALESCE(SUM(minutes), 0) FROM time_entries WHERE workspace_id = $1 AND approved = FALSE)`

const memberLoadsQuery = `SELECT u.id, u.full_name, u.email, m.role,
		(SELECT COUNT(*) FROM tasks t WHERE t.workspace_id = m.workspace_id AND t.assignee_id = u.id),
		(SELECT COUNT(*) FROM tasks t WHERE t.workspace_id = m.workspace_id AND t.assignee_id = u.id AND t.status <> 'done'),
		(SELECT COALESCE(SUM(te.minutes), 0) FROM time_entries te WHERE te.workspace_id = m.workspace_id AND te.user_id = u.id)
	FROM memberships m
	JOIN users u ON u.id = m.user_id
	WHERE m.workspace_id = $1
	ORDER BY 6 DESC, u.full_name ASC`

// Summarize computes the workspace-wide counters in a single round trip.
func (r *Repository) Summarize(ctx context.Context, workspaceID uuid.UUID) (*Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, summaryQuery, workspaceID).Scan(
		&s.Projects, &s.ActiveSprints, &s.OpenTasks, &s.DoneTasks,
		&s.Members, &s.LoggedMinutes, &s.PendingMinutes)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MemberLoads computes the per-member workload rows, highest open load first.
func (r *Repository) MemberLoads(ctx context.Context, workspaceID uuid.UUID) ([]*MemberLoad, error) {
	rows, err := r.pool.Query(ctx, memberLoadsQuery, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*MemberLoad
	for rows.Next() {
		var ml MemberLoad
		if err := rows.Scan(&ml.UserID, &ml.FullName, &ml.Email, &ml.Role,
			&ml.AssignedTasks, &ml.OpenTasks, &ml.LoggedMinutes); err != nil {
			return nil, err
		}
		list = append(list, &ml)
	}
	return list, rows.Err()
}
