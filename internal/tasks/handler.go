package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
	"github.com/teamforge/backend/pkg/apperr"
	"github.com/teamforge/backend/pkg/response"
)

// Store is the task persistence surface the handler depends on. Implemented
// by Repository.
type Store interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Task, error)
	ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]*models.Task, error)
	ListBySprint(ctx context.Context, workspaceID, sprintID uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error)
}

// Handler handles task HTTP endpoints. Creation and viewing are open to all
// roles; editing goes through the edit-any / edit-own split against the
// resolved membership.
type Handler struct {
	repo Store
}

// NewHandler creates a tasks handler.
func NewHandler(repo Store) *Handler {
	return &Handler{repo: repo}
}

// CreateRequest is the body for POST /workspaces/:id/projects/:projectId/tasks.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	SprintID    *uuid.UUID `json:"sprint_id"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateRequest is the body for PATCH /workspaces/:id/tasks/:taskId.
type UpdateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"required"`
	Priority    string     `json:"priority" binding:"required"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	SprintID    *uuid.UUID `json:"sprint_id"`
	DueDate     *time.Time `json:"due_date"`
}

func parseStatus(s string) (models.TaskStatus, bool) {
	switch models.TaskStatus(s) {
	case models.TaskTodo, models.TaskInProgress, models.TaskInReview, models.TaskDone:
		return models.TaskStatus(s), true
	}
	return "", false
}

func parsePriority(s string) (models.TaskPriority, bool) {
	if s == "" {
		return models.PriorityMedium, true
	}
	switch models.TaskPriority(s) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return models.TaskPriority(s), true
	}
	return "", false
}

// Create handles POST /workspaces/:id/projects/:projectId/tasks.
func (h *Handler) Create(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title required")
		return
	}
	priority, ok := parsePriority(req.Priority)
	if !ok {
		response.BadRequest(c, "invalid priority")
		return
	}
	t := &models.Task{
		WorkspaceID: m.WorkspaceID,
		ProjectID:   projectID,
		SprintID:    req.SprintID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      models.TaskTodo,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		CreatedBy:   m.UserID,
		DueDate:     req.DueDate,
	}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		response.Internal(c, "failed to create task")
		return
	}
	response.Created(c, t)
}

// ListByProject handles GET /workspaces/:id/projects/:projectId/tasks.
func (h *Handler) ListByProject(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	list, err := h.repo.ListByProject(c.Request.Context(), m.WorkspaceID, projectID)
	if err != nil {
		response.Internal(c, "failed to load tasks")
		return
	}
	response.OK(c, list)
}

// ListBySprint handles GET /workspaces/:id/sprints/:sprintId/tasks.
func (h *Handler) ListBySprint(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	sprintID, err := uuid.Parse(c.Param("sprintId"))
	if err != nil {
		response.BadRequest(c, "invalid sprint id")
		return
	}
	list, err := h.repo.ListBySprint(c.Request.Context(), m.WorkspaceID, sprintID)
	if err != nil {
		response.Internal(c, "failed to load tasks")
		return
	}
	response.OK(c, list)
}

// Get handles GET /workspaces/:id/tasks/:taskId.
func (h *Handler) Get(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID, taskID)
	if err != nil {
		response.Internal(c, "failed to load task")
		return
	}
	if t == nil {
		response.NotFound(c, "task not found")
		return
	}
	response.OK(c, t)
}

// Update handles PATCH /workspaces/:id/tasks/:taskId. Managers and admins
// edit any task; employees only tasks they created or are assigned to.
func (h *Handler) Update(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title, status and priority required")
		return
	}
	status, ok := parseStatus(req.Status)
	if !ok {
		response.BadRequest(c, "invalid status")
		return
	}
	priority, ok := parsePriority(req.Priority)
	if !ok {
		response.BadRequest(c, "invalid priority")
		return
	}

	t, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID, taskID)
	if err != nil {
		response.Internal(c, "failed to load task")
		return
	}
	if t == nil {
		response.NotFound(c, "task not found")
		return
	}
	if !rbac.HasPermission(m.Role, rbac.CapTaskEditAny) && !t.OwnedBy(m.UserID) {
		response.Error(c, apperr.Forbidden("you may only edit your own tasks").WithDetails(map[string]any{
			"actual_role":    m.Role,
			"capability":     rbac.CapTaskEditAny,
			"required_roles": rbac.AllowedRoles(rbac.CapTaskEditAny),
		}))
		return
	}

	t.Title = strings.TrimSpace(req.Title)
	t.Description = req.Description
	t.Status = status
	t.Priority = priority
	t.AssigneeID = req.AssigneeID
	t.SprintID = req.SprintID
	t.DueDate = req.DueDate
	updated, err := h.repo.Update(c.Request.Context(), t)
	if err != nil {
		response.Internal(c, "failed to update task")
		return
	}
	if updated == nil {
		response.NotFound(c, "task not found")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /workspaces/:id/tasks/:taskId (task:delete capability).
func (h *Handler) Delete(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	ok, err := h.repo.Delete(c.Request.Context(), m.WorkspaceID, taskID)
	if err != nil {
		response.Internal(c, "failed to delete task")
		return
	}
	if !ok {
		response.NotFound(c, "task not found")
		return
	}
	response.NoContent(c)
}
