package sprints

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/pkg/response"
)

// Handler handles sprint HTTP endpoints. All mutations run behind the
// matching sprint capability.
type Handler struct {
	repo *Repository
}

// NewHandler creates a sprints handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateRequest is the body for POST /workspaces/:id/projects/:projectId/sprints.
type CreateRequest struct {
	Name      string     `json:"name" binding:"required"`
	Goal      string     `json:"goal"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// UpdateRequest is the body for PATCH /workspaces/:id/sprints/:sprintId.
type UpdateRequest struct {
	Name      string     `json:"name" binding:"required"`
	Goal      string     `json:"goal"`
	Status    string     `json:"status" binding:"required"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func parseStatus(s string) (models.SprintStatus, bool) {
	switch models.SprintStatus(s) {
	case models.SprintPlanned, models.SprintActive, models.SprintCompleted:
		return models.SprintStatus(s), true
	}
	return "", false
}

// Create handles POST /workspaces/:id/projects/:projectId/sprints.
func (h *Handler) Create(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		response.BadRequest(c, "end_date must be after start_date")
		return
	}
	s := &models.Sprint{
		WorkspaceID: m.WorkspaceID,
		ProjectID:   projectID,
		Name:        strings.TrimSpace(req.Name),
		Goal:        req.Goal,
		Status:      models.SprintPlanned,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		response.Internal(c, "failed to create sprint")
		return
	}
	response.Created(c, s)
}

// ListByProject handles GET /workspaces/:id/projects/:projectId/sprints.
func (h *Handler) ListByProject(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	list, err := h.repo.ListByProject(c.Request.Context(), m.WorkspaceID, projectID)
	if err != nil {
		response.Internal(c, "failed to load sprints")
		return
	}
	response.OK(c, list)
}

// Update handles PATCH /workspaces/:id/sprints/:sprintId.
func (h *Handler) Update(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	sprintID, err := uuid.Parse(c.Param("sprintId"))
	if err != nil {
		response.BadRequest(c, "invalid sprint id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name and status required")
		return
	}
	status, ok := parseStatus(req.Status)
	if !ok {
		response.BadRequest(c, "invalid status")
		return
	}
	s, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID, sprintID)
	if err != nil {
		response.Internal(c, "failed to load sprint")
		return
	}
	if s == nil {
		response.NotFound(c, "sprint not found")
		return
	}
	s.Name = strings.TrimSpace(req.Name)
	s.Goal = req.Goal
	s.Status = status
	s.StartDate = req.StartDate
	s.EndDate = req.EndDate
	updated, err := h.repo.Update(c.Request.Context(), s)
	if err != nil {
		response.Internal(c, "failed to update sprint")
		return
	}
	if updated == nil {
		response.NotFound(c, "sprint not found")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /workspaces/:id/sprints/:sprintId.
func (h *Handler) Delete(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	sprintID, err := uuid.Parse(c.Param("sprintId"))
	if err != nil {
		response.BadRequest(c, "invalid sprint id")
		return
	}
	ok, err := h.repo.Delete(c.Request.Context(), m.WorkspaceID, sprintID)
	if err != nil {
		response.Internal(c, "failed to delete sprint")
		return
	}
	if !ok {
		response.NotFound(c, "sprint not found")
		return
	}
	response.NoContent(c)
}
