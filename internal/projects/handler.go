package projects

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/pkg/response"
)

// Handler handles project HTTP endpoints. Routes run behind RequireMember;
// create/edit/delete additionally behind the matching project capability.
type Handler struct {
	repo *Repository
}

// NewHandler creates a projects handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateRequest is the body for POST /workspaces/:id/projects.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateRequest is the body for PATCH /workspaces/:id/projects/:projectId.
type UpdateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"required"`
}

func parseStatus(s string) (models.ProjectStatus, bool) {
	switch models.ProjectStatus(s) {
	case models.ProjectPlanned, models.ProjectActive, models.ProjectCompleted, models.ProjectArchived:
		return models.ProjectStatus(s), true
	}
	return "", false
}

// Create handles POST /workspaces/:id/projects.
func (h *Handler) Create(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	p := &models.Project{
		WorkspaceID: m.WorkspaceID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      models.ProjectPlanned,
		CreatedBy:   m.UserID,
	}
	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to create project")
		return
	}
	response.Created(c, p)
}

// List handles GET /workspaces/:id/projects.
func (h *Handler) List(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	list, err := h.repo.ListByWorkspace(c.Request.Context(), m.WorkspaceID)
	if err != nil {
		response.Internal(c, "failed to load projects")
		return
	}
	response.OK(c, list)
}

// Get handles GET /workspaces/:id/projects/:projectId.
func (h *Handler) Get(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID, projectID)
	if err != nil {
		response.Internal(c, "failed to load project")
		return
	}
	if p == nil {
		response.NotFound(c, "project not found")
		return
	}
	response.OK(c, p)
}

// Update handles PATCH /workspaces/:id/projects/:projectId.
func (h *Handler) Update(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
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
	p, err := h.repo.Update(c.Request.Context(), m.WorkspaceID, projectID, strings.TrimSpace(req.Name), req.Description, status)
	if err != nil {
		response.Internal(c, "failed to update project")
		return
	}
	if p == nil {
		response.NotFound(c, "project not found")
		return
	}
	response.OK(c, p)
}

// Delete handles DELETE /workspaces/:id/projects/:projectId.
func (h *Handler) Delete(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	ok, err := h.repo.Delete(c.Request.Context(), m.WorkspaceID, projectID)
	if err != nil {
		response.Internal(c, "failed to delete project")
		return
	}
	if !ok {
		response.NotFound(c, "project not found")
		return
	}
	response.NoContent(c)
}
