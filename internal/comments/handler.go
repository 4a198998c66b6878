package comments

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
	"github.com/teamforge/backend/pkg/response"
)

// Handler handles comment HTTP endpoints. Any member comments; authors edit
// their own comments, and admins may delete anyone's.
type Handler struct {
	repo *Repository
}

// NewHandler creates a comments handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// BodyRequest carries a comment body for create and update.
type BodyRequest struct {
	Body string `json:"body" binding:"required"`
}

// Create handles POST /workspaces/:id/tasks/:taskId/comments.
func (h *Handler) Create(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	var req BodyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		response.BadRequest(c, "body required")
		return
	}
	cm := &models.Comment{
		WorkspaceID: m.WorkspaceID,
		TaskID:      taskID,
		UserID:      m.UserID,
		Body:        strings.TrimSpace(req.Body),
	}
	if err := h.repo.Create(c.Request.Context(), cm); err != nil {
		response.Internal(c, "failed to create comment")
		return
	}
	response.Created(c, cm)
}

// ListByTask handles GET /workspaces/:id/tasks/:taskId/comments.
func (h *Handler) ListByTask(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	list, err := h.repo.ListByTask(c.Request.Context(), m.WorkspaceID, taskID)
	if err != nil {
		response.Internal(c, "failed to load comments")
		return
	}
	response.OK(c, list)
}

// Update handles PATCH /workspaces/:id/comments/:commentId. Only the author
// may edit.
func (h *Handler) Update(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}
	var req BodyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		response.BadRequest(c, "body required")
		return
	}
	cm, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID, commentID)
	if err != nil {
		response.Internal(c, "failed to load comment")
		return
	}
	if cm == nil {
		response.NotFound(c, "comment not found")
		return
	}
	if cm.UserID != m.UserID {
		response.Forbidden(c, "you may only edit your own comments")
		return
	}
	updated, err := h.repo.UpdateBody(c.Request.Context(), m.WorkspaceID, commentID, strings.TrimSpace(req.Body))
	if err != nil {
		response.Internal(c, "failed to update comment")
		return
	}
	if updated == nil {
		response.NotFound(c, "comment not found")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /workspaces/:id/comments/:commentId. Authors delete
// their own; admins delete anyone's.
func (h *Handler) Delete(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}
	cm, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID, commentID)
	if err != nil {
		response.Internal(c, "failed to load comment")
		return
	}
	if cm == nil {
		response.NotFound(c, "comment not found")
		return
	}
	if cm.UserID != m.UserID && m.Role != rbac.RoleAdmin {
		response.Forbidden(c, "you may only delete your own comments")
		return
	}
	if _, err := h.repo.Delete(c.Request.Context(), m.WorkspaceID, commentID); err != nil {
		response.Internal(c, "failed to delete comment")
		return
	}
	response.NoContent(c)
}
