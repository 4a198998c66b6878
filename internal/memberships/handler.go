package memberships

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
	"github.com/teamforge/backend/pkg/response"
)

// UserLookup resolves invited users by email. Satisfied by auth.Repository.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler handles workspace membership HTTP endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	users   UserLookup
}

// NewHandler creates a memberships handler.
func NewHandler(service *Service, repo *Repository, users UserLookup) *Handler {
	return &Handler{service: service, repo: repo, users: users}
}

// InviteRequest is the body for POST /workspaces/:id/members.
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// RoleChangeRequest is the body for PATCH /workspaces/:id/members/:memberId/role.
type RoleChangeRequest struct {
	Role string `json:"role" binding:"required"`
}

// List handles GET /workspaces/:id/members. Any member may see the roster.
func (h *Handler) List(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	members, err := h.repo.ListMembers(c.Request.Context(), m.WorkspaceID)
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}

// Invite handles POST /workspaces/:id/members. The invitee must already have
// an account; provisioning identities is the platform's job, not a tenant's.
func (h *Handler) Invite(c *gin.Context) {
	actor := middleware.MembershipFrom(c)
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and role required")
		return
	}
	role, ok := rbac.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !ok {
		response.BadRequest(c, "invalid role")
		return
	}
	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		response.Internal(c, "failed to look up user")
		return
	}
	if user == nil {
		response.NotFound(c, "no user with this email")
		return
	}
	m, svcErr := h.service.Add(c.Request.Context(), actor, actor.WorkspaceID, user.ID, role)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	response.Created(c, m)
}

// ChangeRole handles PATCH /workspaces/:id/members/:memberId/role.
func (h *Handler) ChangeRole(c *gin.Context) {
	actor := middleware.MembershipFrom(c)
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}
	var req RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "role required")
		return
	}
	role, ok := rbac.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !ok {
		response.BadRequest(c, "invalid role")
		return
	}
	m, svcErr := h.service.ChangeRole(c.Request.Context(), actor, memberID, role)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	response.OK(c, m)
}

// Remove handles DELETE /workspaces/:id/members/:memberId. Members may leave
// on their own; removing anyone else is admin-only (enforced by the service,
// which also protects the last member and last admin).
func (h *Handler) Remove(c *gin.Context) {
	actor := middleware.MembershipFrom(c)
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}
	if svcErr := h.service.Remove(c.Request.Context(), actor, memberID); svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	response.NoContent(c)
}
