package workspaces

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teamforge/backend/internal/memberships"
	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
	"github.com/teamforge/backend/pkg/response"
	"github.com/teamforge/backend/pkg/utils"
)

// Handler handles workspace HTTP endpoints.
type Handler struct {
	repo       *Repository
	members    *memberships.Repository
	membership *memberships.Service
}

// NewHandler creates a workspaces handler.
func NewHandler(repo *Repository, members *memberships.Repository, membership *memberships.Service) *Handler {
	return &Handler{repo: repo, members: members, membership: membership}
}

// WorkspaceWithRole pairs a workspace with the caller's role in it.
type WorkspaceWithRole struct {
	Workspace *models.Workspace `json:"workspace"`
	Role      rbac.Role         `json:"role"`
}

// JoinRequest is the body for POST /join.
type JoinRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

// UpdateRequest is the body for PATCH /workspaces/:id.
type UpdateRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListMine handles GET /workspaces. Returns every workspace the caller is a
// member of, with their role.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	mine, err := h.members.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load memberships")
		return
	}
	ids := make([]uuid.UUID, 0, len(mine))
	roleByWorkspace := make(map[uuid.UUID]rbac.Role, len(mine))
	for _, m := range mine {
		ids = append(ids, m.WorkspaceID)
		roleByWorkspace[m.WorkspaceID] = m.Role
	}
	list, err := h.repo.ListByIDs(c.Request.Context(), ids)
	if err != nil {
		response.Internal(c, "failed to load workspaces")
		return
	}
	out := make([]WorkspaceWithRole, 0, len(list))
	for _, w := range list {
		out = append(out, WorkspaceWithRole{Workspace: w, Role: roleByWorkspace[w.ID]})
	}
	response.OK(c, out)
}

// Join handles POST /join. Possession of a valid invite code
// admits the caller as an employee.
func (h *Handler) Join(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invite_code required")
		return
	}
	w, err := h.repo.GetByInviteCode(c.Request.Context(), strings.TrimSpace(req.InviteCode))
	if err != nil {
		response.Internal(c, "failed to look up invite code")
		return
	}
	if w == nil {
		response.NotFound(c, "invalid invite code")
		return
	}
	m, svcErr := h.membership.Join(c.Request.Context(), w.ID, userID)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	response.Created(c, gin.H{"workspace": w, "membership": m})
}

// Get handles GET /workspaces/:id. Any member may see the workspace, but the
// invite code is only exposed to roles that can invite.
func (h *Handler) Get(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	w, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID)
	if err != nil {
		response.Internal(c, "failed to load workspace")
		return
	}
	if w == nil {
		response.NotFound(c, "workspace not found")
		return
	}
	if !rbac.HasPermission(m.Role, rbac.CapMemberInvite) {
		w.InviteCode = ""
	}
	response.OK(c, w)
}

// Update handles PATCH /workspaces/:id (workspace:edit capability).
func (h *Handler) Update(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 1 || len(name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	w, err := h.repo.UpdateName(c.Request.Context(), m.WorkspaceID, name)
	if err != nil {
		response.Internal(c, "failed to update workspace")
		return
	}
	if w == nil {
		response.NotFound(c, "workspace not found")
		return
	}
	response.OK(c, w)
}

// RotateInviteCode handles POST /workspaces/:id/invite-code/rotate
// (settings:manage capability). Invalidates the previous code.
func (h *Handler) RotateInviteCode(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	code, err := utils.RandomInviteCode()
	if err != nil {
		response.Internal(c, "failed to generate invite code")
		return
	}
	w, err := h.repo.RotateInviteCode(c.Request.Context(), m.WorkspaceID, code)
	if err != nil {
		response.Internal(c, "failed to rotate invite code")
		return
	}
	if w == nil {
		response.NotFound(c, "workspace not found")
		return
	}
	response.OK(c, w)
}
