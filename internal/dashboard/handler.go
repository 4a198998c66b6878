package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/pkg/response"
)

// Handler serves the workspace dashboard. The summary is visible to every
// member; the member workload breakdown requires the full-dashboard
// capability enforced on the route.
type Handler struct {
	repo *Repository
}

// NewHandler creates a dashboard handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Summary handles GET /workspaces/:id/dashboard.
func (h *Handler) Summary(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	s, err := h.repo.Summarize(c.Request.Context(), m.WorkspaceID)
	if err != nil {
		response.Internal(c, "failed to load dashboard")
		return
	}
	response.OK(c, s)
}

// MemberLoads handles GET /workspaces/:id/dashboard/members.
func (h *Handler) MemberLoads(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	list, err := h.repo.MemberLoads(c.Request.Context(), m.WorkspaceID)
	if err != nil {
		response.Internal(c, "failed to load member workloads")
		return
	}
	response.OK(c, list)
}
