package timeentries

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/pkg/response"
)

// Handler handles time entry HTTP endpoints. Logging is open to every member
// for their own work; approval sits behind the time:approve capability on the
// route.
type Handler struct {
	repo *Repository
}

// NewHandler creates a time entries handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateRequest is the body for POST /workspaces/:id/tasks/:taskId/time.
type CreateRequest struct {
	Minutes  int        `json:"minutes" binding:"required"`
	Note     string     `json:"note"`
	WorkDate *time.Time `json:"work_date"`
}

// Create handles POST /workspaces/:id/tasks/:taskId/time. Entries are always
// logged against the caller, never on someone else's behalf.
func (h *Handler) Create(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "minutes required")
		return
	}
	if req.Minutes <= 0 {
		response.BadRequest(c, "minutes must be positive")
		return
	}
	workDate := time.Now().UTC()
	if req.WorkDate != nil {
		workDate = *req.WorkDate
	}
	e := &models.TimeEntry{
		WorkspaceID: m.WorkspaceID,
		TaskID:      taskID,
		UserID:      m.UserID,
		Minutes:     req.Minutes,
		Note:        req.Note,
		WorkDate:    workDate,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to log time")
		return
	}
	response.Created(c, e)
}

// ListByTask handles GET /workspaces/:id/tasks/:taskId/time.
func (h *Handler) ListByTask(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	list, err := h.repo.ListByTask(c.Request.Context(), m.WorkspaceID, taskID)
	if err != nil {
		response.Internal(c, "failed to load time entries")
		return
	}
	response.OK(c, list)
}

// Approve handles POST /workspaces/:id/time/:entryId/approve.
func (h *Handler) Approve(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		response.BadRequest(c, "invalid time entry id")
		return
	}
	e, err := h.repo.Approve(c.Request.Context(), m.WorkspaceID, entryID, m.UserID)
	if err != nil {
		response.Internal(c, "failed to approve time entry")
		return
	}
	if e == nil {
		// Either the entry doesn't exist or it is already approved.
		existing, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID, entryID)
		if err != nil {
			response.Internal(c, "failed to approve time entry")
			return
		}
		if existing == nil {
			response.NotFound(c, "time entry not found")
			return
		}
		response.Conflict(c, "time entry is already approved")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /workspaces/:id/time/:entryId. Members may delete
// their own unapproved entries.
func (h *Handler) Delete(c *gin.Context) {
	m := middleware.MembershipFrom(c)
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		response.BadRequest(c, "invalid time entry id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), m.WorkspaceID, entryID)
	if err != nil {
		response.Internal(c, "failed to load time entry")
		return
	}
	if e == nil {
		response.NotFound(c, "time entry not found")
		return
	}
	if e.UserID != m.UserID {
		response.Forbidden(c, "you may only delete your own time entries")
		return
	}
	if e.Approved {
		response.Conflict(c, "approved time entries cannot be deleted")
		return
	}
	if _, err := h.repo.Delete(c.Request.Context(), m.WorkspaceID, entryID); err != nil {
		response.Internal(c, "failed to delete time entry")
		return
	}
	response.NoContent(c)
}
