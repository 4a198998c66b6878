package companies

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/pkg/response"
)

// RecoveryMailer hands a freshly provisioned admin their first-login link.
// Satisfied by auth.Handler.
type RecoveryMailer interface {
	SendRecoveryEmail(c *gin.Context, user *models.User, emailType string) error
}

// Handler handles company HTTP endpoints.
type Handler struct {
	service *Service
	mailer  RecoveryMailer
	logger  *zap.Logger
}

// NewHandler creates a companies handler.
func NewHandler(service *Service, mailer RecoveryMailer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, mailer: mailer, logger: logger}
}

// ProvisionRequest is the body for POST /admin/companies.
type ProvisionRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	AdminName     string `json:"admin_name" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	WorkspaceName string `json:"workspace_name"`
}

// UpdateRequest is the body for PATCH /companies/:companyId.
type UpdateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// DeleteRequestBody is the body for POST /companies/:companyId/delete-request.
type DeleteRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

// DeleteApprovalRequest is the body for POST /admin/companies/delete-approval.
type DeleteApprovalRequest struct {
	CompanyID uuid.UUID `json:"company_id" binding:"required"`
	Approved  *bool     `json:"approved" binding:"required"`
}

// DeleteApprovalResponse reports the outcome of a deletion resolution.
type DeleteApprovalResponse struct {
	Company *models.Company `json:"company"`
	Message string          `json:"message"`
}

// Provision handles POST /admin/companies (super admin only).
func (h *Handler) Provision(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name, admin_name and admin_email required")
		return
	}
	result, err := h.service.Provision(c.Request.Context(), ProvisionParams{
		CompanyName:   req.Name,
		Description:   req.Description,
		AdminName:     req.AdminName,
		AdminEmail:    req.AdminEmail,
		WorkspaceName: req.WorkspaceName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	// The admin's credential was random and discarded; the welcome mail with
	// its reset link is their only way in. A mail failure is operator-visible
	// but does not undo the provisioning.
	if err := h.mailer.SendRecoveryEmail(c, result.AdminUser(), "company_welcome"); err != nil {
		h.logger.Error("send welcome email",
			zap.Error(err),
			zap.String("company_id", result.Company.ID.String()),
			zap.String("admin_email", result.Company.AdminEmail))
	}
	response.Created(c, result)
}

// List handles GET /admin/companies (super admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /companies/:companyId.
func (h *Handler) Get(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		response.BadRequest(c, "invalid company id")
		return
	}
	co, svcErr := h.service.Get(c.Request.Context(), companyID)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if co.AdminUserID != userID && !c.GetBool(middleware.ContextSuperAdmin) {
		response.Forbidden(c, "not authorized for this company")
		return
	}
	response.OK(c, co)
}

// Update handles PATCH /companies/:companyId (company admin only).
func (h *Handler) Update(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		response.BadRequest(c, "invalid company id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	co, svcErr := h.service.UpdateProfile(c.Request.Context(), userID, companyID, req.Name, req.Description)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	response.OK(c, co)
}

// RequestDelete handles POST /companies/:companyId/delete-request.
func (h *Handler) RequestDelete(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		response.BadRequest(c, "invalid company id")
		return
	}
	var req DeleteRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "reason required")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	co, svcErr := h.service.RequestDelete(c.Request.Context(), userID, companyID, req.Reason)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	response.OK(c, co)
}

// ResolveDelete handles POST /admin/companies/delete-approval (super admin only).
func (h *Handler) ResolveDelete(c *gin.Context) {
	var req DeleteApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "company_id and approved required")
		return
	}
	co, msg, err := h.service.ResolveDelete(c.Request.Context(), req.CompanyID, *req.Approved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, DeleteApprovalResponse{Company: co, Message: msg})
}
