package auth

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/pkg/queue"
	"github.com/teamforge/backend/pkg/response"
	"github.com/teamforge/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest is the body for POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the body for POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo            *Repository
	jwt             *JWTService
	resets          *ResetStore
	jobs            *queue.Queue
	frontendBaseURL string
	logger          *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, resets *ResetStore, jobs *queue.Queue, frontendBaseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, resets: resets, jobs: jobs, frontendBaseURL: frontendBaseURL, logger: logger}
}

// Register handles POST /auth/register. Accounts start with no memberships;
// workspace access comes from an invite or an invite code.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	existing, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Internal(c, "failed to check email")
		return
	}
	if existing != nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName)
	if err != nil {
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.IsSuperAdmin)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.IsSuperAdmin)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// ForgotPassword handles POST /auth/forgot-password. Always returns 200 so
// the endpoint cannot be used to probe which emails exist.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email required")
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user != nil {
		if err := h.SendRecoveryEmail(c, user, "password_reset"); err != nil {
			h.logger.Error("send recovery email", zap.Error(err), zap.String("user_id", user.ID.String()))
		}
	}
	response.OK(c, gin.H{"message": "if the email exists, a reset link has been sent"})
}

// SendRecoveryEmail issues a reset token and enqueues the recovery mail.
// Also used by company provisioning to hand the seed admin their first login.
func (h *Handler) SendRecoveryEmail(c *gin.Context, user *models.User, emailType string) error {
	token, err := h.resets.Issue(c.Request.Context(), user.ID)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", h.frontendBaseURL, token)
	subject := "Reset your password"
	body := fmt.Sprintf("Hello %s,\n\nUse the link below to set a new password:\n\n%s\n\nIf you did not request this, you can ignore this email.\n", user.FullName, link)
	if emailType == "company_welcome" {
		subject = "Your workspace is ready"
		body = fmt.Sprintf("Hello %s,\n\nAn account has been created for you. Set your password to get started:\n\n%s\n", user.FullName, link)
	}
	return h.jobs.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      emailType,
		RecipientEmail: user.Email,
		RecipientName:  user.FullName,
		Subject:        subject,
		BodyText:       body,
	})
}

// ResetPassword handles POST /auth/reset-password. Tokens are single-use.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token and password required")
		return
	}

	userID, err := h.resets.Consume(c.Request.Context(), req.Token)
	if err == ErrResetTokenInvalid {
		response.BadRequest(c, "invalid or expired reset token")
		return
	}
	if err != nil {
		response.Internal(c, "failed to validate token")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.repo.UpdatePassword(c.Request.Context(), userID, hash); err != nil {
		response.Internal(c, "failed to update password")
		return
	}
	h.logger.Info("password reset", zap.String("user_id", userID.String()))
	response.OK(c, gin.H{"message": "password updated"})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(ContextUserID).(uuid.UUID)
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}

// List handles GET /users (super admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}
