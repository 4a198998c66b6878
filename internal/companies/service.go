package companies

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/pkg/apperr"
	"github.com/teamforge/backend/pkg/utils"
)

// MinDeleteReasonLen is the minimum length of a deletion request reason.
const MinDeleteReasonLen = 10

// Store is the company persistence surface the lifecycle service drives.
// Satisfied by Repository; faked in tests.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, description string) (*models.Company, error)
	RequestDelete(ctx context.Context, id uuid.UUID, reason string) (*models.Company, error)
	ApproveDelete(ctx context.Context, id uuid.UUID) (*models.Company, error)
	RejectDelete(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Provision(ctx context.Context, companyName, description, adminName, adminEmail, passwordHash, workspaceName, inviteCode string) (*ProvisionResult, error)
}

// UserLookup answers "does a user with this email exist" for provisioning.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service drives the company lifecycle state machine
// (active ⇄ pending_delete → deleted) and atomic provisioning.
type Service struct {
	store  Store
	users  UserLookup
	logger *zap.Logger
}

// NewService creates the tenant lifecycle service.
func NewService(store Store, users UserLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, users: users, logger: logger}
}

// ProvisionParams are the inputs for creating a company tenant.
type ProvisionParams struct {
	CompanyName   string
	Description   string
	AdminName     string
	AdminEmail    string
	WorkspaceName string
}

// Provision creates a company with its seed workspace and admin membership.
// The admin account gets a random credential that is hashed and discarded;
// first access goes through the password recovery flow.
func (s *Service) Provision(ctx context.Context, p ProvisionParams) (*ProvisionResult, error) {
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.AdminName = strings.TrimSpace(p.AdminName)
	p.AdminEmail = strings.ToLower(strings.TrimSpace(p.AdminEmail))
	if p.CompanyName == "" || p.AdminName == "" || p.AdminEmail == "" {
		return nil, apperr.BadRequest("company name, admin name and admin email are required")
	}
	if p.WorkspaceName == "" {
		p.WorkspaceName = p.CompanyName
	}

	existing, err := s.users.GetByEmail(ctx, p.AdminEmail)
	if err != nil {
		return nil, apperr.Internal("check admin email", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("a user with this email already exists")
	}

	credential, err := utils.RandomToken(24)
	if err != nil {
		return nil, apperr.Internal("generate credential", err)
	}
	hash, err := utils.HashPassword(credential)
	if err != nil {
		return nil, apperr.Internal("hash credential", err)
	}
	inviteCode, err := utils.RandomInviteCode()
	if err != nil {
		return nil, apperr.Internal("generate invite code", err)
	}

	result, err := s.store.Provision(ctx, p.CompanyName, p.Description, p.AdminName, p.AdminEmail, hash, p.WorkspaceName, inviteCode)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			return nil, apperr.Conflict("a user with this email already exists")
		}
		return nil, apperr.Internal("provision company", err)
	}

	s.logger.Info("company provisioned",
		zap.String("company_id", result.Company.ID.String()),
		zap.String("workspace_id", result.Workspace.ID.String()),
		zap.String("admin_user_id", result.Admin.ID.String()))
	return result, nil
}

// UpdateProfile edits a company's name/description. Only the company's
// designated admin may do this, and not once the company is deleted.
func (s *Service) UpdateProfile(ctx context.Context, actorID, companyID uuid.UUID, name, description string) (*models.Company, error) {
	co, err := s.store.GetByID(ctx, companyID)
	if err != nil {
		return nil, apperr.Internal("load company", err)
	}
	if co == nil {
		return nil, apperr.NotFound("company not found")
	}
	if co.AdminUserID != actorID {
		return nil, apperr.Forbidden("only the company admin may edit the company")
	}
	if co.Status == models.CompanyDeleted {
		return nil, apperr.Conflict("company is deleted")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.BadRequest("company name is required")
	}
	updated, err := s.store.UpdateProfile(ctx, companyID, name, description)
	if err != nil {
		return nil, apperr.Internal("update company", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("company not found")
	}
	return updated, nil
}

// RequestDelete transitions active → pending_delete on behalf of the
// company's designated admin. A duplicate request while pending is a
// conflict, not a merge.
func (s *Service) RequestDelete(ctx context.Context, actorID, companyID uuid.UUID, reason string) (*models.Company, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < MinDeleteReasonLen {
		return nil, apperr.Newf(apperr.KindBadRequest, "deletion reason must be at least %d characters", MinDeleteReasonLen)
	}

	co, err := s.store.GetByID(ctx, companyID)
	if err != nil {
		return nil, apperr.Internal("load company", err)
	}
	if co == nil {
		return nil, apperr.NotFound("company not found")
	}
	if co.AdminUserID != actorID {
		return nil, apperr.Forbidden("only the company admin may request deletion")
	}

	// The status predicate in the update is the real gate; the checks above
	// only produce better error messages.
	updated, err := s.store.RequestDelete(ctx, companyID, reason)
	if err != nil {
		return nil, apperr.Internal("request deletion", err)
	}
	if updated == nil {
		switch co.Status {
		case models.CompanyPendingDelete:
			return nil, apperr.Conflict("deletion has already been requested")
		case models.CompanyDeleted:
			return nil, apperr.Conflict("company is already deleted")
		default:
			return nil, apperr.Conflict("company is not in a deletable state")
		}
	}

	s.logger.Info("company deletion requested",
		zap.String("company_id", companyID.String()),
		zap.String("requested_by", actorID.String()))
	return updated, nil
}

// ResolveDelete approves or rejects a pending deletion request. Approval is
// terminal (soft delete); rejection returns the company to active and clears
// the request metadata. Replaying a resolved request is a conflict.
func (s *Service) ResolveDelete(ctx context.Context, companyID uuid.UUID, approved bool) (*models.Company, string, error) {
	var (
		updated *models.Company
		err     error
	)
	if approved {
		updated, err = s.store.ApproveDelete(ctx, companyID)
	} else {
		updated, err = s.store.RejectDelete(ctx, companyID)
	}
	if err != nil {
		return nil, "", apperr.Internal("resolve deletion", err)
	}
	if updated == nil {
		co, err := s.store.GetByID(ctx, companyID)
		if err != nil {
			return nil, "", apperr.Internal("load company", err)
		}
		if co == nil {
			return nil, "", apperr.NotFound("company not found")
		}
		return nil, "", apperr.Conflict("company has no pending deletion request")
	}

	msg := "deletion request rejected, company restored to active"
	if approved {
		msg = "company deleted"
	}
	s.logger.Info("company deletion resolved",
		zap.String("company_id", companyID.String()),
		zap.Bool("approved", approved))
	return updated, msg, nil
}

// Get loads a company. Visible to its designated admin and super admins;
// the handler decides which caller class is asking.
func (s *Service) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	co, err := s.store.GetByID(ctx, companyID)
	if err != nil {
		return nil, apperr.Internal("load company", err)
	}
	if co == nil {
		return nil, apperr.NotFound("company not found")
	}
	return co, nil
}

// List returns all companies for platform administration.
func (s *Service) List(ctx context.Context) ([]*models.Company, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list companies", err)
	}
	return list, nil
}
