package memberships

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
	"github.com/teamforge/backend/pkg/apperr"
)

// Service enforces membership integrity around role changes and removals:
// a workspace never loses its last member, and its admin count is never
// driven to zero. Checks and the committing mutation run under a
// per-workspace lock so concurrent demotions of two admins serialize and the
// second one sees the post-state of the first.
type Service struct {
	dir    Directory
	logger *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewService creates the membership integrity service.
func NewService(dir Directory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dir: dir, logger: logger, locks: make(map[uuid.UUID]*sync.Mutex)}
}

// workspaceLock returns the mutex guarding mutations of one workspace's roster.
func (s *Service) workspaceLock(workspaceID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[workspaceID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[workspaceID] = l
	}
	return l
}

func adminCount(roster []models.Membership, exclude uuid.UUID) int {
	n := 0
	for _, m := range roster {
		if m.ID != exclude && m.Role == rbac.RoleAdmin {
			n++
		}
	}
	return n
}

func isDuplicateKey(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique"))
}

// Add creates a membership for a user in a workspace. Granting ADMIN requires
// an ADMIN actor; a second membership for the same user is a conflict.
func (s *Service) Add(ctx context.Context, actor *models.Membership, workspaceID, userID uuid.UUID, role rbac.Role) (*models.Membership, error) {
	if !role.IsValid() {
		return nil, apperr.Newf(apperr.KindBadRequest, "invalid role %q", role)
	}
	if role == rbac.RoleAdmin && actor.Role != rbac.RoleAdmin {
		return nil, apperr.Forbidden("only an admin may grant the admin role").WithDetails(map[string]any{
			"actual_role":    actor.Role,
			"required_roles": []rbac.Role{rbac.RoleAdmin},
		})
	}

	lock := s.workspaceLock(workspaceID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.dir.Find(ctx, workspaceID, userID)
	if err != nil {
		return nil, apperr.Internal("lookup membership", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("user is already a member of this workspace")
	}

	m := &models.Membership{WorkspaceID: workspaceID, UserID: userID, Role: role}
	if err := s.dir.Create(ctx, m); err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.Conflict("user is already a member of this workspace")
		}
		return nil, apperr.Internal("create membership", err)
	}
	s.logger.Info("member added",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", role.String()))
	return m, nil
}

// Join creates an EMPLOYEE membership for a user entering via invite code.
// No actor check: possession of the code is the authorization.
func (s *Service) Join(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Membership, error) {
	lock := s.workspaceLock(workspaceID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.dir.Find(ctx, workspaceID, userID)
	if err != nil {
		return nil, apperr.Internal("lookup membership", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("you are already a member of this workspace")
	}
	m := &models.Membership{WorkspaceID: workspaceID, UserID: userID, Role: rbac.RoleEmployee}
	if err := s.dir.Create(ctx, m); err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.Conflict("you are already a member of this workspace")
		}
		return nil, apperr.Internal("create membership", err)
	}
	return m, nil
}

// ChangeRole updates a membership's role. Rejected when the actor is not an
// admin, or when the change would leave the workspace with zero admins. The
// invariant is evaluated on the post-mutation roster, under the workspace
// lock, so two admins demoting each other cannot both slip through.
func (s *Service) ChangeRole(ctx context.Context, actor *models.Membership, membershipID uuid.UUID, newRole rbac.Role) (*models.Membership, error) {
	if !newRole.IsValid() {
		return nil, apperr.Newf(apperr.KindBadRequest, "invalid role %q", newRole)
	}
	if actor.Role != rbac.RoleAdmin {
		return nil, apperr.Forbidden("only an admin may change member roles").WithDetails(map[string]any{
			"actual_role":    actor.Role,
			"required_roles": []rbac.Role{rbac.RoleAdmin},
		})
	}

	target, err := s.dir.GetByID(ctx, membershipID)
	if err != nil {
		return nil, apperr.Internal("load membership", err)
	}
	if target == nil || target.WorkspaceID != actor.WorkspaceID {
		return nil, apperr.NotFound("membership not found")
	}

	lock := s.workspaceLock(target.WorkspaceID)
	lock.Lock()
	defer lock.Unlock()

	// Reload under the lock; the roster may have changed while we waited.
	target, err = s.dir.GetByID(ctx, membershipID)
	if err != nil {
		return nil, apperr.Internal("load membership", err)
	}
	if target == nil {
		return nil, apperr.NotFound("membership not found")
	}
	if target.Role == newRole {
		return target, nil
	}

	if target.Role == rbac.RoleAdmin && newRole != rbac.RoleAdmin {
		roster, err := s.dir.ListByWorkspace(ctx, target.WorkspaceID)
		if err != nil {
			return nil, apperr.Internal("load roster", err)
		}
		if adminCount(roster, target.ID) == 0 {
			return nil, apperr.Invariant("cannot demote the workspace's last admin")
		}
	}

	if err := s.dir.UpdateRole(ctx, target.ID, newRole); err != nil {
		return nil, apperr.Internal("update role", err)
	}
	s.logger.Info("member role changed",
		zap.String("workspace_id", target.WorkspaceID.String()),
		zap.String("membership_id", target.ID.String()),
		zap.String("old_role", target.Role.String()),
		zap.String("new_role", newRole.String()))
	target.Role = newRole
	return target, nil
}

// Remove deletes a membership. Members may remove themselves; removing anyone
// else requires an admin actor. Rejected when it would empty the workspace or
// strip its last admin.
func (s *Service) Remove(ctx context.Context, actor *models.Membership, membershipID uuid.UUID) error {
	target, err := s.dir.GetByID(ctx, membershipID)
	if err != nil {
		return apperr.Internal("load membership", err)
	}
	if target == nil || target.WorkspaceID != actor.WorkspaceID {
		return apperr.NotFound("membership not found")
	}
	if target.ID != actor.ID && actor.Role != rbac.RoleAdmin {
		return apperr.Forbidden("only an admin may remove other members").WithDetails(map[string]any{
			"actual_role":    actor.Role,
			"required_roles": []rbac.Role{rbac.RoleAdmin},
		})
	}

	lock := s.workspaceLock(target.WorkspaceID)
	lock.Lock()
	defer lock.Unlock()

	target, err = s.dir.GetByID(ctx, membershipID)
	if err != nil {
		return apperr.Internal("load membership", err)
	}
	if target == nil {
		return apperr.NotFound("membership not found")
	}

	roster, err := s.dir.ListByWorkspace(ctx, target.WorkspaceID)
	if err != nil {
		return apperr.Internal("load roster", err)
	}
	if len(roster) <= 1 {
		return apperr.Invariant("cannot remove the workspace's only member")
	}
	if target.Role == rbac.RoleAdmin && adminCount(roster, target.ID) == 0 {
		return apperr.Invariant("cannot remove the workspace's last admin")
	}

	if err := s.dir.Delete(ctx, target.ID); err != nil {
		return apperr.Internal("delete membership", err)
	}
	s.logger.Info("member removed",
		zap.String("workspace_id", target.WorkspaceID.String()),
		zap.String("membership_id", target.ID.String()),
		zap.String("user_id", target.UserID.String()))
	return nil
}
