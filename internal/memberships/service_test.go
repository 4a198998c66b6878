package memberships

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
	"github.com/teamforge/backend/pkg/apperr"
)

// fakeDirectory is an in-memory Directory for exercising the integrity rules
// without a database.
type fakeDirectory struct {
	mu   sync.Mutex
	byID map[uuid.UUID]models.Membership

	findErr error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byID: make(map[uuid.UUID]models.Membership)}
}

func (f *fakeDirectory) Find(_ context.Context, workspaceID, userID uuid.UUID) (*models.Membership, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) GetByID(_ context.Context, id uuid.UUID) (*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := m
	return &cp, nil
}

func (f *fakeDirectory) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []models.Membership
	for _, m := range f.byID {
		if m.WorkspaceID == workspaceID {
			list = append(list, m)
		}
	}
	return list, nil
}

func (f *fakeDirectory) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []models.Membership
	for _, m := range f.byID {
		if m.UserID == userID {
			list = append(list, m)
		}
	}
	return list, nil
}

func (f *fakeDirectory) Create(_ context.Context, m *models.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.WorkspaceID == m.WorkspaceID && existing.UserID == m.UserID {
			return errors.New(`duplicate key value violates unique constraint "memberships_workspace_id_user_id_key"`)
		}
	}
	m.ID = uuid.New()
	f.byID[m.ID] = *m
	return nil
}

func (f *fakeDirectory) UpdateRole(_ context.Context, id uuid.UUID, role rbac.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return errors.New("no such membership")
	}
	m.Role = role
	f.byID[id] = m
	return nil
}

func (f *fakeDirectory) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

// seed inserts a membership directly, bypassing the service.
func (f *fakeDirectory) seed(t *testing.T, workspaceID uuid.UUID, role rbac.Role) *models.Membership {
	t.Helper()
	m := &models.Membership{WorkspaceID: workspaceID, UserID: uuid.New(), Role: role}
	require.NoError(t, f.Create(context.Background(), m))
	return m
}

func TestAddRejectsInvalidRole(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)

	_, err := svc.Add(context.Background(), admin, wsID, uuid.New(), rbac.Role("OWNER"))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestAddAdminGrantRequiresAdminActor(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	dir.seed(t, wsID, rbac.RoleAdmin)
	manager := dir.seed(t, wsID, rbac.RoleManager)

	_, err := svc.Add(context.Background(), manager, wsID, uuid.New(), rbac.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, rbac.RoleManager, ae.Details["actual_role"])

	// The same manager may still grant non-admin roles.
	m, err := svc.Add(context.Background(), manager, wsID, uuid.New(), rbac.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, m.Role)
}

func TestAddDuplicateMemberConflict(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)
	existing := dir.seed(t, wsID, rbac.RoleEmployee)

	_, err := svc.Add(context.Background(), admin, wsID, existing.UserID, rbac.RoleManager)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestJoinCreatesEmployee(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	dir.seed(t, wsID, rbac.RoleAdmin)

	userID := uuid.New()
	m, err := svc.Join(context.Background(), wsID, userID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, m.Role)
	assert.Equal(t, userID, m.UserID)

	_, err = svc.Join(context.Background(), wsID, userID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestChangeRoleRequiresAdminActor(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	dir.seed(t, wsID, rbac.RoleAdmin)
	manager := dir.seed(t, wsID, rbac.RoleManager)
	employee := dir.seed(t, wsID, rbac.RoleEmployee)

	_, err := svc.ChangeRole(context.Background(), manager, employee.ID, rbac.RoleManager)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestChangeRoleUnknownOrForeignMembership(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)

	_, err := svc.ChangeRole(context.Background(), admin, uuid.New(), rbac.RoleManager)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// A membership in another workspace must be unresolvable, not forbidden:
	// cross-tenant ids should not leak existence.
	other := dir.seed(t, uuid.New(), rbac.RoleEmployee)
	_, err = svc.ChangeRole(context.Background(), admin, other.ID, rbac.RoleManager)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestChangeRoleLastAdminDemotion(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)
	dir.seed(t, wsID, rbac.RoleEmployee)

	_, err := svc.ChangeRole(context.Background(), admin, admin.ID, rbac.RoleEmployee)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvariantViolation, apperr.KindOf(err))

	// Still an admin afterwards.
	got, gerr := dir.GetByID(context.Background(), admin.ID)
	require.NoError(t, gerr)
	assert.Equal(t, rbac.RoleAdmin, got.Role)
}

func TestChangeRoleDemotionWithSecondAdmin(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)
	second := dir.seed(t, wsID, rbac.RoleAdmin)

	m, err := svc.ChangeRole(context.Background(), admin, second.ID, rbac.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, m.Role)
}

func TestChangeRoleSameRoleIsNoop(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)

	m, err := svc.ChangeRole(context.Background(), admin, admin.ID, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, m.Role)
}

func TestConcurrentMutualDemotionKeepsOneAdmin(t *testing.T) {
	// Two admins demote each other at the same time. The per-workspace lock
	// serializes them and the invariant is checked against the post-state of
	// whichever ran first, so exactly one demotion goes through.
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	a := dir.seed(t, wsID, rbac.RoleAdmin)
	b := dir.seed(t, wsID, rbac.RoleAdmin)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.ChangeRole(context.Background(), a, b.ID, rbac.RoleEmployee)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.ChangeRole(context.Background(), b, a.ID, rbac.RoleEmployee)
	}()
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.Equal(t, apperr.KindInvariantViolation, apperr.KindOf(err))
		}
	}
	assert.Equal(t, 1, failures, "exactly one demotion must be rejected")

	roster, err := dir.ListByWorkspace(context.Background(), wsID)
	require.NoError(t, err)
	assert.Equal(t, 1, adminCount(roster, uuid.Nil), "workspace must keep exactly one admin")
}

func TestRemoveSelf(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	dir.seed(t, wsID, rbac.RoleAdmin)
	employee := dir.seed(t, wsID, rbac.RoleEmployee)

	require.NoError(t, svc.Remove(context.Background(), employee, employee.ID))
	got, err := dir.GetByID(context.Background(), employee.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRemoveOtherRequiresAdmin(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	dir.seed(t, wsID, rbac.RoleAdmin)
	manager := dir.seed(t, wsID, rbac.RoleManager)
	employee := dir.seed(t, wsID, rbac.RoleEmployee)

	err := svc.Remove(context.Background(), manager, employee.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRemoveOnlyMember(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	sole := dir.seed(t, wsID, rbac.RoleAdmin)

	err := svc.Remove(context.Background(), sole, sole.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvariantViolation, apperr.KindOf(err))
}

func TestRemoveLastAdmin(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)
	dir.seed(t, wsID, rbac.RoleEmployee)

	err := svc.Remove(context.Background(), admin, admin.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvariantViolation, apperr.KindOf(err))

	// With a second admin the same removal succeeds.
	dir.seed(t, wsID, rbac.RoleAdmin)
	require.NoError(t, svc.Remove(context.Background(), admin, admin.ID))
}

func TestRemoveByAdmin(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)
	employee := dir.seed(t, wsID, rbac.RoleEmployee)

	require.NoError(t, svc.Remove(context.Background(), admin, employee.ID))
}

func TestRemoveForeignMembershipNotFound(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, nil)
	wsID := uuid.New()
	admin := dir.seed(t, wsID, rbac.RoleAdmin)
	other := dir.seed(t, uuid.New(), rbac.RoleEmployee)

	err := svc.Remove(context.Background(), admin, other.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
