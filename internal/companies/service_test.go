package companies

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/pkg/apperr"
)

// fakeStore is an in-memory Store mirroring the repository's conditional
// update semantics: lifecycle transitions return nil when the status
// predicate does not match, exactly like the SQL predicates do.
type fakeStore struct {
	byID map[uuid.UUID]models.Company
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[uuid.UUID]models.Company)}
}

func (f *fakeStore) seed(status models.CompanyStatus) models.Company {
	co := models.Company{
		ID:          uuid.New(),
		Name:        "Acme",
		AdminUserID: uuid.New(),
		AdminEmail:  "admin@acme.test",
		Status:      status,
	}
	if status == models.CompanyPendingDelete {
		now := time.Now()
		co.DeleteRequested = true
		co.DeleteRequestedAt = &now
		co.DeleteRequestReason = "winding the company down"
	}
	f.byID[co.ID] = co
	return co
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	co, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := co
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context) ([]*models.Company, error) {
	var list []*models.Company
	for _, co := range f.byID {
		cp := co
		list = append(list, &cp)
	}
	return list, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, name, description string) (*models.Company, error) {
	co, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	co.Name = name
	co.Description = description
	f.byID[id] = co
	cp := co
	return &cp, nil
}

func (f *fakeStore) RequestDelete(_ context.Context, id uuid.UUID, reason string) (*models.Company, error) {
	co, ok := f.byID[id]
	if !ok || co.Status != models.CompanyActive {
		return nil, nil
	}
	now := time.Now()
	co.Status = models.CompanyPendingDelete
	co.DeleteRequested = true
	co.DeleteRequestedAt = &now
	co.DeleteRequestReason = reason
	f.byID[id] = co
	cp := co
	return &cp, nil
}

func (f *fakeStore) ApproveDelete(_ context.Context, id uuid.UUID) (*models.Company, error) {
	co, ok := f.byID[id]
	if !ok || co.Status != models.CompanyPendingDelete {
		return nil, nil
	}
	co.Status = models.CompanyDeleted
	co.DeleteRequested = false
	f.byID[id] = co
	cp := co
	return &cp, nil
}

func (f *fakeStore) RejectDelete(_ context.Context, id uuid.UUID) (*models.Company, error) {
	co, ok := f.byID[id]
	if !ok || co.Status != models.CompanyPendingDelete {
		return nil, nil
	}
	co.Status = models.CompanyActive
	co.DeleteRequested = false
	co.DeleteRequestedAt = nil
	co.DeleteRequestReason = ""
	f.byID[id] = co
	cp := co
	return &cp, nil
}

func (f *fakeStore) Provision(_ context.Context, companyName, description, adminName, adminEmail, passwordHash, workspaceName, inviteCode string) (*ProvisionResult, error) {
	admin := models.User{ID: uuid.New(), Email: adminEmail, Password: passwordHash, FullName: adminName}
	co := models.Company{
		ID:          uuid.New(),
		Name:        companyName,
		Description: description,
		AdminUserID: admin.ID,
		AdminEmail:  adminEmail,
		Status:      models.CompanyActive,
	}
	f.byID[co.ID] = co
	ws := models.Workspace{ID: uuid.New(), CompanyID: co.ID, Name: workspaceName, OwnerID: admin.ID, InviteCode: inviteCode}
	cp := co
	return &ProvisionResult{Company: &cp, Workspace: &ws, Admin: admin.ToPublic(), adminFull: &admin}, nil
}

// fakeUsers answers email-existence checks for provisioning.
type fakeUsers struct {
	byEmail map[string]*models.User
	err     error
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

func newService(store Store, users UserLookup) *Service {
	return NewService(store, users, nil)
}

func TestProvisionValidatesInputs(t *testing.T) {
	svc := newService(newFakeStore(), &fakeUsers{})
	_, err := svc.Provision(context.Background(), ProvisionParams{CompanyName: "  ", AdminName: "A", AdminEmail: "a@b.c"})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestProvisionEmailCollision(t *testing.T) {
	users := &fakeUsers{byEmail: map[string]*models.User{
		"taken@acme.test": {ID: uuid.New(), Email: "taken@acme.test"},
	}}
	svc := newService(newFakeStore(), users)

	_, err := svc.Provision(context.Background(), ProvisionParams{
		CompanyName: "Acme",
		AdminName:   "Ada",
		AdminEmail:  "Taken@Acme.Test", // matched case-insensitively
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestProvisionHappyPath(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeUsers{})

	result, err := svc.Provision(context.Background(), ProvisionParams{
		CompanyName: " Acme ",
		AdminName:   "Ada Lovelace",
		AdminEmail:  "Ada@Acme.Test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", result.Company.Name)
	assert.Equal(t, "ada@acme.test", result.Company.AdminEmail)
	assert.Equal(t, models.CompanyActive, result.Company.Status)
	// Workspace name defaults to the company name.
	assert.Equal(t, "Acme", result.Workspace.Name)
	assert.NotEmpty(t, result.Workspace.InviteCode)
	assert.Equal(t, result.Company.AdminUserID, result.Workspace.OwnerID)
	// The seed credential was random and hashed; nothing plaintext survives.
	require.NotNil(t, result.AdminUser())
	assert.True(t, strings.HasPrefix(result.AdminUser().Password, "$2"), "credential must be stored as bcrypt hash")
}

func TestUpdateProfileOnlyCompanyAdmin(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyActive)
	svc := newService(store, &fakeUsers{})

	_, err := svc.UpdateProfile(context.Background(), uuid.New(), co.ID, "New Name", "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	updated, err := svc.UpdateProfile(context.Background(), co.AdminUserID, co.ID, "New Name", "desc")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
}

func TestUpdateProfileDeletedCompany(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyDeleted)
	svc := newService(store, &fakeUsers{})

	_, err := svc.UpdateProfile(context.Background(), co.AdminUserID, co.ID, "New Name", "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRequestDeleteReasonTooShort(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyActive)
	svc := newService(store, &fakeUsers{})

	_, err := svc.RequestDelete(context.Background(), co.AdminUserID, co.ID, "too short")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestRequestDeleteOnlyCompanyAdmin(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyActive)
	svc := newService(store, &fakeUsers{})

	_, err := svc.RequestDelete(context.Background(), uuid.New(), co.ID, "closing this tenant down")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRequestDeleteTransitionsToPending(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyActive)
	svc := newService(store, &fakeUsers{})

	updated, err := svc.RequestDelete(context.Background(), co.AdminUserID, co.ID, "closing this tenant down")
	require.NoError(t, err)
	assert.Equal(t, models.CompanyPendingDelete, updated.Status)
	assert.True(t, updated.DeleteRequested)
	assert.Equal(t, "closing this tenant down", updated.DeleteRequestReason)
	require.NotNil(t, updated.DeleteRequestedAt)
}

func TestRequestDeleteReplayConflicts(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyPendingDelete)
	svc := newService(store, &fakeUsers{})

	_, err := svc.RequestDelete(context.Background(), co.AdminUserID, co.ID, "closing this tenant down")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "already been requested")

	// The first request's reason is untouched.
	after, gerr := store.GetByID(context.Background(), co.ID)
	require.NoError(t, gerr)
	assert.Equal(t, "winding the company down", after.DeleteRequestReason)
}

func TestRequestDeleteDeletedCompany(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyDeleted)
	svc := newService(store, &fakeUsers{})

	_, err := svc.RequestDelete(context.Background(), co.AdminUserID, co.ID, "closing this tenant down")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "already deleted")
}

func TestResolveDeleteApproveIsTerminal(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyPendingDelete)
	svc := newService(store, &fakeUsers{})

	updated, msg, err := svc.ResolveDelete(context.Background(), co.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyDeleted, updated.Status)
	assert.Equal(t, "company deleted", msg)

	// Replaying the approval conflicts; deleted is a terminal state.
	_, _, err = svc.ResolveDelete(context.Background(), co.ID, true)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestResolveDeleteRejectRestoresActive(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyPendingDelete)
	svc := newService(store, &fakeUsers{})

	updated, msg, err := svc.ResolveDelete(context.Background(), co.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyActive, updated.Status)
	assert.False(t, updated.DeleteRequested)
	assert.Nil(t, updated.DeleteRequestedAt)
	assert.Empty(t, updated.DeleteRequestReason)
	assert.Contains(t, msg, "restored to active")

	// After a rejection the admin may request deletion again.
	again, err := svc.RequestDelete(context.Background(), co.AdminUserID, co.ID, "second thoughts after all")
	require.NoError(t, err)
	assert.Equal(t, models.CompanyPendingDelete, again.Status)
}

func TestResolveDeleteWithoutPendingRequest(t *testing.T) {
	store := newFakeStore()
	co := store.seed(models.CompanyActive)
	svc := newService(store, &fakeUsers{})

	_, _, err := svc.ResolveDelete(context.Background(), co.ID, true)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestResolveDeleteUnknownCompany(t *testing.T) {
	svc := newService(newFakeStore(), &fakeUsers{})
	_, _, err := svc.ResolveDelete(context.Background(), uuid.New(), true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetUnknownCompany(t *testing.T) {
	svc := newService(newFakeStore(), &fakeUsers{})
	_, err := svc.Get(context.Background(), uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStorageFailuresAreInternal(t *testing.T) {
	svc := newService(newFakeStore(), &fakeUsers{err: errors.New("connection refused")})

	_, err := svc.Provision(context.Background(), ProvisionParams{
		CompanyName: "Acme", AdminName: "Ada", AdminEmail: "ada@acme.test",
	})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
