package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/models"
	"github.com/teamforge/backend/internal/rbac"
	"github.com/teamforge/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	tasks map[uuid.UUID]*models.Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[uuid.UUID]*models.Task)}
}

func (f *fakeStore) seed(t *models.Task) *models.Task {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.tasks[t.ID] = t
	return t
}

func (f *fakeStore) Create(_ context.Context, t *models.Task) error {
	t.ID = uuid.New()
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, workspaceID, id uuid.UUID) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) ListByProject(_ context.Context, workspaceID, projectID uuid.UUID) ([]*models.Task, error) {
	var list []*models.Task
	for _, t := range f.tasks {
		if t.WorkspaceID == workspaceID && t.ProjectID == projectID {
			list = append(list, t)
		}
	}
	return list, nil
}

func (f *fakeStore) ListBySprint(_ context.Context, workspaceID, sprintID uuid.UUID) ([]*models.Task, error) {
	var list []*models.Task
	for _, t := range f.tasks {
		if t.WorkspaceID == workspaceID && t.SprintID != nil && *t.SprintID == sprintID {
			list = append(list, t)
		}
	}
	return list, nil
}

func (f *fakeStore) Update(_ context.Context, t *models.Task) (*models.Task, error) {
	existing, ok := f.tasks[t.ID]
	if !ok || existing.WorkspaceID != t.WorkspaceID {
		return nil, nil
	}
	cp := *t
	f.tasks[t.ID] = &cp
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, workspaceID, id uuid.UUID) (bool, error) {
	t, ok := f.tasks[id]
	if !ok || t.WorkspaceID != workspaceID {
		return false, nil
	}
	delete(f.tasks, id)
	return true, nil
}

// taskRouter mounts the task routes behind a stub that injects the caller's
// membership the way the member guard would.
func taskRouter(h *Handler, m *models.Membership) *gin.Engine {
	r := gin.New()
	ws := r.Group("/workspaces/:id", func(c *gin.Context) {
		c.Set(middleware.ContextMembership, m)
	})
	ws.PATCH("/tasks/:taskId", h.Update)
	ws.GET("/tasks/:taskId", h.Get)
	return r
}

func membershipWith(workspaceID uuid.UUID, role rbac.Role) *models.Membership {
	return &models.Membership{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      uuid.New(),
		Role:        role,
	}
}

func patchTask(t *testing.T, r *gin.Engine, workspaceID, taskID uuid.UUID, body map[string]any) (*httptest.ResponseRecorder, response.Body) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPatch,
		"/workspaces/"+workspaceID.String()+"/tasks/"+taskID.String(), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var decoded response.Body
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func validUpdateBody() map[string]any {
	return map[string]any{
		"title":    "refine estimates",
		"status":   string(models.TaskInProgress),
		"priority": string(models.PriorityHigh),
	}
}

func TestEmployeeUpdatesOwnCreatedTask(t *testing.T) {
	store := newFakeStore()
	workspaceID := uuid.New()
	m := membershipWith(workspaceID, rbac.RoleEmployee)
	task := store.seed(&models.Task{
		WorkspaceID: workspaceID,
		ProjectID:   uuid.New(),
		Title:       "draft estimates",
		Status:      models.TaskTodo,
		Priority:    models.PriorityMedium,
		CreatedBy:   m.UserID,
	})

	w, body := patchTask(t, taskRouter(NewHandler(store), m), workspaceID, task.ID, validUpdateBody())

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "refine estimates", store.tasks[task.ID].Title)
	assert.Equal(t, models.TaskInProgress, store.tasks[task.ID].Status)
}

func TestEmployeeUpdatesAssignedTask(t *testing.T) {
	store := newFakeStore()
	workspaceID := uuid.New()
	m := membershipWith(workspaceID, rbac.RoleEmployee)
	task := store.seed(&models.Task{
		WorkspaceID: workspaceID,
		ProjectID:   uuid.New(),
		Title:       "review PR",
		Status:      models.TaskTodo,
		Priority:    models.PriorityMedium,
		CreatedBy:   uuid.New(),
		AssigneeID:  &m.UserID,
	})

	w, body := patchTask(t, taskRouter(NewHandler(store), m), workspaceID, task.ID, validUpdateBody())

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
}

func TestEmployeeCannotUpdateForeignTask(t *testing.T) {
	store := newFakeStore()
	workspaceID := uuid.New()
	m := membershipWith(workspaceID, rbac.RoleEmployee)
	other := uuid.New()
	task := store.seed(&models.Task{
		WorkspaceID: workspaceID,
		ProjectID:   uuid.New(),
		Title:       "quarterly report",
		Status:      models.TaskTodo,
		Priority:    models.PriorityMedium,
		CreatedBy:   other,
		AssigneeID:  &other,
	})

	w, body := patchTask(t, taskRouter(NewHandler(store), m), workspaceID, task.ID, validUpdateBody())

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, string(rbac.CapTaskEditAny), body.Details["capability"])
	assert.Equal(t, string(rbac.RoleEmployee), body.Details["actual_role"])
	// The stored task is untouched.
	assert.Equal(t, "quarterly report", store.tasks[task.ID].Title)
}

func TestManagerUpdatesAnyTask(t *testing.T) {
	store := newFakeStore()
	workspaceID := uuid.New()
	m := membershipWith(workspaceID, rbac.RoleManager)
	other := uuid.New()
	task := store.seed(&models.Task{
		WorkspaceID: workspaceID,
		ProjectID:   uuid.New(),
		Title:       "quarterly report",
		Status:      models.TaskTodo,
		Priority:    models.PriorityMedium,
		CreatedBy:   other,
		AssigneeID:  &other,
	})

	w, body := patchTask(t, taskRouter(NewHandler(store), m), workspaceID, task.ID, validUpdateBody())

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "refine estimates", store.tasks[task.ID].Title)
}

func TestUpdateUnknownTaskIsNotFound(t *testing.T) {
	store := newFakeStore()
	workspaceID := uuid.New()
	m := membershipWith(workspaceID, rbac.RoleAdmin)

	w, body := patchTask(t, taskRouter(NewHandler(store), m), workspaceID, uuid.New(), validUpdateBody())

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, body.Success)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	store := newFakeStore()
	workspaceID := uuid.New()
	m := membershipWith(workspaceID, rbac.RoleAdmin)
	task := store.seed(&models.Task{
		WorkspaceID: workspaceID,
		ProjectID:   uuid.New(),
		Title:       "draft",
		Status:      models.TaskTodo,
		Priority:    models.PriorityMedium,
		CreatedBy:   m.UserID,
	})

	body := validUpdateBody()
	body["status"] = "archived"
	w, decoded := patchTask(t, taskRouter(NewHandler(store), m), workspaceID, task.ID, body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decoded.Success)
}

func TestGetTaskScopedToWorkspace(t *testing.T) {
	store := newFakeStore()
	workspaceID := uuid.New()
	m := membershipWith(workspaceID, rbac.RoleEmployee)
	foreign := store.seed(&models.Task{
		WorkspaceID: uuid.New(),
		ProjectID:   uuid.New(),
		Title:       "other tenant's task",
		Status:      models.TaskTodo,
		Priority:    models.PriorityMedium,
		CreatedBy:   uuid.New(),
	})

	req := httptest.NewRequest(http.MethodGet,
		"/workspaces/"+workspaceID.String()+"/tasks/"+foreign.ID.String(), nil)
	w := httptest.NewRecorder()
	taskRouter(NewHandler(store), m).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
