package rbac

// Capability is a named permission checked against the permission matrix.
// The set is closed; adding a capability requires a matrix entry, which
// TestMatrixExhaustive enforces.
type Capability string

const (
	// Company-level operations.
	CapCompanyManage Capability = "company:manage"

	// Workspace CRUD.
	CapWorkspaceCreate Capability = "workspace:create"
	CapWorkspaceEdit   Capability = "workspace:edit"
	CapWorkspaceDelete Capability = "workspace:delete"

	// Project CRUD.
	CapProjectCreate Capability = "project:create"
	CapProjectEdit   Capability = "project:edit"
	CapProjectDelete Capability = "project:delete"

	// Epic CRUD.
	CapEpicCreate Capability = "epic:create"
	CapEpicEdit   Capability = "epic:edit"

	// Sprint CRUD.
	CapSprintCreate Capability = "sprint:create"
	CapSprintEdit   Capability = "sprint:edit"
	CapSprintDelete Capability = "sprint:delete"

	// Task CRUD. TaskEditAny covers every task in the workspace; TaskEditOwn
	// only tasks the caller created or is assigned to.
	CapTaskCreate  Capability = "task:create"
	CapTaskEditAny Capability = "task:edit_any"
	CapTaskEditOwn Capability = "task:edit_own"
	CapTaskDelete  Capability = "task:delete"
	CapTaskView    Capability = "task:view"

	// Membership management.
	CapMemberInvite     Capability = "member:invite"
	CapMemberRemove     Capability = "member:remove"
	CapMemberRoleChange Capability = "member:role_change"

	// Dashboard visibility tiers.
	CapDashboardView Capability = "dashboard:view"
	CapDashboardFull Capability = "dashboard:full"

	// Time tracking.
	CapTimeLog     Capability = "time:log"
	CapTimeApprove Capability = "time:approve"

	// Workspace settings.
	CapSettingsManage Capability = "settings:manage"
)

// Capabilities lists every capability in the closed set.
var Capabilities = []Capability{
	CapCompanyManage,
	CapWorkspaceCreate, CapWorkspaceEdit, CapWorkspaceDelete,
	CapProjectCreate, CapProjectEdit, CapProjectDelete,
	CapEpicCreate, CapEpicEdit,
	CapSprintCreate, CapSprintEdit, CapSprintDelete,
	CapTaskCreate, CapTaskEditAny, CapTaskEditOwn, CapTaskDelete, CapTaskView,
	CapMemberInvite, CapMemberRemove, CapMemberRoleChange,
	CapDashboardView, CapDashboardFull,
	CapTimeLog, CapTimeApprove,
	CapSettingsManage,
}
