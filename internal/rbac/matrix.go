package rbac

import "fmt"

// roleSet is a fixed set of roles allowed to exercise a capability.
type roleSet map[Role]struct{}

func allow(roles ...Role) roleSet {
	s := make(roleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

var (
	adminOnly    = allow(RoleAdmin)
	adminManager = allow(RoleAdmin, RoleManager)
	allRoles     = allow(RoleAdmin, RoleManager, RoleEmployee)
)

// matrix is the static capability → allowed-roles table. Authorization
// decisions always go through HasPermission against this table, never through
// ad hoc role comparisons in feature code.
var matrix = map[Capability]roleSet{
	CapCompanyManage: adminOnly,

	CapWorkspaceCreate: adminManager,
	CapWorkspaceEdit:   adminManager,
	CapWorkspaceDelete: adminOnly,

	CapProjectCreate: adminManager,
	CapProjectEdit:   adminManager,
	CapProjectDelete: adminManager,

	CapEpicCreate: adminManager,
	CapEpicEdit:   adminManager,

	CapSprintCreate: adminManager,
	CapSprintEdit:   adminManager,
	CapSprintDelete: adminManager,

	CapTaskCreate:  allRoles,
	CapTaskEditAny: adminManager,
	CapTaskEditOwn: allRoles,
	CapTaskDelete:  adminManager,
	CapTaskView:    allRoles,

	CapMemberInvite:     adminManager,
	CapMemberRemove:     adminOnly,
	CapMemberRoleChange: adminOnly,

	CapDashboardView: allRoles,
	CapDashboardFull: adminManager,

	CapTimeLog:     allRoles,
	CapTimeApprove: adminManager,

	CapSettingsManage: adminOnly,
}

// HasPermission reports whether the role may exercise the capability.
// An unknown capability is a programming error and panics.
func HasPermission(role Role, cap Capability) bool {
	set, ok := matrix[cap]
	if !ok {
		panic(fmt.Sprintf("rbac: unknown capability %q", cap))
	}
	_, allowed := set[role]
	return allowed
}

// HasAny reports whether the role holds at least one of the capabilities.
func HasAny(role Role, caps ...Capability) bool {
	for _, c := range caps {
		if HasPermission(role, c) {
			return true
		}
	}
	return false
}

// HasAll reports whether the role holds every one of the capabilities.
func HasAll(role Role, caps ...Capability) bool {
	for _, c := range caps {
		if !HasPermission(role, c) {
			return false
		}
	}
	return true
}

// AllowedRoles returns the roles permitted to exercise the capability,
// ordered most privileged first. Used for 403 payloads.
func AllowedRoles(cap Capability) []Role {
	set, ok := matrix[cap]
	if !ok {
		panic(fmt.Sprintf("rbac: unknown capability %q", cap))
	}
	out := make([]Role, 0, len(set))
	for _, r := range Roles {
		if _, allowed := set[r]; allowed {
			out = append(out, r)
		}
	}
	return out
}

// CapabilitiesOf returns every capability the role holds. Intended for UI
// exposure only; authorization must re-check HasPermission.
func CapabilitiesOf(role Role) []Capability {
	out := make([]Capability, 0, len(Capabilities))
	for _, c := range Capabilities {
		if HasPermission(role, c) {
			out = append(out, c)
		}
	}
	return out
}
