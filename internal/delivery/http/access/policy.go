// Package access declares which roles may invoke each HTTP operation.
package access

import "github.com/gilsonricardopeloso/devretain/internal/domain/user"

type Operation string

const (
	AuthLogout Operation = "auth.logout"

	UserProfile           Operation = "users.profile"
	UserGetPreferences    Operation = "users.preferences.get"
	UserUpdatePreferences Operation = "users.preferences.update"
	UserChangePassword    Operation = "users.change_password"
	UserReportKnowledge   Operation = "users.me.knowledge_areas.create"
	UserAddMilestone      Operation = "users.me.milestones.create"

	UserCreate       Operation = "users.create"
	UserList         Operation = "users.list"
	UserListPage     Operation = "users.list_paginated"
	UserSearch       Operation = "users.search"
	UserListInactive Operation = "users.list_inactive"
	UserGet          Operation = "users.get"
	UserUpdate       Operation = "users.update"
	UserDelete       Operation = "users.delete"
	UserUpdateStatus Operation = "users.update_status"

	KnowledgeAreaList        Operation = "knowledge_areas.list"
	KnowledgeAreaCreate      Operation = "knowledge_areas.create"
	KnowledgeAreaAssignOwner Operation = "knowledge_areas.assign_owner"

	DashboardAdminData Operation = "dashboard.admin_data"
	AdminEvents        Operation = "ws.admin"
)

var adminOnly = []user.Role{user.RoleAdmin}

// Policy maps an operation to the roles allowed to call it. Operations not
// listed are open to any authenticated user.
type Policy map[Operation][]user.Role

func Default() Policy {
	return Policy{
		UserCreate:       adminOnly,
		UserList:         adminOnly,
		UserListPage:     adminOnly,
		UserSearch:       adminOnly,
		UserListInactive: adminOnly,
		UserGet:          adminOnly,
		UserUpdate:       adminOnly,
		UserDelete:       adminOnly,
		UserUpdateStatus: adminOnly,

		KnowledgeAreaCreate:      adminOnly,
		KnowledgeAreaAssignOwner: adminOnly,

		DashboardAdminData: adminOnly,
		AdminEvents:        adminOnly,
	}
}

func (p Policy) Required(op Operation) []user.Role {
	return p[op]
}

// Allows passes when nothing is required or when role matches any of the
// required roles.
func (p Policy) Allows(op Operation, role user.Role) bool {
	required := p[op]
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
