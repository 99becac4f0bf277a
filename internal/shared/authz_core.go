package shared

// Core platform permissions.
const (
	PermUserView      = "user.view.all"
	PermUserManageOwn = "user.manage.own"
	PermUserManageAll = "user.manage.all"

	PermRoleView      = "role.view.all"
	PermRoleManageAll = "role.manage.all"

	PermPermissionView = "permission.view.all"
)

// Event lifecycle permissions.
const (
	PermEventViewAll   = "event.view.all"
	PermEventManageOwn = "event.manage.own"
	PermEventApprove   = "event.approve"
	PermEventInvite    = "event.invite"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermUserView,
		PermUserManageOwn,
		PermUserManageAll,
		PermRoleView,
		PermRoleManageAll,
		PermPermissionView,
	}
}

// EventScopes lists all permissions related to event management.
func EventScopes() []string {
	return []string{
		PermEventViewAll,
		PermEventManageOwn,
		PermEventApprove,
		PermEventInvite,
	}
}
