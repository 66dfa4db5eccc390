package auth

type Role string

const (
	RoleAdmin   Role = "admin"   // Head office - full access
	RoleManager Role = "manager" // Site manager - runs payroll and audits
	RoleStaff   Role = "staff"   // Care staff - own leave only
)

type Permission string

const (
	PermissionPayrollView   Permission = "payroll.view"
	PermissionPayrollExport Permission = "payroll.export"

	PermissionLeaveView   Permission = "leave.view"
	PermissionLeaveManage Permission = "leave.manage"

	PermissionShiftsView   Permission = "shifts.view"
	PermissionShiftsManage Permission = "shifts.manage"

	PermissionActivityView Permission = "activity.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionPayrollView,
		PermissionPayrollExport,
		PermissionLeaveView,
		PermissionLeaveManage,
		PermissionShiftsView,
		PermissionShiftsManage,
		PermissionActivityView,
	},
	RoleManager: {
		PermissionPayrollView,
		PermissionPayrollExport,
		PermissionLeaveView,
		PermissionShiftsView,
	},
	RoleStaff: {
		PermissionLeaveView,
		PermissionShiftsView,
	},
}

func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Principal is the caller identified by a verified access token.
type Principal struct {
	UserID  string
	Email   string
	Role    Role
	StaffID string
}
