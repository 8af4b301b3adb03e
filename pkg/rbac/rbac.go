package rbac

import "slices"

// 权限常量
const (
	PermissionViewProject    = "project:view"
	PermissionGenerateReport = "report:generate"
	PermissionAddNote        = "note:add"
	PermissionDeleteNote     = "note:delete"
)

// 角色常量
const (
	RoleViewer  = "viewer"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleViewer: {
		PermissionViewProject,
		PermissionGenerateReport,
		PermissionAddNote,
	},
	RoleManager: {
		PermissionViewProject,
		PermissionGenerateReport,
		PermissionAddNote,
		PermissionDeleteNote,
	},
	RoleAdmin: {
		PermissionViewProject,
		PermissionGenerateReport,
		PermissionAddNote,
		PermissionDeleteNote,
	},
}

// HasPermission 检查角色是否有指定权限，未知角色没有任何权限
func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return slices.Contains(permissions, permission)
}

// CheckPermission 检查用户角色是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(userID, role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			UserID:     userID,
			Permission: permission,
		}
	}
	return nil
}

// CheckProjectAccess 检查项目是否在用户可访问列表中
func CheckProjectAccess(userID string, projectAccess []string, projectID string) error {
	if projectID == "" || !slices.Contains(projectAccess, projectID) {
		return &ProjectAccessDeniedError{
			UserID:    userID,
			ProjectID: projectID,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	UserID     string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// ProjectAccessDeniedError 表示用户无权访问该项目
type ProjectAccessDeniedError struct {
	UserID    string
	ProjectID string
}

func (e *ProjectAccessDeniedError) Error() string {
	return "Access denied"
}
