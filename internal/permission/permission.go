// Package permission содержит таблицу прав доступа к проектам.
// Глобальный администратор считается владельцем и полноправным
// участником любого проекта, не числясь в его участниках.
package permission

import (
	"github.com/joelosiris11/mainkam/internal/model"
)

// Действия над проектом
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
	ActionManage = "manage"
)

// Таблица прав: роль проекта -> разрешенные действия
var rolePermissions = map[string][]string{
	model.RoleAdmin:  {ActionRead, ActionWrite, ActionDelete, ActionManage},
	model.RoleEditor: {ActionRead, ActionWrite},
	model.RoleViewer: {ActionRead},
}

// Check проверяет по таблице, разрешено ли действие для роли проекта.
// Неизвестная или пустая роль не дает никаких прав
func Check(projectRole, action string) bool {
	for _, allowed := range rolePermissions[projectRole] {
		if allowed == action {
			return true
		}
	}
	return false
}

// Has проверяет право пользователя на действие в проекте, где он имеет
// роль projectRole. Глобальные администраторы имеют все права в любом проекте
func Has(user *model.User, projectRole, action string) bool {
	if user == nil {
		return false
	}
	if user.IsGlobalAdmin() {
		return true
	}
	return Check(projectRole, action)
}

// IsProjectOwner проверяет, является ли пользователь владельцем проекта.
// Глобальные администраторы считаются владельцами всех проектов
func IsProjectOwner(user *model.User, project *model.Project) bool {
	if user == nil || project == nil {
		return false
	}
	if user.IsGlobalAdmin() {
		return true
	}
	return project.Owner == user.Username
}

// EffectiveRole возвращает действующую роль пользователя в проекте:
// у глобальных администраторов это всегда admin
func EffectiveRole(user *model.User, projectRole string) string {
	if user != nil && user.IsGlobalAdmin() {
		return model.RoleAdmin
	}
	return projectRole
}
