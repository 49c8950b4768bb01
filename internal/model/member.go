package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectMember представляет связь между пользователем и проектом
type ProjectMember struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_project_member"`
	Username  string    `gorm:"not null;index;uniqueIndex:idx_project_member"`
	Role      string    `gorm:"not null;check:role IN ('admin', 'editor', 'viewer')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:Username;references:Username"`
}

// Роли участников проекта
const (
	RoleAdmin  = "admin"  // полный контроль над проектом
	RoleEditor = "editor" // может создавать и редактировать задачи
	RoleViewer = "viewer" // может только просматривать
)

// ValidProjectRole проверяет, что роль входит в список ролей проекта
func ValidProjectRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}
