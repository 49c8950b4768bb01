package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Username      string     `gorm:"primaryKey"`
	PinHash       string     `gorm:"not null"`
	Role          *string    `gorm:"check:role IN ('dev', 'design', 'pm', 'qa', 'admin')"`
	LastProjectID *uuid.UUID `gorm:"type:uuid"`
	Theme         string     `gorm:"not null;default:light"`
	Notifications bool       `gorm:"not null;default:true"`
	Language      string     `gorm:"not null;default:es"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

// Глобальные роли пользователей
const (
	GlobalRoleDev    = "dev"    // разработчик
	GlobalRoleDesign = "design" // дизайнер
	GlobalRolePM     = "pm"     // менеджер проектов
	GlobalRoleQA     = "qa"     // тестировщик
	GlobalRoleAdmin  = "admin"  // администратор системы, полный доступ ко всем проектам
)

// ValidGlobalRole проверяет, что роль входит в список глобальных ролей
func ValidGlobalRole(role string) bool {
	switch role {
	case GlobalRoleDev, GlobalRoleDesign, GlobalRolePM, GlobalRoleQA, GlobalRoleAdmin:
		return true
	}
	return false
}

// HasRole возвращает true, если пользователь уже выбрал глобальную роль
func (u *User) HasRole() bool {
	return u.Role != nil && *u.Role != ""
}

// IsGlobalAdmin возвращает true для администраторов системы
func (u *User) IsGlobalAdmin() bool {
	return u.Role != nil && *u.Role == GlobalRoleAdmin
}
