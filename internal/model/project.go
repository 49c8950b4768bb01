package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	Owner       string `gorm:"not null;index"`
	Color       string `gorm:"not null;default:'#6366f1'"`
	Icon        string `gorm:"not null;default:'📋'"`
	IsArchived  bool   `gorm:"not null;default:false"`

	// Диапазон дат для диаграммы сгорания
	BurndownStartDate *time.Time
	BurndownEndDate   *time.Time

	// Настройки проекта
	AllowComments       bool   `gorm:"not null;default:true"`
	AllowTaskAssignment bool   `gorm:"not null;default:true"`
	RequireApproval     bool   `gorm:"not null;default:false"`
	DefaultPriority     string `gorm:"not null;default:medium"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	OwnerUser User `gorm:"foreignKey:Owner;references:Username"`
}
