package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Status      string  `gorm:"not null;index"` // слаг колонки
	Priority    string  `gorm:"not null;default:medium;check:priority IN ('low', 'medium', 'high')"`
	Type        string  `gorm:"not null;default:general"`
	Hours       float64 `gorm:"not null;default:0;check:hours >= 0"`
	CreatedBy   string  `gorm:"not null"`
	AssignedTo  *string

	DueDate       *time.Time
	StartDate     *time.Time
	CompletedDate *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Project  Project `gorm:"foreignKey:ProjectID"`
	Creator  User    `gorm:"foreignKey:CreatedBy;references:Username"`
	Assignee User    `gorm:"foreignKey:AssignedTo;references:Username"`
	Tags     []Tag   `gorm:"many2many:task_tags"`
}

// Приоритеты задач
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority проверяет приоритет задачи
func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Типы задач
const (
	TypeGeneral       = "general"
	TypeProgramacion  = "programacion"
	TypeInvestigacion = "investigacion"
	TypeDiseno        = "diseno"
	TypeTesting       = "testing"
	TypeDocumentacion = "documentacion"
	TypeReunion       = "reunion"
	TypeBug           = "bug"
)

// ValidTaskType проверяет тип задачи
func ValidTaskType(taskType string) bool {
	switch taskType {
	case TypeGeneral, TypeProgramacion, TypeInvestigacion, TypeDiseno,
		TypeTesting, TypeDocumentacion, TypeReunion, TypeBug:
		return true
	}
	return false
}
