package model

import (
	"github.com/google/uuid"
)

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_project_tag"`
	Name      string    `gorm:"not null;uniqueIndex:idx_project_tag"`
	Color     string    `gorm:"not null;default:'#64748b'"`

	Project Project `gorm:"foreignKey:ProjectID"`
	Tasks   []Task  `gorm:"many2many:task_tags"`
}
