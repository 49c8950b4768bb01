package model

import (
	"time"

	"github.com/google/uuid"
)

// Comment представляет комментарий к задаче
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Author    string    `gorm:"not null"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Task       Task `gorm:"foreignKey:TaskID"`
	AuthorUser User `gorm:"foreignKey:Author;references:Username"`
}
