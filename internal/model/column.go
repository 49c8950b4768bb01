package model

import (
	"github.com/google/uuid"
)

// Column представляет колонку доски. Идентификатор — строковый слаг,
// на него ссылается поле status задач.
type Column struct {
	ID        string    `gorm:"primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"not null"`
	Color     string
	Position  int `gorm:"not null"`

	Project Project `gorm:"foreignKey:ProjectID"`
}

// Слаги стандартных колонок
const (
	ColumnBacklog    = "backlog"
	ColumnTodo       = "todo"
	ColumnInProgress = "in-progress"
	ColumnReview     = "review"
	ColumnCompleted  = "completed"
)

// DefaultColumns возвращает пять стандартных колонок нового проекта
// в фиксированном порядке 0-4
func DefaultColumns(projectID uuid.UUID) []Column {
	return []Column{
		{ID: ColumnBacklog, ProjectID: projectID, Title: "Backlog", Color: "#94a3b8", Position: 0},
		{ID: ColumnTodo, ProjectID: projectID, Title: "Por Hacer", Color: "#6366f1", Position: 1},
		{ID: ColumnInProgress, ProjectID: projectID, Title: "En Proceso", Color: "#f59e0b", Position: 2},
		{ID: ColumnReview, ProjectID: projectID, Title: "En Revisión", Color: "#8b5cf6", Position: 3},
		{ID: ColumnCompleted, ProjectID: projectID, Title: "Completado", Color: "#10b981", Position: 4},
	}
}
