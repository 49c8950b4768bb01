package events

// Имена событий, рассылаемых подписчикам проекта
const (
	ProjectUpdated   = "project.updated"
	ProjectArchived  = "project.archived"
	ProjectDeleted   = "project.deleted"
	MemberAdded      = "member.added"
	MemberRemoved    = "member.removed"
	ColumnCreated    = "column.created"
	ColumnUpdated    = "column.updated"
	ColumnDeleted    = "column.deleted"
	ColumnsReordered = "column.reordered"
	TaskCreated      = "task.created"
	TaskUpdated      = "task.updated"
	TaskMoved        = "task.moved"
	TaskDeleted      = "task.deleted"
	CommentAdded     = "comment.added"
	CommentDeleted   = "comment.deleted"
	TagCreated       = "tag.created"
	TagDeleted       = "tag.deleted"
	TagAdded         = "tag.added"
	TagRemoved       = "tag.removed"
)

// Event — сообщение подписчикам проекта об изменении данных.
// Подписчики перечитывают состояние сами: событие несет только факт
// изменения и полезную нагрузку для адресной инвалидации
type Event struct {
	Name      string      `json:"name"`
	ProjectID string      `json:"project_id"`
	Payload   interface{} `json:"payload,omitempty"`
}
