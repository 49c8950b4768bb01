package handler

import (
	"net/http"
	"strings"

	"github.com/joelosiris11/mainkam/internal/events"
	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/permission"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ColumnHandler struct {
	accessChecker
	columnRepo repository.ColumnRepositoryInterface
	taskRepo   repository.TaskRepositoryInterface
	eventBus   *events.Manager
}

func NewColumnHandler(
	columnRepo repository.ColumnRepositoryInterface,
	taskRepo repository.TaskRepositoryInterface,
	projectRepo repository.ProjectRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	eventBus *events.Manager,
) *ColumnHandler {
	return &ColumnHandler{
		accessChecker: accessChecker{
			userRepo:    userRepo,
			projectRepo: projectRepo,
			memberRepo:  memberRepo,
		},
		columnRepo: columnRepo,
		taskRepo:   taskRepo,
		eventBus:   eventBus,
	}
}

// ColumnRequest представляет запрос на создание или обновление колонки
type ColumnRequest struct {
	Title string `json:"title" binding:"required,min=1,max=50"`
	Color string `json:"color"`
}

// ColumnReorderRequest представляет запрос на изменение порядка колонок
type ColumnReorderRequest struct {
	ColumnIDs []string `json:"column_ids" binding:"required,min=1"`
}

// ColumnResponse представляет ответ с данными колонки
type ColumnResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

func columnToResponse(column *model.Column) ColumnResponse {
	return ColumnResponse{
		ID:       column.ID,
		Title:    column.Title,
		Color:    column.Color,
		Position: column.Position,
	}
}

// slugify переводит название колонки в строковый идентификатор
func slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// GetAll возвращает колонки проекта в порядке их позиций
// @Summary      List project columns
// @Tags         Columns
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {array}  ColumnResponse
// @Router       /projects/{id}/columns [get]
func (h *ColumnHandler) GetAll(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	columns, err := h.columnRepo.GetByProjectID(c.Request.Context(), scope.project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve columns"})
		return
	}

	response := make([]ColumnResponse, 0, len(columns))
	for i := range columns {
		response = append(response, columnToResponse(&columns[i]))
	}

	c.JSON(http.StatusOK, response)
}

// Create добавляет колонку в конец доски
// @Summary      Create a column
// @Tags         Columns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path  string         true  "Project ID"
// @Param        column  body  ColumnRequest  true  "Column data"
// @Success      201  {object}  ColumnResponse
// @Failure      409  {object}  map[string]string
// @Router       /projects/{id}/columns [post]
func (h *ColumnHandler) Create(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	var req ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id := slugify(req.Title)
	if id == "" {
		id = uuid.NewString()
	}

	// Слаг должен быть уникален внутри проекта
	existing, err := h.columnRepo.GetByID(c.Request.Context(), scope.project.ID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check column"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A column with this title already exists"})
		return
	}

	maxPosition, err := h.columnRepo.GetMaxPosition(c.Request.Context(), scope.project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to determine column position"})
		return
	}

	column := &model.Column{
		ID:        id,
		ProjectID: scope.project.ID,
		Title:     req.Title,
		Color:     req.Color,
		Position:  maxPosition + 1,
	}

	if err := h.columnRepo.Create(c.Request.Context(), column); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create column"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.ColumnCreated,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"column_id": column.ID},
	})

	c.JSON(http.StatusCreated, columnToResponse(column))
}

// Update изменяет название и цвет колонки
// @Summary      Update a column
// @Tags         Columns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id         path  string         true  "Project ID"
// @Param        column_id  path  string         true  "Column ID"
// @Param        column     body  ColumnRequest  true  "Column data"
// @Success      200  {object}  ColumnResponse
// @Router       /projects/{id}/columns/{column_id} [put]
func (h *ColumnHandler) Update(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), scope.project.ID, c.Param("column_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	var req ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	column.Title = req.Title
	if req.Color != "" {
		column.Color = req.Color
	}

	if err := h.columnRepo.Update(c.Request.Context(), column); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update column"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.ColumnUpdated,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"column_id": column.ID},
	})

	c.JSON(http.StatusOK, columnToResponse(column))
}

// Delete удаляет пустую колонку. Колонка с задачами не удаляется
// @Summary      Delete an empty column
// @Tags         Columns
// @Security     BearerAuth
// @Param        id         path  string  true  "Project ID"
// @Param        column_id  path  string  true  "Column ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /projects/{id}/columns/{column_id} [delete]
func (h *ColumnHandler) Delete(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionDelete)
	if !ok {
		return
	}

	columnID := c.Param("column_id")
	column, err := h.columnRepo.GetByID(c.Request.Context(), scope.project.ID, columnID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	// Колонку можно удалить только когда ни одна задача на нее не ссылается
	count, err := h.taskRepo.CountByStatus(c.Request.Context(), scope.project.ID, columnID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tasks"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a column that contains tasks"})
		return
	}

	if err := h.columnRepo.Delete(c.Request.Context(), scope.project.ID, columnID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete column"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.ColumnDeleted,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"column_id": columnID},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Column deleted"})
}

// Reorder переставляет колонки согласно переданному порядку
// @Summary      Reorder project columns
// @Tags         Columns
// @Security     BearerAuth
// @Accept       json
// @Param        id     path  string                true  "Project ID"
// @Param        order  body  ColumnReorderRequest  true  "Column IDs in the new order"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id}/columns/reorder [post]
func (h *ColumnHandler) Reorder(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	var req ColumnReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.columnRepo.Reorder(c.Request.Context(), scope.project.ID, req.ColumnIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder columns"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.ColumnsReordered,
		ProjectID: scope.project.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Columns reordered"})
}
