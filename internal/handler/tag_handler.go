package handler

import (
	"net/http"

	"github.com/joelosiris11/mainkam/internal/events"
	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/permission"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TagHandler struct {
	accessChecker
	tagRepo  repository.TagRepositoryInterface
	taskRepo repository.TaskRepositoryInterface
	eventBus *events.Manager
}

func NewTagHandler(
	tagRepo repository.TagRepositoryInterface,
	taskRepo repository.TaskRepositoryInterface,
	projectRepo repository.ProjectRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	eventBus *events.Manager,
) *TagHandler {
	return &TagHandler{
		accessChecker: accessChecker{
			userRepo:    userRepo,
			projectRepo: projectRepo,
			memberRepo:  memberRepo,
		},
		tagRepo:  tagRepo,
		taskRepo: taskRepo,
		eventBus: eventBus,
	}
}

// TagRequest представляет запрос на создание тега
type TagRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// TagResponse представляет ответ с данными тега
type TagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func tagToResponse(tag *model.Tag) TagResponse {
	return TagResponse{
		ID:    tag.ID.String(),
		Name:  tag.Name,
		Color: tag.Color,
	}
}

// GetAll возвращает теги проекта
// @Summary      List project tags
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {array}  TagResponse
// @Router       /projects/{id}/tags [get]
func (h *TagHandler) GetAll(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	tags, err := h.tagRepo.GetByProjectID(c.Request.Context(), scope.project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tags"})
		return
	}

	response := make([]TagResponse, 0, len(tags))
	for i := range tags {
		response = append(response, tagToResponse(&tags[i]))
	}

	c.JSON(http.StatusOK, response)
}

// Create создает тег проекта
// @Summary      Create a tag
// @Tags         Tags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path  string      true  "Project ID"
// @Param        tag  body  TagRequest  true  "Tag data"
// @Success      201  {object}  TagResponse
// @Router       /projects/{id}/tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	color := req.Color
	if color == "" {
		color = "#64748b"
	}

	tag := &model.Tag{
		ID:        uuid.New(),
		ProjectID: scope.project.ID,
		Name:      req.Name,
		Color:     color,
	}

	if err := h.tagRepo.Create(c.Request.Context(), tag); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Tag already exists"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TagCreated,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"tag_id": tag.ID.String()},
	})

	c.JSON(http.StatusCreated, tagToResponse(tag))
}

// Delete удаляет тег вместе со всеми его привязками к задачам
// @Summary      Delete a tag
// @Tags         Tags
// @Security     BearerAuth
// @Param        id      path  string  true  "Project ID"
// @Param        tag_id  path  string  true  "Tag ID"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id}/tags/{tag_id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionDelete)
	if !ok {
		return
	}

	tag, ok := h.loadTag(c, scope)
	if !ok {
		return
	}

	if err := h.tagRepo.Delete(c.Request.Context(), tag.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TagDeleted,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"tag_id": tag.ID.String()},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

// AddToTask привязывает тег к задаче. Повторная привязка не ошибка
// @Summary      Attach a tag to a task
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        id       path  string  true  "Project ID"
// @Param        task_id  path  string  true  "Task ID"
// @Param        tag_id   path  string  true  "Tag ID"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id}/tasks/{task_id}/tags/{tag_id} [post]
func (h *TagHandler) AddToTask(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	task, tag, ok := h.loadTaskAndTag(c, scope)
	if !ok {
		return
	}

	if err := h.tagRepo.AddToTask(c.Request.Context(), task.ID, tag.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach tag"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TagAdded,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String(), "tag_id": tag.ID.String()},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Tag attached"})
}

// RemoveFromTask отвязывает тег от задачи
// @Summary      Detach a tag from a task
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        id       path  string  true  "Project ID"
// @Param        task_id  path  string  true  "Task ID"
// @Param        tag_id   path  string  true  "Tag ID"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id}/tasks/{task_id}/tags/{tag_id} [delete]
func (h *TagHandler) RemoveFromTask(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	task, tag, ok := h.loadTaskAndTag(c, scope)
	if !ok {
		return
	}

	if err := h.tagRepo.RemoveFromTask(c.Request.Context(), task.ID, tag.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to detach tag"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TagRemoved,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String(), "tag_id": tag.ID.String()},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Tag detached"})
}

// loadTag загружает тег из параметра :tag_id в рамках проекта
func (h *TagHandler) loadTag(c *gin.Context, scope *projectScope) (*model.Tag, bool) {
	tagID, err := uuid.Parse(c.Param("tag_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID format"})
		return nil, false
	}

	tag, err := h.tagRepo.GetByID(c.Request.Context(), tagID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tag"})
		return nil, false
	}
	if tag == nil || tag.ProjectID != scope.project.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return nil, false
	}

	return tag, true
}

func (h *TagHandler) loadTaskAndTag(c *gin.Context, scope *projectScope) (*model.Task, *model.Tag, bool) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return nil, nil, false
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), scope.project.ID, taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return nil, nil, false
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil, nil, false
	}

	tag, ok := h.loadTag(c, scope)
	if !ok {
		return nil, nil, false
	}

	return task, tag, true
}
