package handler

import (
	"net/http"
	"time"

	"github.com/joelosiris11/mainkam/internal/events"
	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/permission"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentHandler struct {
	accessChecker
	commentRepo repository.CommentRepositoryInterface
	taskRepo    repository.TaskRepositoryInterface
	eventBus    *events.Manager
}

func NewCommentHandler(
	commentRepo repository.CommentRepositoryInterface,
	taskRepo repository.TaskRepositoryInterface,
	projectRepo repository.ProjectRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	eventBus *events.Manager,
) *CommentHandler {
	return &CommentHandler{
		accessChecker: accessChecker{
			userRepo:    userRepo,
			projectRepo: projectRepo,
			memberRepo:  memberRepo,
		},
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		eventBus:    eventBus,
	}
}

// CommentRequest представляет запрос на добавление комментария
type CommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

// CommentResponse представляет ответ с данными комментария
type CommentResponse struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func commentToResponse(comment *model.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID.String(),
		TaskID:    comment.TaskID.String(),
		Author:    comment.Author,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
}

// GetByTask возвращает комментарии задачи в порядке добавления
// @Summary      List task comments
// @Tags         Comments
// @Security     BearerAuth
// @Produce      json
// @Param        id       path  string  true  "Project ID"
// @Param        task_id  path  string  true  "Task ID"
// @Success      200  {array}  CommentResponse
// @Router       /projects/{id}/tasks/{task_id}/comments [get]
func (h *CommentHandler) GetByTask(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	comments, err := h.commentRepo.GetByTaskID(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		response = append(response, commentToResponse(&comments[i]))
	}

	c.JSON(http.StatusOK, response)
}

// Create добавляет комментарий к задаче. Комментировать могут все
// участники проекта, включая наблюдателей
// @Summary      Add a comment to a task
// @Tags         Comments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string          true  "Project ID"
// @Param        task_id  path  string          true  "Task ID"
// @Param        comment  body  CommentRequest  true  "Comment text"
// @Success      201  {object}  CommentResponse
// @Router       /projects/{id}/tasks/{task_id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	if !scope.project.AllowComments {
		c.JSON(http.StatusForbidden, gin.H{"error": "Comments are disabled for this project"})
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment := &model.Comment{
		ID:     uuid.New(),
		TaskID: task.ID,
		Author: scope.user.Username,
		Text:   req.Text,
	}

	if err := h.commentRepo.Create(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.CommentAdded,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String(), "comment_id": comment.ID.String()},
	})

	c.JSON(http.StatusCreated, commentToResponse(comment))
}

// Delete удаляет комментарий. Разрешено автору либо обладателю
// права управления проектом
// @Summary      Delete a comment
// @Tags         Comments
// @Security     BearerAuth
// @Param        id          path  string  true  "Project ID"
// @Param        task_id     path  string  true  "Task ID"
// @Param        comment_id  path  string  true  "Comment ID"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id}/tasks/{task_id}/comments/{comment_id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	commentID, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID format"})
		return
	}

	comment, err := h.commentRepo.GetByID(c.Request.Context(), commentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		return
	}
	if comment == nil || comment.TaskID != task.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.Author != scope.user.Username && !permission.Has(scope.user, scope.role, permission.ActionManage) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	if err := h.commentRepo.Delete(c.Request.Context(), comment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.CommentDeleted,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String(), "comment_id": comment.ID.String()},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// loadTask загружает задачу из параметра :task_id в рамках проекта
func (h *CommentHandler) loadTask(c *gin.Context, scope *projectScope) (*model.Task, bool) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return nil, false
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), scope.project.ID, taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return nil, false
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil, false
	}

	return task, true
}
