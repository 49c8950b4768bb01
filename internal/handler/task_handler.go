package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/joelosiris11/mainkam/internal/events"
	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/permission"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	accessChecker
	taskRepo   repository.TaskRepositoryInterface
	columnRepo repository.ColumnRepositoryInterface
	eventBus   *events.Manager
}

func NewTaskHandler(
	taskRepo repository.TaskRepositoryInterface,
	columnRepo repository.ColumnRepositoryInterface,
	projectRepo repository.ProjectRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	eventBus *events.Manager,
) *TaskHandler {
	return &TaskHandler{
		accessChecker: accessChecker{
			userRepo:    userRepo,
			projectRepo: projectRepo,
			memberRepo:  memberRepo,
		},
		taskRepo:   taskRepo,
		columnRepo: columnRepo,
		eventBus:   eventBus,
	}
}

// TaskRequest представляет запрос на создание задачи
type TaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	Type        string     `json:"type"`
	Hours       float64    `json:"hours" binding:"omitempty,min=0"`
	AssignedTo  *string    `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	StartDate   *time.Time `json:"start_date"`
}

// TaskUpdateRequest представляет частичное обновление задачи
type TaskUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Type        *string    `json:"type"`
	Hours       *float64   `json:"hours"`
	DueDate     *time.Time `json:"due_date"`
	StartDate   *time.Time `json:"start_date"`
}

// TaskMoveRequest представляет запрос на перемещение задачи в другую колонку
type TaskMoveRequest struct {
	Status string `json:"status" binding:"required"`
}

// TaskAssignRequest представляет запрос на назначение исполнителя
type TaskAssignRequest struct {
	Username string `json:"username" binding:"required"`
}

// TaskResponse представляет ответ с данными задачи
type TaskResponse struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        string        `json:"status"`
	Priority      string        `json:"priority"`
	Type          string        `json:"type"`
	Hours         float64       `json:"hours"`
	CreatedBy     string        `json:"created_by"`
	AssignedTo    *string       `json:"assigned_to,omitempty"`
	Tags          []TagResponse `json:"tags,omitempty"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	StartDate     *time.Time    `json:"start_date,omitempty"`
	CompletedDate *time.Time    `json:"completed_date,omitempty"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}

func taskToResponse(task *model.Task) TaskResponse {
	response := TaskResponse{
		ID:            task.ID.String(),
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		Priority:      task.Priority,
		Type:          task.Type,
		Hours:         task.Hours,
		CreatedBy:     task.CreatedBy,
		AssignedTo:    task.AssignedTo,
		DueDate:       task.DueDate,
		StartDate:     task.StartDate,
		CompletedDate: task.CompletedDate,
		CreatedAt:     task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     task.UpdatedAt.Format(time.RFC3339),
	}
	for i := range task.Tags {
		response.Tags = append(response.Tags, tagToResponse(&task.Tags[i]))
	}
	return response
}

// GetAll возвращает задачи проекта, новые первыми
// @Summary      List project tasks
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {array}  TaskResponse
// @Router       /projects/{id}/tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	tasks, err := h.taskRepo.GetByProjectID(c.Request.Context(), scope.project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		response = append(response, taskToResponse(&tasks[i]))
	}

	c.JSON(http.StatusOK, response)
}

// Create создает задачу. Пустой статус означает первую колонку доски,
// пустой приоритет — приоритет проекта по умолчанию
// @Summary      Create a task
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string       true  "Project ID"
// @Param        task  body  TaskRequest  true  "Task data"
// @Success      201  {object}  TaskResponse
// @Router       /projects/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Определяем колонку: указанная либо первая по позиции
	status := req.Status
	if status == "" {
		columns, err := h.columnRepo.GetByProjectID(c.Request.Context(), scope.project.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve columns"})
			return
		}
		if len(columns) == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Project has no columns"})
			return
		}
		status = columns[0].ID
	} else {
		column, err := h.columnRepo.GetByID(c.Request.Context(), scope.project.ID, status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
			return
		}
		if column == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
			return
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = scope.project.DefaultPriority
	}
	if priority == "" {
		priority = model.PriorityMedium
	}

	taskType := req.Type
	if taskType == "" {
		taskType = model.TypeGeneral
	}
	if !model.ValidTaskType(taskType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task type"})
		return
	}

	task := &model.Task{
		ID:          uuid.New(),
		ProjectID:   scope.project.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		Type:        taskType,
		Hours:       req.Hours,
		CreatedBy:   scope.user.Username,
		DueDate:     req.DueDate,
		StartDate:   req.StartDate,
	}

	if req.AssignedTo != nil {
		assignee, ok := h.resolveAssignee(c, scope, *req.AssignedTo)
		if !ok {
			return
		}
		task.AssignedTo = &assignee
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TaskCreated,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String()},
	})

	c.JSON(http.StatusCreated, taskToResponse(task))
}

// GetByID возвращает задачу по ID
// @Summary      Get a task by ID
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id       path  string  true  "Project ID"
// @Param        task_id  path  string  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Router       /projects/{id}/tasks/{task_id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, taskToResponse(task))
}

// Update изменяет поля задачи. Перевод в колонку completed проставляет
// дату завершения, возврат из нее — очищает
// @Summary      Update a task
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Project ID"
// @Param        task_id  path  string             true  "Task ID"
// @Param        task     body  TaskUpdateRequest  true  "Fields to update"
// @Success      200  {object}  TaskResponse
// @Router       /projects/{id}/tasks/{task_id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		task.Priority = *req.Priority
	}
	if req.Type != nil {
		if !model.ValidTaskType(*req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task type"})
			return
		}
		task.Type = *req.Type
	}
	if req.Hours != nil {
		if *req.Hours < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Hours must be non-negative"})
			return
		}
		task.Hours = *req.Hours
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.StartDate != nil {
		task.StartDate = req.StartDate
	}
	if req.Status != nil && *req.Status != task.Status {
		if ok := h.applyStatus(c, scope, task, *req.Status); !ok {
			return
		}
	}

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TaskUpdated,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String()},
	})

	c.JSON(http.StatusOK, taskToResponse(task))
}

// Delete удаляет задачу вместе с комментариями и связями с тегами
// @Summary      Delete a task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id       path  string  true  "Project ID"
// @Param        task_id  path  string  true  "Task ID"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id}/tasks/{task_id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionDelete)
	if !ok {
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), task.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TaskDeleted,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String()},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// Move переносит задачу в другую колонку. Несуществующая колонка отклоняется
// @Summary      Move a task to another column
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string           true  "Project ID"
// @Param        task_id  path  string           true  "Task ID"
// @Param        move     body  TaskMoveRequest  true  "Target column"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id}/tasks/{task_id}/move [post]
func (h *TaskHandler) Move(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	var req TaskMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Status != task.Status {
		if ok := h.applyStatus(c, scope, task, req.Status); !ok {
			return
		}
		if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move task"})
			return
		}
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TaskMoved,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String(), "status": task.Status},
	})

	c.JSON(http.StatusOK, taskToResponse(task))
}

// Assign назначает исполнителя задачи
// @Summary      Assign a user to a task
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Project ID"
// @Param        task_id  path  string             true  "Task ID"
// @Param        assign   body  TaskAssignRequest  true  "Assignee"
// @Success      200  {object}  TaskResponse
// @Router       /projects/{id}/tasks/{task_id}/assign [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	var req TaskAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assignee, ok := h.resolveAssignee(c, scope, req.Username)
	if !ok {
		return
	}

	task.AssignedTo = &assignee
	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign task"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TaskUpdated,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String()},
	})

	c.JSON(http.StatusOK, taskToResponse(task))
}

// Unassign снимает исполнителя с задачи
// @Summary      Unassign the task assignee
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id       path  string  true  "Project ID"
// @Param        task_id  path  string  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Router       /projects/{id}/tasks/{task_id}/assign [delete]
func (h *TaskHandler) Unassign(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionWrite)
	if !ok {
		return
	}

	task, ok := h.loadTask(c, scope)
	if !ok {
		return
	}

	task.AssignedTo = nil
	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign task"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.TaskUpdated,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"task_id": task.ID.String()},
	})

	c.JSON(http.StatusOK, taskToResponse(task))
}

// loadTask загружает задачу из параметра :task_id в рамках проекта
func (h *TaskHandler) loadTask(c *gin.Context, scope *projectScope) (*model.Task, bool) {
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

// applyStatus проверяет целевую колонку и обновляет статус задачи
// вместе с датой завершения
func (h *TaskHandler) applyStatus(c *gin.Context, scope *projectScope, task *model.Task, status string) bool {
	column, err := h.columnRepo.GetByID(c.Request.Context(), scope.project.ID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return false
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return false
	}

	task.Status = status
	if status == model.ColumnCompleted {
		now := time.Now()
		task.CompletedDate = &now
	} else {
		task.CompletedDate = nil
	}
	return true
}

// resolveAssignee проверяет, что назначение разрешено настройками проекта
// и что исполнитель является его участником
func (h *TaskHandler) resolveAssignee(c *gin.Context, scope *projectScope, username string) (string, bool) {
	if !scope.project.AllowTaskAssignment {
		c.JSON(http.StatusForbidden, gin.H{"error": "Task assignment is disabled for this project"})
		return "", false
	}

	assignee := strings.ToLower(username)
	role, err := h.memberRepo.GetRole(c.Request.Context(), scope.project.ID, assignee)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check assignee"})
		return "", false
	}
	if role == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Assignee is not a member of the project"})
		return "", false
	}

	return assignee, true
}
