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

type ProjectHandler struct {
	accessChecker
	eventBus *events.Manager
}

func NewProjectHandler(
	projectRepo repository.ProjectRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	eventBus *events.Manager,
) *ProjectHandler {
	return &ProjectHandler{
		accessChecker: accessChecker{
			userRepo:    userRepo,
			projectRepo: projectRepo,
			memberRepo:  memberRepo,
		},
		eventBus: eventBus,
	}
}

// ProjectRequest представляет запрос на создание проекта
type ProjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// ProjectUpdateRequest представляет частичное обновление проекта
type ProjectUpdateRequest struct {
	Name                *string    `json:"name"`
	Description         *string    `json:"description"`
	Color               *string    `json:"color"`
	Icon                *string    `json:"icon"`
	AllowComments       *bool      `json:"allow_comments"`
	AllowTaskAssignment *bool      `json:"allow_task_assignment"`
	RequireApproval     *bool      `json:"require_approval"`
	DefaultPriority     *string    `json:"default_priority"`
	BurndownStartDate   *time.Time `json:"burndown_start_date"`
	BurndownEndDate     *time.Time `json:"burndown_end_date"`
}

// ProjectResponse представляет ответ с данными проекта
type ProjectResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	Owner               string     `json:"owner"`
	Color               string     `json:"color"`
	Icon                string     `json:"icon"`
	IsArchived          bool       `json:"is_archived"`
	AllowComments       bool       `json:"allow_comments"`
	AllowTaskAssignment bool       `json:"allow_task_assignment"`
	RequireApproval     bool       `json:"require_approval"`
	DefaultPriority     string     `json:"default_priority"`
	BurndownStartDate   *time.Time `json:"burndown_start_date,omitempty"`
	BurndownEndDate     *time.Time `json:"burndown_end_date,omitempty"`
	CreatedAt           string     `json:"created_at"`
	UpdatedAt           string     `json:"updated_at"`
}

// ProjectListResponse группирует проекты пользователя по отношению к ним
type ProjectListResponse struct {
	Owned  []ProjectResponse `json:"owned"`
	Shared []ProjectResponse `json:"shared"`
	All    []ProjectResponse `json:"all"`
}

func projectToResponse(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ID:                  p.ID.String(),
		Name:                p.Name,
		Description:         p.Description,
		Owner:               p.Owner,
		Color:               p.Color,
		Icon:                p.Icon,
		IsArchived:          p.IsArchived,
		AllowComments:       p.AllowComments,
		AllowTaskAssignment: p.AllowTaskAssignment,
		RequireApproval:     p.RequireApproval,
		DefaultPriority:     p.DefaultPriority,
		BurndownStartDate:   p.BurndownStartDate,
		BurndownEndDate:     p.BurndownEndDate,
		CreatedAt:           p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           p.UpdatedAt.Format(time.RFC3339),
	}
}

// Create создает проект: создатель становится владельцем, вместе с проектом
// появляются членство владельца и пять стандартных колонок
// @Summary      Create a project
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        project  body  ProjectRequest  true  "Project data"
// @Success      201  {object}  ProjectResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project := &model.Project{
		ID:                  uuid.New(),
		Name:                req.Name,
		Description:         req.Description,
		Owner:               username,
		Color:               req.Color,
		Icon:                req.Icon,
		AllowComments:       true,
		AllowTaskAssignment: true,
		DefaultPriority:     model.PriorityMedium,
	}
	if project.Color == "" {
		project.Color = "#6366f1"
	}
	if project.Icon == "" {
		project.Icon = "📋"
	}

	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, projectToResponse(project))
}

// GetAll возвращает проекты пользователя, сгруппированные на owned/shared/all.
// Глобальный администратор видит все неархивированные проекты
// @Summary      List projects visible to the current user
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  ProjectListResponse
// @Router       /projects [get]
func (h *ProjectHandler) GetAll(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return
	}

	var projects []model.Project
	if user.IsGlobalAdmin() {
		projects, err = h.projectRepo.GetAllActive(c.Request.Context())
	} else {
		projects, err = h.projectRepo.GetForMember(c.Request.Context(), username)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := ProjectListResponse{
		Owned:  []ProjectResponse{},
		Shared: []ProjectResponse{},
		All:    []ProjectResponse{},
	}
	for i := range projects {
		item := projectToResponse(&projects[i])
		response.All = append(response.All, item)
		if projects[i].Owner == username {
			response.Owned = append(response.Owned, item)
		} else {
			response.Shared = append(response.Shared, item)
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetByID возвращает проект по ID. Архивированные проекты доступны
// по прямому идентификатору
// @Summary      Get a project by ID
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  ProjectResponse
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, projectToResponse(scope.project))
}

// Update изменяет свойства и настройки проекта
// @Summary      Update a project
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Project ID"
// @Param        project  body  ProjectUpdateRequest  true  "Fields to update"
// @Success      200  {object}  ProjectResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionManage)
	if !ok {
		return
	}

	var req ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project := scope.project
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Color != nil {
		project.Color = *req.Color
	}
	if req.Icon != nil {
		project.Icon = *req.Icon
	}
	if req.AllowComments != nil {
		project.AllowComments = *req.AllowComments
	}
	if req.AllowTaskAssignment != nil {
		project.AllowTaskAssignment = *req.AllowTaskAssignment
	}
	if req.RequireApproval != nil {
		project.RequireApproval = *req.RequireApproval
	}
	if req.DefaultPriority != nil {
		if !model.ValidPriority(*req.DefaultPriority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid default priority"})
			return
		}
		project.DefaultPriority = *req.DefaultPriority
	}
	if req.BurndownStartDate != nil {
		project.BurndownStartDate = req.BurndownStartDate
	}
	if req.BurndownEndDate != nil {
		project.BurndownEndDate = req.BurndownEndDate
	}

	if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	h.eventBus.Publish(project.ID.String(), &events.Event{
		Name:      events.ProjectUpdated,
		ProjectID: project.ID.String(),
	})

	c.JSON(http.StatusOK, projectToResponse(project))
}

// Select запоминает проект как текущий для пользователя: выбор
// восстанавливается при следующем входе
// @Summary      Select a project as current
// @Tags         Projects
// @Security     BearerAuth
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  ProjectResponse
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id}/select [post]
func (h *ProjectHandler) Select(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	projectID := scope.project.ID
	if err := h.userRepo.SetLastProject(c.Request.Context(), scope.user.Username, &projectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save project selection"})
		return
	}

	c.JSON(http.StatusOK, projectToResponse(scope.project))
}

// Archive архивирует проект: он пропадает из списков, но его данные
// сохраняются и доступны по ID
// @Summary      Archive a project (soft delete)
// @Tags         Projects
// @Security     BearerAuth
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id}/archive [post]
func (h *ProjectHandler) Archive(c *gin.Context) {
	scope, ok := h.requireOwner(c)
	if !ok {
		return
	}

	if err := h.projectRepo.Archive(c.Request.Context(), scope.project.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive project"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.ProjectArchived,
		ProjectID: scope.project.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Project archived"})
}

// Delete полностью удаляет проект вместе с колонками, задачами,
// комментариями, тегами и участниками
// @Summary      Delete a project and everything under it
// @Tags         Projects
// @Security     BearerAuth
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	scope, ok := h.requireOwner(c)
	if !ok {
		return
	}

	if err := h.projectRepo.Delete(c.Request.Context(), scope.project.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.ProjectDeleted,
		ProjectID: scope.project.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
