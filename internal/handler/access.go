package handler

import (
	"net/http"

	"github.com/joelosiris11/mainkam/internal/middleware"
	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/permission"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUsername извлекает имя аутентифицированного пользователя из контекста.
// При отсутствии пишет ответ и возвращает false
func currentUsername(c *gin.Context) (string, bool) {
	value, exists := c.Get(middleware.UsernameKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}

	username, ok := value.(string)
	if !ok || username == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid username format"})
		return "", false
	}

	return username, true
}

// projectScope — загруженный контекст запроса к проекту: пользователь,
// проект и роль пользователя в нем
type projectScope struct {
	user    *model.User
	project *model.Project
	role    string
}

// accessChecker проверяет права доступа к проекту на стороне сервера,
// не полагаясь на проверки клиента
type accessChecker struct {
	userRepo    repository.UserRepositoryInterface
	projectRepo repository.ProjectRepositoryInterface
	memberRepo  repository.MemberRepositoryInterface
}

// requireProject загружает проект из параметра :id и проверяет право
// пользователя на действие. При отказе пишет ответ и возвращает false
func (a *accessChecker) requireProject(c *gin.Context, action string) (*projectScope, bool) {
	username, ok := currentUsername(c)
	if !ok {
		return nil, false
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return nil, false
	}

	user, err := a.userRepo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return nil, false
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return nil, false
	}

	project, err := a.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return nil, false
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return nil, false
	}

	role, err := a.memberRepo.GetRole(c.Request.Context(), projectID, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return nil, false
	}

	if !permission.Has(user, role, action) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to perform this action"})
		return nil, false
	}

	return &projectScope{user: user, project: project, role: role}, true
}

// requireOwner дополнительно требует, чтобы пользователь был владельцем
// проекта (или глобальным администратором)
func (a *accessChecker) requireOwner(c *gin.Context) (*projectScope, bool) {
	scope, ok := a.requireProject(c, permission.ActionRead)
	if !ok {
		return nil, false
	}

	if !permission.IsProjectOwner(scope.user, scope.project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can perform this action"})
		return nil, false
	}

	return scope, true
}
