package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/joelosiris11/mainkam/internal/auth"
	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	repo           repository.UserRepositoryInterface
	jwtSecret      string
	jwtExpiryHours int
}

func NewUserHandler(repo repository.UserRepositoryInterface, jwtSecret string, jwtExpiryHours int) *UserHandler {
	return &UserHandler{
		repo:           repo,
		jwtSecret:      jwtSecret,
		jwtExpiryHours: jwtExpiryHours,
	}
}

// LoginRequest представляет запрос на вход по имени пользователя и PIN
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=2,max=30"`
	Pin      string `json:"pin" binding:"required,len=4,numeric"`
}

// RoleRequest представляет запрос на выбор глобальной роли
type RoleRequest struct {
	Role string `json:"role" binding:"required,oneof=dev design pm qa admin"`
}

// UserResponse представляет публичные данные пользователя
type UserResponse struct {
	Username      string  `json:"username"`
	Role          *string `json:"role"`
	LastProjectID *string `json:"last_project_id,omitempty"`
	Theme         string  `json:"theme"`
	Notifications bool    `json:"notifications"`
	Language      string  `json:"language"`
	CreatedAt     string  `json:"created_at"`
}

// AuthResponse представляет ответ на успешный вход
type AuthResponse struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	IsNewUser bool         `json:"is_new_user"`
	HasRole   bool         `json:"has_role"`
}

func userToResponse(user *model.User) UserResponse {
	resp := UserResponse{
		Username:      user.Username,
		Role:          user.Role,
		Theme:         user.Theme,
		Notifications: user.Notifications,
		Language:      user.Language,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastProjectID != nil {
		id := user.LastProjectID.String()
		resp.LastProjectID = &id
	}
	return resp
}

// Login выполняет вход. Неизвестное имя пользователя регистрируется
// на лету: создается запись с PIN и пустой глобальной ролью
// @Summary      Login or register with username and PIN
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Username and 4-digit PIN"
// @Success      200  {object}  AuthResponse
// @Failure      401  {object}  map[string]string
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// Имена пользователей хранятся в нижнем регистре: Alice и alice — один аккаунт
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := h.repo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}

	isNewUser := false
	if user == nil {
		// Первый вход — создаем пользователя без роли
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Hash error"})
			return
		}

		user = &model.User{
			Username: username,
			PinHash:  string(hash),
			Role:     nil,
		}

		if err := h.repo.Create(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Create failed"})
			return
		}
		isNewUser = true
	} else {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(req.Pin)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid PIN"})
			return
		}
	}

	token, err := auth.GenerateToken(h.jwtSecret, username, h.jwtExpiryHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token error"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		User:      userToResponse(user),
		IsNewUser: isNewUser,
		HasRole:   user.HasRole(),
	})
}

// Logout очищает сохраненный последний проект пользователя.
// Сам токен остается валидным до истечения срока, клиент его забывает
// @Summary      Logout and clear the saved project selection
// @Tags         Users
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	if err := h.repo.SetLastProject(c.Request.Context(), username, nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me возвращает данные текущего пользователя
// @Summary      Get the current user
// @Tags         Users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  UserResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	user, err := h.repo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

// GetAll возвращает справочник пользователей для административных
// инструментов и выбора исполнителей
// @Summary      List all users
// @Tags         Users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  UserResponse
// @Router       /users [get]
func (h *UserHandler) GetAll(c *gin.Context) {
	if _, ok := currentUsername(c); !ok {
		return
	}

	users, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for i := range users {
		response = append(response, userToResponse(&users[i]))
	}

	c.JSON(http.StatusOK, response)
}

// SelectRole записывает глобальную роль текущего пользователя.
// Роль admin самостоятельно выбрать нельзя — ее выдает действующий администратор
// @Summary      Choose the global role for the current user
// @Tags         Users
// @Security     BearerAuth
// @Accept       json
// @Param        role  body  RoleRequest  true  "Global role"
// @Success      200  {object}  UserResponse
// @Failure      403  {object}  map[string]string
// @Router       /users/me/role [put]
func (h *UserHandler) SelectRole(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	user, err := h.repo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return
	}

	if req.Role == model.GlobalRoleAdmin && !user.IsGlobalAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "The admin role can only be granted by an administrator"})
		return
	}

	if err := h.repo.UpdateRole(c.Request.Context(), username, &req.Role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	user.Role = &req.Role
	c.JSON(http.StatusOK, userToResponse(user))
}

// SetUserRole переназначает глобальную роль другого пользователя.
// Доступно только глобальным администраторам
// @Summary      Reassign the global role of a user (admin only)
// @Tags         Users
// @Security     BearerAuth
// @Accept       json
// @Param        username  path  string       true  "Username"
// @Param        role      body  RoleRequest  true  "Global role"
// @Success      200  {object}  UserResponse
// @Router       /users/{username}/role [put]
func (h *UserHandler) SetUserRole(c *gin.Context) {
	if _, ok := h.requireGlobalAdmin(c); !ok {
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	target := strings.ToLower(c.Param("username"))
	user, err := h.repo.GetByUsername(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.repo.UpdateRole(c.Request.Context(), target, &req.Role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	user.Role = &req.Role
	c.JSON(http.StatusOK, userToResponse(user))
}

// DeleteUser удаляет пользователя вместе с его проектами, созданными
// им задачами и комментариями. Доступно только глобальным администраторам
// @Summary      Delete a user (admin only)
// @Tags         Users
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  map[string]string
// @Router       /users/{username} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := h.requireGlobalAdmin(c)
	if !ok {
		return
	}

	target := strings.ToLower(c.Param("username"))
	if target == actor.Username {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	user, err := h.repo.GetByUsername(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// requireGlobalAdmin проверяет, что запрос выполняет глобальный администратор
func (h *UserHandler) requireGlobalAdmin(c *gin.Context) (*model.User, bool) {
	username, ok := currentUsername(c)
	if !ok {
		return nil, false
	}

	user, err := h.repo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return nil, false
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return nil, false
	}

	if !user.IsGlobalAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
		return nil, false
	}

	return user, true
}
