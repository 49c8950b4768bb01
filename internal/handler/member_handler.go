package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/joelosiris11/mainkam/internal/events"
	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/permission"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	accessChecker
	eventBus *events.Manager
}

func NewMemberHandler(
	projectRepo repository.ProjectRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	eventBus *events.Manager,
) *MemberHandler {
	return &MemberHandler{
		accessChecker: accessChecker{
			userRepo:    userRepo,
			projectRepo: projectRepo,
			memberRepo:  memberRepo,
		},
		eventBus: eventBus,
	}
}

// AddMemberRequest представляет запрос на добавление участника проекта
type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=admin editor viewer"`
}

// MemberResponse представляет участника проекта
type MemberResponse struct {
	Username string  `json:"username"`
	Role     string  `json:"role"`
	IsOwner  bool    `json:"is_owner"`
	UserRole *string `json:"global_role,omitempty"`
	AddedAt  string  `json:"added_at"`
}

// GetMembers возвращает список участников проекта
// @Summary      List project members
// @Tags         Members
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Project ID"
// @Success      200  {array}  MemberResponse
// @Router       /projects/{id}/members [get]
func (h *MemberHandler) GetMembers(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	members, err := h.memberRepo.GetMembers(c.Request.Context(), scope.project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]MemberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, MemberResponse{
			Username: member.Username,
			Role:     member.Role,
			IsOwner:  member.Username == scope.project.Owner,
			UserRole: member.User.Role,
			AddedAt:  member.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

// AddMember добавляет пользователя в проект. Роль по умолчанию — editor,
// повторное добавление отклоняется
// @Summary      Add a member to a project
// @Tags         Members
// @Security     BearerAuth
// @Accept       json
// @Param        id      path  string            true  "Project ID"
// @Param        member  body  AddMemberRequest  true  "Member and role"
// @Success      201  {object}  MemberResponse
// @Failure      409  {object}  map[string]string
// @Router       /projects/{id}/members [post]
func (h *MemberHandler) AddMember(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionManage)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Role == "" {
		req.Role = model.RoleEditor
	}

	// Убеждаемся, что такой пользователь зарегистрирован
	target := strings.ToLower(req.Username)
	targetUser, err := h.userRepo.GetByUsername(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if targetUser == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.memberRepo.Add(c.Request.Context(), scope.project.ID, target, req.Role); err != nil {
		if errors.Is(err, repository.ErrDuplicateMember) {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of the project"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.MemberAdded,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"username": target, "role": req.Role},
	})

	c.JSON(http.StatusCreated, MemberResponse{
		Username: target,
		Role:     req.Role,
		IsOwner:  false,
		UserRole: targetUser.Role,
		AddedAt:  time.Now().Format(time.RFC3339),
	})
}

// RemoveMember исключает участника из проекта. Владельца исключить нельзя
// @Summary      Remove a member from a project
// @Tags         Members
// @Security     BearerAuth
// @Param        id        path  string  true  "Project ID"
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /projects/{id}/members/{username} [delete]
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionManage)
	if !ok {
		return
	}

	target := strings.ToLower(c.Param("username"))
	if target == scope.project.Owner {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot remove the project owner"})
		return
	}

	if err := h.memberRepo.Remove(c.Request.Context(), scope.project.ID, target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	h.eventBus.Publish(scope.project.ID.String(), &events.Event{
		Name:      events.MemberRemoved,
		ProjectID: scope.project.ID.String(),
		Payload:   gin.H{"username": target},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
