package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joelosiris11/mainkam/internal/events"
	"github.com/joelosiris11/mainkam/internal/handler"
	"github.com/joelosiris11/mainkam/internal/middleware"
	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Мок репозитория проектов
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	project := args.Get(0)
	if project == nil {
		return nil, args.Error(1)
	}
	return project.(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) GetAllActive(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	projects := args.Get(0)
	if projects == nil {
		return nil, args.Error(1)
	}
	return projects.([]model.Project), args.Error(1)
}

func (m *MockProjectRepository) GetForMember(ctx context.Context, username string) ([]model.Project, error) {
	args := m.Called(ctx, username)
	projects := args.Get(0)
	if projects == nil {
		return nil, args.Error(1)
	}
	return projects.([]model.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Archive(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Мок репозитория участников проектов
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetMembers(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error) {
	args := m.Called(ctx, projectID)
	members := args.Get(0)
	if members == nil {
		return nil, args.Error(1)
	}
	return members.([]model.ProjectMember), args.Error(1)
}

func (m *MockMemberRepository) GetRole(ctx context.Context, projectID uuid.UUID, username string) (string, error) {
	args := m.Called(ctx, projectID, username)
	return args.String(0), args.Error(1)
}

func (m *MockMemberRepository) Add(ctx context.Context, projectID uuid.UUID, username, role string) error {
	args := m.Called(ctx, projectID, username, role)
	return args.Error(0)
}

func (m *MockMemberRepository) Remove(ctx context.Context, projectID uuid.UUID, username string) error {
	args := m.Called(ctx, projectID, username)
	return args.Error(0)
}

func setupMemberTest(username string) (*gin.Engine, *MockUserRepository, *MockProjectRepository, *MockMemberRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	userRepo := new(MockUserRepository)
	projectRepo := new(MockProjectRepository)
	memberRepo := new(MockMemberRepository)
	memberHandler := handler.NewMemberHandler(projectRepo, memberRepo, userRepo, events.NewManager())

	// Аутентификацию подменяем, права проверяет сам обработчик
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UsernameKey, username)
	})
	r.GET("/projects/:id/members", memberHandler.GetMembers)
	r.POST("/projects/:id/members", memberHandler.AddMember)
	r.DELETE("/projects/:id/members/:username", memberHandler.RemoveMember)

	return r, userRepo, projectRepo, memberRepo
}

func TestGetMembers_MarksOwner(t *testing.T) {
	// Arrange
	router, userRepo, projectRepo, memberRepo := setupMemberTest("alice")

	projectID := uuid.New()
	project := &model.Project{ID: projectID, Name: "Mi Proyecto", Owner: "alice"}

	userRepo.On("GetByUsername", mock.Anything, "alice").Return(&model.User{Username: "alice"}, nil)
	projectRepo.On("GetByID", mock.Anything, projectID).Return(project, nil)
	memberRepo.On("GetRole", mock.Anything, projectID, "alice").Return("admin", nil)
	memberRepo.On("GetMembers", mock.Anything, projectID).Return([]model.ProjectMember{
		{ProjectID: projectID, Username: "alice", Role: "admin", CreatedAt: time.Now()},
		{ProjectID: projectID, Username: "bob", Role: "editor", CreatedAt: time.Now()},
	}, nil)

	req, _ := http.NewRequest("GET", "/projects/"+projectID.String()+"/members", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var members []handler.MemberResponse
	err := json.Unmarshal(resp.Body.Bytes(), &members)
	assert.NoError(t, err)
	assert.Len(t, members, 2)
	assert.True(t, members[0].IsOwner)
	assert.False(t, members[1].IsOwner)

	memberRepo.AssertExpectations(t)
}

func TestAddMember_DuplicateReturnsConflict(t *testing.T) {
	// Arrange
	router, userRepo, projectRepo, memberRepo := setupMemberTest("alice")

	projectID := uuid.New()
	project := &model.Project{ID: projectID, Name: "Mi Proyecto", Owner: "alice"}

	userRepo.On("GetByUsername", mock.Anything, "alice").Return(&model.User{Username: "alice"}, nil)
	userRepo.On("GetByUsername", mock.Anything, "bob").Return(&model.User{Username: "bob"}, nil)
	projectRepo.On("GetByID", mock.Anything, projectID).Return(project, nil)
	memberRepo.On("GetRole", mock.Anything, projectID, "alice").Return("admin", nil)
	memberRepo.On("Add", mock.Anything, projectID, "bob", "editor").
		Return(repository.ErrDuplicateMember)

	reqBody := handler.AddMemberRequest{Username: "bob"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/projects/"+projectID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "already a member")

	memberRepo.AssertExpectations(t)
}

func TestAddMember_ViewerForbidden(t *testing.T) {
	// Arrange
	router, userRepo, projectRepo, memberRepo := setupMemberTest("carol")

	projectID := uuid.New()
	project := &model.Project{ID: projectID, Name: "Mi Proyecto", Owner: "alice"}

	userRepo.On("GetByUsername", mock.Anything, "carol").Return(&model.User{Username: "carol"}, nil)
	projectRepo.On("GetByID", mock.Anything, projectID).Return(project, nil)
	memberRepo.On("GetRole", mock.Anything, projectID, "carol").Return("viewer", nil)

	reqBody := handler.AddMemberRequest{Username: "bob"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/projects/"+projectID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	memberRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveMember_OwnerRefused(t *testing.T) {
	// Arrange
	router, userRepo, projectRepo, memberRepo := setupMemberTest("alice")

	projectID := uuid.New()
	project := &model.Project{ID: projectID, Name: "Mi Proyecto", Owner: "alice"}

	userRepo.On("GetByUsername", mock.Anything, "alice").Return(&model.User{Username: "alice"}, nil)
	projectRepo.On("GetByID", mock.Anything, projectID).Return(project, nil)
	memberRepo.On("GetRole", mock.Anything, projectID, "alice").Return("admin", nil)

	req, _ := http.NewRequest("DELETE", "/projects/"+projectID.String()+"/members/alice", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "owner")
	memberRepo.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}
