package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joelosiris11/mainkam/internal/handler"
	"github.com/joelosiris11/mainkam/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// Мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, username string, role *string) error {
	args := m.Called(ctx, username, role)
	return args.Error(0)
}

func (m *MockUserRepository) SetLastProject(ctx context.Context, username string, projectID *uuid.UUID) error {
	args := m.Called(ctx, username, projectID)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func setupTest() (*gin.Engine, *MockUserRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	mockRepo := new(MockUserRepository)
	userHandler := handler.NewUserHandler(mockRepo, "test-secret", 24)

	r.POST("/login", userHandler.Login)

	return r, mockRepo
}

func TestLogin_NewUserIsRegistered(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()

	// Мокаем методы репозитория: пользователя еще нет
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// Создаем тестовый запрос
	reqBody := handler.LoginRequest{
		Username: "alice",
		Pin:      "1234",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.AuthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, "alice", response.User.Username)
	assert.True(t, response.IsNewUser)
	assert.False(t, response.HasRole)

	mockRepo.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()

	// Создаем хешированный PIN для тестового пользователя
	hash, _ := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	role := model.GlobalRoleDev
	testUser := &model.User{
		Username: "alice",
		PinHash:  string(hash),
		Role:     &role,
	}

	// Мокаем метод репозитория
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(testUser, nil)

	// Создаем тестовый запрос
	reqBody := handler.LoginRequest{
		Username: "alice",
		Pin:      "1234",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.AuthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, "alice", response.User.Username)
	assert.False(t, response.IsNewUser)
	assert.True(t, response.HasRole)

	mockRepo.AssertExpectations(t)
}

func TestLogin_UsernameIsCaseInsensitive(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	testUser := &model.User{
		Username: "alice",
		PinHash:  string(hash),
	}

	// Alice и alice — один и тот же аккаунт
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(testUser, nil)

	reqBody := handler.LoginRequest{
		Username: "  Alice ",
		Pin:      "1234",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.AuthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "alice", response.User.Username)

	mockRepo.AssertExpectations(t)
}

func TestLogin_InvalidPin(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	testUser := &model.User{
		Username: "alice",
		PinHash:  string(hash),
	}

	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(testUser, nil)

	// Создаем тестовый запрос с неверным PIN
	reqBody := handler.LoginRequest{
		Username: "alice",
		Pin:      "9999",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var response map[string]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Invalid PIN", response["error"])

	mockRepo.AssertExpectations(t)
}

func TestLogin_RejectsMalformedPin(t *testing.T) {
	// Arrange
	router, _ := setupTest()

	// PIN должен состоять ровно из четырех цифр
	reqBody := handler.LoginRequest{
		Username: "alice",
		Pin:      "12ab",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
