package repository_test

import (
	"context"
	"testing"

	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	user := &model.User{
		Username:      "alice",
		PinHash:       "hashed_pin",
		Theme:         "light",
		Notifications: true,
		Language:      "es",
	}

	// Ожидаем SQL запрос на создание пользователя
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := userRepo.Create(context.Background(), user)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	// Ожидаем SQL запрос на поиск пользователя по имени
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE username = .*`).
		WithArgs("alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"username", "pin_hash", "role"}).
			AddRow("alice", "hashed_pin", "dev"))

	// Act
	user, err := userRepo.GetByUsername(context.Background(), "alice")

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hashed_pin", user.PinHash)
	assert.NotNil(t, user.Role)
	assert.Equal(t, "dev", *user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	// Ожидаем SQL запрос на поиск пользователя - не найден
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE username = .*`).
		WithArgs("ghost", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	user, err := userRepo.GetByUsername(context.Background(), "ghost")

	// Assert
	assert.NoError(t, err) // Метод не возвращает ошибку при отсутствии записи
	assert.Nil(t, user)    // Но возвращает nil пользователя
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername_Error(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	// Ожидаем SQL запрос - произошла ошибка БД
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE username = .*`).
		WithArgs("alice", 1).
		WillReturnError(assert.AnError)

	// Act
	user, err := userRepo.GetByUsername(context.Background(), "alice")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRole(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	role := "pm"

	// Ожидаем SQL запрос на обновление роли
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := userRepo.UpdateRole(context.Background(), "alice", &role)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete_RemovesAuthoredContent(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	// Удаление пользователя с собственными проектами и созданными
	// задачами: одна транзакция сносит проекты целиком, его задачи и
	// комментарии в чужих проектах, назначения и членство, и только
	// потом самого пользователя
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "comments" WHERE task_id IN .*`).
		WithArgs("alice", "alice").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM task_tags WHERE task_id IN .*`).
		WithArgs("alice", "alice").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "comments" WHERE author = .*`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "tasks" WHERE project_id IN .* OR created_by = .*`).
		WithArgs("alice", "alice").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WithArgs(nil, sqlmock.AnyArg(), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "columns" WHERE project_id IN .*`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM "tags" WHERE project_id IN .*`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "project_members" WHERE project_id IN .* OR username = .*`).
		WithArgs("alice", "alice").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "projects" WHERE owner = .*`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "users" WHERE username = .*`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := userRepo.Delete(context.Background(), "alice")

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
