package repository_test

import (
	"context"
	"testing"

	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestProjectRepository_Create_SeedsOwnerAndColumns(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	project := &model.Project{
		ID:                  uuid.New(),
		Name:                "Mi Proyecto",
		Owner:               "alice",
		Color:               "#6366f1",
		Icon:                "📋",
		AllowComments:       true,
		AllowTaskAssignment: true,
		DefaultPriority:     "medium",
	}

	// Проект, членство владельца и пять стандартных колонок создаются
	// в одной транзакции
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"is_archived", "require_approval"}).
			AddRow(false, false))
	mock.ExpectQuery(`INSERT INTO "project_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(`INSERT INTO "columns"`).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	// Act
	err := projectRepo.Create(context.Background(), project)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_GetForMember(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	projectID := uuid.New()

	// Ожидаем запрос с JOIN по участникам проекта
	mock.ExpectQuery(`SELECT .* FROM "projects" JOIN project_members ON project_members.project_id = projects.id WHERE project_members.username = .*`).
		WithArgs("alice", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner", "is_archived"}).
			AddRow(projectID.String(), "Mi Proyecto", "alice", false))

	// Act
	projects, err := projectRepo.GetForMember(context.Background(), "alice")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, projects, 1)
	assert.Equal(t, projectID, projects[0].ID)
	assert.Equal(t, "Mi Proyecto", projects[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Archive(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	projectID := uuid.New()

	// Архивирование - одно обновление флага
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "projects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := projectRepo.Archive(context.Background(), projectID)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Delete_CascadesAllChildren(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	projectID := uuid.New()

	// Каскадное удаление выполняется одной транзакцией: комментарии,
	// привязки тегов, задачи, колонки, теги, участники, сам проект
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM comments WHERE task_id IN`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM task_tags WHERE task_id IN`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "tasks" WHERE project_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "columns" WHERE project_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM "tags" WHERE project_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "project_members" WHERE project_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "projects" WHERE id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := projectRepo.Delete(context.Background(), projectID)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	projectID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "projects" WHERE id = .*`).
		WithArgs(projectID.String(), 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	project, err := projectRepo.GetByID(context.Background(), projectID)

	// Assert
	assert.NoError(t, err)
	assert.Nil(t, project)
	assert.NoError(t, mock.ExpectationsWereMet())
}
