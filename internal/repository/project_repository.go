package repository

import (
	"context"
	"errors"

	"github.com/joelosiris11/mainkam/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	GetAllActive(ctx context.Context) ([]model.Project, error)
	GetForMember(ctx context.Context, username string) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Archive(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create создает проект вместе с членством владельца и пятью стандартными
// колонками в одной транзакции: проект без колонок считается непригодным
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if project.ID == uuid.Nil {
			project.ID = uuid.New()
		}
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		owner := model.ProjectMember{
			ID:        uuid.New(),
			ProjectID: project.ID,
			Username:  project.Owner,
			Role:      model.RoleAdmin,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		columns := model.DefaultColumns(project.ID)
		return tx.Create(&columns).Error
	})
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// GetAllActive возвращает все неархивированные проекты (для глобальных администраторов)
func (r *ProjectRepository) GetAllActive(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Order("created_at").
		Find(&projects).Error
	return projects, err
}

// GetForMember возвращает неархивированные проекты, в которых пользователь состоит
func (r *ProjectRepository) GetForMember(ctx context.Context, username string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.username = ? AND projects.is_archived = ?", username, false).
		Order("projects.created_at").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Archive помечает проект архивированным, не удаляя его данные
func (r *ProjectRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Update("is_archived", true).Error
}

// Delete полностью удаляет проект вместе со всеми подчиненными записями.
// Каскад выполняется одной транзакцией, чтобы сбой не оставил сирот
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM comments WHERE task_id IN (SELECT id FROM tasks WHERE project_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM task_tags WHERE task_id IN (SELECT id FROM tasks WHERE project_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Column{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Project{}).Error
	})
}
