package repository

import (
	"context"
	"errors"

	"github.com/joelosiris11/mainkam/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetAll(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, username string, role *string) error
	SetLastProject(ctx context.Context, username string, projectID *uuid.UUID) error
	Delete(ctx context.Context, username string) error
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("username").Find(&users).Error
	return users, err
}

// UpdateRole записывает глобальную роль пользователя
func (r *UserRepository) UpdateRole(ctx context.Context, username string, role *string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Update("role", role).Error
}

// SetLastProject запоминает последний выбранный проект пользователя,
// nil очищает сохраненное значение
func (r *UserRepository) SetLastProject(ctx context.Context, username string, projectID *uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Update("last_project_id", projectID).Error
}

// Delete удаляет пользователя вместе со всем, что на него ссылается:
// его проекты целиком, созданные им задачи и комментарии в чужих
// проектах, назначения на оставшихся задачах и членство в проектах
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.Project{}).Select("id").Where("owner = ?", username)
		// Задачи собственных проектов и созданные пользователем в чужих
		doomed := tx.Model(&model.Task{}).Select("id").
			Where("project_id IN (?) OR created_by = ?", owned, username)

		if err := tx.Where("task_id IN (?)", doomed).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM task_tags WHERE task_id IN (?)`, doomed).Error; err != nil {
			return err
		}
		if err := tx.Where("author = ?", username).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?) OR created_by = ?", owned, username).
			Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Task{}).Where("assigned_to = ?", username).
			Update("assigned_to", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)", owned).Delete(&model.Column{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)", owned).Delete(&model.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?) OR username = ?", owned, username).
			Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner = ?", username).Delete(&model.Project{}).Error; err != nil {
			return err
		}
		return tx.Where("username = ?", username).Delete(&model.User{}).Error
	})
}
