package repository

import (
	"context"
	"errors"

	"github.com/joelosiris11/mainkam/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

type TagRepositoryInterface interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Tag, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddToTask(ctx context.Context, taskID, tagID uuid.UUID) error
	RemoveFromTask(ctx context.Context, taskID, tagID uuid.UUID) error
	GetTaskTags(ctx context.Context, taskID uuid.UUID) ([]model.Tag, error)
}

var _ TagRepositoryInterface = (*TagRepository)(nil)

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *TagRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name").
		Find(&tags).Error
	return tags, err
}

// Delete удаляет тег и его связи с задачами
func (r *TagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Tag{}).Error
	})
}

// AddToTask привязывает тег к задаче, повторная привязка не создает дубликатов
func (r *TagRepository) AddToTask(ctx context.Context, taskID, tagID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		taskID, tagID,
	).Error
}

func (r *TagRepository) RemoveFromTask(ctx context.Context, taskID, tagID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?",
		taskID, tagID,
	).Error
}

func (r *TagRepository) GetTaskTags(ctx context.Context, taskID uuid.UUID) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", taskID).
		Order("tags.name").
		Find(&tags).Error
	return tags, err
}
