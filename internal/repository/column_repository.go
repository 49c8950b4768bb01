package repository

import (
	"context"
	"errors"

	"github.com/joelosiris11/mainkam/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

type ColumnRepositoryInterface interface {
	Create(ctx context.Context, column *model.Column) error
	GetByID(ctx context.Context, projectID uuid.UUID, id string) (*model.Column, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Column, error)
	Update(ctx context.Context, column *model.Column) error
	Delete(ctx context.Context, projectID uuid.UUID, id string) error
	GetMaxPosition(ctx context.Context, projectID uuid.UUID) (int, error)
	Reorder(ctx context.Context, projectID uuid.UUID, ids []string) error
}

var _ ColumnRepositoryInterface = (*ColumnRepository)(nil)

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *ColumnRepository) GetByID(ctx context.Context, projectID uuid.UUID, id string) (*model.Column, error) {
	var column model.Column
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&column).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position").
		Find(&columns).Error
	return columns, err
}

func (r *ColumnRepository) Update(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Save(column).Error
}

func (r *ColumnRepository) Delete(ctx context.Context, projectID uuid.UUID, id string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		Delete(&model.Column{}).Error
}

func (r *ColumnRepository) GetMaxPosition(ctx context.Context, projectID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Column{}).
		Select("COALESCE(MAX(position), -1) as max").
		Where("project_id = ?", projectID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

// Reorder переписывает позиции колонок согласно переданному порядку слагов
func (r *ColumnRepository) Reorder(ctx context.Context, projectID uuid.UUID, ids []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, id := range ids {
			if err := tx.Model(&model.Column{}).
				Where("project_id = ? AND id = ?", projectID, id).
				Update("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
