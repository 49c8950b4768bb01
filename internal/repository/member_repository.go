package repository

import (
	"context"
	"errors"

	"github.com/joelosiris11/mainkam/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

type MemberRepositoryInterface interface {
	GetMembers(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error)
	GetRole(ctx context.Context, projectID uuid.UUID, username string) (string, error)
	Add(ctx context.Context, projectID uuid.UUID, username, role string) error
	Remove(ctx context.Context, projectID uuid.UUID, username string) error
}

var _ MemberRepositoryInterface = (*MemberRepository)(nil)

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// GetMembers возвращает участников проекта вместе с данными пользователей
func (r *MemberRepository) GetMembers(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error) {
	var members []model.ProjectMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at").
		Find(&members).Error
	return members, err
}

// GetRole возвращает роль пользователя в проекте (или пустую строку, если он не участник)
func (r *MemberRepository) GetRole(ctx context.Context, projectID uuid.UUID, username string) (string, error) {
	var member model.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND username = ?", projectID, username).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// Add добавляет участника проекта. Повторное добавление отклоняется
// с ErrDuplicateMember, проверка и вставка выполняются в транзакции
func (r *MemberRepository) Add(ctx context.Context, projectID uuid.UUID, username, role string) error {
	member := model.ProjectMember{
		ID:        uuid.New(),
		ProjectID: projectID,
		Username:  username,
		Role:      role,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.ProjectMember
		err := tx.Where("project_id = ? AND username = ?", projectID, username).First(&existing).Error
		if err == nil {
			return ErrDuplicateMember
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&member).Error
	})
}

func (r *MemberRepository) Remove(ctx context.Context, projectID uuid.UUID, username string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND username = ?", projectID, username).
		Delete(&model.ProjectMember{}).Error
}
