package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
)

type IRegistrationRepository interface {
	Create(ctx context.Context, registration *model.Registration) error
	FindByID(ctx context.Context, id string) (*model.Registration, error)
	FindByGameAndMember(ctx context.Context, gameID, memberID string) (*model.Registration, error)
	ListByGame(ctx context.Context, gameID string) ([]*model.Registration, error)
	ListApprovedMemberIDs(ctx context.Context, gameID string) ([]string, error)
	CountByStatus(ctx context.Context, gameID, status string) (int64, error)
	UpdateStatus(ctx context.Context, id, status, note string) error
}

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) IRegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, registration *model.Registration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*model.Registration, error) {
	var registration model.Registration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&registration).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *RegistrationRepository) FindByGameAndMember(ctx context.Context, gameID, memberID string) (*model.Registration, error) {
	var registration model.Registration
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND member_id = ?", gameID, memberID).
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *RegistrationRepository) ListByGame(ctx context.Context, gameID string) ([]*model.Registration, error) {
	var registrations []*model.Registration
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("created_at ASC").
		Find(&registrations).Error
	if err != nil {
		return nil, err
	}
	return registrations, nil
}

func (r *RegistrationRepository) ListApprovedMemberIDs(ctx context.Context, gameID string) ([]string, error) {
	var memberIDs []string
	err := r.db.WithContext(ctx).Model(&model.Registration{}).
		Where("game_id = ? AND status = ?", gameID, model.RegistrationApproved).
		Pluck("member_id", &memberIDs).Error
	if err != nil {
		return nil, err
	}
	return memberIDs, nil
}

func (r *RegistrationRepository) CountByStatus(ctx context.Context, gameID, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Registration{}).
		Where("game_id = ? AND status = ?", gameID, status).
		Count(&count).Error
	return count, err
}

func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id, status, note string) error {
	result := r.db.WithContext(ctx).Model(&model.Registration{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "status_note": note})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
