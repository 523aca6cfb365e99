package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
)

type IBroadcastRepository interface {
	Create(ctx context.Context, broadcast *model.Broadcast) error
	ListByGame(ctx context.Context, gameID string, limit int) ([]*model.Broadcast, error)
	ListClubWide(ctx context.Context, limit int) ([]*model.Broadcast, error)
}

type BroadcastRepository struct {
	db *gorm.DB
}

func NewBroadcastRepository(db *gorm.DB) IBroadcastRepository {
	return &BroadcastRepository{db: db}
}

func (r *BroadcastRepository) Create(ctx context.Context, broadcast *model.Broadcast) error {
	return r.db.WithContext(ctx).Create(broadcast).Error
}

func (r *BroadcastRepository) ListByGame(ctx context.Context, gameID string, limit int) ([]*model.Broadcast, error) {
	var broadcasts []*model.Broadcast
	err := r.db.WithContext(ctx).
		Where("audience = ? AND game_id = ?", model.AudienceGame, gameID).
		Order("created_at DESC").
		Limit(limit).
		Find(&broadcasts).Error
	if err != nil {
		return nil, err
	}
	return broadcasts, nil
}

func (r *BroadcastRepository) ListClubWide(ctx context.Context, limit int) ([]*model.Broadcast, error) {
	var broadcasts []*model.Broadcast
	err := r.db.WithContext(ctx).
		Where("audience = ?", model.AudienceClub).
		Order("created_at DESC").
		Limit(limit).
		Find(&broadcasts).Error
	if err != nil {
		return nil, err
	}
	return broadcasts, nil
}
