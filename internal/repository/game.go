package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
)

type IGameRepository interface {
	CreateWithSchedule(ctx context.Context, game *model.Game, schedule *model.GameSchedule) error
	FindByID(ctx context.Context, id string) (*model.Game, error)
	FindByIDAny(ctx context.Context, id string) (*model.Game, error)
	ListVisible(ctx context.Context, memberID string) ([]*model.Game, error)
	Update(ctx context.Context, game *model.Game) error
	SoftDelete(ctx context.Context, id string) error
	ReassignGamemaster(ctx context.Context, id, gamemasterID string) error

	FindScheduleByGameID(ctx context.Context, gameID string) (*model.GameSchedule, error)
	UpdateSchedule(ctx context.Context, schedule *model.GameSchedule) error
	FindDueSchedules(ctx context.Context, now time.Time) ([]*model.GameSchedule, error)

	CreateLocation(ctx context.Context, location *model.Location) error
	FindLocation(ctx context.Context, id string) (*model.Location, error)
}

type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) IGameRepository {
	return &GameRepository{db: db}
}

// CreateWithSchedule inserts the game and its schedule row in one
// transaction so a game can never exist without its recurrence descriptor.
func (r *GameRepository) CreateWithSchedule(ctx context.Context, game *model.Game, schedule *model.GameSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(game).Error; err != nil {
			return err
		}
		schedule.GameID = game.ID
		return tx.Create(schedule).Error
	})
}

func (r *GameRepository) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// FindByIDAny retrieves the game even when soft-deleted. Admin path only.
func (r *GameRepository) FindByIDAny(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// ListVisible returns public games plus the caller's own, soft-deleted
// excluded by gorm's default scope.
func (r *GameRepository) ListVisible(ctx context.Context, memberID string) ([]*model.Game, error) {
	var games []*model.Game
	err := r.db.WithContext(ctx).
		Where("visibility = ? OR gamemaster_id = ?", model.VisibilityPublic, memberID).
		Order("created_at DESC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (r *GameRepository) Update(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).Save(game).Error
}

func (r *GameRepository) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Game{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GameRepository) ReassignGamemaster(ctx context.Context, id, gamemasterID string) error {
	result := r.db.WithContext(ctx).Model(&model.Game{}).Where("id = ?", id).
		Update("gamemaster_id", gamemasterID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GameRepository) FindScheduleByGameID(ctx context.Context, gameID string) (*model.GameSchedule, error) {
	var schedule model.GameSchedule
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *GameRepository) UpdateSchedule(ctx context.Context, schedule *model.GameSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// FindDueSchedules returns schedules whose next_game_date has passed and
// that are still running.
func (r *GameRepository) FindDueSchedules(ctx context.Context, now time.Time) ([]*model.GameSchedule, error) {
	var schedules []*model.GameSchedule
	err := r.db.WithContext(ctx).
		Where("next_game_date <= ? AND status IN ?", now,
			[]string{model.ScheduleAwaitingPlayers, model.ScheduleActive}).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *GameRepository) CreateLocation(ctx context.Context, location *model.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *GameRepository) FindLocation(ctx context.Context, id string) (*model.Location, error) {
	var location model.Location
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}
