package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
)

type IInviteRepository interface {
	Create(ctx context.Context, invite *model.Invite) error
	FindByCode(ctx context.Context, code string) (*model.Invite, error)
	ListByGame(ctx context.Context, gameID string) ([]*model.Invite, error)
	MarkViewed(ctx context.Context, id string, at time.Time) error
	// Accept marks the invite accepted and upserts the approved
	// registration atomically. Returns the registration.
	Accept(ctx context.Context, invite *model.Invite, memberID string, at time.Time) (*model.Registration, error)
	FindUnnotified(ctx context.Context, limit int) ([]*model.Invite, error)
	MarkNotified(ctx context.Context, id string) error
}

type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) IInviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Create(ctx context.Context, invite *model.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *InviteRepository) FindByCode(ctx context.Context, code string) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepository) ListByGame(ctx context.Context, gameID string) ([]*model.Invite, error) {
	var invites []*model.Invite
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// MarkViewed sets viewed_at once; later views keep the first timestamp.
func (r *InviteRepository) MarkViewed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Invite{}).
		Where("id = ? AND viewed_at IS NULL", id).
		Update("viewed_at", at).Error
}

// Accept runs the invite update and the registration upsert in a single
// transaction: either both land or neither does.
func (r *InviteRepository) Accept(ctx context.Context, invite *model.Invite, memberID string, at time.Time) (*model.Registration, error) {
	var registration *model.Registration

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guard inside the transaction so two concurrent accepts cannot
		// both pass the accepted check.
		result := tx.Model(&model.Invite{}).
			Where("id = ? AND accepted = ?", invite.ID, false).
			Updates(map[string]any{"accepted": true, "accepted_at": at})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var existing model.Registration
		err := tx.Where("game_id = ? AND member_id = ?", invite.GameID, memberID).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&existing).
				Updates(map[string]any{
					"status":      model.RegistrationApproved,
					"status_note": "joined via invite " + invite.Code,
				}).Error; err != nil {
				return err
			}
			existing.Status = model.RegistrationApproved
			registration = &existing
			return nil
		case err == gorm.ErrRecordNotFound:
			registration = &model.Registration{
				ID:         uuid.NewString(),
				GameID:     invite.GameID,
				MemberID:   memberID,
				Status:     model.RegistrationApproved,
				StatusNote: "joined via invite " + invite.Code,
			}
			return tx.Create(registration).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

func (r *InviteRepository) FindUnnotified(ctx context.Context, limit int) ([]*model.Invite, error) {
	var invites []*model.Invite
	err := r.db.WithContext(ctx).
		Where("notified = ? AND accepted = ? AND expires_at > ?", false, false, time.Now()).
		Limit(limit).
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *InviteRepository) MarkNotified(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Invite{}).
		Where("id = ?", id).
		Update("notified", true).Error
}
