package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/pkg/redis"
)

const (
	memberCacheKeyPrefix = "member:info:" // Redis String holding member JSON
	memberCacheTTL       = 1 * time.Hour
)

type IMemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	FindByID(ctx context.Context, id string) (*model.Member, error)
	FindByUserName(ctx context.Context, username string) (*model.Member, error)
	ExistsByUserName(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, member *model.Member) error
	UpdateRole(ctx context.Context, id, role string) error
	RequestDeletion(ctx context.Context, id string, at time.Time) error
	Restore(ctx context.Context, id string) (*model.Member, error)
	FindDeletionRequestedBefore(ctx context.Context, cutoff time.Time) ([]*model.Member, error)
	PurgePermanently(ctx context.Context, id string) error
}

type MemberRepository struct {
	db    *gorm.DB
	redis redis.RedisClient
}

// NewMemberRepository creates a member repository. redis may be nil, in
// which case the cache-aside path is skipped.
func NewMemberRepository(db *gorm.DB, redis redis.RedisClient) IMemberRepository {
	return &MemberRepository{db: db, redis: redis}
}

func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindByID looks the member up cache-first, falling back to the database
// and refilling the cache.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*model.Member, error) {
	if r.redis != nil {
		key := memberCacheKeyPrefix + id
		if val, err := r.redis.Get(ctx, key); err == nil {
			var member model.Member
			if json.Unmarshal([]byte(val), &member) == nil {
				return &member, nil
			}
		}
	}

	var member model.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		key := memberCacheKeyPrefix + id
		if data, err := json.Marshal(&member); err == nil {
			_ = r.redis.Set(ctx, key, data, memberCacheTTL)
		}
	}

	return &member, nil
}

func (r *MemberRepository) FindByUserName(ctx context.Context, username string) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) ExistsByUserName(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Member{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *MemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Member{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *MemberRepository) Update(ctx context.Context, member *model.Member) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return err
	}
	r.invalidate(ctx, member.ID)
	return nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, id, role string) error {
	result := r.db.WithContext(ctx).Model(&model.Member{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidate(ctx, id)
	return nil
}

// RequestDeletion soft-deletes the member and stamps the request time the
// purge job keys off.
func (r *MemberRepository) RequestDeletion(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Member{}).Where("id = ?", id).
			Update("deletion_requested_at", at)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("id = ?", id).Delete(&model.Member{}).Error; err != nil {
			return err
		}
		r.invalidate(ctx, id)
		return nil
	})
}

// Restore undoes a deletion request, clearing both the soft delete and the
// request timestamp.
func (r *MemberRepository) Restore(ctx context.Context, id string) (*model.Member, error) {
	result := r.db.WithContext(ctx).Unscoped().Model(&model.Member{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]any{
			"deleted_at":            nil,
			"deletion_requested_at": nil,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	r.invalidate(ctx, id)
	return r.FindByID(ctx, id)
}

func (r *MemberRepository) FindDeletionRequestedBefore(ctx context.Context, cutoff time.Time) ([]*model.Member, error) {
	var members []*model.Member
	err := r.db.WithContext(ctx).Unscoped().
		Where("deletion_requested_at IS NOT NULL AND deletion_requested_at <= ?", cutoff).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// PurgePermanently removes the row for good. Only the purge job calls this.
func (r *MemberRepository) PurgePermanently(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&model.Member{}).Error; err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *MemberRepository) invalidate(ctx context.Context, id string) {
	if r.redis != nil {
		_ = r.redis.Del(ctx, fmt.Sprintf("%s%s", memberCacheKeyPrefix, id))
	}
}
