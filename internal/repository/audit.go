package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
)

// IAuditRepository only ever appends and reads. There is deliberately no
// update or delete on the audit trail.
type IAuditRepository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	List(ctx context.Context, action string, offset, limit int) ([]*model.AuditEntry, int64, error)
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) IAuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns a page of entries newest first plus the total count, for the
// admin {data, count} envelope.
func (r *AuditRepository) List(ctx context.Context, action string, offset, limit int) ([]*model.AuditEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditEntry{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var entries []*model.AuditEntry
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, count, nil
}
