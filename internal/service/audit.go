package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
)

// IAuditService records administrative mutations. The trail is append-only;
// there is no mutation API at any layer.
type IAuditService interface {
	Record(ctx context.Context, action, actorID, targetType, targetID string, metadata any) error
	List(ctx context.Context, action string, offset, limit int) ([]*model.AuditEntry, int64, error)
}

type AuditService struct {
	auditRepo repository.IAuditRepository
}

func NewAuditService(auditRepo repository.IAuditRepository) IAuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record appends one entry. metadata may be nil; anything else is stored as
// a JSON snapshot.
func (s *AuditService) Record(ctx context.Context, action, actorID, targetType, targetID string, metadata any) error {
	entry := &model.AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		ActorID:    actorID,
		TargetType: targetType,
		TargetID:   targetID,
	}

	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		entry.Metadata = string(data)
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, action string, offset, limit int) ([]*model.AuditEntry, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.auditRepo.List(ctx, action, offset, limit)
}
