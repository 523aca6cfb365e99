package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/middleware/log"
	"github.com/tableguild/tableguild/pkg/mq"
	"go.uber.org/zap"
)

var (
	ErrEmptyBroadcast    = errors.New("broadcast subject or body is empty")
	ErrNotClubAdmin      = errors.New("club broadcasts need the admin role")
	ErrBroadcastAudience = errors.New("not part of this game's audience")
)

// Notifier pushes a stored broadcast to connected members. Nil is allowed;
// delivery then happens on the next fetch.
type Notifier interface {
	NotifyMembers(memberIDs []string, broadcast *model.Broadcast)
	NotifyAll(broadcast *model.Broadcast)
}

// SendBroadcastRequest is the announcement payload.
type SendBroadcastRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

type IBroadcastService interface {
	SendToGame(ctx context.Context, actorID, actorRole, gameID string, req *SendBroadcastRequest) (*model.Broadcast, error)
	SendToClub(ctx context.Context, actorID, actorRole string, req *SendBroadcastRequest) (*model.Broadcast, error)
	ListByGame(ctx context.Context, actorID, actorRole, gameID string) ([]*model.Broadcast, error)
	ListClubWide(ctx context.Context, limit int) ([]*model.Broadcast, error)
	// StoreAndDeliver persists a broadcast and fans it out. Called from
	// the event consumer, and directly when the broker is unavailable.
	StoreAndDeliver(ctx context.Context, broadcast *model.Broadcast) error
}

type BroadcastService struct {
	broadcastRepo    repository.IBroadcastRepository
	registrationRepo repository.IRegistrationRepository
	gameRepo         repository.IGameRepository
	gameService      IGameService
	auditService     IAuditService
	publisher        mq.Publisher
	notifier         Notifier
	logger           *log.Logger
}

func NewBroadcastService(
	broadcastRepo repository.IBroadcastRepository,
	registrationRepo repository.IRegistrationRepository,
	gameRepo repository.IGameRepository,
	gameService IGameService,
	auditService IAuditService,
	publisher mq.Publisher,
	notifier Notifier,
	logger *log.Logger,
) IBroadcastService {
	return &BroadcastService{
		broadcastRepo:    broadcastRepo,
		registrationRepo: registrationRepo,
		gameRepo:         gameRepo,
		gameService:      gameService,
		auditService:     auditService,
		publisher:        publisher,
		notifier:         notifier,
		logger:           logger,
	}
}

// SendToGame announces to a game's approved players. Only the owning
// gamemaster or an admin may send.
func (s *BroadcastService) SendToGame(ctx context.Context, actorID, actorRole, gameID string, req *SendBroadcastRequest) (*model.Broadcast, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if !s.gameService.OwnedBy(game, actorID, actorRole) {
		return nil, ErrNotGameOwner
	}

	broadcast, err := s.buildBroadcast(actorID, model.AudienceGame, gameID, req)
	if err != nil {
		return nil, err
	}
	return broadcast, s.dispatch(ctx, broadcast)
}

// SendToClub announces to every member. Admin only.
func (s *BroadcastService) SendToClub(ctx context.Context, actorID, actorRole string, req *SendBroadcastRequest) (*model.Broadcast, error) {
	if actorRole != model.RoleAdmin {
		return nil, ErrNotClubAdmin
	}

	broadcast, err := s.buildBroadcast(actorID, model.AudienceClub, "", req)
	if err != nil {
		return nil, err
	}
	return broadcast, s.dispatch(ctx, broadcast)
}

func (s *BroadcastService) buildBroadcast(senderID, audience, gameID string, req *SendBroadcastRequest) (*model.Broadcast, error) {
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Body)
	if subject == "" || body == "" {
		return nil, ErrEmptyBroadcast
	}
	return &model.Broadcast{
		ID:       uuid.NewString(),
		SenderID: senderID,
		Audience: audience,
		GameID:   gameID,
		Subject:  subject,
		Body:     body,
	}, nil
}

// dispatch hands the broadcast to the broker; when the broker is missing
// or rejects it, the broadcast is stored and delivered in-process instead.
func (s *BroadcastService) dispatch(ctx context.Context, broadcast *model.Broadcast) error {
	if s.publisher != nil {
		if err := s.publisher.Publish(broadcast.ID, broadcast); err == nil {
			return s.recordAudit(ctx, broadcast)
		} else if s.logger != nil {
			s.logger.WarnContext(ctx, "broker rejected broadcast, storing directly",
				zap.String("broadcast_id", broadcast.ID), zap.Error(err))
		}
	}

	if err := s.StoreAndDeliver(ctx, broadcast); err != nil {
		return err
	}
	return s.recordAudit(ctx, broadcast)
}

func (s *BroadcastService) recordAudit(ctx context.Context, broadcast *model.Broadcast) error {
	return s.auditService.Record(ctx, model.AuditBroadcastSent, broadcast.SenderID, "broadcast", broadcast.ID, map[string]any{
		"audience": broadcast.Audience,
		"game_id":  broadcast.GameID,
		"subject":  broadcast.Subject,
	})
}

func (s *BroadcastService) StoreAndDeliver(ctx context.Context, broadcast *model.Broadcast) error {
	if err := s.broadcastRepo.Create(ctx, broadcast); err != nil {
		return fmt.Errorf("failed to store broadcast: %w", err)
	}

	if s.notifier == nil {
		return nil
	}

	switch broadcast.Audience {
	case model.AudienceGame:
		memberIDs, err := s.registrationRepo.ListApprovedMemberIDs(ctx, broadcast.GameID)
		if err != nil {
			return fmt.Errorf("failed to resolve broadcast audience: %w", err)
		}
		game, err := s.gameRepo.FindByID(ctx, broadcast.GameID)
		if err == nil {
			memberIDs = append(memberIDs, game.GamemasterID)
		}
		s.notifier.NotifyMembers(memberIDs, broadcast)
	case model.AudienceClub:
		s.notifier.NotifyAll(broadcast)
	}
	return nil
}

// ListByGame returns the game's announcements to its audience: approved
// players, the gamemaster, or an admin.
func (s *BroadcastService) ListByGame(ctx context.Context, actorID, actorRole, gameID string) ([]*model.Broadcast, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	if !s.gameService.OwnedBy(game, actorID, actorRole) {
		registration, err := s.registrationRepo.FindByGameAndMember(ctx, gameID, actorID)
		if err != nil || registration.Status != model.RegistrationApproved {
			return nil, ErrBroadcastAudience
		}
	}

	broadcasts, err := s.broadcastRepo.ListByGame(ctx, gameID, defaultMessagePageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcasts: %w", err)
	}
	return broadcasts, nil
}

func (s *BroadcastService) ListClubWide(ctx context.Context, limit int) ([]*model.Broadcast, error) {
	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	broadcasts, err := s.broadcastRepo.ListClubWide(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list club broadcasts: %w", err)
	}
	return broadcasts, nil
}
