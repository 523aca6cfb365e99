package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/pkg/utils"
)

var (
	ErrInviteNotFound   = errors.New("invite not found")
	ErrInviteExpired    = errors.New("invite has expired")
	ErrInviteeMissing   = errors.New("invite needs a member or an email")
	ErrInviteWrongOwner = errors.New("invite is addressed to another member")
)

// Invite states derived at read time.
const (
	InviteStatePending  = "pending"
	InviteStateViewed   = "viewed"
	InviteStateAccepted = "accepted"
	InviteStateExpired  = "expired"
)

// CreateInviteRequest addresses an invite to a member or external contact.
type CreateInviteRequest struct {
	InviteeID    string `json:"invitee_id"`
	InviteeEmail string `json:"invitee_email"`
}

// InviteView is the invite DTO with its derived state attached.
type InviteView struct {
	*model.Invite
	State string `json:"state"`
}

// DeriveState classifies an invite the same way on every read path.
func DeriveState(invite *model.Invite, now time.Time) string {
	switch {
	case invite.Accepted:
		return InviteStateAccepted
	case invite.Expired(now):
		return InviteStateExpired
	case invite.ViewedAt != nil:
		return InviteStateViewed
	default:
		return InviteStatePending
	}
}

type IInviteService interface {
	Create(ctx context.Context, actorID, actorRole, gameID string, req *CreateInviteRequest) (*InviteView, error)
	ListByGame(ctx context.Context, actorID, actorRole, gameID string) ([]*InviteView, error)
	View(ctx context.Context, code string) (*InviteView, error)
	Accept(ctx context.Context, code, memberID string) (*model.Registration, error)
}

type InviteService struct {
	inviteRepo       repository.IInviteRepository
	gameRepo         repository.IGameRepository
	registrationRepo repository.IRegistrationRepository
	gameService      IGameService
	auditService     IAuditService
	expiry           time.Duration
}

func NewInviteService(
	inviteRepo repository.IInviteRepository,
	gameRepo repository.IGameRepository,
	registrationRepo repository.IRegistrationRepository,
	gameService IGameService,
	auditService IAuditService,
	expiryHours int,
) IInviteService {
	return &InviteService{
		inviteRepo:       inviteRepo,
		gameRepo:         gameRepo,
		registrationRepo: registrationRepo,
		gameService:      gameService,
		auditService:     auditService,
		expiry:           time.Duration(expiryHours) * time.Hour,
	}
}

// Create issues a new invite for the game. Only the owning gamemaster or an
// admin may invite.
func (s *InviteService) Create(ctx context.Context, actorID, actorRole, gameID string, req *CreateInviteRequest) (*InviteView, error) {
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

	if req.InviteeID == "" && req.InviteeEmail == "" {
		return nil, ErrInviteeMissing
	}
	if req.InviteeEmail != "" && !utils.ValidateEmail(req.InviteeEmail) {
		return nil, ErrInvalidEmail
	}

	invite := &model.Invite{
		ID:           uuid.NewString(),
		GameID:       gameID,
		Code:         utils.GenerateInviteCode(),
		CreatorID:    actorID,
		InviteeID:    req.InviteeID,
		InviteeEmail: req.InviteeEmail,
		ExpiresAt:    time.Now().Add(s.expiry),
	}

	// The code column is unique; regenerate on the unlikely collision.
	for attempt := 0; ; attempt++ {
		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < 3 {
			invite.Code = utils.GenerateInviteCode()
			continue
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	return &InviteView{Invite: invite, State: DeriveState(invite, time.Now())}, nil
}

// ListByGame returns the game's invites with derived states, to the owning
// gamemaster or an admin. Admin and member paths share DeriveState, so the
// expiry classification cannot diverge between them.
func (s *InviteService) ListByGame(ctx context.Context, actorID, actorRole, gameID string) ([]*InviteView, error) {
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

	invites, err := s.inviteRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}

	now := time.Now()
	views := make([]*InviteView, 0, len(invites))
	for _, invite := range invites {
		views = append(views, &InviteView{Invite: invite, State: DeriveState(invite, now)})
	}
	return views, nil
}

// View resolves an invite by code and stamps viewed_at on first sight.
func (s *InviteService) View(ctx context.Context, code string) (*InviteView, error) {
	invite, err := s.inviteRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}

	now := time.Now()
	if invite.ViewedAt == nil {
		if err := s.inviteRepo.MarkViewed(ctx, invite.ID, now); err != nil {
			return nil, fmt.Errorf("failed to mark invite viewed: %w", err)
		}
		invite.ViewedAt = &now
	}

	return &InviteView{Invite: invite, State: DeriveState(invite, now)}, nil
}

// Accept redeems the invite for the calling member. The invite update and
// the registration upsert run in one transaction; a second accept returns
// the existing registration without creating another row.
func (s *InviteService) Accept(ctx context.Context, code, memberID string) (*model.Registration, error) {
	invite, err := s.inviteRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}

	if invite.InviteeID != "" && invite.InviteeID != memberID {
		return nil, ErrInviteWrongOwner
	}

	now := time.Now()
	if invite.Expired(now) {
		return nil, ErrInviteExpired
	}

	if invite.Accepted {
		// Idempotent: the registration from the first accept is the
		// answer.
		registration, err := s.findAcceptedRegistration(ctx, invite, memberID)
		if err != nil {
			return nil, err
		}
		return registration, nil
	}

	registration, err := s.inviteRepo.Accept(ctx, invite, memberID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the race to a concurrent accept; fall back to the
			// idempotent read.
			return s.findAcceptedRegistration(ctx, invite, memberID)
		}
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}

	err = s.auditService.Record(ctx, model.AuditInviteAccepted, memberID, "invite", invite.ID, map[string]any{
		"game_id": invite.GameID,
		"code":    invite.Code,
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

func (s *InviteService) findAcceptedRegistration(ctx context.Context, invite *model.Invite, memberID string) (*model.Registration, error) {
	registration, err := s.registrationRepo.FindByGameAndMember(ctx, invite.GameID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}
	return registration, nil
}
