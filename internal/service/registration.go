package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("member already registered for this game")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrGameFull             = errors.New("game has no open seats")
	ErrOwnGame              = errors.New("gamemasters do not register for their own games")
)

// allowedTransitions is the approval workflow. Reinstating goes through
// pending again; there is no direct path from banned or rejected to
// approved.
var allowedTransitions = map[string][]string{
	model.RegistrationPending:  {model.RegistrationApproved, model.RegistrationRejected},
	model.RegistrationApproved: {model.RegistrationBanned},
	model.RegistrationRejected: {model.RegistrationPending},
	model.RegistrationBanned:   {model.RegistrationPending},
}

// TransitionAllowed reports whether the workflow permits from -> to.
func TransitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatusRequest is the gamemaster's status decision.
type UpdateStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	StatusNote string `json:"status_note"`
}

type IRegistrationService interface {
	Request(ctx context.Context, memberID, gameID string) (*model.Registration, error)
	ListByGame(ctx context.Context, actorID, actorRole, gameID string) ([]*model.Registration, error)
	UpdateStatus(ctx context.Context, actorID, actorRole, registrationID string, req *UpdateStatusRequest) (*model.Registration, error)
}

type RegistrationService struct {
	registrationRepo repository.IRegistrationRepository
	gameRepo         repository.IGameRepository
	gameService      IGameService
	auditService     IAuditService
}

func NewRegistrationService(
	registrationRepo repository.IRegistrationRepository,
	gameRepo repository.IGameRepository,
	gameService IGameService,
	auditService IAuditService,
) IRegistrationService {
	return &RegistrationService{
		registrationRepo: registrationRepo,
		gameRepo:         gameRepo,
		gameService:      gameService,
		auditService:     auditService,
	}
}

// Request creates a pending registration for the caller.
func (s *RegistrationService) Request(ctx context.Context, memberID, gameID string) (*model.Registration, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if game.GamemasterID == memberID {
		return nil, ErrOwnGame
	}

	if _, err := s.registrationRepo.FindByGameAndMember(ctx, gameID, memberID); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}

	registration := &model.Registration{
		ID:       uuid.NewString(),
		GameID:   gameID,
		MemberID: memberID,
		Status:   model.RegistrationPending,
	}
	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return registration, nil
}

// ListByGame returns the game's registrations to its gamemaster or an
// admin.
func (s *RegistrationService) ListByGame(ctx context.Context, actorID, actorRole, gameID string) ([]*model.Registration, error) {
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
	return s.registrationRepo.ListByGame(ctx, gameID)
}

// UpdateStatus applies one workflow transition. Only the owning gamemaster
// or an admin may call it; the transition must be reachable from the
// current status, and approvals respect the seat limit.
func (s *RegistrationService) UpdateStatus(ctx context.Context, actorID, actorRole, registrationID string, req *UpdateStatusRequest) (*model.Registration, error) {
	registration, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}

	game, err := s.gameRepo.FindByID(ctx, registration.GameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if !s.gameService.OwnedBy(game, actorID, actorRole) {
		return nil, ErrNotGameOwner
	}

	if !TransitionAllowed(registration.Status, req.Status) {
		return nil, ErrInvalidTransition
	}

	if req.Status == model.RegistrationApproved {
		approved, err := s.registrationRepo.CountByStatus(ctx, game.ID, model.RegistrationApproved)
		if err != nil {
			return nil, fmt.Errorf("failed to count approved registrations: %w", err)
		}
		if approved >= int64(game.MaxSeats) {
			return nil, ErrGameFull
		}
	}

	previous := registration.Status
	if err := s.registrationRepo.UpdateStatus(ctx, registrationID, req.Status, req.StatusNote); err != nil {
		return nil, fmt.Errorf("failed to update registration status: %w", err)
	}
	registration.Status = req.Status
	registration.StatusNote = req.StatusNote

	err = s.auditService.Record(ctx, model.AuditRegistrationStatus, actorID, "registration", registrationID, map[string]any{
		"game_id": game.ID,
		"from":    previous,
		"to":      req.Status,
		"note":    req.StatusNote,
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}
