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
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrNotGameOwner      = errors.New("caller does not own this game")
	ErrSeatLimitInvalid  = errors.New("max seats must be at least starting seats")
	ErrInvalidVisibility = errors.New("invalid visibility")
	ErrNotAGamemaster    = errors.New("target member is not a gamemaster")
)

// CreateGameRequest creates a game together with its schedule.
type CreateGameRequest struct {
	Title         string     `json:"title" binding:"required"`
	System        string     `json:"system" binding:"required"`
	Description   string     `json:"description"`
	MaxSeats      int        `json:"maxSeats" binding:"required"`
	StartingSeats int        `json:"startingSeats"`
	Visibility    string     `json:"visibility"`
	Interval      string     `json:"interval"`
	DayOfWeek     *int       `json:"day_of_week"`
	NextGameDate  time.Time  `json:"nextGameDate" binding:"required"`
	LastGameDate  *time.Time `json:"lastGameDate"`
	LocationID    string     `json:"location_id"`
}

// UpdateGameRequest carries the editable game fields.
type UpdateGameRequest struct {
	Title       string `json:"title"`
	System      string `json:"system"`
	Description string `json:"description"`
	MaxSeats    *int   `json:"maxSeats"`
	Visibility  string `json:"visibility"`
}

// GameWithSchedule is the detail DTO.
type GameWithSchedule struct {
	Game     *model.Game         `json:"game"`
	Schedule *model.GameSchedule `json:"schedule"`
}

type IGameService interface {
	Create(ctx context.Context, gamemasterID string, req *CreateGameRequest) (*GameWithSchedule, error)
	Get(ctx context.Context, id string) (*GameWithSchedule, error)
	GetAny(ctx context.Context, id string) (*GameWithSchedule, error)
	List(ctx context.Context, memberID string) ([]*model.Game, error)
	Update(ctx context.Context, actorID, actorRole, id string, req *UpdateGameRequest) (*model.Game, error)
	SoftDelete(ctx context.Context, actorID, actorRole, id string) error
	ReassignGamemaster(ctx context.Context, actorID, id, newGMID string) error
	SetCoverPath(ctx context.Context, actorID, actorRole, id, coverPath string) error
	OwnedBy(game *model.Game, actorID, actorRole string) bool
}

type GameService struct {
	gameRepo     repository.IGameRepository
	memberRepo   repository.IMemberRepository
	auditService IAuditService
}

func NewGameService(
	gameRepo repository.IGameRepository,
	memberRepo repository.IMemberRepository,
	auditService IAuditService,
) IGameService {
	return &GameService{
		gameRepo:     gameRepo,
		memberRepo:   memberRepo,
		auditService: auditService,
	}
}

// Create inserts the game and its schedule in one transaction. The new
// schedule always starts as awaiting-players.
func (s *GameService) Create(ctx context.Context, gamemasterID string, req *CreateGameRequest) (*GameWithSchedule, error) {
	if req.StartingSeats < 0 || req.MaxSeats < 1 || req.MaxSeats < req.StartingSeats {
		return nil, ErrSeatLimitInvalid
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
		return nil, ErrInvalidVisibility
	}

	interval := req.Interval
	if interval == "" {
		interval = model.IntervalWeekly
	}
	switch interval {
	case model.IntervalWeekly, model.IntervalBiweekly, model.IntervalMonthly:
	default:
		return nil, ErrInvalidInterval
	}

	dayOfWeek := int(req.NextGameDate.Weekday())
	if req.DayOfWeek != nil {
		if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			return nil, ErrInvalidDayOfWeek
		}
		dayOfWeek = *req.DayOfWeek
	}

	game := &model.Game{
		ID:            uuid.NewString(),
		Title:         req.Title,
		System:        req.System,
		Description:   req.Description,
		MaxSeats:      req.MaxSeats,
		StartingSeats: req.StartingSeats,
		Visibility:    visibility,
		GamemasterID:  gamemasterID,
	}
	schedule := &model.GameSchedule{
		ID:            uuid.NewString(),
		Interval:      interval,
		DayOfWeek:     dayOfWeek,
		FirstGameDate: req.NextGameDate,
		NextGameDate:  req.NextGameDate,
		LastGameDate:  req.LastGameDate,
		Status:        model.ScheduleAwaitingPlayers,
		LocationID:    req.LocationID,
	}

	if err := s.gameRepo.CreateWithSchedule(ctx, game, schedule); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err := s.auditService.Record(ctx, model.AuditGameCreated, gamemasterID, "game", game.ID, map[string]any{
		"title":  game.Title,
		"system": game.System,
	}); err != nil {
		return nil, err
	}

	return &GameWithSchedule{Game: game, Schedule: schedule}, nil
}

func (s *GameService) Get(ctx context.Context, id string) (*GameWithSchedule, error) {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return s.withSchedule(ctx, game)
}

// GetAny loads the game even when soft-deleted. Admin path only; the
// router enforces that.
func (s *GameService) GetAny(ctx context.Context, id string) (*GameWithSchedule, error) {
	game, err := s.gameRepo.FindByIDAny(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return s.withSchedule(ctx, game)
}

func (s *GameService) withSchedule(ctx context.Context, game *model.Game) (*GameWithSchedule, error) {
	schedule, err := s.gameRepo.FindScheduleByGameID(ctx, game.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return &GameWithSchedule{Game: game, Schedule: schedule}, nil
}

func (s *GameService) List(ctx context.Context, memberID string) ([]*model.Game, error) {
	games, err := s.gameRepo.ListVisible(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// OwnedBy reports whether the actor may administer the game: the owning
// gamemaster or any admin.
func (s *GameService) OwnedBy(game *model.Game, actorID, actorRole string) bool {
	return actorRole == model.RoleAdmin || game.GamemasterID == actorID
}

func (s *GameService) Update(ctx context.Context, actorID, actorRole, id string, req *UpdateGameRequest) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if !s.OwnedBy(game, actorID, actorRole) {
		return nil, ErrNotGameOwner
	}

	if req.Title != "" {
		game.Title = req.Title
	}
	if req.System != "" {
		game.System = req.System
	}
	if req.Description != "" {
		game.Description = req.Description
	}
	if req.MaxSeats != nil {
		if *req.MaxSeats < game.StartingSeats || *req.MaxSeats < 1 {
			return nil, ErrSeatLimitInvalid
		}
		game.MaxSeats = *req.MaxSeats
	}
	if req.Visibility != "" {
		if req.Visibility != model.VisibilityPublic && req.Visibility != model.VisibilityPrivate {
			return nil, ErrInvalidVisibility
		}
		game.Visibility = req.Visibility
	}

	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return game, nil
}

func (s *GameService) SoftDelete(ctx context.Context, actorID, actorRole, id string) error {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to load game: %w", err)
	}
	if !s.OwnedBy(game, actorID, actorRole) {
		return ErrNotGameOwner
	}

	if err := s.gameRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return s.auditService.Record(ctx, model.AuditGameDeleted, actorID, "game", id, nil)
}

// ReassignGamemaster hands the game to another gamemaster. Admin only; 404
// for an unknown game, 400 when the target cannot run games.
func (s *GameService) ReassignGamemaster(ctx context.Context, actorID, id, newGMID string) error {
	if _, err := s.gameRepo.FindByIDAny(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to load game: %w", err)
	}

	member, err := s.memberRepo.FindByID(ctx, newGMID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to load member: %w", err)
	}
	if member.Role != model.RoleGamemaster && member.Role != model.RoleAdmin {
		return ErrNotAGamemaster
	}

	if err := s.gameRepo.ReassignGamemaster(ctx, id, newGMID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to reassign gamemaster: %w", err)
	}

	return s.auditService.Record(ctx, model.AuditGMReassigned, actorID, "game", id, map[string]any{
		"new_gamemaster_id": newGMID,
	})
}

func (s *GameService) SetCoverPath(ctx context.Context, actorID, actorRole, id, coverPath string) error {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to load game: %w", err)
	}
	if !s.OwnedBy(game, actorID, actorRole) {
		return ErrNotGameOwner
	}

	game.CoverPath = coverPath
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return fmt.Errorf("failed to set cover: %w", err)
	}
	return nil
}
