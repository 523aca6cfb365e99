package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
)

var (
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrInvalidInterval      = errors.New("invalid schedule interval")
	ErrInvalidDayOfWeek     = errors.New("invalid day of week")
	ErrDateMovesBackwards   = errors.New("next game date cannot move backwards")
	ErrInvalidScheduleState = errors.New("invalid schedule status")
)

// UpdateScheduleRequest is the gamemaster's manual schedule edit.
type UpdateScheduleRequest struct {
	Interval     string     `json:"interval"`
	DayOfWeek    *int       `json:"day_of_week"`
	NextGameDate *time.Time `json:"next_game_date"`
	LastGameDate *time.Time `json:"last_game_date"`
	Status       string     `json:"status"`
	LocationID   string     `json:"location_id"`
}

type IScheduleService interface {
	Get(ctx context.Context, gameID string) (*model.GameSchedule, error)
	Update(ctx context.Context, gameID string, req *UpdateScheduleRequest) (*model.GameSchedule, error)
	AdvanceDue(ctx context.Context, now time.Time) (int, error)
}

type ScheduleService struct {
	gameRepo repository.IGameRepository
}

func NewScheduleService(gameRepo repository.IGameRepository) IScheduleService {
	return &ScheduleService{gameRepo: gameRepo}
}

// NextOccurrence computes the first session on the schedule's weekday and
// interval strictly after the reference time. The time of day is carried
// over from the previous next_game_date.
func NextOccurrence(schedule *model.GameSchedule, after time.Time) (time.Time, error) {
	var step time.Duration
	switch schedule.Interval {
	case model.IntervalWeekly:
		step = 7 * 24 * time.Hour
	case model.IntervalBiweekly:
		step = 14 * 24 * time.Hour
	case model.IntervalMonthly:
		// Approximated as four weeks to keep sessions on the configured
		// weekday.
		step = 28 * 24 * time.Hour
	default:
		return time.Time{}, ErrInvalidInterval
	}

	next := schedule.NextGameDate
	for !next.After(after) {
		next = next.Add(step)
	}

	// Re-align onto the configured weekday in case a manual edit drifted
	// off it.
	for int(next.Weekday()) != schedule.DayOfWeek {
		next = next.Add(24 * time.Hour)
	}
	return next, nil
}

func (s *ScheduleService) Get(ctx context.Context, gameID string) (*model.GameSchedule, error) {
	schedule, err := s.gameRepo.FindScheduleByGameID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return schedule, nil
}

// Update applies a manual schedule edit. Dates only move forward; rolling
// back next_game_date is rejected.
func (s *ScheduleService) Update(ctx context.Context, gameID string, req *UpdateScheduleRequest) (*model.GameSchedule, error) {
	schedule, err := s.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if req.Interval != "" {
		switch req.Interval {
		case model.IntervalWeekly, model.IntervalBiweekly, model.IntervalMonthly:
			schedule.Interval = req.Interval
		default:
			return nil, ErrInvalidInterval
		}
	}
	if req.DayOfWeek != nil {
		if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			return nil, ErrInvalidDayOfWeek
		}
		schedule.DayOfWeek = *req.DayOfWeek
	}
	if req.NextGameDate != nil {
		if req.NextGameDate.Before(schedule.NextGameDate) {
			return nil, ErrDateMovesBackwards
		}
		schedule.NextGameDate = *req.NextGameDate
	}
	if req.LastGameDate != nil {
		schedule.LastGameDate = req.LastGameDate
	}
	if req.Status != "" {
		switch req.Status {
		case model.ScheduleAwaitingPlayers, model.ScheduleActive, model.SchedulePaused, model.ScheduleCompleted:
			schedule.Status = req.Status
		default:
			return nil, ErrInvalidScheduleState
		}
	}
	if req.LocationID != "" {
		if _, err := s.gameRepo.FindLocation(ctx, req.LocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("location %s not found: %w", req.LocationID, gorm.ErrRecordNotFound)
			}
			return nil, fmt.Errorf("failed to check location: %w", err)
		}
		schedule.LocationID = req.LocationID
	}

	if err := s.gameRepo.UpdateSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	return schedule, nil
}

// AdvanceDue rolls every due schedule forward to its next occurrence and
// completes schedules that have passed their last game date. Returns how
// many schedules were touched.
func (s *ScheduleService) AdvanceDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.gameRepo.FindDueSchedules(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due schedules: %w", err)
	}

	advanced := 0
	for _, schedule := range due {
		next, err := NextOccurrence(schedule, now)
		if err != nil {
			// Bad interval data; skip rather than wedge the whole batch.
			continue
		}

		if schedule.LastGameDate != nil && next.After(*schedule.LastGameDate) {
			schedule.Status = model.ScheduleCompleted
		} else {
			schedule.NextGameDate = next
		}

		if err := s.gameRepo.UpdateSchedule(ctx, schedule); err != nil {
			return advanced, fmt.Errorf("failed to advance schedule %s: %w", schedule.ID, err)
		}
		advanced++
	}
	return advanced, nil
}
