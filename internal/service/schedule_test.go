package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tableguild/tableguild/internal/model"
)

// TestNextOccurrence_Property checks the recurrence math over random
// schedules: the result is strictly after the reference time, lands on the
// configured weekday, and advancing repeatedly is monotonic.
func TestNextOccurrence_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		intervals := []string{model.IntervalWeekly, model.IntervalBiweekly, model.IntervalMonthly}
		interval := intervals[rapid.IntRange(0, 2).Draw(t, "interval")]

		start := time.Date(2026, 1, 4, 19, 0, 0, 0, time.UTC).
			Add(time.Duration(rapid.IntRange(0, 365*24).Draw(t, "startOffsetHours")) * time.Hour)
		schedule := &model.GameSchedule{
			Interval:     interval,
			DayOfWeek:    int(start.Weekday()),
			NextGameDate: start,
		}

		after := start.Add(time.Duration(rapid.IntRange(0, 90*24).Draw(t, "afterOffsetHours")) * time.Hour)

		next, err := NextOccurrence(schedule, after)
		require.NoError(t, err)

		assert.True(t, next.After(after), "next %v not after %v", next, after)
		assert.Equal(t, schedule.DayOfWeek, int(next.Weekday()))

		// Advancing again from the new date keeps moving forward.
		schedule.NextGameDate = next
		further, err := NextOccurrence(schedule, next)
		require.NoError(t, err)
		assert.True(t, further.After(next))
		assert.Equal(t, schedule.DayOfWeek, int(further.Weekday()))
	})
}

// TestNextOccurrence_BadInterval surfaces corrupt interval data.
func TestNextOccurrence_BadInterval(t *testing.T) {
	_, err := NextOccurrence(&model.GameSchedule{Interval: "sometimes"}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

// TestScheduleUpdate edits interval and status through the service.
func TestScheduleUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	game := f.createGame(t, gm.ID, 4)

	updated, err := f.scheduleService.Update(ctx, game.Game.ID, &UpdateScheduleRequest{
		Interval: model.IntervalMonthly,
		Status:   model.ScheduleActive,
	})
	require.NoError(t, err)
	assert.Equal(t, model.IntervalMonthly, updated.Interval)
	assert.Equal(t, model.ScheduleActive, updated.Status)
}

// TestScheduleUpdate_DateMovesBackwards rejects pulling next_game_date
// into the past.
func TestScheduleUpdate_DateMovesBackwards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	game := f.createGame(t, gm.ID, 4)

	earlier := game.Schedule.NextGameDate.Add(-48 * time.Hour)
	_, err := f.scheduleService.Update(ctx, game.Game.ID, &UpdateScheduleRequest{
		NextGameDate: &earlier,
	})
	assert.ErrorIs(t, err, ErrDateMovesBackwards)
}

// TestScheduleUpdate_Validation rejects unknown intervals, weekdays and
// statuses.
func TestScheduleUpdate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	game := f.createGame(t, gm.ID, 4)

	_, err := f.scheduleService.Update(ctx, game.Game.ID, &UpdateScheduleRequest{Interval: "daily"})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	badDay := 7
	_, err = f.scheduleService.Update(ctx, game.Game.ID, &UpdateScheduleRequest{DayOfWeek: &badDay})
	assert.ErrorIs(t, err, ErrInvalidDayOfWeek)

	_, err = f.scheduleService.Update(ctx, game.Game.ID, &UpdateScheduleRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidScheduleState)
}

// TestAdvanceDue rolls overdue schedules forward past now.
func TestAdvanceDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	game := f.createGame(t, gm.ID, 4)

	// Backdate the schedule so it is overdue.
	schedule := game.Schedule
	schedule.NextGameDate = time.Now().Add(-8 * 24 * time.Hour)
	schedule.DayOfWeek = int(schedule.NextGameDate.Weekday())
	require.NoError(t, f.gameRepo.UpdateSchedule(ctx, schedule))

	advanced, err := f.scheduleService.AdvanceDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, advanced)

	loaded, err := f.scheduleService.Get(ctx, game.Game.ID)
	require.NoError(t, err)
	assert.True(t, loaded.NextGameDate.After(time.Now()))
	assert.Equal(t, schedule.DayOfWeek, int(loaded.NextGameDate.Weekday()))
}

// TestAdvanceDue_CompletesPastLastDate marks a schedule completed once the
// next occurrence would land after the final session.
func TestAdvanceDue_CompletesPastLastDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gm := f.createMember(t, "gm_alice", model.RoleGamemaster)
	game := f.createGame(t, gm.ID, 4)

	schedule := game.Schedule
	schedule.NextGameDate = time.Now().Add(-8 * 24 * time.Hour)
	schedule.DayOfWeek = int(schedule.NextGameDate.Weekday())
	lastDate := time.Now().Add(-24 * time.Hour)
	schedule.LastGameDate = &lastDate
	require.NoError(t, f.gameRepo.UpdateSchedule(ctx, schedule))

	_, err := f.scheduleService.AdvanceDue(ctx, time.Now())
	require.NoError(t, err)

	loaded, err := f.scheduleService.Get(ctx, game.Game.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleCompleted, loaded.Status)
}
