package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tableguild/tableguild/config"
	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/internal/service"
	"github.com/tableguild/tableguild/internal/storage"
	"github.com/tableguild/tableguild/middleware/log"
	"github.com/tableguild/tableguild/pkg/utils"
)

type jobsFixture struct {
	runner     *Runner
	memberRepo repository.IMemberRepository
	inviteRepo repository.IInviteRepository
	gameRepo   repository.IGameRepository
}

func newJobsFixture(t *testing.T, purgeDays int) *jobsFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	memberRepo := repository.NewMemberRepository(db, nil)
	inviteRepo := repository.NewInviteRepository(db)
	gameRepo := repository.NewGameRepository(db)
	auditService := service.NewAuditService(repository.NewAuditRepository(db))

	pool := utils.NewWorkerPool(1, 4)
	pool.Start()
	t.Cleanup(pool.Stop)

	runner := NewRunner(
		service.NewScheduleService(gameRepo),
		auditService,
		memberRepo,
		inviteRepo,
		pool,
		&log.Logger{Logger: zap.NewNop()},
		&config.RetentionConfig{
			AccountPurgeDays:   purgeDays,
			JobIntervalSeconds: 60,
			InviteExpiryHours:  72,
			NotifyBatchSize:    10,
		},
	)
	return &jobsFixture{
		runner:     runner,
		memberRepo: memberRepo,
		inviteRepo: inviteRepo,
		gameRepo:   gameRepo,
	}
}

// TestPurgeAccounts removes only the members whose deletion request has
// aged past the retention window.
func TestPurgeAccounts(t *testing.T) {
	f := newJobsFixture(t, 0)
	ctx := context.Background()

	expired := &model.Member{ID: uuid.NewString(), UserName: "expired_ed", Email: "ed@club.test", PasswordHash: "x", Role: model.RoleMember}
	fresh := &model.Member{ID: uuid.NewString(), UserName: "fresh_fay", Email: "fay@club.test", PasswordHash: "x", Role: model.RoleMember}
	require.NoError(t, f.memberRepo.Create(ctx, expired))
	require.NoError(t, f.memberRepo.Create(ctx, fresh))

	require.NoError(t, f.memberRepo.RequestDeletion(ctx, expired.ID, time.Now().Add(-time.Hour)))
	require.NoError(t, f.memberRepo.RequestDeletion(ctx, fresh.ID, time.Now().Add(time.Hour)))

	f.runner.purgeAccounts(ctx)

	// The expired account is gone beyond restore.
	_, err := f.memberRepo.Restore(ctx, expired.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The one still inside the window survives and can come back.
	restored, err := f.memberRepo.Restore(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, restored.ID)
}

// TestAdvanceSchedules moves an overdue schedule to a future date.
func TestAdvanceSchedules(t *testing.T) {
	f := newJobsFixture(t, 30)
	ctx := context.Background()

	past := time.Now().Add(-14 * 24 * time.Hour)
	game := &model.Game{
		ID: uuid.NewString(), Title: "Overdue", System: "D&D 5e",
		MaxSeats: 4, Visibility: model.VisibilityPublic, GamemasterID: uuid.NewString(),
	}
	schedule := &model.GameSchedule{
		ID:            uuid.NewString(),
		Interval:      model.IntervalWeekly,
		DayOfWeek:     int(past.Weekday()),
		FirstGameDate: past,
		NextGameDate:  past,
		Status:        model.ScheduleActive,
	}
	require.NoError(t, f.gameRepo.CreateWithSchedule(ctx, game, schedule))

	f.runner.advanceSchedules(ctx)

	updated, err := f.gameRepo.FindScheduleByGameID(ctx, game.ID)
	require.NoError(t, err)
	assert.True(t, updated.NextGameDate.After(time.Now()))
}

// TestNotifyInvites flags a batch once and leaves it alone afterwards.
func TestNotifyInvites(t *testing.T) {
	f := newJobsFixture(t, 30)
	ctx := context.Background()

	invite := &model.Invite{
		ID:        uuid.NewString(),
		GameID:    uuid.NewString(),
		Code:      "TESTCODE22",
		CreatorID: uuid.NewString(),
		ExpiresAt: time.Now().Add(72 * time.Hour),
	}
	require.NoError(t, f.inviteRepo.Create(ctx, invite))

	f.runner.notifyInvites(ctx)

	pending, err := f.inviteRepo.FindUnnotified(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
