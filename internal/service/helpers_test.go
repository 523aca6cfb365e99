package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/internal/storage"
)

// testDB opens an in-memory sqlite database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))
	return db
}

type fixture struct {
	db *gorm.DB

	memberRepo       repository.IMemberRepository
	gameRepo         repository.IGameRepository
	registrationRepo repository.IRegistrationRepository
	inviteRepo       repository.IInviteRepository
	auditRepo        repository.IAuditRepository

	auditService        IAuditService
	memberService       IMemberService
	gameService         IGameService
	scheduleService     IScheduleService
	registrationService IRegistrationService
	inviteService       IInviteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testDB(t)

	f := &fixture{db: db}
	f.memberRepo = repository.NewMemberRepository(db, nil)
	f.gameRepo = repository.NewGameRepository(db)
	f.registrationRepo = repository.NewRegistrationRepository(db)
	f.inviteRepo = repository.NewInviteRepository(db)
	f.auditRepo = repository.NewAuditRepository(db)

	f.auditService = NewAuditService(f.auditRepo)
	f.memberService = NewMemberService(f.memberRepo, f.auditService)
	f.gameService = NewGameService(f.gameRepo, f.memberRepo, f.auditService)
	f.scheduleService = NewScheduleService(f.gameRepo)
	f.registrationService = NewRegistrationService(f.registrationRepo, f.gameRepo, f.gameService, f.auditService)
	f.inviteService = NewInviteService(f.inviteRepo, f.gameRepo, f.registrationRepo, f.gameService, f.auditService, 72)
	return f
}

func (f *fixture) createMember(t *testing.T, username, role string) *model.Member {
	t.Helper()

	member := &model.Member{
		ID:           uuid.NewString(),
		UserName:     username,
		Email:        username + "@club.test",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, f.memberRepo.Create(context.Background(), member))
	return member
}

func (f *fixture) createGame(t *testing.T, gamemasterID string, maxSeats int) *GameWithSchedule {
	t.Helper()

	resp, err := f.gameService.Create(context.Background(), gamemasterID, &CreateGameRequest{
		Title:        "Test Campaign",
		System:       "Pathfinder 2e",
		MaxSeats:     maxSeats,
		NextGameDate: time.Now().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return resp
}
