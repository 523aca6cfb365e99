package jobs

import (
	"context"
	"time"

	"github.com/tableguild/tableguild/config"
	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/internal/service"
	"github.com/tableguild/tableguild/middleware/log"
	"github.com/tableguild/tableguild/pkg/utils"
	"go.uber.org/zap"
)

// Runner ticks the periodic maintenance work: advancing game schedules,
// purging accounts past their deletion window, and notifying fresh invites.
// Each pass runs on the shared worker pool so a slow job cannot stall the
// ticker.
type Runner struct {
	scheduleService service.IScheduleService
	auditService    service.IAuditService
	memberRepo      repository.IMemberRepository
	inviteRepo      repository.IInviteRepository
	pool            *utils.WorkerPool
	logger          *log.Logger

	interval    time.Duration
	purgeAfter  time.Duration
	notifyBatch int
}

func NewRunner(
	scheduleService service.IScheduleService,
	auditService service.IAuditService,
	memberRepo repository.IMemberRepository,
	inviteRepo repository.IInviteRepository,
	pool *utils.WorkerPool,
	logger *log.Logger,
	cfg *config.RetentionConfig,
) *Runner {
	return &Runner{
		scheduleService: scheduleService,
		auditService:    auditService,
		memberRepo:      memberRepo,
		inviteRepo:      inviteRepo,
		pool:            pool,
		logger:          logger,
		interval:        time.Duration(cfg.JobIntervalSeconds) * time.Second,
		purgeAfter:      time.Duration(cfg.AccountPurgeDays) * 24 * time.Hour,
		notifyBatch:     cfg.NotifyBatchSize,
	}
}

// Start runs the job loop until the context ends.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.pool.Submit(func() { r.advanceSchedules(ctx) })
				r.pool.Submit(func() { r.purgeAccounts(ctx) })
				r.pool.Submit(func() { r.notifyInvites(ctx) })
			}
		}
	}()
}

// advanceSchedules moves due next_game_date values to their following
// occurrence.
func (r *Runner) advanceSchedules(ctx context.Context) {
	advanced, err := r.scheduleService.AdvanceDue(ctx, time.Now())
	if err != nil {
		r.logger.ErrorContext(ctx, "schedule advance pass failed", zap.Error(err))
		return
	}
	if advanced > 0 {
		r.logger.InfoContext(ctx, "advanced game schedules", zap.Int("count", advanced))
	}
}

// purgeAccounts permanently removes members whose deletion request has
// aged past the retention window. Until the purge runs, the account can
// still be restored.
func (r *Runner) purgeAccounts(ctx context.Context) {
	cutoff := time.Now().Add(-r.purgeAfter)
	members, err := r.memberRepo.FindDeletionRequestedBefore(ctx, cutoff)
	if err != nil {
		r.logger.ErrorContext(ctx, "purge pass failed to list candidates", zap.Error(err))
		return
	}

	for _, member := range members {
		if err := r.memberRepo.PurgePermanently(ctx, member.ID); err != nil {
			r.logger.ErrorContext(ctx, "failed to purge member",
				zap.String("member_id", member.ID), zap.Error(err))
			continue
		}
		if err := r.auditService.Record(ctx, model.AuditMemberPurged, "", "member", member.ID, map[string]any{
			"deletion_requested_at": member.DeletionRequestedAt,
		}); err != nil {
			r.logger.ErrorContext(ctx, "failed to audit member purge",
				zap.String("member_id", member.ID), zap.Error(err))
		}
		r.logger.InfoContext(ctx, "purged member account", zap.String("member_id", member.ID))
	}
}

// notifyInvites marks a batch of pending invites as notified. Delivery
// itself is out of band; the flag keeps the batch from being picked twice.
func (r *Runner) notifyInvites(ctx context.Context) {
	invites, err := r.inviteRepo.FindUnnotified(ctx, r.notifyBatch)
	if err != nil {
		r.logger.ErrorContext(ctx, "invite notify pass failed", zap.Error(err))
		return
	}

	for _, invite := range invites {
		if err := r.inviteRepo.MarkNotified(ctx, invite.ID); err != nil {
			r.logger.ErrorContext(ctx, "failed to mark invite notified",
				zap.String("invite_id", invite.ID), zap.Error(err))
			continue
		}
		r.logger.InfoContext(ctx, "invite notification queued",
			zap.String("invite_id", invite.ID),
			zap.String("game_id", invite.GameID))
	}
}
