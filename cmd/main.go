package main

import (
	"context"
	stdlog "log"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tableguild/tableguild/config"
	"github.com/tableguild/tableguild/internal/api"
	"github.com/tableguild/tableguild/internal/consumer"
	"github.com/tableguild/tableguild/internal/handler"
	"github.com/tableguild/tableguild/internal/jobs"
	redisclient "github.com/tableguild/tableguild/internal/pkg/redis"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/internal/service"
	"github.com/tableguild/tableguild/internal/storage"
	"github.com/tableguild/tableguild/internal/ws"
	"github.com/tableguild/tableguild/middleware/jwt"
	"github.com/tableguild/tableguild/middleware/log"
	"github.com/tableguild/tableguild/pkg/mq"
	"github.com/tableguild/tableguild/pkg/utils"
	"github.com/tableguild/tableguild/utils/ratelimit"
	"github.com/tableguild/tableguild/utils/snowflake"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	logger, err := log.NewLogger(&cfg.Logging)
	if err != nil {
		stdlog.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Close()

	ctx := context.Background()

	// Postgres
	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	db, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		logger.Fatal("failed to init postgres", zap.Error(err))
	}

	// Redis
	rdb, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to init redis", zap.Error(err))
	}
	defer rdb.Close()

	// Object store for uploads
	objectStore, err := storage.NewObjectStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal("failed to init object store", zap.Error(err))
	}

	// Snowflake generator for message IDs
	idGen, err := snowflake.NewGenerator(1)
	if err != nil {
		logger.Fatal("failed to init id generator", zap.Error(err))
	}

	tokenManager := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.JWT.RefreshHours)

	// Worker pool shared by the background jobs
	pool := utils.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.Start()
	defer pool.Stop()

	// Repositories
	memberRepo := repository.NewMemberRepository(db, rdb)
	gameRepo := repository.NewGameRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	broadcastRepo := repository.NewBroadcastRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Kafka producer; absent broker switches broadcasts to direct writes
	var publisher mq.Publisher
	kafkaProducer, err := mq.NewKafkaProducer(&cfg.Kafka)
	if err != nil {
		logger.Warn("kafka unavailable, broadcasts will persist directly", zap.Error(err))
	} else {
		publisher = kafkaProducer
		defer kafkaProducer.Close()
	}

	// Websocket hub
	hub := ws.NewHub(rdb)
	go hub.Run()

	// Services
	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(memberRepo, tokenManager)
	memberService := service.NewMemberService(memberRepo, auditService)
	gameService := service.NewGameService(gameRepo, memberRepo, auditService)
	scheduleService := service.NewScheduleService(gameRepo)
	registrationService := service.NewRegistrationService(registrationRepo, gameRepo, gameService, auditService)
	inviteService := service.NewInviteService(inviteRepo, gameRepo, registrationRepo, gameService, auditService, cfg.Retention.InviteExpiryHours)
	messageService := service.NewMessageService(messageRepo, memberRepo, rdb, idGen)
	broadcastService := service.NewBroadcastService(broadcastRepo, registrationRepo, gameRepo, gameService, auditService, publisher, hub, logger)
	resourceService := service.NewResourceService(resourceRepo, objectStore, cfg.Uploads.MaxSizeMB)

	// Kafka consumer group, only when the broker came up
	if publisher != nil {
		broadcastConsumer := consumer.NewBroadcastConsumer(broadcastService, logger)
		if err := consumer.Start(ctx, &cfg.Kafka, broadcastConsumer, logger); err != nil {
			logger.Warn("failed to start kafka consumer", zap.Error(err))
		}
	}

	// Background jobs
	runner := jobs.NewRunner(scheduleService, auditService, memberRepo, inviteRepo, pool, logger, &cfg.Retention)
	runner.Start(ctx)

	// Rate limiting: Redis fixed window with a local bucket fallback
	localBucket := ratelimit.NewTokenBucket(cfg.RateLimit.LocalBurst, cfg.RateLimit.LocalQPS)
	limiter := ratelimit.NewFixedWindowLimiter(rdb.GetClient(), logger.Logger, localBucket, true)

	mw := api.NewMiddlewareManager(tokenManager, limiter, logger, &cfg.RateLimit)

	handlers := &api.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Member:       handler.NewMemberHandler(memberService),
		Game:         handler.NewGameHandler(gameService, scheduleService, resourceService),
		Registration: handler.NewRegistrationHandler(registrationService),
		Invite:       handler.NewInviteHandler(inviteService),
		Message:      handler.NewMessageHandler(messageService),
		Broadcast:    handler.NewBroadcastHandler(broadcastService),
		Resource:     handler.NewResourceHandler(resourceService),
		Admin:        handler.NewAdminHandler(gameService, memberService, auditService),
	}

	gin.SetMode(cfg.Server.Mode)
	r := api.NewRouter(mw, handlers, hub, logger)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	logger.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
