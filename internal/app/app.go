package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/gustavoo4544-commits/bolacup/external/syncpay"
	"github.com/gustavoo4544-commits/bolacup/internal/config"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/deposit"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/session"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/team"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/pubsub"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/repository/memory"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/repository/postgres"
	"github.com/gustavoo4544-commits/bolacup/internal/interfaces/httpapi"
	"github.com/gustavoo4544-commits/bolacup/internal/notify"
	"github.com/gustavoo4544-commits/bolacup/internal/observability"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/cache"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/resilience"
	"github.com/gustavoo4544-commits/bolacup/internal/usecase"

	_ "github.com/lib/pq"
)

// App owns every long-lived component and tears them down in reverse
// order on shutdown.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	Server        *http.Server
	metricsServer *http.Server

	db             *sqlx.DB
	redisClient    *redis.Client
	notifier       *notify.DiscordNotifier
	depositService *usecase.DepositService
	feedCancel     context.CancelFunc
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{cfg: cfg, logger: logger}

	var (
		userRepo    user.Repository
		sessionRepo session.Repository
		depositRepo deposit.Repository
		betRepo     bet.Repository
	)

	if cfg.DBURL != "" {
		db, err := otelsqlx.Connect("postgres", cfg.DBURL,
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		a.db = db

		userRepo = postgres.NewUserRepository(db)
		sessionRepo = postgres.NewSessionRepository(db)
		depositRepo = postgres.NewDepositRepository(db)
		betRepo = postgres.NewBetRepository(db)
		logger.Info("storage configured", "backend", "postgres")
	} else {
		userRepo = memory.NewUserRepository()
		sessionRepo = memory.NewSessionRepository()
		depositRepo = memory.NewDepositRepository()
		betRepo = memory.NewBetRepository()
		logger.Info("storage configured", "backend", "memory")
	}

	teamRepo := memory.NewTeamRepository(team.Catalog())

	var feed pubsub.ChangeFeed
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			a.closePartial()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.redisClient = client
		feed = pubsub.NewRedisFeed(client, logger)
		logger.Info("change feed configured", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		feed = pubsub.NewMemoryFeed()
		logger.Info("change feed configured", "backend", "memory")
	}

	notifier, err := notify.NewDiscordNotifier(notify.DiscordNotifierConfig{
		WebhookURL: cfg.DiscordWebhookURL,
		Workers:    cfg.DiscordWorkers,
		Timeout:    cfg.DiscordTimeout,
		Logger:     logger,
	})
	if err != nil {
		a.closePartial()
		return nil, fmt.Errorf("build discord notifier: %w", err)
	}
	a.notifier = notifier

	gateway := syncpay.NewClient(syncpay.ClientConfig{
		BaseURL:      cfg.SyncPayBaseURL,
		ClientID:     cfg.SyncPayClientID,
		ClientSecret: cfg.SyncPayClientSecret,
		WebhookURL:   cfg.SyncPayWebhookURL,
		Timeout:      cfg.SyncPayTimeout,
		MaxRetries:   cfg.SyncPayMaxRetries,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SyncPayCircuitEnabled,
			FailureThreshold: cfg.SyncPayCircuitFailureCount,
			OpenTimeout:      cfg.SyncPayCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SyncPayCircuitHalfOpenReq,
		},
	})

	accountService := usecase.NewAccountService(userRepo, sessionRepo, nil, notifier, cfg.SessionTTL, logger)
	teamService := usecase.NewTeamService(teamRepo)
	depositService := usecase.NewDepositService(usecase.DepositServiceConfig{
		Gateway:         gateway,
		Users:           userRepo,
		Deposits:        depositRepo,
		Logger:          logger,
		PollInterval:    cfg.DepositPollInterval,
		PollMaxAttempts: cfg.DepositPollMaxAttempts,
		PersistRetries:  cfg.DepositPersistRetries,
	})
	a.depositService = depositService
	betService := usecase.NewBetService(betRepo, teamRepo, userRepo, nil, feed, logger)
	historyService := usecase.NewHistoryService(depositRepo, betRepo)
	prizeService := usecase.NewPrizeService(
		betRepo,
		teamRepo,
		cache.NewStore(cfg.PrizeCacheTTL),
		usecase.BettorCountMode(cfg.PrizeBettorCountMode),
		logger,
	)

	feedCtx, feedCancel := context.WithCancel(context.Background())
	a.feedCancel = feedCancel
	prizeService.SubscribeInvalidation(feedCtx, feed)

	handler := httpapi.NewHandler(
		accountService,
		teamService,
		depositService,
		betService,
		historyService,
		prizeService,
		logger,
	)
	router := httpapi.NewRouter(handler, accountService, logger, cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	a.metricsServer = observability.StartMetricsServer(cfg.MetricsAddr, a.healthy)

	return a, nil
}

func (a *App) healthy(ctx context.Context) error {
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight deposit pollers,
// and releases external connections.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if a.depositService != nil {
		a.depositService.Shutdown()
	}
	if a.feedCancel != nil {
		a.feedCancel()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("metrics server shutdown: %w", err)
		}
	}

	a.closePartial()

	return firstErr
}

func (a *App) closePartial() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("close redis client failed", "error", err)
		}
		a.redisClient = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close postgres pool failed", "error", err)
		}
		a.db = nil
	}
}
