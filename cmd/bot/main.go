package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/TheX6/partnerkin-super-bot/internal/bot"
	"github.com/TheX6/partnerkin-super-bot/internal/config"
	"github.com/TheX6/partnerkin-super-bot/internal/database"
	"github.com/TheX6/partnerkin-super-bot/internal/handlers"
	"github.com/TheX6/partnerkin-super-bot/internal/logging"
	"github.com/TheX6/partnerkin-super-bot/internal/ratelimit"
	"github.com/TheX6/partnerkin-super-bot/internal/routes"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/session"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/TheX6/partnerkin-super-bot/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("production")
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// Structured logging (JSON to stdout outside development)
	stdout := logging.Setup(cfg.AppEnv)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	var (
		st           store.Store
		ping         func() error
		pgLogHandler *logging.PGHandler
	)
	cleanupDone := make(chan struct{})
	switch cfg.StoreDriver {
	case "memory":
		st = store.NewMemory()
		slog.Warn("using in-memory store, data will not survive a restart")
	default:
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(database.DB)
		slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))
		logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

		st = store.NewGorm(database.DB)
		ping = database.Ping
	}

	// Dialogue state and flood control: shared through redis when configured
	var (
		rdb           *redis.Client
		dialogueStore session.Store = session.NewMemoryStore()
		limiter       ratelimit.Limiter
		svcOpts       []services.Option
	)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		dialogueStore = session.NewRedisStore(rdb, cfg.DialogueIdleTimeout)
		limiter = ratelimit.NewRedis(rdb, cfg.RateLimitEvents, cfg.RateLimitWindow)
		svcOpts = append(svcOpts, services.WithLoginLimiter(
			ratelimit.NewRedis(rdb, cfg.AdminLoginLimit, cfg.AdminLoginWindow).WithPrefix("admin_login:")))
		slog.Info("redis connected")
	} else {
		mem := ratelimit.NewMemory(cfg.RateLimitEvents, cfg.RateLimitWindow)
		mem.StartSweeper(ctx, time.Minute)
		limiter = mem
	}

	// Services
	svc, err := services.New(st, cfg, svcOpts...)
	if err != nil {
		slog.Error("failed to build services", "error", err)
		os.Exit(1)
	}
	dialogues := session.NewRegistry(dialogueStore, cfg.DialogueRetryBudget)

	// Telegram
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		slog.Error("telegram auth failed", "error", err)
		os.Exit(1)
	}
	slog.Info("telegram authorized", "bot", api.Self.UserName)

	nav := session.NewNavigation()
	b := bot.New(svc, dialogues, nav, telegram.NewPresenter(api, slog.Default()),
		bot.WithLogger(slog.Default()),
		bot.WithWebAppURL(cfg.WebAppURL),
	)
	pool := telegram.NewPool(b.Handle,
		telegram.WithLimiter(limiter),
		telegram.WithPoolLogger(slog.Default()),
	)

	// Background jobs
	dialogues.StartSweeper(ctx, cfg.DialogueSweepInterval, cfg.DialogueIdleTimeout)
	nav.StartSweeper(ctx, cfg.DialogueSweepInterval, cfg.DialogueIdleTimeout)
	svc.AdminAuth.StartSweeper(ctx, cfg.AdminSessionSweep)
	svc.Clicker.StartEnergyRegen(ctx)

	// HTTP
	app := routes.NewApp(cfg)
	routes.Setup(app, cfg, svc.AdminAuth,
		handlers.NewHealthHandler(ping, dialogues),
		handlers.NewWebhookHandler(cfg.WebhookSecret, pool),
		handlers.NewWebAppHandler(svc.Users, svc.Clicker, cfg.EnergyMax),
		handlers.NewAdminHandler(svc.Stats),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	if cfg.BotMode == "webhook" {
		if err := telegram.SetWebhook(api, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			slog.Error("webhook registration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("telegram webhook registered")
	} else {
		g.Go(func() error {
			return telegram.RunPolling(gctx, api, pool, slog.Default())
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("server stopped with error", "error", err)
	}

	// Drain in-flight events before closing their dependencies
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := pool.Close(drainCtx); err != nil {
		slog.Error("event pool did not drain", "error", err)
	}

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}
	sentry.Flush(2 * time.Second)

	slog.Info("server stopped")
}
