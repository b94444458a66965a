package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot"
	"github.com/tooeasytravel/hotel-bot/internal/database"
	"github.com/tooeasytravel/hotel-bot/internal/health"
	"github.com/tooeasytravel/hotel-bot/internal/history"
	"github.com/tooeasytravel/hotel-bot/internal/hotels"
	"github.com/tooeasytravel/hotel-bot/internal/i18n"
	"github.com/tooeasytravel/hotel-bot/internal/idempotency"
	"github.com/tooeasytravel/hotel-bot/internal/jobs"
	jobhandlers "github.com/tooeasytravel/hotel-bot/internal/jobs/handlers"
	"github.com/tooeasytravel/hotel-bot/internal/lifecycle"
	"github.com/tooeasytravel/hotel-bot/internal/middleware"
	"github.com/tooeasytravel/hotel-bot/internal/ratelimit"
	"github.com/tooeasytravel/hotel-bot/internal/repository"
	"github.com/tooeasytravel/hotel-bot/internal/search"
	"github.com/tooeasytravel/hotel-bot/internal/state"
	"github.com/tooeasytravel/hotel-bot/internal/user"
	"github.com/tooeasytravel/hotel-bot/internal/usercache"
	"github.com/tooeasytravel/hotel-bot/pkg/config"
	"github.com/tooeasytravel/hotel-bot/pkg/graceful"
	"github.com/tooeasytravel/hotel-bot/pkg/logger"
	"github.com/tooeasytravel/hotel-bot/pkg/metrics"
	"github.com/tooeasytravel/hotel-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, _, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	log.Info("starting hotel bot",
		slog.String("env", cfg.AppEnv),
		slog.String("bot_mode", cfg.Bot.Mode),
		slog.String("http_port", cfg.Server.Port),
	)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrationsDir := cfg.Database.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.NewMigrator(db, log).ApplyDir(ctx, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	// Conversation state machine with background expiry of abandoned dialogs.
	stateStorage := state.NewRedisStorage(redisClient.Client, log, cfg.State.TTL)
	fsm := state.NewMachine(stateStorage, log, redisClient.Client)
	stateCleaner := state.NewCleaner(stateStorage, log, cfg.State.TTL, cfg.State.CleanupInterval)
	go stateCleaner.Run(ctx)
	go metrics.NewStateCollector(fsm).Run(ctx)

	hotelsClient, err := hotels.NewClient(cfg.Hotels, log)
	if err != nil {
		return fmt.Errorf("build hotels client: %w", err)
	}
	orchestrator := search.NewOrchestrator(hotelsClient, log)

	userRepo := repository.NewUserRepository(db, log)
	historyRepo := repository.NewHistoryRepository(db, log)
	userService := user.NewService(userRepo, usercache.NewCache(redisClient.Client), log)
	historyService := history.NewService(historyRepo, log)

	translations, err := i18n.LoadFromDir(cfg.I18n.Dir, cfg.I18n.DefaultLang)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	idemManager := idempotency.NewManager(idempotency.NewRedisStore(redisClient.Client, log), log)
	go idempotency.NewCleaner(redisClient.Client, log, time.Hour).Run(ctx)

	limiter := ratelimit.NewAdaptiveLimiter(
		ratelimit.NewRedisLimiter(redisClient.Client, log),
		ratelimit.NewMemoryLimiter(log),
		log,
	)
	rules := ratelimit.NewRules(cfg.RateLimit)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, rules, func(c telebot.Context) string {
		lang := ""
		if c.Sender() != nil {
			lang = c.Sender().LanguageCode
		}
		return translations.Translator(lang).T("error.rate_limited")
	}, log)
	go ratelimit.NewCleaner(redisClient.Client, log, time.Hour).Run(ctx)

	// Background jobs: periodic pruning of stale history rows.
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	worker := jobs.NewWorker(redisOpt, map[string]int{
		jobs.QueueCritical: 6,
		jobs.QueueDefault:  3,
		jobs.QueueLow:      1,
	}, log)
	worker.RegisterHandler(jobs.TaskTypeHistoryPrune, jobhandlers.NewHistoryPruneHandler(historyService, log))
	go func() {
		if err := worker.Run(); err != nil {
			log.Error("job worker stopped", slog.Any("error", err))
		}
	}()

	scheduler := jobs.NewScheduler(redisOpt, cfg.History.PruneSchedule, cfg.History.Retention, log)
	if err := scheduler.RegisterTasks(); err != nil {
		return fmt.Errorf("register scheduled tasks: %w", err)
	}
	go scheduler.Run()

	tgBot, err := bot.New(*cfg, log, bot.Options{
		FSM:                fsm,
		Hotels:             hotelsClient,
		Search:             orchestrator,
		History:            historyService,
		Users:              userService,
		I18n:               translations,
		IdempotencyManager: idemManager,
		RateLimitMw:        rateLimitMw,
	})
	if err != nil {
		return fmt.Errorf("build bot: %w", err)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(tgBot.Telebot()))
	probes := lifecycle.NewProbes(checker, log)

	httpLog := middleware.New(log)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Liveness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Readiness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Server.Port,
		Handler: httpLog(logger.Middleware(mux)),
	}, cfg.Server.ShutdownTimeout)

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("bot", func(context.Context) error {
		tgBot.Stop()
		return nil
	})
	shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})

	go tgBot.Start()
	log.Info("bot started")

	err = srv.ListenAndServe(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if shutdownErr := shutdown.Execute(shutdownCtx); shutdownErr != nil {
		log.Error("shutdown finished with errors", slog.Any("error", shutdownErr))
	}

	return err
}
