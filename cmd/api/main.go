package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dblumenau/djforge-go/internal/api"
	"github.com/dblumenau/djforge-go/internal/audit"
	"github.com/dblumenau/djforge-go/internal/auth"
	"github.com/dblumenau/djforge-go/internal/config"
	"github.com/dblumenau/djforge-go/internal/conversation"
	"github.com/dblumenau/djforge-go/internal/database"
	"github.com/dblumenau/djforge-go/internal/engine"
	"github.com/dblumenau/djforge-go/internal/llm"
	"github.com/dblumenau/djforge-go/internal/middleware"
	inats "github.com/dblumenau/djforge-go/internal/nats"
	"github.com/dblumenau/djforge-go/internal/player"
	iredis "github.com/dblumenau/djforge-go/internal/redis"
	"github.com/dblumenau/djforge-go/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Audit pipeline: Postgres + NATS, optional
	var pool *pgxpool.Pool
	var natsClient *inats.Client
	var publisher *inats.Publisher
	var auditHandler *audit.Handler

	if cfg.Audit.Enabled {
		pool, err = database.NewPostgresPool(ctx, cfg.DB)
		if err != nil {
			slog.Error("connecting to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}

		natsClient, err = inats.NewClient(ctx, cfg.NATS.URL)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher = inats.NewPublisher(natsClient.JetStream())

		auditRepo := audit.NewRepository(pool)
		auditHandler = audit.NewHandler(auditRepo)

		consumerMgr := inats.NewConsumerManager(natsClient.JetStream())
		auditConsumer := audit.NewConsumer(auditRepo, consumerMgr)
		go func() {
			if err := auditConsumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Conversation store
	store := conversation.NewRedisStore(redisClient, conversation.Config{
		MaxEntries:    cfg.Conversation.MaxEntries,
		TTLSeconds:    cfg.Conversation.TTLSeconds,
		MaxFieldLen:   cfg.Conversation.MaxFieldLen,
		MaxResponseSz: cfg.Conversation.MaxResponseSz,
	})

	// Model producer
	producer, err := llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		slog.Error("creating llm client", "error", err)
		os.Exit(1)
	}

	// Engine and handlers
	eng := engine.New(store, producer, publisher)
	engineHandler := engine.NewHandler(eng, player.NewNoop())

	jwtManager := auth.NewJWTManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	routerCfg := api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit.MaxReqs, cfg.RateLimit.WindowSec)
		routerCfg.CommandRateLimiter = limiter.Middleware
	}

	handlers := api.HandlerSet{
		ProcessCommand: engineHandler.ProcessCommand,
		RecordOutcome:  engineHandler.RecordOutcome,
		GetHistory:     engineHandler.GetHistory,
		ClearHistory:   engineHandler.ClearHistory,
		GetDialogState: engineHandler.GetDialogState,
		AuthMiddleware: auth.Middleware(jwtManager),
	}
	if auditHandler != nil {
		handlers.ListAuditLogs = auditHandler.List
	}

	router := api.NewRouter(redisClient, pool, natsClient, routerCfg, handlers)

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
