package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"simvex/internal/assistant"
	authhandlers "simvex/internal/auth/handlers"
	"simvex/internal/auth/repository"
	"simvex/internal/auth/service"
	"simvex/internal/catalog"
	"simvex/internal/common/config"
	"simvex/internal/common/logging"
	"simvex/internal/common/metrics"
	"simvex/internal/common/middleware"
	"simvex/internal/common/storage"
	"simvex/internal/export"
	"simvex/internal/study/handlers"
	studyrepo "simvex/internal/study/repository"
	"simvex/internal/viewer"
)

const shutdownTimeout = 10 * time.Second

// ============================================================
// Study Service
// ============================================================

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3002"
	}

	log := logging.MustNew(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     "study",
		Development: cfg.Development(),
	})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ai, err := assistant.New(ctx, assistant.Config{
		Provider:      cfg.AIProvider,
		OpenAIKey:     cfg.OpenAIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiKey:     cfg.GeminiKey,
		GeminiModel:   cfg.GeminiModel,
		Timeout:       time.Duration(cfg.AITimeout) * time.Second,
	}, log.Named("assistant"))
	if err != nil {
		return fmt.Errorf("assistant: %w", err)
	}

	cat := catalog.Default()
	ctrl := viewer.NewController(cat, studyrepo.NewKV(db), ai, viewer.ControllerOptions{
		CameraSaveDelay: time.Duration(cfg.CameraSaveDebounceMS) * time.Millisecond,
		Logger:          log.Named("viewer"),
	})
	defer ctrl.Close()

	var archive *export.Archive
	if cfg.ExportDir != "" {
		archive = export.NewArchive(cfg.ExportDir)
	}

	sessions := service.NewSessionManager()
	authHandler := authhandlers.NewAuthHandler(repository.New(db), sessions, log)
	study := &handlers.Handlers{
		Catalog:   handlers.NewCatalogHandler(cat, ctrl, log),
		Study:     handlers.NewStudyHandler(ctrl, log),
		Assistant: handlers.NewAssistantHandler(ctrl, ai, log),
		Export:    handlers.NewExportHandler(ctrl, export.NewRenderer(cfg.ExportFontPath), archive, log),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Study Service",
		BodyLimit:    32 << 20,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(metrics.Middleware())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	app.Get("/metrics", metrics.Handler())

	// ============================================================
	// Auth Routes
	// ============================================================

	app.Post("/api/auth/signup", authHandler.Signup)
	app.Post("/api/auth/login", authHandler.Login)
	app.Get("/api/auth/me", authHandler.Me)
	app.Post("/api/auth/logout", authHandler.Logout)

	// ============================================================
	// Study Routes
	// ============================================================

	app.Use("/api", middleware.Owner(sessions))
	study.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting study service",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("db", cfg.DBDriver),
		zap.String("assistant", cfg.AIProvider),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
