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
	"github.com/gofiber/fiber/v3/middleware/static"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"simvex/internal/common/config"
	"simvex/internal/common/logging"
	"simvex/internal/common/metrics"
	"simvex/internal/common/middleware"
	"simvex/internal/gateway/handlers"
	"simvex/internal/gateway/proxy"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log := logging.MustNew(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     "gateway",
		Development: cfg.Development(),
	})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	studyURL := config.GetEnv("STUDY_URL", "http://localhost:3002")
	studyProxy := proxy.New(studyURL, time.Duration(cfg.WriteTimeout)*time.Second, log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "API Gateway",
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

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(studyProxy.Ping))
	app.Get("/health/startup", handlers.StartupProbe)
	app.Get("/metrics", metrics.Handler())

	// ============================================================
	// Docs
	// ============================================================

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	app.All("/api/*", studyProxy.Handler())

	// Model files and thumbnails for the viewer
	if dir := config.GetEnv("STATIC_DIR", ""); dir != "" {
		app.Get("/*", static.New(dir))
	}

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting api gateway",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("study_url", studyURL),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
