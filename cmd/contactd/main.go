package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kursadbilgin/contact-relay/internal/config"
	"github.com/kursadbilgin/contact-relay/internal/handler"
	"github.com/kursadbilgin/contact-relay/internal/observability"
	"github.com/kursadbilgin/contact-relay/internal/relay"
	"github.com/kursadbilgin/contact-relay/internal/service"
	"github.com/kursadbilgin/contact-relay/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	location, err := cfg.Location()
	if err != nil {
		logger.Fatal("page url is invalid", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	submissions, err := service.NewSubmissionService(relay.NewHTTPSender(), service.Config{
		Location:         location,
		FallbackEndpoint: cfg.FallbackURL,
		Timeout:          cfg.Timeout(),
	}, observability.NewDiagnostics(logger, metrics))
	if err != nil {
		logger.Fatal("submission service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app)
	if err := handler.RegisterContactRoutes(app, submissions, cfg.Timeout(), metrics); err != nil {
		logger.Fatal("contact routes registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("contact-relay api started",
			zap.Int("port", cfg.APIPort),
			zap.Strings("candidates", submissions.Candidates()),
		)
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})
	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("contact-relay api shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("contact-relay api stopped with error", zap.Error(err))
	}
}
