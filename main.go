package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"

	"trivia-match-runtime/config"
	"trivia-match-runtime/handlers"
	"trivia-match-runtime/middleware"
	"trivia-match-runtime/services"
	"trivia-match-runtime/storage/gormstore"
	"trivia-match-runtime/utils"
	"trivia-match-runtime/workers"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := gormstore.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	clock := clockwork.NewRealClock()

	archiver, err := newArchiver(ctx, cfg.Archive)
	if err != nil {
		return err
	}

	catalogService := services.NewCatalogService(store, logger)
	matchService := services.NewMatchService(store, store, logger)
	gateway := services.NewAnswerGateway(store, clock, logger)
	identity := services.NewIdentity(store, cfg.JWTSecret, cfg.TokenTTL, clock)

	if cfg.AdminEmail != "" {
		if err := catalogService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	if cfg.Seed {
		if _, err := services.Seed(ctx, catalogService, matchService); err != nil {
			return fmt.Errorf("failed to load demo data: %w", err)
		}
	}

	registry := workers.NewTaskRegistry(clock, logger)
	worker := workers.NewMatchWorker(store, store, archiver, clock, logger)
	controller := workers.NewController(store, registry, worker, clock, logger)
	scheduler := workers.NewMatchScheduler(store, controller, cfg.SchedulerInterval, clock, logger)

	resumed, err := scheduler.Recover(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover matches: %w", err)
	}
	if err := registry.Start(workers.SchedulerTaskKey, scheduler.Run); err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:               "trivia-match-runtime",
		ErrorHandler:          handlers.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins(),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))
	app.Use(middleware.RequestLogger(logger))

	handlers.SetupRoutes(app, &handlers.Handlers{
		Matches:  matchService,
		Catalog:  catalogService,
		Gateway:  gateway,
		Identity: identity,
		Runtime:  controller,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	logger.Info("✅ server running",
		"port", cfg.Port,
		"db_driver", cfg.DBDriver,
		"scheduler_interval", cfg.SchedulerInterval,
		"resumed_matches", resumed,
		"archive", cfg.Archive.Bucket != "",
	)

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := registry.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("task shutdown: %w", err))
	}
	return errors.Join(errs...)
}

func newArchiver(ctx context.Context, cfg config.ArchiveConfig) (services.ResultArchiver, error) {
	if cfg.Bucket == "" {
		return services.NopArchiver{}, nil
	}
	client, err := utils.NewS3Client(ctx, utils.ObjectStoreConfig{
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		AccessKeySecret: cfg.AccessKeySecret,
	})
	if err != nil {
		return nil, err
	}
	return services.NewS3Archiver(client, cfg.Bucket, cfg.Prefix), nil
}
