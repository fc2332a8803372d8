package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/askwind/askwind/internal/api"
	"github.com/askwind/askwind/internal/artifact"
	s3artifact "github.com/askwind/askwind/internal/artifact/s3"
	"github.com/askwind/askwind/internal/auth"
	"github.com/askwind/askwind/internal/config"
	"github.com/askwind/askwind/internal/forecast"
	"github.com/askwind/askwind/internal/nlq"
	"github.com/askwind/askwind/internal/observability"
	"github.com/askwind/askwind/internal/retrain"
	"github.com/askwind/askwind/internal/store"
)

func main() {
	cfg, err := config.LoadFromEnv("askwind-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LoggerConfig{
		Service:  cfg.Service.Name,
		Profile:  string(cfg.Profile),
		LogLevel: cfg.Observability.LogLevel,
		LogJSON:  cfg.Observability.LogJSON,
	}, os.Stdout)

	db, err := store.Open(context.Background(), store.DBConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		TLSCAPath:       cfg.Database.TLSCAPath,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open northwind db", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	warehouse := store.NewStore(db)

	var artifacts artifact.Store
	switch cfg.Artifact.Backend {
	case config.ArtifactBackendS3:
		artifacts, err = s3artifact.New(s3artifact.Config{
			Endpoint:        cfg.Artifact.S3Endpoint,
			Region:          cfg.Artifact.S3Region,
			Bucket:          cfg.Artifact.S3Bucket,
			AccessKeyID:     cfg.Artifact.S3AccessKeyID,
			SecretAccessKey: cfg.Artifact.S3SecretKey,
			UseSSL:          cfg.Artifact.S3UseSSL,
			Prefix:          cfg.Artifact.S3Prefix,
		})
	default:
		artifacts, err = artifact.NewLocalStore(cfg.Artifact.LocalDir)
	}
	if err != nil {
		logger.Error("failed to initialize artifact store", slog.Any("error", err))
		os.Exit(1)
	}

	groq, err := nlq.NewGroqClient(nlq.GroqConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize completion client", slog.Any("error", err))
		os.Exit(1)
	}
	completer := &nlq.RetryCompleter{
		Inner:        groq,
		MaxAttempts:  cfg.AI.MaxRetries,
		InitialDelay: cfg.AI.RetryDelay,
		Logger:       logger,
	}
	resolver := nlq.NewResolver(completer, cfg.AI.Temperature)

	forecaster := forecast.NewService(warehouse, artifacts, completer, forecast.Config{
		ModelKey:       cfg.Forecast.ModelKey,
		DefaultPeriods: cfg.Forecast.DefaultPeriods,
	}, logger)

	scheduler := retrain.NewScheduler(retrain.TrainerFunc(func(ctx context.Context) error {
		_, err := forecaster.Train(ctx)
		return err
	}), logger)
	if err := scheduler.Start(cfg.Forecast.RetrainCron); err != nil {
		logger.Error("failed to start retrain scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer scheduler.Stop()

	deps := api.Dependencies{
		Logger:     logger,
		Resolver:   resolver,
		Warehouse:  warehouse,
		Forecaster: forecaster,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
