package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/partyquiz/partyquiz/internal/api"
	"github.com/partyquiz/partyquiz/internal/config"
	"github.com/partyquiz/partyquiz/internal/factory"
	"github.com/partyquiz/partyquiz/internal/services/auth"
	redisstorage "github.com/partyquiz/partyquiz/internal/storage/redis"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg := config.Load()

	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	// Build factory config from environment
	factoryCfg := factory.Config{
		QuestionsPath: cfg.QuestionsPath,
		AuthConfig: auth.Config{
			Secret:        cfg.JWTSecret,
			TokenDuration: auth.DefaultConfig().TokenDuration,
		},
		Logger:      logger,
		StorageType: cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
	}

	if factoryCfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("question corpus loaded", slog.Int("count", app.QuestionService.Count()))

	router := api.NewRouter(api.RouterConfig{
		Logger:               logger,
		AuthService:          app.AuthService,
		MembershipController: app.MembershipController,
		GameController:       app.GameController,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func newLogger(format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
