package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/athena"
	"jan-server/services/lifelog-api/internal/infrastructure/auth"
	"jan-server/services/lifelog-api/internal/infrastructure/awsclient"
	"jan-server/services/lifelog-api/internal/infrastructure/logger"
	"jan-server/services/lifelog-api/internal/infrastructure/observability"
	photorepo "jan-server/services/lifelog-api/internal/infrastructure/repository/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/storage"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver"
)

// @title Lifelog API
// @version 1.0
// @description Photo metadata and chat message query service
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, "server", log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	photoRepository, err := photorepo.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize photo metadata store")
	}

	clients, err := awsclient.Shared(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize aws clients")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth")
	}

	photoService := photo.NewService(cfg, photoRepository, store, log)
	queryEngine := athena.NewEngine(cfg, clients.Athena(), log)
	chatService := chat.NewQueryService(queryEngine, cfg.ChatTable, cfg.ChatQueryCacheSize, cfg.ChatQueryCacheTTL, log)

	httpServer := httpserver.New(cfg, log, photoService, chatService, authValidator, store)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}
