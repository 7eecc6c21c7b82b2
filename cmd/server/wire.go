//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/domain/objectstore"
	"jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/athena"
	"jan-server/services/lifelog-api/internal/infrastructure/auth"
	"jan-server/services/lifelog-api/internal/infrastructure/awsclient"
	"jan-server/services/lifelog-api/internal/infrastructure/logger"
	photorepo "jan-server/services/lifelog-api/internal/infrastructure/repository/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/storage"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver/handlers"
)

var photoSet = wire.NewSet(
	photorepo.New,
	storage.New,
	wire.Bind(new(httpserver.HealthChecker), new(storage.Backend)),
	providePresigner,
	photo.NewService,
	wire.Bind(new(handlers.PhotoLister), new(*photo.Service)),
)

var chatSet = wire.NewSet(
	awsclient.Shared,
	provideQueryEngine,
	provideChatQueryService,
	wire.Bind(new(handlers.ChatQuerier), new(*chat.QueryService)),
)

// BuildApplication assembles the lifelog API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		auth.NewValidator,
		photoSet,
		chatSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func providePresigner(backend storage.Backend) objectstore.Presigner {
	return backend
}

func provideQueryEngine(cfg *config.Config, clients *awsclient.Clients, log zerolog.Logger) chat.Engine {
	return athena.NewEngine(cfg, clients.Athena(), log)
}

func provideChatQueryService(cfg *config.Config, engine chat.Engine, log zerolog.Logger) *chat.QueryService {
	return chat.NewQueryService(engine, cfg.ChatTable, cfg.ChatQueryCacheSize, cfg.ChatQueryCacheTTL, log)
}
