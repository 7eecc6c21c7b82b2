package storage

import (
	"context"

	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/objectstore"
	"jan-server/services/lifelog-api/internal/infrastructure/awsclient"
)

// Backend is an object store that can also mint download URLs and report its health.
type Backend interface {
	objectstore.Store
	objectstore.Presigner
	Health(ctx context.Context) error
}

var (
	_ Backend = (*S3Storage)(nil)
	_ Backend = (*LocalStorage)(nil)
)

// New creates the storage backend selected by LIFELOG_STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, error) {
	if cfg.IsLocalStorage() {
		return NewLocalStorage(cfg.LocalStoragePath, cfg.LocalStorageBaseURL, log)
	}

	clients, err := awsclient.Shared(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewS3Storage(cfg, clients.S3(), log), nil
}
