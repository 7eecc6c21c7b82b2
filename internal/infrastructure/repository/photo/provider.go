package photo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/lifelog-api/internal/config"
	domain "jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/awsclient"
	"jan-server/services/lifelog-api/internal/infrastructure/database"
)

var (
	_ domain.Repository = (*DynamoRepository)(nil)
	_ domain.Repository = (*PostgresRepository)(nil)
)

// New creates the metadata repository selected by METADATA_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Repository, error) {
	if cfg.IsPostgresMetadata() {
		db, err := database.Connect(database.Config{
			DSN:             cfg.DatabaseURL,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			ConnMaxLifetime: cfg.DBConnLifetime,
			LogLevel:        gormlogger.Warn,
		})
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db, log); err != nil {
			return nil, fmt.Errorf("migrate photo metadata: %w", err)
		}
		return NewPostgresRepository(db), nil
	}

	if cfg.DynamoDBTable == "" {
		return nil, fmt.Errorf("TABLE_NAME is required for the dynamodb metadata backend")
	}
	clients, err := awsclient.Shared(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewDynamoRepository(clients.DynamoDB(), cfg.DynamoDBTable, log), nil
}
