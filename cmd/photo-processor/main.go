package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/logger"
	"jan-server/services/lifelog-api/internal/infrastructure/observability"
	photorepo "jan-server/services/lifelog-api/internal/infrastructure/repository/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/storage"
	"jan-server/services/lifelog-api/internal/interfaces/s3trigger"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)
	ctx := context.Background()

	if _, err := observability.Setup(ctx, cfg, "photo-processor", log); err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	repo, err := photorepo.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize photo metadata store")
	}

	processor := photo.NewProcessor(cfg, store, repo, log)
	handler := s3trigger.NewHandler("photo-processor-trigger", cfg.S3Bucket, func(ctx context.Context, key string) error {
		_, err := processor.Process(ctx, key)
		return err
	}, log)

	lambda.Start(func(ctx context.Context, event events.S3Event) error {
		defer observability.Flush(ctx)
		return handler.Handle(ctx, event)
	})
}
