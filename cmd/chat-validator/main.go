package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/infrastructure/logger"
	"jan-server/services/lifelog-api/internal/infrastructure/observability"
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

	if _, err := observability.Setup(ctx, cfg, "chat-validator", log); err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	validator := chat.NewValidator(store, cfg.ChatBronzePrefix(), cfg.MaxValidationBytes, log)
	handler := s3trigger.NewHandler("chat-validator-trigger", cfg.S3Bucket, func(ctx context.Context, key string) error {
		_, err := validator.Validate(ctx, key)
		return err
	}, log)

	lambda.Start(func(ctx context.Context, event events.S3Event) error {
		defer observability.Flush(ctx)
		return handler.Handle(ctx, event)
	})
}
