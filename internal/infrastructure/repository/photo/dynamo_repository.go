package photo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	domain "jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/metrics"
	"jan-server/services/lifelog-api/internal/utils/platformerrors"
)

const partitionKey = "photo_id"

// DynamoAPI is the slice of the DynamoDB client the repository uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoRepository keeps one item per photo, keyed by photo_id.
type DynamoRepository struct {
	api   DynamoAPI
	table string
	log   zerolog.Logger
}

func NewDynamoRepository(api DynamoAPI, table string, log zerolog.Logger) *DynamoRepository {
	return &DynamoRepository{
		api:   api,
		table: table,
		log:   log.With().Str("component", "photo-dynamo").Logger(),
	}
}

// Put writes the item unconditionally, replacing any item with the same photo_id.
func (r *DynamoRepository) Put(ctx context.Context, p *domain.Photo) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorageOperation("dynamodb_put", metrics.StatusLabel(err), time.Since(start).Seconds())
	}()

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to marshal photo metadata", err, "3f6b1c2e-8d4a-4e7b-9c1f-5a2d6e8b0c31")
	}
	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			fmt.Sprintf("failed to put photo %s", p.PhotoID), err, "a4c7e2d9-1b3f-4a8e-b6d0-7e9f2c4a1b53")
	}
	return nil
}

// ScanPage reads one page of the table. The cursor is the photo_id of the last evaluated item.
func (r *DynamoRepository) ScanPage(ctx context.Context, cursor string, limit int32) (items []domain.Photo, next string, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorageOperation("dynamodb_scan", metrics.StatusLabel(err), time.Since(start).Seconds())
	}()

	input := &dynamodb.ScanInput{TableName: aws.String(r.table)}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	if cursor != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			partitionKey: &types.AttributeValueMemberS{Value: cursor},
		}
	}

	out, err := r.api.Scan(ctx, input)
	if err != nil {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to scan photo metadata", err, "c81d5f3a-2e6b-4c9d-a7f0-3b5e8d1c2a94")
	}

	items = make([]domain.Photo, 0, len(out.Items))
	for _, raw := range out.Items {
		var p domain.Photo
		if err := attributevalue.UnmarshalMap(raw, &p); err != nil {
			// A malformed item is skipped rather than failing the listing.
			r.log.Warn().Err(err).Msg("skipping unreadable photo item")
			continue
		}
		items = append(items, p)
	}

	if key, ok := out.LastEvaluatedKey[partitionKey].(*types.AttributeValueMemberS); ok {
		next = key.Value
	}
	return items, next, nil
}
