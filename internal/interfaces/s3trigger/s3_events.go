// Package s3trigger adapts object-created notifications to per-key domain handlers.
package s3trigger

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "jan-server/lifelog-api/s3trigger"

// KeyFunc handles one object key. A returned error fails the whole invocation.
type KeyFunc func(ctx context.Context, key string) error

// Handler turns an S3 event into KeyFunc calls, one per record, in order.
type Handler struct {
	name    string
	bucket  string
	handle  KeyFunc
	objects metric.Int64Counter
	log     zerolog.Logger
}

// NewHandler wraps handle for objects in bucket. Records from any other bucket are skipped,
// because handle reads and writes through storage bound to bucket. An empty bucket accepts all.
// Object counts are exported through the global OTel meter provider, since Lambda functions are not scraped.
func NewHandler(name, bucket string, handle KeyFunc, log zerolog.Logger) *Handler {
	objects, err := otel.Meter(meterName).Int64Counter("lifelog.s3trigger.objects",
		metric.WithDescription("Objects handled per trigger and status"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("s3 trigger counter unavailable")
	}
	return &Handler{
		name:    name,
		bucket:  bucket,
		handle:  handle,
		objects: objects,
		log:     log.With().Str("component", name).Logger(),
	}
}

func (h *Handler) record(ctx context.Context, status string) {
	if h.objects == nil {
		return
	}
	h.objects.Add(ctx, 1, metric.WithAttributes(
		attribute.String("handler", h.name),
		attribute.String("status", status),
	))
}

// ObjectKey decodes the key as it appears in the notification, where spaces arrive as '+'.
func ObjectKey(record events.S3EventRecord) (string, error) {
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return "", fmt.Errorf("decode object key %q: %w", record.S3.Object.Key, err)
	}
	return key, nil
}

// Handle processes every record and stops at the first failure so the runtime can retry the event.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) error {
	for i, record := range event.Records {
		if record.EventName != "" && !strings.HasPrefix(record.EventName, "ObjectCreated") {
			h.log.Debug().Str("event", record.EventName).Msg("ignoring non create event")
			continue
		}
		key, err := ObjectKey(record)
		if err != nil {
			return err
		}
		if source := record.S3.Bucket.Name; h.bucket != "" && source != "" && source != h.bucket {
			h.record(ctx, "skipped")
			h.log.Warn().
				Str("bucket", source).
				Str("expected_bucket", h.bucket).
				Str("key", key).
				Msg("skipping object from unexpected bucket")
			continue
		}
		h.log.Info().
			Int("record", i).
			Str("bucket", record.S3.Bucket.Name).
			Str("key", key).
			Msg("handling object")
		if err := h.handle(ctx, key); err != nil {
			h.record(ctx, "error")
			h.log.Error().Err(err).Str("key", key).Msg("object handling failed")
			return err
		}
		h.record(ctx, "success")
	}
	return nil
}
