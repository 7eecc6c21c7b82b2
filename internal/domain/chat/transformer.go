package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"jan-server/services/lifelog-api/internal/domain/objectstore"
	"jan-server/services/lifelog-api/internal/infrastructure/metrics"
	"jan-server/services/lifelog-api/utils/runid"
)

const partitionFile = "part-00000.snappy.parquet"

// PartitionEncoder serializes the messages of one date partition.
// Equal input must produce equal bytes.
type PartitionEncoder interface {
	Encode(messages []Message) ([]byte, error)
	ContentType() string
}

// Catalog keeps the table definition used by the query engine in sync with the silver layer.
type Catalog interface {
	EnsureTable(ctx context.Context) error
	AddPartitions(ctx context.Context, dates []string) error
}

// Transformer rebuilds the silver layer from every bronze chat export.
type Transformer struct {
	store        objectstore.Store
	encoder      PartitionEncoder
	catalog      Catalog
	bronzePrefix string
	silverPrefix string
	log          zerolog.Logger
	newRunID     func() string
}

// NewTransformer wires a transformer. catalog may be nil when no catalog is configured.
func NewTransformer(store objectstore.Store, encoder PartitionEncoder, catalog Catalog, bronzePrefix, silverPrefix string, log zerolog.Logger) *Transformer {
	return &Transformer{
		store:        store,
		encoder:      encoder,
		catalog:      catalog,
		bronzePrefix: bronzePrefix,
		silverPrefix: silverPrefix,
		log:          log.With().Str("component", "chat-transformer").Logger(),
		newRunID:     runid.New,
	}
}

// PartitionPrefix returns the prefix holding the partition for date.
func PartitionPrefix(silverPrefix, date string) string {
	return silverPrefix + "date=" + url.PathEscape(date) + "/"
}

// PartitionKey returns the object key of the single file of the partition for date.
func PartitionKey(silverPrefix, date string) string {
	return PartitionPrefix(silverPrefix, date) + partitionFile
}

// Run performs a full recompute. Partitions whose encoded bytes did not change are left alone.
func (t *Transformer) Run(ctx context.Context) (result RunResult, err error) {
	result.RunID = t.newRunID()
	log := t.log.With().Str("run_id", result.RunID).Logger()

	ctx, span := otel.Tracer("lifelog-api/chat").Start(ctx, "chat.transform")
	defer func() {
		if err != nil {
			result.Outcome = OutcomeFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.String("lifelog.run_id", result.RunID),
			attribute.String("lifelog.outcome", result.Outcome),
			attribute.Int("lifelog.messages", result.Messages),
		)
		span.End()
		metrics.RecordTransformRun(ctx, result.Outcome, result.Messages, result.PartitionsWritten, result.PartitionsUnchanged)
	}()

	keys, err := t.bronzeKeys(ctx)
	if err != nil {
		return result, err
	}
	if len(keys) == 0 {
		result.Outcome = OutcomeNothingToProcess
		log.Info().Str("prefix", t.bronzePrefix).Msg("no bronze chat exports; nothing to process")
		return result, nil
	}
	result.Files = len(keys)

	byDate := make(map[string][]Message)
	for _, key := range keys {
		data, _, err := objectstore.ReadAll(ctx, t.store, key, 0)
		if err != nil {
			return result, fmt.Errorf("read bronze export %s: %w", key, err)
		}
		for _, msg := range ParseFile(key, string(data)) {
			byDate[msg.Date] = append(byDate[msg.Date], msg)
			result.Messages++
		}
	}
	if result.Messages == 0 {
		result.Outcome = OutcomeNoMessages
		log.Info().Int("files", result.Files).Msg("no parseable chat messages in bronze exports")
		return result, nil
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		written, err := t.writePartition(ctx, date, byDate[date])
		if err != nil {
			return result, err
		}
		if written {
			result.PartitionsWritten++
		} else {
			result.PartitionsUnchanged++
		}
	}
	result.Partitions = dates

	if t.catalog != nil {
		if err := t.catalog.EnsureTable(ctx); err != nil {
			return result, fmt.Errorf("register chat table: %w", err)
		}
		if err := t.catalog.AddPartitions(ctx, dates); err != nil {
			return result, fmt.Errorf("register chat partitions: %w", err)
		}
	}

	result.Outcome = OutcomeCompleted
	log.Info().
		Int("files", result.Files).
		Int("messages", result.Messages).
		Int("partitions_written", result.PartitionsWritten).
		Int("partitions_unchanged", result.PartitionsUnchanged).
		Msg("chat transform completed")
	return result, nil
}

func (t *Transformer) bronzeKeys(ctx context.Context) ([]string, error) {
	objects, err := t.store.List(ctx, t.bronzePrefix)
	if err != nil {
		return nil, fmt.Errorf("list bronze exports: %w", err)
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, ".txt") {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// writePartition replaces the partition for date and reports whether anything was written.
func (t *Transformer) writePartition(ctx context.Context, date string, messages []Message) (bool, error) {
	encoded, err := t.encoder.Encode(messages)
	if err != nil {
		return false, fmt.Errorf("encode partition %s: %w", date, err)
	}

	key := PartitionKey(t.silverPrefix, date)
	current, _, err := objectstore.ReadAll(ctx, t.store, key, 0)
	switch {
	case err == nil && bytes.Equal(current, encoded):
		if err := t.removeStale(ctx, date, key); err != nil {
			return false, err
		}
		return false, nil
	case err != nil && !errors.Is(err, objectstore.ErrNotFound):
		return false, fmt.Errorf("read partition %s: %w", key, err)
	}

	if err := t.store.Put(ctx, key, bytes.NewReader(encoded), int64(len(encoded)), t.encoder.ContentType()); err != nil {
		return false, fmt.Errorf("write partition %s: %w", key, err)
	}
	if err := t.removeStale(ctx, date, key); err != nil {
		return false, err
	}
	t.log.Debug().
		Str("partition", date).
		Int("messages", len(messages)).
		Int("bytes", len(encoded)).
		Msg("partition written")
	return true, nil
}

// removeStale deletes every object under the partition prefix except keep.
func (t *Transformer) removeStale(ctx context.Context, date, keep string) error {
	objects, err := t.store.List(ctx, PartitionPrefix(t.silverPrefix, date))
	if err != nil {
		return fmt.Errorf("list partition %s: %w", date, err)
	}
	for _, obj := range objects {
		if obj.Key == keep {
			continue
		}
		if err := t.store.Delete(ctx, obj.Key); err != nil {
			return fmt.Errorf("delete stale object %s: %w", obj.Key, err)
		}
	}
	return nil
}
