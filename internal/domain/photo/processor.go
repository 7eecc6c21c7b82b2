package photo

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/objectstore"
	"jan-server/services/lifelog-api/internal/infrastructure/metrics"
)

// uploadedAtLayout has a fixed width so stored timestamps sort as strings.
const uploadedAtLayout = "2006-01-02T15:04:05.000000-07:00"

// Processor turns one uploaded image into an archived original, a thumbnail and a metadata record.
type Processor struct {
	store          objectstore.Store
	repo           Repository
	originalPrefix string
	thumbPrefix    string
	maxPx          int
	maxBytes       int64
	newID          IDFunc
	now            func() time.Time
	log            zerolog.Logger
}

func NewProcessor(cfg *config.Config, store objectstore.Store, repo Repository, log zerolog.Logger) *Processor {
	return &Processor{
		store:          store,
		repo:           repo,
		originalPrefix: cfg.PhotoOriginals,
		thumbPrefix:    cfg.PhotoThumbnails,
		maxPx:          cfg.ThumbnailMaxPx,
		maxBytes:       cfg.MaxMediaBytes,
		newID:          IDFuncFor(cfg.PhotoIDStrategy),
		now:            time.Now,
		log:            log.With().Str("component", "photo-processor").Logger(),
	}
}

// Process handles the object at key. Any failure is returned so the trigger can retry.
func (p *Processor) Process(ctx context.Context, key string) (photo *Photo, err error) {
	ctx, span := otel.Tracer("lifelog-api/photo").Start(ctx, "photo.process")
	contentType := "unknown"
	defer func() {
		metrics.RecordPhoto(ctx, contentType, metrics.StatusLabel(err))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("lifelog.source_key", key))

	if strings.HasPrefix(key, p.originalPrefix) || strings.HasPrefix(key, p.thumbPrefix) {
		contentType = "skipped"
		p.log.Info().Str("key", key).Msg("skipped: derived photo artifact")
		return nil, nil
	}

	data, _, err := objectstore.ReadAll(ctx, p.store, key, p.maxBytes+1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, key, p.maxBytes)
	}

	detected := mimetype.Detect(data).String()
	if !allowedMIMEs[detected] {
		return nil, fmt.Errorf("%w: %s for %s", ErrUnsupportedMedia, detected, key)
	}
	contentType = detected

	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	filename := path.Base(key)
	originalKey := p.originalPrefix + filename
	if err := p.store.Copy(ctx, key, originalKey); err != nil {
		return nil, fmt.Errorf("archive original %s: %w", key, err)
	}

	thumb, err := MakeThumbnail(img, detected, p.maxPx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	thumbnailKey := p.thumbPrefix + filename
	if err := p.store.Put(ctx, thumbnailKey, bytes.NewReader(thumb.Data), int64(len(thumb.Data)), thumb.ContentType); err != nil {
		return nil, fmt.Errorf("store thumbnail %s: %w", thumbnailKey, err)
	}

	bounds := img.Bounds()
	capture := ReadCapture(data)
	photo = &Photo{
		PhotoID:      p.newID(key),
		Filename:     filename,
		OriginalKey:  originalKey,
		ThumbnailKey: thumbnailKey,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		SizeBytes:    int64(len(data)),
		ContentType:  detected,
		TakenAt:      capture.TakenAt,
		CameraMake:   capture.Make,
		CameraModel:  capture.Model,
		Tags:         DeriveTags(bounds.Dx(), bounds.Dy(), capture),
		UploadedAt:   p.now().UTC().Format(uploadedAtLayout),
		SourceKey:    key,
	}
	if err := p.repo.Put(ctx, photo); err != nil {
		return nil, fmt.Errorf("save metadata for %s: %w", key, err)
	}

	span.SetAttributes(attribute.String("lifelog.photo_id", photo.PhotoID))
	p.log.Info().
		Str("key", key).
		Str("photo_id", photo.PhotoID).
		Str("content_type", detected).
		Int("width", photo.Width).
		Int("height", photo.Height).
		Strs("tags", photo.Tags).
		Msg("photo processed")
	return photo, nil
}
