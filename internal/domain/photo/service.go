package photo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/objectstore"
)

// Service answers photo listings.
type Service struct {
	repo         Repository
	presigner    objectstore.Presigner
	pageSize     int32
	thumbnailTTL time.Duration
	originalTTL  time.Duration
	log          zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, presigner objectstore.Presigner, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		presigner:    presigner,
		pageSize:     cfg.MetadataScanLimit,
		thumbnailTTL: cfg.ThumbnailURLTTL,
		originalTTL:  cfg.OriginalURLTTL,
		log:          log.With().Str("component", "photo-service").Logger(),
	}
}

// ParseSortBy validates the sort_by parameter. An empty value means uploaded_at.
func ParseSortBy(raw string) (string, error) {
	switch strings.TrimSpace(raw) {
	case "", SortByUploadedAt:
		return SortByUploadedAt, nil
	case SortByTakenAt:
		return SortByTakenAt, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidSort, raw)
	}
}

// List scans every record, filters by tag, sorts newest first and mints download URLs.
// URLs are minted per call and never stored.
func (s *Service) List(ctx context.Context, filter Filter) ([]View, error) {
	sortBy, err := ParseSortBy(filter.SortBy)
	if err != nil {
		return nil, err
	}

	photos, err := s.scanAll(ctx)
	if err != nil {
		return nil, err
	}

	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		kept := photos[:0]
		for _, p := range photos {
			if p.HasTag(tag) {
				kept = append(kept, p)
			}
		}
		photos = kept
	}

	SortPhotos(photos, sortBy)

	views := make([]View, 0, len(photos))
	for _, p := range photos {
		thumbURL, err := s.presigner.PresignGet(ctx, p.ThumbnailKey, s.thumbnailTTL)
		if err != nil {
			return nil, fmt.Errorf("presign thumbnail for %s: %w", p.PhotoID, err)
		}
		originalURL, err := s.presigner.PresignGet(ctx, p.OriginalKey, s.originalTTL)
		if err != nil {
			return nil, fmt.Errorf("presign original for %s: %w", p.PhotoID, err)
		}
		views = append(views, View{Photo: p, ThumbnailURL: thumbURL, OriginalURL: originalURL})
	}
	return views, nil
}

// scanAll walks the repository page by page. This is a full linear scan of the table.
func (s *Service) scanAll(ctx context.Context) ([]Photo, error) {
	var (
		all    []Photo
		cursor string
		pages  int
	)
	for {
		items, next, err := s.repo.ScanPage(ctx, cursor, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("scan photo metadata: %w", err)
		}
		all = append(all, items...)
		pages++
		if next == "" {
			break
		}
		cursor = next
	}
	s.log.Debug().Int("pages", pages).Int("records", len(all)).Msg("photo metadata scanned")
	return all, nil
}

// SortPhotos orders photos newest first by sortBy. Records without taken_at go last when sorting by it.
func SortPhotos(photos []Photo, sortBy string) {
	sort.SliceStable(photos, func(i, j int) bool {
		a, b := photos[i], photos[j]
		if sortBy == SortByTakenAt {
			if (a.TakenAt == "") != (b.TakenAt == "") {
				return a.TakenAt != ""
			}
			if a.TakenAt != b.TakenAt {
				return a.TakenAt > b.TakenAt
			}
		}
		if a.UploadedAt != b.UploadedAt {
			return a.UploadedAt > b.UploadedAt
		}
		return a.PhotoID < b.PhotoID
	})
}
