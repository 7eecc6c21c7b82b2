package photo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/infrastructure/database/entities"
	"jan-server/services/lifelog-api/internal/utils/platformerrors"
)

// PostgresRepository persists photo metadata via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Put upserts the row keyed by photo_id.
func (r *PostgresRepository) Put(ctx context.Context, p *domain.Photo) error {
	entity := toEntity(p)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "photo_id"}},
		UpdateAll: true,
	}).Create(&entity).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert photo metadata",
			err,
			"5e2a9c7d-4f1b-4d6e-8a3c-9b7f1e2d4c68",
		)
	}
	return nil
}

// ScanPage walks the table in photo_id order. The cursor is the last photo_id of the previous page.
func (r *PostgresRepository) ScanPage(ctx context.Context, cursor string, limit int32) ([]domain.Photo, string, error) {
	if limit <= 0 {
		limit = 100
	}
	query := r.db.WithContext(ctx).Order("photo_id ASC").Limit(int(limit) + 1)
	if cursor != "" {
		query = query.Where("photo_id > ?", cursor)
	}

	var rows []entities.PhotoMetadata
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to scan photo metadata",
			err,
			"d93b6e1f-7a2c-4b8d-9e5f-1c3a7d9b2e40",
		)
	}

	next := ""
	if len(rows) > int(limit) {
		rows = rows[:limit]
		next = rows[len(rows)-1].PhotoID
	}
	items := make([]domain.Photo, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromEntity(row))
	}
	return items, next, nil
}

func toEntity(p *domain.Photo) entities.PhotoMetadata {
	return entities.PhotoMetadata{
		PhotoID:      p.PhotoID,
		Filename:     p.Filename,
		OriginalKey:  p.OriginalKey,
		ThumbnailKey: p.ThumbnailKey,
		Width:        p.Width,
		Height:       p.Height,
		SizeBytes:    p.SizeBytes,
		ContentType:  p.ContentType,
		TakenAt:      p.TakenAt,
		CameraMake:   p.CameraMake,
		CameraModel:  p.CameraModel,
		Tags:         p.Tags,
		UploadedAt:   p.UploadedAt,
		SourceKey:    p.SourceKey,
	}
}

func fromEntity(e entities.PhotoMetadata) domain.Photo {
	tags := []string(e.Tags)
	if tags == nil {
		tags = []string{}
	}
	return domain.Photo{
		PhotoID:      e.PhotoID,
		Filename:     e.Filename,
		OriginalKey:  e.OriginalKey,
		ThumbnailKey: e.ThumbnailKey,
		Width:        e.Width,
		Height:       e.Height,
		SizeBytes:    e.SizeBytes,
		ContentType:  e.ContentType,
		TakenAt:      e.TakenAt,
		CameraMake:   e.CameraMake,
		CameraModel:  e.CameraModel,
		Tags:         tags,
		UploadedAt:   e.UploadedAt,
		SourceKey:    e.SourceKey,
	}
}
