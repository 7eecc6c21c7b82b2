package photo

import (
	"context"
	"errors"
)

// Photo is the metadata record stored for every processed image.
type Photo struct {
	PhotoID      string   `json:"photo_id" dynamodbav:"photo_id"`
	Filename     string   `json:"filename" dynamodbav:"filename"`
	OriginalKey  string   `json:"original_key" dynamodbav:"original_key"`
	ThumbnailKey string   `json:"thumbnail_key" dynamodbav:"thumbnail_key"`
	Width        int      `json:"width" dynamodbav:"width"`
	Height       int      `json:"height" dynamodbav:"height"`
	SizeBytes    int64    `json:"size_bytes" dynamodbav:"size_bytes"`
	ContentType  string   `json:"content_type" dynamodbav:"content_type"`
	TakenAt      string   `json:"taken_at,omitempty" dynamodbav:"taken_at,omitempty"`
	CameraMake   string   `json:"camera_make,omitempty" dynamodbav:"camera_make,omitempty"`
	CameraModel  string   `json:"camera_model,omitempty" dynamodbav:"camera_model,omitempty"`
	Tags         []string `json:"tags" dynamodbav:"tags"`
	UploadedAt   string   `json:"uploaded_at" dynamodbav:"uploaded_at"`
	SourceKey    string   `json:"source_key" dynamodbav:"source_key"`
}

// View is a photo with freshly minted download URLs.
type View struct {
	Photo
	ThumbnailURL string `json:"thumbnail_url"`
	OriginalURL  string `json:"original_url"`
}

// Capture is the embedded camera metadata of an image. Zero values mean absent.
type Capture struct {
	TakenAt    string
	Make       string
	Model      string
	FlashFired bool
	HasGPS     bool
}

const (
	SortByUploadedAt = "uploaded_at"
	SortByTakenAt    = "taken_at"
)

// Filter narrows and orders a photo listing.
type Filter struct {
	SortBy string
	Tag    string
}

var (
	// ErrUnsupportedMedia is returned for content types the processor cannot handle.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrTooLarge is returned when an upload exceeds the configured size limit.
	ErrTooLarge = errors.New("media exceeds size limit")
	// ErrInvalidSort is returned for an unknown sort_by value.
	ErrInvalidSort = errors.New("sort_by must be uploaded_at or taken_at")
)

// Repository persists photo metadata keyed by photo_id.
type Repository interface {
	// Put inserts or replaces the record with the same photo_id.
	Put(ctx context.Context, p *Photo) error
	// ScanPage returns one page of a full linear scan. An empty next cursor ends the scan.
	ScanPage(ctx context.Context, cursor string, limit int32) (items []Photo, next string, err error)
}
