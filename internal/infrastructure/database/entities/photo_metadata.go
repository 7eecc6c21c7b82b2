package entities

import (
	"time"

	"github.com/lib/pq"
)

// PhotoMetadata is the relational rendition of a processed photo.
type PhotoMetadata struct {
	PhotoID      string         `gorm:"column:photo_id;type:varchar(40);primaryKey"`
	Filename     string         `gorm:"type:varchar(255);not null"`
	OriginalKey  string         `gorm:"type:varchar(1024);not null"`
	ThumbnailKey string         `gorm:"type:varchar(1024);not null"`
	Width        int            `gorm:"not null"`
	Height       int            `gorm:"not null"`
	SizeBytes    int64          `gorm:"not null"`
	ContentType  string         `gorm:"type:varchar(64);not null"`
	TakenAt      string         `gorm:"type:varchar(32)"`
	CameraMake   string         `gorm:"type:varchar(128)"`
	CameraModel  string         `gorm:"type:varchar(128)"`
	Tags         pq.StringArray `gorm:"type:text[]"`
	UploadedAt   string         `gorm:"type:varchar(40);index;not null"`
	SourceKey    string         `gorm:"type:varchar(1024);index;not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (PhotoMetadata) TableName() string {
	return "photo_metadata"
}
