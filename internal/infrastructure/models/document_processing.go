package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentProcessing struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;index;not null"`
	PhoneNumber      string    `gorm:"type:varchar(32);not null"`
	MessageID        string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	Type             string    `gorm:"type:varchar(20);not null"`
	Filename         string    `gorm:"type:varchar(255)"`
	MimeType         string    `gorm:"type:varchar(100)"`
	FileSize         *int64
	MediaURL         string `gorm:"type:varchar(1024)"`
	Status           string `gorm:"type:varchar(30);index;not null;default:'pending'"`
	RetryCount       int    `gorm:"not null;default:0"`
	ErrorCode        string `gorm:"type:varchar(30)"`
	ErrorMessage     string `gorm:"type:text"`
	ExtractionResult []byte `gorm:"type:jsonb"`
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
