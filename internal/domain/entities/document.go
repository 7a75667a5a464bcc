package entities

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the processing state of an inbound media message.
type DocumentStatus string

const (
	DocumentStatusPending          DocumentStatus = "pending"
	DocumentStatusProcessing       DocumentStatus = "processing"
	DocumentStatusSuccess          DocumentStatus = "success"
	DocumentStatusError            DocumentStatus = "error"
	DocumentStatusFailedValidation DocumentStatus = "failed_validation"
	DocumentStatusFailed401        DocumentStatus = "failed_401"
	DocumentStatusFailed404        DocumentStatus = "failed_404"
	DocumentStatusFailedDownload   DocumentStatus = "failed_download"
	DocumentStatusFailedOCR        DocumentStatus = "failed_ocr"
)

// Terminal reports whether a status ends the pipeline for a document.
func (s DocumentStatus) Terminal() bool {
	return s != DocumentStatusPending && s != DocumentStatusProcessing
}

// DocumentProcessing is one record per inbound media message. MessageID is
// unique: the storage constraint is what prevents double-processing on
// webhook redelivery.
type DocumentProcessing struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"userId"`
	PhoneNumber      string             `json:"phoneNumber"`
	MessageID        string             `json:"messageId"`
	Type             string             `json:"type"`
	Filename         string             `json:"filename"`
	MimeType         string             `json:"mimeType"`
	FileSize         *int64             `json:"fileSize,omitempty"`
	MediaURL         string             `json:"mediaUrl,omitempty"`
	Status           DocumentStatus     `json:"status"`
	RetryCount       int                `json:"retryCount"`
	ErrorCode        string             `json:"errorCode,omitempty"`
	ErrorMessage     string             `json:"errorMessage,omitempty"`
	ExtractionResult *InvoiceExtraction `json:"extractionResult,omitempty"`
	ProcessedAt      *time.Time         `json:"processedAt,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// DocumentStatusUpdate carries a partial status write for a document record.
type DocumentStatusUpdate struct {
	Status           DocumentStatus
	RetryCount       *int
	ErrorCode        string
	ErrorMessage     string
	ExtractionResult *InvoiceExtraction
	ProcessedAt      *time.Time
}

// ValidationErrorCode identifies why a document failed fast validation.
type ValidationErrorCode string

const (
	ValidationNoMediaURL     ValidationErrorCode = "NO_MEDIA_URL"
	ValidationInvalidURL     ValidationErrorCode = "INVALID_URL"
	ValidationBadMimeType    ValidationErrorCode = "UNSUPPORTED_MIME_TYPE"
	ValidationFileTooLarge   ValidationErrorCode = "FILE_TOO_LARGE"
	ValidationNoMedia        ValidationErrorCode = "NO_MEDIA"
)

// MaxFileSizeBytes is the document size ceiling (10 MiB).
const MaxFileSizeBytes = 10 * 1024 * 1024

var supportedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// IsSupportedMimeType reports whether the bot accepts this media type.
func IsSupportedMimeType(mimeType string) bool {
	_, ok := supportedMimeTypes[mimeType]
	return ok
}

// IsValidFileSize applies the size ceiling. Unknown size is treated as
// valid: missing metadata fails open, not closed.
func IsValidFileSize(size *int64) bool {
	if size == nil {
		return true
	}
	return *size <= MaxFileSizeBytes
}

// IsValidMediaURL accepts absolute http/https URLs only.
func IsValidMediaURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RetryConfig bounds the background retry loop.
type RetryConfig struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig gives delays of 1s, 2s, capped at 5s across 3 attempts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2,
	}
}

// DelayForAttempt returns the backoff delay after the given 1-based attempt.
func (c RetryConfig) DelayForAttempt(attempt int) time.Duration {
	delay := c.InitialDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * c.BackoffMultiplier)
	}
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}
