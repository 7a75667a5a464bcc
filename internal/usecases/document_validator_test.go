package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"factura-scanner.backend/internal/domain/entities"
	"factura-scanner.backend/internal/usecases"
)

func TestValidateDocument(t *testing.T) {
	ptr := func(n int64) *int64 { return &n }

	tests := []struct {
		name     string
		mediaURL string
		mimeType string
		fileSize *int64
		valid    bool
		code     entities.ValidationErrorCode
	}{
		{
			name:     "valid jpeg",
			mediaURL: "https://media.example.com/f/1",
			mimeType: "image/jpeg",
			fileSize: ptr(1024),
			valid:    true,
		},
		{
			name:     "valid pdf with unknown size",
			mediaURL: "https://media.example.com/f/2",
			mimeType: "application/pdf",
			fileSize: nil,
			valid:    true,
		},
		{
			name:     "missing url",
			mediaURL: "",
			mimeType: "image/jpeg",
			code:     entities.ValidationNoMediaURL,
		},
		{
			name:     "ftp url",
			mediaURL: "ftp://x",
			mimeType: "image/jpeg",
			code:     entities.ValidationInvalidURL,
		},
		{
			name:     "gif rejected",
			mediaURL: "https://media.example.com/f/3",
			mimeType: "image/gif",
			code:     entities.ValidationBadMimeType,
		},
		{
			name:     "one byte over the limit",
			mediaURL: "https://media.example.com/f/4",
			mimeType: "image/png",
			fileSize: ptr(entities.MaxFileSizeBytes + 1),
			code:     entities.ValidationFileTooLarge,
		},
		{
			name:     "exactly at the limit",
			mediaURL: "https://media.example.com/f/5",
			mimeType: "image/png",
			fileSize: ptr(entities.MaxFileSizeBytes),
			valid:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := usecases.ValidateDocument(tt.mediaURL, tt.mimeType, tt.fileSize)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.Equal(t, tt.code, result.Code)
				assert.NotEmpty(t, result.Message)
			}
		})
	}
}
