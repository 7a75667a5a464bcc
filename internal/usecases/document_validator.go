package usecases

import (
	"factura-scanner.backend/internal/domain/entities"
)

// ValidationResult is the outcome of the synchronous pre-flight checks run
// before a document is accepted into the background pipeline.
type ValidationResult struct {
	Valid   bool
	Code    entities.ValidationErrorCode
	Message string
}

func invalid(code entities.ValidationErrorCode, message string) ValidationResult {
	return ValidationResult{Code: code, Message: message}
}

// ValidateDocument runs the cheap checks in rejection order: presence of a
// media URL, URL shape, MIME type, then size. The first failure wins.
func ValidateDocument(mediaURL, mimeType string, fileSize *int64) ValidationResult {
	if mediaURL == "" {
		return invalid(entities.ValidationNoMediaURL,
			"❌ No pude acceder al archivo. Intenta enviarlo de nuevo.")
	}
	if !entities.IsValidMediaURL(mediaURL) {
		return invalid(entities.ValidationInvalidURL,
			"❌ No pude acceder al archivo. Intenta enviarlo de nuevo.")
	}
	if !entities.IsSupportedMimeType(mimeType) {
		return invalid(entities.ValidationBadMimeType,
			"❌ Formato no soportado. Envíame una *foto* (JPG, PNG, WebP) o un *PDF*.")
	}
	if !entities.IsValidFileSize(fileSize) {
		return invalid(entities.ValidationFileTooLarge,
			"❌ El archivo es demasiado grande (máximo 10 MB). Probá con una foto más liviana.")
	}
	return ValidationResult{Valid: true}
}
