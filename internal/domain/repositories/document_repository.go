package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"factura-scanner.backend/internal/domain/entities"
)

// DocumentRepository defines document-processing record operations.
// Create must surface ErrAlreadyExists on a duplicate message id: the
// unique constraint, not a preceding read, is the dedup mechanism.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.DocumentProcessing) error
	GetByMessageID(ctx context.Context, messageID string) (*entities.DocumentProcessing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update *entities.DocumentStatusUpdate) error
	ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*entities.DocumentProcessing, error)
}
