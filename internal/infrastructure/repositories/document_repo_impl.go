package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
	"factura-scanner.backend/internal/infrastructure/models"
)

// DocumentRepository implements document-processing record operations over
// GORM. The unique index on message_id carries the dedup guarantee.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new PENDING record. A duplicate message id returns
// ErrAlreadyExists so callers can treat redelivery as already-handled.
func (r *DocumentRepository) Create(ctx context.Context, doc *entities.DocumentProcessing) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	m, err := documentToModel(doc)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	doc.CreatedAt = m.CreatedAt
	doc.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByMessageID gets a document record by provider message id
func (r *DocumentRepository) GetByMessageID(ctx context.Context, messageID string) (*entities.DocumentProcessing, error) {
	var m models.DocumentProcessing
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return documentToEntity(&m)
}

// UpdateStatus applies a partial status write
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update *entities.DocumentStatusUpdate) error {
	updates := map[string]interface{}{
		"status":     string(update.Status),
		"updated_at": time.Now(),
	}
	if update.RetryCount != nil {
		updates["retry_count"] = *update.RetryCount
	}
	if update.ErrorCode != "" {
		updates["error_code"] = update.ErrorCode
	}
	if update.ErrorMessage != "" {
		updates["error_message"] = update.ErrorMessage
	}
	if update.ExtractionResult != nil {
		raw, err := json.Marshal(update.ExtractionResult)
		if err != nil {
			return err
		}
		updates["extraction_result"] = raw
	}
	if update.ProcessedAt != nil {
		updates["processed_at"] = *update.ProcessedAt
	}

	result := r.db.WithContext(ctx).Model(&models.DocumentProcessing{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListStuck returns records still pending/processing past the cutoff. The
// sweep job uses this to close out documents orphaned by a crash.
func (r *DocumentRepository) ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*entities.DocumentProcessing, error) {
	var rows []models.DocumentProcessing
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(entities.DocumentStatusPending), string(entities.DocumentStatusProcessing)}).
		Where("updated_at < ?", olderThan).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	docs := make([]*entities.DocumentProcessing, 0, len(rows))
	for i := range rows {
		doc, err := documentToEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func documentToModel(d *entities.DocumentProcessing) (*models.DocumentProcessing, error) {
	m := &models.DocumentProcessing{
		ID:           d.ID,
		UserID:       d.UserID,
		PhoneNumber:  d.PhoneNumber,
		MessageID:    d.MessageID,
		Type:         d.Type,
		Filename:     d.Filename,
		MimeType:     d.MimeType,
		FileSize:     d.FileSize,
		MediaURL:     d.MediaURL,
		Status:       string(d.Status),
		RetryCount:   d.RetryCount,
		ErrorCode:    d.ErrorCode,
		ErrorMessage: d.ErrorMessage,
		ProcessedAt:  d.ProcessedAt,
	}
	if d.ExtractionResult != nil {
		raw, err := json.Marshal(d.ExtractionResult)
		if err != nil {
			return nil, err
		}
		m.ExtractionResult = raw
	}
	return m, nil
}

func documentToEntity(m *models.DocumentProcessing) (*entities.DocumentProcessing, error) {
	d := &entities.DocumentProcessing{
		ID:           m.ID,
		UserID:       m.UserID,
		PhoneNumber:  m.PhoneNumber,
		MessageID:    m.MessageID,
		Type:         m.Type,
		Filename:     m.Filename,
		MimeType:     m.MimeType,
		FileSize:     m.FileSize,
		MediaURL:     m.MediaURL,
		Status:       entities.DocumentStatus(m.Status),
		RetryCount:   m.RetryCount,
		ErrorCode:    m.ErrorCode,
		ErrorMessage: m.ErrorMessage,
		ProcessedAt:  m.ProcessedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if len(m.ExtractionResult) > 0 {
		var extraction entities.InvoiceExtraction
		if err := json.Unmarshal(m.ExtractionResult, &extraction); err != nil {
			return nil, err
		}
		d.ExtractionResult = &extraction
	}
	return d, nil
}

// isDuplicateKey recognizes unique-constraint violations across the GORM
// translated error, Postgres and the SQLite driver used in tests.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
