package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"factura-scanner.backend/internal/domain/entities"
)

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*entities.User, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateByPhoneNumber(ctx context.Context, phoneNumber string, update *entities.UserUpdate) (*entities.User, error) {
	args := m.Called(ctx, phoneNumber, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// Mock DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *entities.DocumentProcessing) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByMessageID(ctx context.Context, messageID string) (*entities.DocumentProcessing, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DocumentProcessing), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update *entities.DocumentStatusUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*entities.DocumentProcessing, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DocumentProcessing), args.Error(1)
}

// Mock WebhookDedupStore
type MockDedupStore struct {
	mock.Mock
}

func (m *MockDedupStore) Has(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDedupStore) Put(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Mock MessagingClient
type MockMessagingClient struct {
	mock.Mock
}

func (m *MockMessagingClient) SendText(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}

func (m *MockMessagingClient) SendImage(ctx context.Context, to, imageURL, caption string) error {
	args := m.Called(ctx, to, imageURL, caption)
	return args.Error(0)
}

func (m *MockMessagingClient) MarkAsRead(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockMessagingClient) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	args := m.Called(ctx, mediaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Mock InvoiceExtractor
type MockInvoiceExtractor struct {
	mock.Mock
}

func (m *MockInvoiceExtractor) ExtractData(ctx context.Context, mediaURL, filename string) (*entities.InvoiceExtraction, error) {
	args := m.Called(ctx, mediaURL, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InvoiceExtraction), args.Error(1)
}

// Mock SheetStore
type MockSheetStore struct {
	mock.Mock
}

func (m *MockSheetStore) CreateUserSheet(ctx context.Context, name, email string) (*entities.UserSheet, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserSheet), args.Error(1)
}

func (m *MockSheetStore) AppendInvoiceRow(ctx context.Context, spreadsheetID string, extraction *entities.InvoiceExtraction) error {
	args := m.Called(ctx, spreadsheetID, extraction)
	return args.Error(0)
}
