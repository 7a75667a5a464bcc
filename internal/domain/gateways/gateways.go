// Package gateways declares the external collaborator boundaries: the
// messaging provider, the OCR/vision extractor and the spreadsheet store.
// Usecases depend only on these interfaces; concrete clients live under
// internal/infrastructure and are injected at construction.
package gateways

import (
	"context"

	"factura-scanner.backend/internal/domain/entities"
)

// MessagingClient sends WhatsApp traffic back to the user.
type MessagingClient interface {
	SendText(ctx context.Context, to, body string) error
	SendImage(ctx context.Context, to, imageURL, caption string) error
	MarkAsRead(ctx context.Context, messageID string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, error)
}

// InvoiceExtractor runs the vision/OCR extraction over a media URL.
type InvoiceExtractor interface {
	ExtractData(ctx context.Context, mediaURL, filename string) (*entities.InvoiceExtraction, error)
}

// SheetStore provisions and appends to per-user spreadsheets.
type SheetStore interface {
	CreateUserSheet(ctx context.Context, name, email string) (*entities.UserSheet, error)
	AppendInvoiceRow(ctx context.Context, spreadsheetID string, extraction *entities.InvoiceExtraction) error
}
