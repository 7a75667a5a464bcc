package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
	"factura-scanner.backend/internal/domain/gateways"
	"factura-scanner.backend/internal/domain/repositories"
	"factura-scanner.backend/pkg/background"
	"factura-scanner.backend/pkg/logger"
)

// ProcessDocumentRequest carries one inbound media message and its sender.
type ProcessDocumentRequest struct {
	User    *entities.User
	Message *entities.Message
}

// ProcessDocumentResult is returned synchronously: either a validation
// rejection or a pending acknowledgement. The heavy work happens later.
type ProcessDocumentResult struct {
	Accepted bool
	Status   entities.DocumentStatus
	Code     entities.ValidationErrorCode
	Message  string
}

// processingError is a classified pipeline failure. Retryable failures go
// back through the backoff loop; the rest end the document immediately.
type processingError struct {
	StatusCode int
	Code       string
	Message    string
	Retryable  bool
}

func (e *processingError) Error() string {
	return e.Message
}

// DocumentOutcomeRecorder receives the terminal status of every document
// that leaves the pipeline. Wired to the Prometheus counters in production.
type DocumentOutcomeRecorder interface {
	RecordDocumentOutcome(status entities.DocumentStatus)
}

type noopOutcomeRecorder struct{}

func (noopOutcomeRecorder) RecordDocumentOutcome(entities.DocumentStatus) {}

type DocumentUsecase struct {
	docRepo   repositories.DocumentRepository
	userRepo  repositories.UserRepository
	extractor gateways.InvoiceExtractor
	messenger gateways.MessagingClient
	sheets    gateways.SheetStore
	runner    background.Runner
	retryCfg  entities.RetryConfig
	outcomes  DocumentOutcomeRecorder

	// sleep is swapped out in tests so backoff does not slow them down.
	sleep func(ctx context.Context, d time.Duration)
}

func NewDocumentUsecase(
	docRepo repositories.DocumentRepository,
	userRepo repositories.UserRepository,
	extractor gateways.InvoiceExtractor,
	messenger gateways.MessagingClient,
	sheets gateways.SheetStore,
	runner background.Runner,
) *DocumentUsecase {
	return &DocumentUsecase{
		docRepo:   docRepo,
		userRepo:  userRepo,
		extractor: extractor,
		messenger: messenger,
		sheets:    sheets,
		runner:    runner,
		retryCfg:  entities.DefaultRetryConfig(),
		outcomes:  noopOutcomeRecorder{},
		sleep:     sleepContext,
	}
}

// WithOutcomeRecorder wires terminal-status counting. Returns the receiver
// for chaining at construction.
func (u *DocumentUsecase) WithOutcomeRecorder(rec DocumentOutcomeRecorder) *DocumentUsecase {
	u.outcomes = rec
	return u
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// ProcessDocument validates the media message and, when it passes, hands it
// to the background pipeline. The caller gets an answer immediately either
// way; the webhook response never waits on download or extraction.
func (u *DocumentUsecase) ProcessDocument(ctx context.Context, req *ProcessDocumentRequest) (*ProcessDocumentResult, error) {
	log := logger.WithContext(ctx)
	msg := req.Message

	if msg == nil || !msg.IsMedia() {
		return &ProcessDocumentResult{
			Status:  entities.DocumentStatusFailedValidation,
			Code:    entities.ValidationNoMedia,
			Message: "❌ No encontré ningún archivo en tu mensaje.",
		}, nil
	}

	if req.User == nil || !req.User.CanProcess() {
		log.Warn("document from account that cannot process",
			zap.String("message_id", msg.ID))
		u.outcomes.RecordDocumentOutcome(entities.DocumentStatusFailedValidation)
		return &ProcessDocumentResult{
			Status:  entities.DocumentStatusFailedValidation,
			Message: msgAccountInactive,
		}, nil
	}

	mediaURL := msg.MediaURL()
	if v := ValidateDocument(mediaURL, msg.MimeType(), msg.FileSize()); !v.Valid {
		log.Warn("document rejected by validation",
			zap.String("message_id", msg.ID),
			zap.String("code", string(v.Code)),
			zap.String("mime_type", msg.MimeType()))
		u.outcomes.RecordDocumentOutcome(entities.DocumentStatusFailedValidation)
		return &ProcessDocumentResult{
			Status:  entities.DocumentStatusFailedValidation,
			Code:    v.Code,
			Message: v.Message,
		}, nil
	}

	// The request context dies with the HTTP response; the pipeline must
	// outlive it while keeping the request-scoped log fields.
	taskCtx := context.WithoutCancel(ctx)
	u.runner.Submit(taskCtx, "document-processing", func(ctx context.Context) {
		u.processInBackground(ctx, req, mediaURL)
	})

	return &ProcessDocumentResult{
		Accepted: true,
		Status:   entities.DocumentStatusPending,
		Message:  msgDocumentAccepted,
	}, nil
}

func (u *DocumentUsecase) processInBackground(ctx context.Context, req *ProcessDocumentRequest, mediaURL string) {
	log := logger.WithContext(ctx)
	msg := req.Message

	if existing, err := u.docRepo.GetByMessageID(ctx, msg.ID); err == nil && existing != nil {
		log.Info("message already processed, skipping",
			zap.String("message_id", msg.ID),
			zap.String("status", string(existing.Status)))
		return
	}

	doc := &entities.DocumentProcessing{
		UserID:      req.User.ID,
		PhoneNumber: req.User.PhoneNumber,
		MessageID:   msg.ID,
		Type:        msg.Type,
		Filename:    msg.Filename(),
		MimeType:    msg.MimeType(),
		FileSize:    msg.FileSize(),
		MediaURL:    mediaURL,
		Status:      entities.DocumentStatusPending,
	}
	if err := u.docRepo.Create(ctx, doc); err != nil {
		if domainerrors.IsAlreadyExists(err) {
			log.Info("concurrent delivery lost the insert race, skipping",
				zap.String("message_id", msg.ID))
			return
		}
		log.Error("failed to create document record",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return
	}

	extraction, procErr := u.processWithRetry(ctx, doc)
	if procErr != nil {
		log.Warn("document processing ended in failure",
			zap.String("message_id", msg.ID),
			zap.String("error_code", procErr.Code),
			zap.Bool("retryable", procErr.Retryable))
		u.outcomes.RecordDocumentOutcome(statusForError(procErr))
		u.notifyText(ctx, req.User.PhoneNumber, msgProcessingFailed)
		return
	}

	u.outcomes.RecordDocumentOutcome(entities.DocumentStatusSuccess)
	u.recordExtraction(ctx, req.User, extraction)
	u.notifyText(ctx, req.User.PhoneNumber, msgExtractionSummary(extraction))
}

// processWithRetry drives the bounded attempt loop. Every attempt leaves a
// status trail in the document record so an operator can reconstruct what
// happened from the table alone.
func (u *DocumentUsecase) processWithRetry(ctx context.Context, doc *entities.DocumentProcessing) (*entities.InvoiceExtraction, *processingError) {
	log := logger.WithContext(ctx)

	var lastErr *processingError
	for attempt := 1; attempt <= u.retryCfg.MaxAttempts; attempt++ {
		prior := attempt - 1
		if err := u.docRepo.UpdateStatus(ctx, doc.ID, &entities.DocumentStatusUpdate{
			Status:     entities.DocumentStatusProcessing,
			RetryCount: &prior,
		}); err != nil {
			log.Error("failed to mark document processing", zap.Error(err))
		}

		extraction, err := u.extract(ctx, doc)
		if err == nil {
			now := time.Now()
			if uerr := u.docRepo.UpdateStatus(ctx, doc.ID, &entities.DocumentStatusUpdate{
				Status:           entities.DocumentStatusSuccess,
				ExtractionResult: extraction,
				ProcessedAt:      &now,
			}); uerr != nil {
				log.Error("failed to mark document success", zap.Error(uerr))
			}
			log.Info("document extracted",
				zap.String("message_id", doc.MessageID),
				zap.Int("attempt", attempt))
			return extraction, nil
		}

		lastErr = classifyError(err)
		failed := attempt
		if uerr := u.docRepo.UpdateStatus(ctx, doc.ID, &entities.DocumentStatusUpdate{
			Status:       statusForError(lastErr),
			RetryCount:   &failed,
			ErrorCode:    lastErr.Code,
			ErrorMessage: lastErr.Message,
		}); uerr != nil {
			log.Error("failed to record attempt failure", zap.Error(uerr))
		}

		if !lastErr.Retryable {
			return nil, lastErr
		}
		if attempt < u.retryCfg.MaxAttempts {
			delay := u.retryCfg.DelayForAttempt(attempt)
			log.Info("retrying document extraction",
				zap.String("message_id", doc.MessageID),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.String("error_code", lastErr.Code))
			u.sleep(ctx, delay)
		}
	}
	return nil, lastErr
}

// extract runs one attempt and enforces the content contract: a reply that
// is not an invoice, or carries no data, is a rejection even though the
// transport succeeded.
func (u *DocumentUsecase) extract(ctx context.Context, doc *entities.DocumentProcessing) (*entities.InvoiceExtraction, error) {
	extraction, err := u.extractor.ExtractData(ctx, doc.MediaURL, doc.Filename)
	if err != nil {
		return nil, err
	}
	if !extraction.IsInvoice {
		reason := extraction.Reason
		if reason == "" {
			reason = "document rejected by extractor"
		}
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrNotInvoice, reason)
	}
	if extraction.Data == nil {
		return nil, domainerrors.ErrNoExtraction
	}
	return extraction, nil
}

func (u *DocumentUsecase) recordExtraction(ctx context.Context, user *entities.User, extraction *entities.InvoiceExtraction) {
	log := logger.WithContext(ctx)

	sheetID := user.GoogleSheetID
	if sheetID == "" {
		// The sheet reference may have been provisioned after this request
		// was snapshotted.
		if fresh, err := u.userRepo.GetByPhoneNumber(ctx, user.PhoneNumber); err == nil {
			sheetID = fresh.GoogleSheetID
		}
	}
	if sheetID == "" {
		log.Warn("no spreadsheet for user, extraction not appended",
			zap.String("phone_number", user.PhoneNumber))
		return
	}
	if err := u.sheets.AppendInvoiceRow(ctx, sheetID, extraction); err != nil {
		log.Error("failed to append invoice row",
			zap.String("spreadsheet_id", sheetID),
			zap.Error(err))
	}
}

func (u *DocumentUsecase) notifyText(ctx context.Context, to, body string) {
	if err := u.messenger.SendText(ctx, to, body); err != nil {
		logger.WithContext(ctx).Error("failed to send notification",
			zap.String("to", to),
			zap.Error(err))
	}
}

// classifyError maps a raw attempt failure to a retry decision and a
// stable error code for the document record.
func classifyError(err error) *processingError {
	if httpErr, ok := domainerrors.AsHTTPError(err); ok {
		pe := &processingError{
			StatusCode: httpErr.StatusCode,
			Code:       strconv.Itoa(httpErr.StatusCode),
			Message:    httpErr.Message,
		}
		switch httpErr.StatusCode {
		case 401, 404:
			pe.Retryable = false
		case 429:
			pe.Retryable = true
		default:
			pe.Retryable = httpErr.StatusCode >= 500
		}
		return pe
	}

	if errors.Is(err, domainerrors.ErrNotInvoice) {
		return &processingError{Code: "NOT_INVOICE", Message: err.Error(), Retryable: false}
	}
	if errors.Is(err, domainerrors.ErrNoExtraction) {
		return &processingError{Code: "OCR_ERROR", Message: err.Error(), Retryable: false}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return &processingError{Code: "TIMEOUT", Message: err.Error(), Retryable: true}
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection refused"):
		return &processingError{Code: "NETWORK_ERROR", Message: err.Error(), Retryable: true}
	default:
		return &processingError{Code: "UNKNOWN", Message: err.Error(), Retryable: true}
	}
}

// statusForError picks the persisted status for a failed attempt.
func statusForError(pe *processingError) entities.DocumentStatus {
	switch {
	case pe.StatusCode == 401:
		return entities.DocumentStatusFailed401
	case pe.StatusCode == 404:
		return entities.DocumentStatusFailed404
	case pe.StatusCode > 0:
		return entities.DocumentStatusFailedDownload
	case pe.Code == "NOT_INVOICE" || pe.Code == "OCR_ERROR":
		return entities.DocumentStatusFailedOCR
	default:
		return entities.DocumentStatusError
	}
}
