package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "factura-scanner.backend/internal/domain/errors"
	"factura-scanner.backend/internal/interfaces/http/middleware"
	"factura-scanner.backend/internal/interfaces/http/response"
	"factura-scanner.backend/internal/usecases"
	"factura-scanner.backend/pkg/logger"
)

const (
	headerSignature      = "X-Webhook-Signature"
	headerIdempotencyKey = "X-Idempotency-Key"
)

type webhookProcessor interface {
	ProcessWebhook(ctx context.Context, rawBody []byte, signature, idempotencyKey string) (*usecases.WebhookResult, error)
}

// WebhookHandler receives WhatsApp webhook deliveries
type WebhookHandler struct {
	webhookUsecase webhookProcessor
	metrics        *middleware.Metrics
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookUsecase webhookProcessor, metrics *middleware.Metrics) *WebhookHandler {
	return &WebhookHandler{webhookUsecase: webhookUsecase, metrics: metrics}
}

// HandleWebhook handles incoming message deliveries
// POST /webhook
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	// The raw bytes are required: the signature covers the body as sent,
	// not a re-serialization of it.
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := c.GetHeader(headerSignature)
	idempotencyKey := c.GetHeader(headerIdempotencyKey)

	result, err := h.webhookUsecase.ProcessWebhook(c.Request.Context(), rawBody, signature, idempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrMissingHeaders):
			h.recordOutcome("missing_headers")
			response.ErrorWithStatus(c, http.StatusBadRequest, "missing required headers")
		case errors.Is(err, domainerrors.ErrBadSignature):
			h.recordOutcome("bad_signature")
			response.ErrorWithStatus(c, http.StatusUnauthorized, "invalid signature")
		default:
			logger.Error(c.Request.Context(), "webhook processing failed", zap.Error(err))
			h.recordOutcome("error")
			response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.recordOutcome(string(result.Status))
	response.Success(c, http.StatusOK, gin.H{"status": string(result.Status)})
}

func (h *WebhookHandler) recordOutcome(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordWebhookOutcome(outcome)
	}
}
