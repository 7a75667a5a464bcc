package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
	"factura-scanner.backend/internal/domain/gateways"
	"factura-scanner.backend/internal/domain/repositories"
	"factura-scanner.backend/pkg/crypto"
	"factura-scanner.backend/pkg/logger"
)

// WebhookStatus labels the outcome of one delivery.
type WebhookStatus string

const (
	WebhookProcessed       WebhookStatus = "processed"
	WebhookOutboundIgnored WebhookStatus = "outbound_ignored"
	WebhookNoMessages      WebhookStatus = "no_messages"
	WebhookDuplicate       WebhookStatus = "duplicate_ignored"
)

type WebhookResult struct {
	Status WebhookStatus
}

// WebhookUsecase is the delivery gate plus dispatcher. Order matters:
// header presence, idempotency key, signature, and only then the payload
// itself. A duplicate is answered before the signature is even looked at,
// and the key is marked processed before the payload is handled so a
// racing redelivery can not slip through mid-flight.
type WebhookUsecase struct {
	secret       string
	dedup        repositories.WebhookDedupStore
	registration *RegistrationUsecase
	documents    *DocumentUsecase
	messenger    gateways.MessagingClient
}

func NewWebhookUsecase(
	secret string,
	dedup repositories.WebhookDedupStore,
	registration *RegistrationUsecase,
	documents *DocumentUsecase,
	messenger gateways.MessagingClient,
) *WebhookUsecase {
	return &WebhookUsecase{
		secret:       secret,
		dedup:        dedup,
		registration: registration,
		documents:    documents,
		messenger:    messenger,
	}
}

// ProcessWebhook runs one delivery through the gate and, when accepted,
// routes it to the registration flow or the document pipeline.
func (u *WebhookUsecase) ProcessWebhook(ctx context.Context, rawBody []byte, signature, idempotencyKey string) (*WebhookResult, error) {
	log := logger.WithContext(ctx)

	if signature == "" || idempotencyKey == "" {
		return nil, domainerrors.ErrMissingHeaders
	}

	seen, err := u.dedup.Has(ctx, idempotencyKey)
	if err != nil {
		// A broken dedup store must not take webhook ingestion down with it.
		log.Error("dedup lookup failed, treating delivery as new", zap.Error(err))
		seen = false
	}
	if seen {
		log.Info("duplicate webhook delivery ignored",
			zap.String("idempotency_key", idempotencyKey))
		return &WebhookResult{Status: WebhookDuplicate}, nil
	}

	if u.secret != "" && !crypto.VerifySignature(rawBody, signature, u.secret) {
		log.Warn("webhook signature verification failed",
			zap.String("idempotency_key", idempotencyKey))
		return nil, domainerrors.ErrBadSignature
	}

	var payload entities.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}

	if err := u.dedup.Put(ctx, idempotencyKey); err != nil {
		log.Error("failed to mark idempotency key processed", zap.Error(err))
	}

	msg, conv := payload.First()
	if msg == nil {
		return &WebhookResult{Status: WebhookNoMessages}, nil
	}
	if msg.IsOutbound() {
		return &WebhookResult{Status: WebhookOutboundIgnored}, nil
	}

	phone := entities.SenderPhone(msg, conv)
	if phone == "" {
		log.Warn("inbound message without a resolvable sender",
			zap.String("message_id", msg.ID))
		return &WebhookResult{Status: WebhookNoMessages}, nil
	}

	if err := u.messenger.MarkAsRead(ctx, msg.ID); err != nil {
		log.Debug("failed to mark message as read",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	reg, err := u.registration.HandleTurn(ctx, phone, msg.Type, msg.TextBody())
	if err != nil {
		return nil, fmt.Errorf("registration turn: %w", err)
	}

	reply := reg.Message
	if reg.State == StateReady && msg.IsMedia() {
		res, err := u.documents.ProcessDocument(ctx, &ProcessDocumentRequest{
			User:    reg.User,
			Message: msg,
		})
		if err != nil {
			return nil, fmt.Errorf("process document: %w", err)
		}
		reply = res.Message
	}

	if reply != "" {
		if err := u.messenger.SendText(ctx, phone, reply); err != nil {
			log.Error("failed to reply to user",
				zap.String("to", phone),
				zap.Error(err))
		}
	}

	log.Info("webhook processed",
		zap.String("message_id", msg.ID),
		zap.String("type", msg.Type),
		zap.String("state", string(reg.State)))
	return &WebhookResult{Status: WebhookProcessed}, nil
}
