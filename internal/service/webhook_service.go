package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/gateway"
	"fundflow/internal/metrics"
	"fundflow/pkg/apperror"

	"github.com/rs/zerolog"
)

const defaultDedupeTTL = 24 * time.Hour

// Webhook acknowledgement statuses.
const (
	WebhookStatusOK      = "ok"
	WebhookStatusIgnored = "ignored"
)

// webhookService implements ports.WebhookService.
type webhookService struct {
	repos    Repositories
	adapters AdapterSource
	status   *StatusServiceImpl
	deduper  ports.WebhookDeduper
	ttl      time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewWebhookService creates a new webhook service. deduper may be nil, in which case
// replays are only absorbed by the state machine itself.
func NewWebhookService(
	repos Repositories,
	adapters AdapterSource,
	status *StatusServiceImpl,
	deduper ports.WebhookDeduper,
	ttl time.Duration,
	m *metrics.Metrics,
	log zerolog.Logger,
) ports.WebhookService {
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	return &webhookService{
		repos:    repos,
		adapters: adapters,
		status:   status,
		deduper:  deduper,
		ttl:      ttl,
		metrics:  m,
		log:      log,
	}
}

// Handle authenticates a provider callback and reconciles the order it names.
// The body only identifies the order; the status applied is re-read from the provider.
func (s *webhookService) Handle(ctx context.Context, provider string, header http.Header, body []byte) (*ports.WebhookResult, error) {
	res, err := s.handle(ctx, provider, header, body)
	switch {
	case err != nil:
		s.metrics.Webhook(provider, string(apperror.KindOf(err)))
	default:
		s.metrics.Webhook(provider, res.Status)
	}
	return res, err
}

func (s *webhookService) handle(ctx context.Context, provider string, header http.Header, body []byte) (*ports.WebhookResult, error) {
	adapter, err := s.adapters.Get(provider)
	if err != nil {
		return nil, apperror.ErrProviderNotSupported(provider)
	}
	verifier, ok := adapter.(gateway.WebhookVerifier)
	if !ok {
		return nil, apperror.ErrProviderNotSupported(provider)
	}

	event, err := verifier.ParseWebhook(body)
	if err != nil {
		return nil, gateway.AsAppError(err)
	}
	log := s.log.With().Str("provider", provider).Str("order_id", event.CorrelationID).Logger()

	att, err := s.repos.Attempts.GetByOrderID(ctx, event.CorrelationID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get attempt: %w", err))
	}
	if att == nil {
		log.Warn().Msg("webhook for unknown order")
		return &ports.WebhookResult{Status: WebhookStatusIgnored, Message: "unknown order"}, nil
	}
	if att.Provider != provider {
		log.Warn().Str("attempt_provider", att.Provider).Msg("webhook provider does not match order")
		return nil, apperror.ErrInvalidSignature()
	}
	log = log.With().Str("tx_id", att.TransactionID.String()).Logger()

	gw, err := s.repos.Gateways.GetByID(ctx, att.GatewayID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get gateway: %w", err))
	}
	if gw == nil {
		return nil, apperror.ErrNotFound("gateway")
	}
	creds, err := adapter.GetCredentials(gw)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(err)
	}
	if err := verifier.VerifyWebhook(creds, header, body); err != nil {
		log.Warn().Err(err).Msg("webhook signature rejected")
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return nil, apperror.ErrInvalidSignature()
		}
		return nil, gateway.AsAppError(err)
	}

	key := dedupeKey(provider, event.CorrelationID, body)
	if s.deduper != nil {
		fresh, err := s.deduper.CheckAndSet(ctx, key, s.ttl)
		if err != nil {
			log.Warn().Err(err).Msg("webhook replay guard unavailable, processing anyway")
		} else if !fresh {
			log.Info().Msg("duplicate webhook")
			return &ports.WebhookResult{Status: WebhookStatusOK, Message: "duplicate"}, nil
		}
	}

	result, err := s.status.reconcile(ctx, att, true, domain.WebhookActor(provider))
	if err != nil {
		s.release(ctx, key, log)
		return nil, err
	}

	log.Info().
		Str("raw_status", event.RawStatus).
		Str("outcome", string(result.Outcome)).
		Msg("webhook processed")

	switch result.Outcome {
	case ports.OutcomeStatusChanged:
		return &ports.WebhookResult{Status: WebhookStatusOK, Message: "status changed, retry"}, nil
	case ports.OutcomeAttemptOnly:
		return &ports.WebhookResult{Status: WebhookStatusOK, Message: "superseded attempt updated"}, nil
	}
	return &ports.WebhookResult{Status: WebhookStatusOK, Message: string(result.Outcome)}, nil
}

func (s *webhookService) release(ctx context.Context, key string, log zerolog.Logger) {
	if s.deduper == nil {
		return
	}
	if err := s.deduper.Release(context.WithoutCancel(ctx), key); err != nil {
		log.Warn().Err(err).Msg("failed to release webhook replay guard")
	}
}

func dedupeKey(provider, orderID string, body []byte) string {
	sum := sha256.Sum256(body)
	return provider + ":" + orderID + ":" + hex.EncodeToString(sum[:])
}
