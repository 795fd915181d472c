// Package gateway normalizes the payment providers behind one adapter contract.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"fundflow/internal/core/domain"
)

// Credentials are a gateway's decrypted secrets. They live only for the duration of a call.
type Credentials map[string]string

// TransferRequest is a payout instruction.
type TransferRequest struct {
	Amount      int64
	Currency    string
	Method      string
	Beneficiary domain.PaymentDetails
	Remark      string
}

// TransferResult is a provider's answer to a payout or collection request.
// Accepted=false is a definitive rejection: no money moved.
type TransferResult struct {
	Accepted  bool
	Status    domain.Status
	RawStatus string
	Reference string
	Message   string
	Raw       []byte
}

// ProviderStatus is a provider's current view of a transfer, already mapped to the canonical set.
type ProviderStatus struct {
	Status    domain.Status
	RawStatus string
	Reference string
	Message   string
	Raw       []byte
}

// Adapter is implemented once per provider.
type Adapter interface {
	Provider() string
	GetCredentials(cfg *domain.GatewayConfig) (Credentials, error)
	InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error)
	GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error)
	GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error)
}

// CollectionRequest asks a provider to collect funds from a customer.
type CollectionRequest struct {
	Amount       int64
	Currency     string
	Method       string
	CustomerID   string
	CustomerName string
}

// CollectionResult adds the URL the customer pays at.
type CollectionResult struct {
	TransferResult
	PaymentURL string
}

// Collector is implemented by providers that support payin.
type Collector interface {
	InitiateCollection(ctx context.Context, cfg *domain.GatewayConfig, req CollectionRequest, correlationID string) (*CollectionResult, error)
	GetCollectionStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error)
}

// WebhookEvent is what a callback claims happened. Only the correlation id is trusted,
// and only after the signature (if any) verified.
type WebhookEvent struct {
	CorrelationID string
	RawStatus     string
}

// WebhookVerifier is implemented by providers that send callbacks.
type WebhookVerifier interface {
	ParseWebhook(body []byte) (*WebhookEvent, error)
	// VerifyWebhook returns ErrInvalidSignature on mismatch. Providers without
	// signed callbacks return nil and rely on the status re-query.
	VerifyWebhook(creds Credentials, header http.Header, body []byte) error
}

// QueryStatus reads a transfer's status from the side of the provider that handled it.
func QueryStatus(ctx context.Context, a Adapter, cfg *domain.GatewayConfig, direction domain.Direction, correlationID string) (*ProviderStatus, error) {
	if direction == domain.DirectionPayin {
		c, ok := a.(Collector)
		if !ok {
			return nil, fmt.Errorf("%s: %w", a.Provider(), ErrPayinNotSupported)
		}
		return c.GetCollectionStatus(ctx, cfg, correlationID)
	}
	return a.GetStatus(ctx, cfg, correlationID)
}

// Registry maps provider names to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for a.Provider().
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Provider()] = a
}

// Get returns the adapter for provider.
func (r *Registry) Get(provider string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, provider)
	}
	return a, nil
}

// Providers lists registered provider names in order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry registers every supported provider.
func DefaultRegistry(opts Options) *Registry {
	return NewRegistry(
		NewSwiftPay(opts),
		NewPayZen(opts),
		NewCashGrid(opts),
		NewPayStream(opts),
		NewUPILink(opts),
		NewMoneyRail(opts),
		NewZipPay(opts),
		NewTrustPe(opts),
		NewNimbusPay(opts),
	)
}
