package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"fundflow/internal/adapter/storage/memory"
	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/core/ports/mocks"
	"fundflow/internal/gateway"
	"fundflow/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testProvider = "fakepay"
	testLogin    = "100200"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// fakeProvider is a scriptable gateway.Adapter that also collects payins and parses callbacks.
type fakeProvider struct {
	mu        sync.Mutex
	balance   int64
	transfer  func(orderID string) (*gateway.TransferResult, error)
	collect   func(orderID string) (*gateway.CollectionResult, error)
	statuses  map[string]*gateway.ProviderStatus
	statusErr error
	verifyErr error
	calls     []string
	onCall    func()
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{balance: 10_000_000, statuses: make(map[string]*gateway.ProviderStatus)}
}

func (f *fakeProvider) Provider() string { return testProvider }

func (f *fakeProvider) GetCredentials(*domain.GatewayConfig) (gateway.Credentials, error) {
	return gateway.Credentials{"secret": "s3cret"}, nil
}

func (f *fakeProvider) InitiateTransfer(_ context.Context, _ *domain.GatewayConfig, _ gateway.TransferRequest, orderID string) (*gateway.TransferResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, orderID)
	fn, hook := f.transfer, f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if fn != nil {
		return fn(orderID)
	}
	return &gateway.TransferResult{Accepted: true, Status: domain.StatusPending, RawStatus: "QUEUED", Reference: "REF-" + orderID}, nil
}

func (f *fakeProvider) GetStatus(_ context.Context, _ *domain.GatewayConfig, orderID string) (*gateway.ProviderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if st, ok := f.statuses[orderID]; ok {
		c := *st
		return &c, nil
	}
	return &gateway.ProviderStatus{Status: domain.StatusPending, RawStatus: "QUEUED"}, nil
}

func (f *fakeProvider) GetBalance(context.Context, *domain.GatewayConfig) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

func (f *fakeProvider) InitiateCollection(_ context.Context, _ *domain.GatewayConfig, _ gateway.CollectionRequest, orderID string) (*gateway.CollectionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, orderID)
	fn := f.collect
	f.mu.Unlock()
	if fn != nil {
		return fn(orderID)
	}
	return &gateway.CollectionResult{
		TransferResult: gateway.TransferResult{Accepted: true, Status: domain.StatusPending, RawStatus: "CREATED"},
		PaymentURL:     "https://pay.example.com/" + orderID,
	}, nil
}

func (f *fakeProvider) GetCollectionStatus(ctx context.Context, cfg *domain.GatewayConfig, orderID string) (*gateway.ProviderStatus, error) {
	return f.GetStatus(ctx, cfg, orderID)
}

func (f *fakeProvider) ParseWebhook(body []byte) (*gateway.WebhookEvent, error) {
	var ev struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(body, &ev); err != nil || ev.OrderID == "" {
		return nil, gateway.ErrMalformedWebhook
	}
	return &gateway.WebhookEvent{CorrelationID: ev.OrderID, RawStatus: ev.Status}, nil
}

func (f *fakeProvider) VerifyWebhook(gateway.Credentials, http.Header, []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyErr
}

func (f *fakeProvider) setStatus(orderID string, st domain.Status, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[orderID] = &gateway.ProviderStatus{Status: st, RawStatus: raw, Reference: "UTR-" + orderID}
}

func (f *fakeProvider) setTransfer(fn func(orderID string) (*gateway.TransferResult, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfer = fn
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type harnessOpts struct {
	threshold   int64
	autoApprove int64
	methods     []domain.MethodBand
}

// harness wires the reconciliation services over the in-memory ledger.
type harness struct {
	store    *memory.Store
	repos    Repositories
	engine   *mocks.MockTradingEngine
	provider *fakeProvider
	registry *gateway.Registry
	accounts *AccountServiceImpl
	svc      *ReconciliationServiceImpl
	status   *StatusServiceImpl
	gw       *domain.GatewayConfig
	customer uuid.UUID
	account  *domain.TradingAccount
	method   *domain.PaymentMethod
}

func withThreshold(v int64) func(*harnessOpts)   { return func(o *harnessOpts) { o.threshold = v } }
func withAutoApprove(v int64) func(*harnessOpts) { return func(o *harnessOpts) { o.autoApprove = v } }

func newHarness(t *testing.T, opts ...func(*harnessOpts)) *harness {
	t.Helper()
	o := harnessOpts{methods: []domain.MethodBand{
		{Method: domain.MethodUPI, Min: 1, Max: 1000, Enabled: false},
		{Method: domain.MethodIMPS, Min: 1, Max: 5_000_000, Enabled: true},
	}}
	for _, fn := range opts {
		fn(&o)
	}

	ctx := context.Background()
	store := memory.NewStore()
	repos := Repositories{
		Transactions:   store.Transactions(),
		Attempts:       store.Attempts(),
		History:        store.History(),
		Gateways:       store.Gateways(),
		Accounts:       store.TradingAccounts(),
		PaymentMethods: store.PaymentMethods(),
		Transactor:     store,
	}

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockTradingEngine(ctrl)
	provider := newFakeProvider()
	registry := gateway.NewRegistry(provider)

	cipher, err := NewDeterministicCipher("test-key-secret", "test-iv-secret")
	require.NoError(t, err)
	accounts := NewAccountService(repos.Accounts, repos.PaymentMethods, cipher, engine, "real", newTestLogger())

	pool := worker.NewPool(4, newTestLogger())
	t.Cleanup(pool.Stop)

	svc := NewReconciliationService(repos, registry, engine, accounts, NewIDGenerator(repos.Attempts, 0, newTestLogger()),
		o.autoApprove, nil, newTestLogger())
	status := NewStatusService(repos, registry, svc, pool, newTestLogger())

	gw := &domain.GatewayConfig{
		ID:             uuid.New(),
		Name:           "primary",
		Provider:       testProvider,
		Direction:      domain.DirectionBoth,
		ThresholdLimit: o.threshold,
		Methods:        o.methods,
		IsDefault:      true,
		Enabled:        true,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repos.Gateways.Create(ctx, gw))

	customer := uuid.New()
	account := &domain.TradingAccount{ID: uuid.New(), CustomerID: customer, Login: testLogin, Group: "real", CreatedAt: time.Now().UTC()}
	require.NoError(t, repos.Accounts.Create(ctx, account))

	method, err := accounts.AddPaymentMethod(ctx, customer, domain.PaymentDetails{
		Kind:          domain.PaymentMethodBank,
		HolderName:    "Asha Rao",
		AccountNumber: "50100012345678",
		IFSC:          "HDFC0001234",
	})
	require.NoError(t, err)

	return &harness{
		store:    store,
		repos:    repos,
		engine:   engine,
		provider: provider,
		registry: registry,
		accounts: accounts,
		svc:      svc,
		status:   status,
		gw:       gw,
		customer: customer,
		account:  account,
		method:   method,
	}
}

func (h *harness) createWithdraw(t *testing.T, amount int64) *domain.Transaction {
	t.Helper()
	tx, err := h.svc.CreateWithdraw(context.Background(), ports.CreateWithdrawRequest{
		CustomerID:       h.customer,
		TradingAccountID: h.account.ID,
		PaymentMethodID:  h.method.ID,
		Amount:           amount,
		Actor:            "customer:" + h.customer.String(),
	})
	require.NoError(t, err)
	return tx
}

func approve(id uuid.UUID) ports.ResolveRequest {
	return ports.ResolveRequest{ID: id, Decision: ports.DecisionApprove, Actor: domain.AdminActor("ops-1")}
}

func (h *harness) expectDebit(amount int64, res *domain.TradingResult, err error) *gomock.Call {
	return h.engine.EXPECT().Withdraw(gomock.Any(), testLogin, amount, gomock.Any()).Return(res, err)
}

func (h *harness) expectCredit(amount int64, res *domain.TradingResult, err error) *gomock.Call {
	return h.engine.EXPECT().Deposit(gomock.Any(), testLogin, amount, gomock.Any()).Return(res, err)
}

// approved creates a withdraw and approves it with a successful debit and the provider's default acceptance.
func (h *harness) approved(t *testing.T, amount int64) *domain.Transaction {
	t.Helper()
	tx := h.createWithdraw(t, amount)
	h.expectDebit(amount, &domain.TradingResult{OK: true, DealID: "D-1", Equity: 90_000}, nil)
	out, err := h.svc.Resolve(context.Background(), approve(tx.ID))
	require.NoError(t, err)
	return out
}

func (h *harness) reload(t *testing.T, id uuid.UUID) *domain.Transaction {
	t.Helper()
	tx, err := h.repos.Transactions.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, tx)
	return tx
}

func (h *harness) attempts(t *testing.T, id uuid.UUID) []domain.GatewayAttempt {
	t.Helper()
	out, err := h.repos.Attempts.ListByTransaction(context.Background(), id)
	require.NoError(t, err)
	return out
}

func (h *harness) history(t *testing.T, id uuid.UUID) []string {
	t.Helper()
	entries, err := h.repos.History.ListByTransaction(context.Background(), id)
	require.NoError(t, err)
	events := make([]string, len(entries))
	for i, e := range entries {
		events[i] = e.Event
	}
	return events
}

func (h *harness) updateGateway(t *testing.T, fn func(g *domain.GatewayConfig)) {
	t.Helper()
	fn(h.gw)
	require.NoError(t, h.repos.Gateways.Create(context.Background(), h.gw))
}
