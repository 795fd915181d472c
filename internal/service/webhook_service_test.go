package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/core/ports/mocks"
	"fundflow/internal/gateway"
	"fundflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// renamedProvider serves the fake provider under another name.
type renamedProvider struct {
	*fakeProvider
	name string
}

func (r renamedProvider) Provider() string { return r.name }

func newWebhookHarness(t *testing.T) (*harness, *mocks.MockWebhookDeduper, ports.WebhookService) {
	t.Helper()
	h := newHarness(t)
	deduper := mocks.NewMockWebhookDeduper(gomock.NewController(t))
	svc := NewWebhookService(h.repos, h.registry, h.status, deduper, 0, nil, newTestLogger())
	return h, deduper, svc
}

func callback(orderID, status string) []byte {
	return []byte(`{"order_id":"` + orderID + `","status":"` + status + `"}`)
}

func TestWebhook_AppliesProviderStatus(t *testing.T) {
	h, deduper, svc := newWebhookHarness(t)
	tx := h.approved(t, 1500)
	body := callback(tx.OrderID(), "SUCCESS")
	h.provider.setStatus(tx.OrderID(), domain.StatusSuccess, "PROCESSED")

	deduper.EXPECT().CheckAndSet(gomock.Any(), dedupeKey(testProvider, tx.OrderID(), body), defaultDedupeTTL).Return(true, nil)

	res, err := svc.Handle(context.Background(), testProvider, http.Header{}, body)
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusOK, res.Status)
	assert.Equal(t, string(ports.OutcomeApplied), res.Message)

	cur := h.reload(t, tx.ID)
	assert.Equal(t, domain.StatusSuccess, cur.Status)

	entries, err := h.repos.History.ListByTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookActor(testProvider), entries[len(entries)-1].Actor)
}

func TestWebhook_BodyStatusIsNotTrusted(t *testing.T) {
	h, deduper, svc := newWebhookHarness(t)
	tx := h.approved(t, 1500)
	deduper.EXPECT().CheckAndSet(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	// The callback claims success but the provider still reports the payout as queued.
	res, err := svc.Handle(context.Background(), testProvider, http.Header{}, callback(tx.OrderID(), "SUCCESS"))
	require.NoError(t, err)
	assert.Equal(t, string(ports.OutcomeUnchanged), res.Message)
	assert.Equal(t, domain.StatusProcessing, h.reload(t, tx.ID).Status)
}

func TestWebhook_Duplicate(t *testing.T) {
	h, deduper, svc := newWebhookHarness(t)
	tx := h.approved(t, 1500)
	h.provider.setStatus(tx.OrderID(), domain.StatusSuccess, "PROCESSED")
	deduper.EXPECT().CheckAndSet(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	res, err := svc.Handle(context.Background(), testProvider, http.Header{}, callback(tx.OrderID(), "SUCCESS"))
	require.NoError(t, err)
	assert.Equal(t, &ports.WebhookResult{Status: WebhookStatusOK, Message: "duplicate"}, res)
	assert.Equal(t, domain.StatusProcessing, h.reload(t, tx.ID).Status, "a replay is not applied")
}

func TestWebhook_UnknownOrderIgnored(t *testing.T) {
	_, _, svc := newWebhookHarness(t)

	res, err := svc.Handle(context.Background(), testProvider, http.Header{}, callback("NOSUCHORDER1", "SUCCESS"))
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusIgnored, res.Status)
	assert.Equal(t, "unknown order", res.Message)
}

func TestWebhook_Malformed(t *testing.T) {
	_, _, svc := newWebhookHarness(t)

	_, err := svc.Handle(context.Background(), testProvider, http.Header{}, []byte(`not json`))
	assert.True(t, apperror.IsCode(err, "REQ_001"))
}

func TestWebhook_UnknownProvider(t *testing.T) {
	_, _, svc := newWebhookHarness(t)

	_, err := svc.Handle(context.Background(), "nobody", http.Header{}, callback("X", "SUCCESS"))
	assert.True(t, apperror.IsCode(err, "GW_005"))
}

func TestWebhook_ProviderMismatch(t *testing.T) {
	h, _, svc := newWebhookHarness(t)
	h.registry.Register(renamedProvider{fakeProvider: h.provider, name: "otherpay"})
	tx := h.approved(t, 1500)

	_, err := svc.Handle(context.Background(), "otherpay", http.Header{}, callback(tx.OrderID(), "SUCCESS"))
	assert.True(t, apperror.IsCode(err, "SEC_001"))
	assert.True(t, h.reload(t, tx.ID).InFlight)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	h, _, svc := newWebhookHarness(t)
	tx := h.approved(t, 1500)
	h.provider.verifyErr = gateway.ErrInvalidSignature

	_, err := svc.Handle(context.Background(), testProvider, http.Header{"X-Signature": {"bad"}}, callback(tx.OrderID(), "SUCCESS"))
	assert.True(t, apperror.IsCode(err, "SEC_001"))
}

func TestWebhook_ReleasesGuardOnError(t *testing.T) {
	h, deduper, svc := newWebhookHarness(t)
	tx := h.approved(t, 1500)
	body := callback(tx.OrderID(), "SUCCESS")
	key := dedupeKey(testProvider, tx.OrderID(), body)
	h.provider.statusErr = &gateway.Error{Provider: testProvider, Op: "status", Err: errors.New("connection refused")}

	gomock.InOrder(
		deduper.EXPECT().CheckAndSet(gomock.Any(), key, gomock.Any()).Return(true, nil),
		deduper.EXPECT().Release(gomock.Any(), key).Return(nil),
	)

	_, err := svc.Handle(context.Background(), testProvider, http.Header{}, body)
	assert.True(t, apperror.IsCode(err, "GW_001"))
}

func TestWebhook_GuardUnavailableFailsOpen(t *testing.T) {
	h, deduper, svc := newWebhookHarness(t)
	tx := h.approved(t, 1500)
	h.provider.setStatus(tx.OrderID(), domain.StatusSuccess, "PROCESSED")
	deduper.EXPECT().CheckAndSet(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis: connection refused"))

	res, err := svc.Handle(context.Background(), testProvider, http.Header{}, callback(tx.OrderID(), "SUCCESS"))
	require.NoError(t, err)
	assert.Equal(t, string(ports.OutcomeApplied), res.Message)
}

func TestWebhook_NoDeduper(t *testing.T) {
	h := newHarness(t)
	svc := NewWebhookService(h.repos, h.registry, h.status, nil, 0, nil, newTestLogger())
	tx := h.approved(t, 1500)
	h.provider.setStatus(tx.OrderID(), domain.StatusFailed, "FAILED")

	res, err := svc.Handle(context.Background(), testProvider, http.Header{}, callback(tx.OrderID(), "FAILED"))
	require.NoError(t, err)
	assert.Equal(t, string(ports.OutcomeApplied), res.Message)
	assert.Equal(t, 1, h.reload(t, tx.ID).FailCount)

	// The same callback again finds the order released and changes nothing.
	res, err = svc.Handle(context.Background(), testProvider, http.Header{}, callback(tx.OrderID(), "FAILED"))
	require.NoError(t, err)
	assert.Equal(t, string(ports.OutcomeUnchanged), res.Message)
	assert.Equal(t, 1, h.reload(t, tx.ID).FailCount)
}

func TestWebhook_DepositCollectionCredits(t *testing.T) {
	h, deduper, svc := newWebhookHarness(t)
	dep, err := h.svc.CreateDeposit(context.Background(), ports.CreateDepositRequest{
		CustomerID: h.customer, TradingAccountID: h.account.ID, Amount: 75_000,
	})
	require.NoError(t, err)
	orderID := dep.Transaction.OrderID()
	h.provider.setStatus(orderID, domain.StatusSuccess, "PAID")
	deduper.EXPECT().CheckAndSet(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	h.expectCredit(75_000, &domain.TradingResult{OK: true}, nil)

	res, err := svc.Handle(context.Background(), testProvider, http.Header{}, callback(orderID, "PAID"))
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusOK, res.Status)

	cur := h.reload(t, dep.Transaction.ID)
	assert.Equal(t, domain.StatusSuccess, cur.Status)
	assert.Equal(t, domain.StatusSuccess, cur.TradingStatus)
}

func TestDedupeKey(t *testing.T) {
	a := dedupeKey("swiftpay", "ORDER1", []byte(`{"a":1}`))
	assert.Equal(t, a, dedupeKey("swiftpay", "ORDER1", []byte(`{"a":1}`)))
	assert.NotEqual(t, a, dedupeKey("swiftpay", "ORDER1", []byte(`{"a":2}`)))
	assert.NotEqual(t, a, dedupeKey("payzen", "ORDER1", []byte(`{"a":1}`)))
}
