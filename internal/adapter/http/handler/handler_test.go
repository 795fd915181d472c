package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/core/ports/mocks"
	"fundflow/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminToken    = "admin-token"
	customerToken = "customer-token"
	adminSubject  = "ops-7"
)

type testRouter struct {
	engine   *gin.Engine
	recon    *mocks.MockReconciliationService
	status   *mocks.MockStatusService
	query    *mocks.MockQueryService
	accounts *mocks.MockAccountService
	webhooks *mocks.MockWebhookService
	customer uuid.UUID
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	ctrl := gomock.NewController(t)
	tr := &testRouter{
		recon:    mocks.NewMockReconciliationService(ctrl),
		status:   mocks.NewMockStatusService(ctrl),
		query:    mocks.NewMockQueryService(ctrl),
		accounts: mocks.NewMockAccountService(ctrl),
		webhooks: mocks.NewMockWebhookService(ctrl),
		customer: uuid.New(),
	}

	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().Validate(adminToken).Return(&ports.TokenClaims{Subject: adminSubject, Role: ports.RoleAdmin}, nil).AnyTimes()
	tokens.EXPECT().Validate(customerToken).Return(&ports.TokenClaims{Subject: tr.customer.String(), Role: ports.RoleCustomer}, nil).AnyTimes()

	tr.engine = SetupRouter(RouterDeps{
		ReconSvc:   tr.recon,
		StatusSvc:  tr.status,
		QuerySvc:   tr.query,
		AccountSvc: tr.accounts,
		WebhookSvc: tr.webhooks,
		TokenSvc:   tokens,
		Logger:     zerolog.Nop(),
	})
	return tr
}

func (tr *testRouter) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	tr.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "body: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func sampleTx(kind domain.Kind) *domain.Transaction {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := "A1B2C3D4E5F6"
	return &domain.Transaction{
		ID:               uuid.New(),
		Kind:             kind,
		Type:             domain.TransactionTypeNormal,
		CustomerID:       uuid.New(),
		TradingAccountID: uuid.New(),
		Amount:           150_000,
		Currency:         "INR",
		Status:           domain.StatusProcessing,
		TradingStatus:    domain.StatusSuccess,
		GatewayStatus:    domain.StatusProcessing,
		GatewayOrderID:   &order,
		InFlight:         true,
		CreatedBy:        "system",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// --- Customer routes ---

func TestCreateDeposit_Success(t *testing.T) {
	tr := newTestRouter(t)
	account := uuid.New()
	tx := sampleTx(domain.KindDeposit)

	tr.recon.EXPECT().CreateDeposit(gomock.Any(), ports.CreateDepositRequest{
		CustomerID:       tr.customer,
		TradingAccountID: account,
		Amount:           150_000,
		Actor:            "customer:" + tr.customer.String(),
	}).Return(&ports.DepositResult{Transaction: tx, PaymentURL: "https://pay.example/c/123"}, nil)

	w := tr.do(http.MethodPost, "/api/v1/deposits", customerToken, map[string]interface{}{
		"trading_account_id": account.String(),
		"amount":             150_000,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "https://pay.example/c/123", data["payment_url"])
	txData := data["transaction"].(map[string]interface{})
	assert.Equal(t, tx.ID.String(), txData["id"])
	assert.Equal(t, "A1B2C3D4E5F6", txData["order_id"])
}

func TestCreateDeposit_ValidationError(t *testing.T) {
	tr := newTestRouter(t)

	for _, body := range []interface{}{
		"{}",
		map[string]interface{}{"trading_account_id": "nope", "amount": 100},
		map[string]interface{}{"trading_account_id": uuid.NewString(), "amount": -5},
		"not json",
	} {
		w := tr.do(http.MethodPost, "/api/v1/deposits", customerToken, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
		assert.Equal(t, "REQ_001", errorCode(t, w))
	}
}

func TestCustomerRoutes_RequireCustomerRole(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPost, "/api/v1/withdraws", adminToken, "{}")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = tr.do(http.MethodPost, "/api/v1/withdraws", "", "{}")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateWithdraw_Success(t *testing.T) {
	tr := newTestRouter(t)
	account, method := uuid.New(), uuid.New()
	tx := sampleTx(domain.KindWithdraw)
	tx.Status, tx.TradingStatus, tx.GatewayStatus, tx.InFlight = domain.StatusPending, domain.StatusPending, domain.StatusPending, false

	tr.recon.EXPECT().CreateWithdraw(gomock.Any(), ports.CreateWithdrawRequest{
		CustomerID:       tr.customer,
		TradingAccountID: account,
		PaymentMethodID:  method,
		Amount:           90_000,
		Currency:         "INR",
		Actor:            "customer:" + tr.customer.String(),
	}).Return(tx, nil)

	w := tr.do(http.MethodPost, "/api/v1/withdraws", customerToken, map[string]interface{}{
		"trading_account_id": account.String(),
		"payment_method_id":  method.String(),
		"amount":             90_000,
		"currency":           "INR",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "PENDING", decodeData(t, w)["status"])
}

func TestCreateWithdraw_ServiceError(t *testing.T) {
	tr := newTestRouter(t)
	tr.recon.EXPECT().CreateWithdraw(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrNotFound("payment method"))

	w := tr.do(http.MethodPost, "/api/v1/withdraws", customerToken, map[string]interface{}{
		"trading_account_id": uuid.NewString(),
		"payment_method_id":  uuid.NewString(),
		"amount":             100,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REQ_404", errorCode(t, w))
}

func TestAddPaymentMethod_ReturnsMaskedDetails(t *testing.T) {
	tr := newTestRouter(t)
	tr.accounts.EXPECT().AddPaymentMethod(gomock.Any(), tr.customer, domain.PaymentDetails{
		Kind:          domain.PaymentMethodBank,
		HolderName:    "Asha Rao",
		AccountNumber: "50100012345678",
		IFSC:          "HDFC0001234",
	}).Return(&domain.PaymentMethod{ID: uuid.New(), CustomerID: tr.customer, Kind: domain.PaymentMethodBank}, nil)

	w := tr.do(http.MethodPost, "/api/v1/payment-methods", customerToken, map[string]interface{}{
		"kind":           "BANK",
		"holder_name":    " Asha Rao ",
		"account_number": "50100012345678",
		"ifsc":           "HDFC0001234",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	details := decodeData(t, w)["details"].(map[string]interface{})
	assert.Equal(t, "**********5678", details["account_number"])
}

func TestCustomerListTransactions_ScopedToCaller(t *testing.T) {
	tr := newTestRouter(t)
	tr.query.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p ports.TransactionListParams) ([]domain.Transaction, int64, error) {
			require.NotNil(t, p.CustomerID)
			assert.Equal(t, tr.customer, *p.CustomerID)
			return []domain.Transaction{*sampleTx(domain.KindDeposit)}, 1, nil
		})

	w := tr.do(http.MethodGet, "/api/v1/transactions", customerToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData(t, w)["items"], 1)
}

// --- Admin routes ---

func TestAdminListTransactions_Filters(t *testing.T) {
	tr := newTestRouter(t)
	tr.query.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p ports.TransactionListParams) ([]domain.Transaction, int64, error) {
			require.NotNil(t, p.Kind)
			assert.Equal(t, domain.KindWithdraw, *p.Kind)
			require.NotNil(t, p.GatewayStatus)
			assert.Equal(t, domain.StatusProcessing, *p.GatewayStatus)
			require.NotNil(t, p.InFlight)
			assert.True(t, *p.InFlight)
			assert.Nil(t, p.CustomerID)
			assert.Equal(t, 2, p.Page)
			assert.Equal(t, 10, p.PageSize)
			return []domain.Transaction{}, 25, nil
		})

	w := tr.do(http.MethodGet, "/api/v1/admin/transactions?kind=WITHDRAW&gateway_status=PROCESSING&in_flight=true&page=2&page_size=10", adminToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(25), data["total"])
	assert.Equal(t, float64(3), data["total_pages"])
	assert.Empty(t, data["items"])
}

func TestAdminListTransactions_InvalidFilter(t *testing.T) {
	tr := newTestRouter(t)

	for _, q := range []string{"kind=TRANSFER", "status=DONE", "in_flight=maybe"} {
		w := tr.do(http.MethodGet, "/api/v1/admin/transactions?"+q, adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestAdminListTransactions_ServiceError(t *testing.T) {
	tr := newTestRouter(t)
	tr.query.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, int64(0), errors.New("db down"))

	w := tr.do(http.MethodGet, "/api/v1/admin/transactions", adminToken, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodGet, "/api/v1/admin/transactions", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "SEC_003", errorCode(t, w))
}

func TestGetTransaction(t *testing.T) {
	tr := newTestRouter(t)
	tx := sampleTx(domain.KindWithdraw)
	tr.query.EXPECT().GetTransactionDetail(gomock.Any(), tx.ID).Return(&ports.TransactionDetail{
		Transaction: tx,
		Attempts:    []domain.GatewayAttempt{{ID: uuid.New(), TransactionID: tx.ID, GatewayOrderID: "A1B2C3D4E5F6"}},
		History:     []domain.HistoryEntry{{ID: uuid.New(), TransactionID: tx.ID, Event: "created"}},
	}, nil)

	w := tr.do(http.MethodGet, "/api/v1/admin/transactions/"+tx.ID.String(), adminToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Len(t, data["attempts"], 1)
	assert.Len(t, data["history"], 1)
}

func TestGetTransaction_InvalidID(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodGet, "/api/v1/admin/transactions/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolve_PassesAdminActor(t *testing.T) {
	tr := newTestRouter(t)
	tx := sampleTx(domain.KindWithdraw)
	tr.recon.EXPECT().Resolve(gomock.Any(), ports.ResolveRequest{
		ID:       tx.ID,
		Decision: ports.DecisionApprove,
		Reason:   "kyc ok",
		Actor:    domain.AdminActor(adminSubject),
	}).Return(tx, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/withdraws/"+tx.ID.String()+"/resolve", adminToken,
		map[string]string{"decision": "approve", "reason": " kyc ok "})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeData(t, w)["in_flight"])
}

func TestResolve_UnconfirmedIsAccepted(t *testing.T) {
	tr := newTestRouter(t)
	tx := sampleTx(domain.KindWithdraw)
	msg := domain.MessageGatewayUnconfirmed
	tx.Message = &msg
	tr.recon.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(tx, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/withdraws/"+tx.ID.String()+"/resolve", adminToken,
		map[string]string{"decision": "approve"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, msg, decodeData(t, w)["message"])
}

func TestResolve_InvalidDecision(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPost, "/api/v1/admin/withdraws/"+uuid.NewString()+"/resolve", adminToken,
		map[string]string{"decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetry_Conflict(t *testing.T) {
	tr := newTestRouter(t)
	id := uuid.New()
	tr.recon.EXPECT().Retry(gomock.Any(), id, domain.AdminActor(adminSubject)).Return(nil, apperror.ErrAlreadyInFlight())

	w := tr.do(http.MethodPost, "/api/v1/admin/withdraws/"+id.String()+"/retry", adminToken, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PAY_002", errorCode(t, w))
}

func TestRefund(t *testing.T) {
	tr := newTestRouter(t)
	w := sampleTx(domain.KindWithdraw)
	dep := sampleTx(domain.KindDeposit)
	dep.Type = domain.TransactionTypeRefund
	tr.recon.EXPECT().Refund(gomock.Any(), w.ID, domain.AdminActor(adminSubject)).
		Return(&ports.RefundResult{Withdraw: w, Deposit: dep}, nil)

	rec := tr.do(http.MethodPost, "/api/v1/admin/withdraws/"+w.ID.String()+"/refund", adminToken, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "REFUND", data["deposit"].(map[string]interface{})["type"])
}

func TestRefund_CreditUnconfirmed(t *testing.T) {
	tr := newTestRouter(t)
	w := sampleTx(domain.KindWithdraw)
	dep := sampleTx(domain.KindDeposit)
	msg := domain.MessageTradingUnconfirmed
	dep.Message = &msg
	tr.recon.EXPECT().Refund(gomock.Any(), w.ID, gomock.Any()).Return(&ports.RefundResult{Withdraw: w, Deposit: dep}, nil)

	rec := tr.do(http.MethodPost, "/api/v1/admin/withdraws/"+w.ID.String()+"/refund", adminToken, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRetryCredit(t *testing.T) {
	tr := newTestRouter(t)
	tx := sampleTx(domain.KindDeposit)
	tr.recon.EXPECT().RetryCredit(gomock.Any(), tx.ID, domain.AdminActor(adminSubject)).Return(tx, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/deposits/"+tx.ID.String()+"/retry-credit", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAcknowledge(t *testing.T) {
	tr := newTestRouter(t)
	tx := sampleTx(domain.KindWithdraw)
	tx.Status = domain.StatusAcknowledged
	tr.recon.EXPECT().Acknowledge(gomock.Any(), tx.ID, "settled by bank", domain.AdminActor(adminSubject)).Return(tx, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/transactions/"+tx.ID.String()+"/acknowledge", adminToken,
		map[string]string{"reason": "settled by bank"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ACKNOWLEDGED", decodeData(t, w)["status"])

	w = tr.do(http.MethodPost, "/api/v1/admin/transactions/"+tx.ID.String()+"/acknowledge", adminToken, "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code, "reason is required")
}

func TestRefreshTransaction(t *testing.T) {
	tr := newTestRouter(t)
	id := uuid.New()
	tr.status.EXPECT().RefreshTransaction(gomock.Any(), id, domain.AdminActor(adminSubject)).
		Return(&ports.RefreshResult{TransactionID: id, Outcome: ports.OutcomeApplied, RemoteStatus: domain.StatusSuccess}, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/transactions/"+id.String()+"/refresh", adminToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "applied", data["outcome"])
	assert.Equal(t, "SUCCESS", data["remote_status"])
}

func TestRefreshTransaction_GatewayDown(t *testing.T) {
	tr := newTestRouter(t)
	id := uuid.New()
	tr.status.EXPECT().RefreshTransaction(gomock.Any(), id, gomock.Any()).
		Return(nil, apperror.ErrGatewayRetryable(errors.New("dial tcp: connection refused")))

	w := tr.do(http.MethodPost, "/api/v1/admin/transactions/"+id.String()+"/refresh", adminToken, nil)
	assert.Equal(t, "GW_001", errorCode(t, w))
}

func TestRefreshAttempt(t *testing.T) {
	tr := newTestRouter(t)
	id := uuid.New()
	tr.status.EXPECT().RefreshAttempt(gomock.Any(), id, domain.AdminActor(adminSubject)).
		Return(&ports.RefreshResult{AttemptID: id, Outcome: ports.OutcomeAttemptOnly}, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/attempts/"+id.String()+"/refresh", adminToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attempt_only", decodeData(t, w)["outcome"])
}

func TestBulkRefresh_DeduplicatesIDs(t *testing.T) {
	tr := newTestRouter(t)
	a, b := uuid.New(), uuid.New()
	tr.status.EXPECT().BulkRefresh(gomock.Any(), []uuid.UUID{a, b}, domain.AdminActor(adminSubject)).
		Return([]ports.RefreshResult{
			{TransactionID: a, Outcome: ports.OutcomeUnchanged},
			{TransactionID: b, Outcome: ports.OutcomeError, Error: "[REQ_404] transaction not found"},
		})

	w := tr.do(http.MethodPost, "/api/v1/admin/transactions/refresh", adminToken,
		map[string][]string{"ids": {a.String(), b.String(), a.String()}})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []ports.RefreshResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, ports.OutcomeError, resp.Data[1].Outcome)
}

func TestBulkRefresh_Validation(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPost, "/api/v1/admin/transactions/refresh", adminToken, map[string][]string{"ids": {}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchPaymentMethods(t *testing.T) {
	tr := newTestRouter(t)
	m := domain.PaymentMethod{ID: uuid.New(), CustomerID: uuid.New(), Kind: domain.PaymentMethodBank}
	tr.accounts.EXPECT().SearchByAccountNumber(gomock.Any(), "50100012345678").Return([]domain.PaymentMethod{m}, nil)
	tr.accounts.EXPECT().PaymentDetails(gomock.Any(), m.ID).Return(&domain.PaymentDetails{
		Kind: domain.PaymentMethodBank, HolderName: "Asha Rao", AccountNumber: "50100012345678", IFSC: "HDFC0001234",
	}, nil)

	w := tr.do(http.MethodGet, "/api/v1/admin/payment-methods?account_number=50100012345678", adminToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []struct {
			ID      string                `json:"id"`
			Details domain.PaymentDetails `json:"details"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, m.ID.String(), resp.Data[0].ID)
	assert.Equal(t, "**********5678", resp.Data[0].Details.AccountNumber)
}

func TestSearchPaymentMethods_MissingQuery(t *testing.T) {
	tr := newTestRouter(t)
	tr.accounts.EXPECT().SearchByAccountNumber(gomock.Any(), "").Return(nil, apperror.Validation("account_number is required"))

	w := tr.do(http.MethodGet, "/api/v1/admin/payment-methods", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGatewayBalance(t *testing.T) {
	tr := newTestRouter(t)
	id := uuid.New()
	tr.query.EXPECT().GatewayBalance(gomock.Any(), id).Return(int64(420_000), nil)

	w := tr.do(http.MethodGet, "/api/v1/admin/gateways/"+id.String()+"/balance", adminToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(420_000), decodeData(t, w)["balance"])
}

func TestOpenTradingAccount(t *testing.T) {
	tr := newTestRouter(t)
	customer := uuid.New()
	tr.accounts.EXPECT().OpenTradingAccount(gomock.Any(), ports.OpenAccountRequest{
		CustomerID: customer, Name: "Asha Rao", Email: "asha@example.com",
	}).Return(&ports.OpenAccountResult{
		Account:     &domain.TradingAccount{ID: uuid.New(), CustomerID: customer, Login: "700123"},
		Credentials: &ports.TradingAccountCredentials{Login: "700123", Password: "Pw1!", InvestPassword: "Ip1!"},
	}, nil)

	w := tr.do(http.MethodPost, "/api/v1/admin/trading-accounts", adminToken, map[string]string{
		"customer_id": customer.String(), "name": "Asha Rao", "email": "asha@example.com",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	creds := decodeData(t, w)["credentials"].(map[string]interface{})
	assert.Equal(t, "Pw1!", creds["password"])
}

// --- Webhooks ---

func TestWebhook_OK(t *testing.T) {
	tr := newTestRouter(t)
	body := `{"order_id":"A1B2C3D4E5F6","status":"SUCCESS"}`
	tr.webhooks.EXPECT().Handle(gomock.Any(), "swiftpay", gomock.Any(), []byte(body)).
		DoAndReturn(func(_ context.Context, _ string, h http.Header, _ []byte) (*ports.WebhookResult, error) {
			assert.Equal(t, "sig", h.Get("X-Signature"))
			return &ports.WebhookResult{Status: "ok", Message: "applied"}, nil
		})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/swiftpay", bytes.NewBufferString(body))
	req.Header.Set("X-Signature", "sig")
	w := httptest.NewRecorder()
	tr.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"applied"}`, w.Body.String())
}

func TestWebhook_RejectedAs400(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"signature", apperror.ErrInvalidSignature(), "Invalid signature"},
		{"internal", apperror.ErrDatabaseError(errors.New("pq: deadlock")), "bad request"},
		{"gateway down", apperror.ErrGatewayRetryable(errors.New("timeout")), "Payment gateway unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter(t)
			tr.webhooks.EXPECT().Handle(gomock.Any(), "payzen", gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := tr.do(http.MethodPost, "/webhooks/payzen", "", `{}`)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp["status"])
			assert.Equal(t, tt.message, resp["message"])
		})
	}
}

// --- Health & metrics ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis", err: errors.New("connection refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp struct {
		Status       string                       `json:"status"`
		Dependencies map[string]map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "healthy", resp.Dependencies["postgresql"]["status"])
	assert.Equal(t, "connection refused", resp.Dependencies["redis"]["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
