package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferReq() TransferRequest {
	return TransferRequest{
		Amount:   150000,
		Currency: "INR",
		Method:   domain.MethodIMPS,
		Beneficiary: domain.PaymentDetails{
			Kind:          domain.PaymentMethodBank,
			HolderName:    "A Customer",
			AccountNumber: "001122334455",
			IFSC:          "HDFC0000001",
		},
	}
}

func TestSwiftPay_Payout(t *testing.T) {
	var logins int
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			logins++
			jsonReply(w, http.StatusOK, map[string]any{"access_token": "t", "expires_in": 3600})
		case "/v1/payouts":
			assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
			var body swiftPayPayout
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ORD123", body.ReferenceID)
			assert.Equal(t, "1500.00", body.Amount)
			jsonReply(w, http.StatusOK, map[string]any{"id": "po_1", "status": "QUEUED", "utr": ""})
		default:
			http.NotFound(w, r)
		}
	})
	a := NewSwiftPay(testOptions())
	cfg := testConfig(t, ProviderSwiftPay, srv.URL, map[string]string{
		"client_id": "id", "client_secret": "secret", "webhook_secret": "wh",
	})

	res, err := a.InitiateTransfer(context.Background(), cfg, transferReq(), "ORD123")

	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, "QUEUED", res.RawStatus)
	assert.Equal(t, 1, logins)
}

func TestSwiftPay_PayoutRejected(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			jsonReply(w, http.StatusOK, map[string]any{"access_token": "t"})
			return
		}
		jsonReply(w, http.StatusBadRequest, map[string]any{"message": "invalid ifsc"})
	})
	a := NewSwiftPay(testOptions())
	cfg := testConfig(t, ProviderSwiftPay, srv.URL, map[string]string{
		"client_id": "id", "client_secret": "secret", "webhook_secret": "wh",
	})

	res, err := a.InitiateTransfer(context.Background(), cfg, transferReq(), "ORD1")

	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, "invalid ifsc", res.Message)
}

func TestSwiftPay_Webhook(t *testing.T) {
	a := NewSwiftPay(testOptions())
	creds := Credentials{"webhook_secret": "wh"}
	body := []byte(`{"event":"payout.updated","data":{"reference_id":"ORD9","status":"PROCESSED"}}`)

	ev, err := a.ParseWebhook(body)
	require.NoError(t, err)
	assert.Equal(t, "ORD9", ev.CorrelationID)

	h := http.Header{}
	h.Set("X-Swiftpay-Signature", "sha256="+HMACSHA256("wh", string(body)))
	assert.NoError(t, a.VerifyWebhook(creds, h, body))

	h.Set("X-Swiftpay-Signature", HMACSHA256("wrong", string(body)))
	assert.ErrorIs(t, a.VerifyWebhook(creds, h, body), ErrInvalidSignature)

	_, err = a.ParseWebhook([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedWebhook)
}

func TestPayZen_SignsRequests(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, "1700000000", fields["timestamp"])
		assert.True(t, VerifyHex(HMACSHA256("sk", SortedJoin(fields, "signature")), fields["signature"]))
		switch r.URL.Path {
		case "/api/payout":
			jsonReply(w, http.StatusOK, map[string]any{"code": "00", "data": map[string]any{"order_no": fields["order_no"], "status": "PROCESSING"}})
		case "/api/balance":
			jsonReply(w, http.StatusOK, map[string]any{"code": "00", "data": map[string]any{"balance": 2500.75}})
		}
	})
	a := NewPayZen(testOptions())
	a.now = func() time.Time { return fixed }
	cfg := testConfig(t, ProviderPayZen, srv.URL, map[string]string{"merchant_id": "m1", "secret_key": "sk"})

	res, err := a.InitiateTransfer(context.Background(), cfg, transferReq(), "ORD2")
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	bal, err := a.GetBalance(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(250075), bal)
}

func TestPayZen_NonZeroCodeIsRejection(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonReply(w, http.StatusOK, map[string]any{"code": "E12", "msg": "limit exceeded"})
	})
	a := NewPayZen(testOptions())
	cfg := testConfig(t, ProviderPayZen, srv.URL, map[string]string{"merchant_id": "m1", "secret_key": "sk"})

	res, err := a.InitiateTransfer(context.Background(), cfg, transferReq(), "ORD3")

	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, "limit exceeded", res.Message)
}

func TestPayZen_WebhookSignatureInBody(t *testing.T) {
	a := NewPayZen(testOptions())
	creds := Credentials{"merchant_id": "m1", "secret_key": "sk"}
	fields := map[string]string{"order_no": "ORD4", "status": "SUCCESS", "amount": "10.00"}
	fields["signature"] = HMACSHA256("sk", SortedJoin(fields, "signature"))
	body, err := json.Marshal(fields)
	require.NoError(t, err)

	assert.NoError(t, a.VerifyWebhook(creds, nil, body))

	fields["status"] = "FAIL"
	tampered, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.ErrorIs(t, a.VerifyWebhook(creds, nil, tampered), ErrInvalidSignature)
}

func TestPayStream_SignsPathForGet(t *testing.T) {
	creds := map[string]string{"api_key": "k", "secret": "s", "salt": "na"}
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		assert.True(t, VerifyHex(SaltedDigestHMAC("s", "na", r.URL.Path), r.Header.Get("X-Signature")))
		jsonReply(w, http.StatusOK, map[string]any{"merchant_ref": "ORD5", "status": "SETTLED", "bank_ref": "UTR5"})
	})
	a := NewPayStream(testOptions())
	cfg := testConfig(t, ProviderPayStream, srv.URL, creds)

	st, err := a.GetStatus(context.Background(), cfg, "ORD5")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st.Status)
	assert.Equal(t, "UTR5", st.Reference)
}

func TestPayStream_Webhook(t *testing.T) {
	a := NewPayStream(testOptions())
	creds := Credentials{"secret": "s", "salt": "na"}
	body := []byte(`{"merchant_ref":"ORD6","status":"FAILED"}`)
	h := http.Header{}
	h.Set("X-Paystream-Signature", SaltedDigestHMAC("s", "na", string(body)))

	assert.NoError(t, a.VerifyWebhook(creds, h, body))
	assert.ErrorIs(t, a.VerifyWebhook(creds, http.Header{}, body), ErrInvalidSignature)
}

func TestUPILink_Collection(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.True(t, VerifyHex(HMACSHA256("sec", SortedJoin(fields)), r.Header.Get("X-Signature")))
		jsonReply(w, http.StatusOK, map[string]any{"txn_status": "PENDING", "intent_url": "upi://pay?tr=ORD7"})
	})
	a := NewUPILink(testOptions())
	cfg := testConfig(t, ProviderUPILink, srv.URL, map[string]string{"partner_id": "p", "api_secret": "sec"})

	res, err := a.InitiateCollection(context.Background(), cfg, CollectionRequest{Amount: 5000, Currency: "INR", CustomerID: "c1"}, "ORD7")

	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, "upi://pay?tr=ORD7", res.PaymentURL)
}

func TestMoneyRail_UnsuccessfulEnvelopeIsRejection(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/login" {
			jsonReply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"access_token": "t"}})
			return
		}
		jsonReply(w, http.StatusOK, map[string]any{"success": false, "error": "beneficiary blocked"})
	})
	a := NewMoneyRail(testOptions())
	cfg := testConfig(t, ProviderMoneyRail, srv.URL, map[string]string{"api_user": "u", "api_password": "p"})

	res, err := a.InitiateTransfer(context.Background(), cfg, transferReq(), "ORD8")

	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, "beneficiary blocked", res.Message)
}

func TestZipPay_NumericStates(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ret_code":"0","out_trade_no":"ORD9","state":2,"bank_ref":"B9"}`))
	})
	a := NewZipPay(testOptions())
	cfg := testConfig(t, ProviderZipPay, srv.URL, map[string]string{"app_id": "a", "app_secret": "s"})

	st, err := a.GetStatus(context.Background(), cfg, "ORD9")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st.Status)
	assert.Equal(t, "2", st.RawStatus)
}

func TestTrustPe_UnhandledStatusIsAmbiguous(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonReply(w, http.StatusOK, map[string]any{"status": "ok", "data": map[string]any{"status": "ON_REVIEW"}})
	})
	a := NewTrustPe(testOptions())
	cfg := testConfig(t, ProviderTrustPe, srv.URL, map[string]string{"merchant_key": "m", "secret": "s", "salt": "x"})

	_, err := a.InitiateTransfer(context.Background(), cfg, transferReq(), "ORD10")

	require.Error(t, err)
	assert.True(t, IsAmbiguous(err))
	assert.True(t, apperror.IsCode(AsAppError(err), "GW_003"))
}

func TestNimbusPay_BalanceInMinorUnits(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		jsonReply(w, http.StatusOK, map[string]any{"balance": 987654})
	})
	a := NewNimbusPay(testOptions())
	cfg := testConfig(t, ProviderNimbusPay, srv.URL, map[string]string{"api_key": "key"})

	bal, err := a.GetBalance(context.Background(), cfg)

	require.NoError(t, err)
	assert.Equal(t, int64(987654), bal)
}

func TestQueryStatus_PayinNotSupported(t *testing.T) {
	a := NewCashGrid(testOptions())
	cfg := testConfig(t, ProviderCashGrid, "http://unused", map[string]string{"username": "u", "password": "p"})

	_, err := QueryStatus(context.Background(), a, cfg, domain.DirectionPayin, "ORD11")

	assert.ErrorIs(t, err, ErrPayinNotSupported)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(testOptions())

	assert.Len(t, r.Providers(), 9)
	for _, name := range r.Providers() {
		a, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.Provider())
		_, ok := a.(WebhookVerifier)
		assert.True(t, ok, "%s must parse webhooks", name)
	}

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestAsAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"insufficient", ErrInsufficientBalance, "GW_004"},
		{"not found", ErrProviderNotFound, "GW_005"},
		{"signature", ErrInvalidSignature, "SEC_001"},
		{"malformed", ErrMalformedWebhook, "REQ_001"},
		{"ambiguous", &Error{Provider: "p", Op: "payout", Ambiguous: true, Err: errors.New("eof")}, "GW_002"},
		{"retryable", &Error{Provider: "p", Op: "payout", Err: errors.New("refused")}, "GW_001"},
		{"unhandled", &UnhandledStatusError{Provider: "p", Raw: "X"}, "GW_003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperror.IsCode(AsAppError(tt.err), tt.code), "got %v", AsAppError(tt.err))
		})
	}
	assert.Nil(t, AsAppError(nil))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(AsAppError(errors.New("boom"))))
}
