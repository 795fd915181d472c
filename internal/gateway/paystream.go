package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"fundflow/internal/core/domain"
)

const ProviderPayStream = "paystream"

var payStreamStatuses = NewStatusTable(ProviderPayStream, map[domain.Status][]string{
	domain.StatusPending: {"CREATED", "PENDING", "SUBMITTED"},
	domain.StatusSuccess: {"SETTLED"},
	domain.StatusFailed:  {"FAILED", "VOID"},
	domain.StatusRefund:  {"REVERSED"},
})

// PayStream signs with a salted SHA-256 digest that is then HMAC'd with the API secret.
// POST requests sign the body, GET requests sign the path.
type PayStream struct {
	base
}

func NewPayStream(opts Options) *PayStream {
	return &PayStream{base: newBase(ProviderPayStream, opts, payStreamStatuses, "api_key", "secret", "salt")}
}

type payStreamPayout struct {
	PayoutID  string `json:"payout_id"`
	Reference string `json:"merchant_ref"`
	Status    string `json:"status"`
	BankRef   string `json:"bank_ref"`
	Reason    string `json:"reason"`
}

func (a *PayStream) header(creds Credentials, signed string) http.Header {
	h := jsonHeader()
	h.Set("X-Api-Key", creds["api_key"])
	h.Set("X-Signature", SaltedDigestHMAC(creds["secret"], creds["salt"], signed))
	return h
}

func (a *PayStream) get(ctx context.Context, op string, cfg *domain.GatewayConfig, creds Credentials, path string) (*reply, error) {
	return a.do(ctx, op, http.MethodGet, cfg.BaseURL+path, a.header(creds, path), nil)
}

func (a *PayStream) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]any{
		"merchant_ref": correlationID,
		"amount":       FormatAmount(req.Amount),
		"currency":     req.Currency,
		"mode":         req.Method,
		"beneficiary": map[string]string{
			"name":    req.Beneficiary.HolderName,
			"account": req.Beneficiary.AccountNumber,
			"ifsc":    req.Beneficiary.IFSC,
			"vpa":     req.Beneficiary.VPA,
		},
	})
	if err != nil {
		return nil, &Error{Provider: a.provider, Op: "payout", Err: err}
	}
	r, err := a.do(ctx, "payout", http.MethodPost, cfg.BaseURL+"/v2/payouts", a.header(creds, string(body)), body)
	if err != nil {
		return nil, err
	}
	var out payStreamPayout
	if err := a.decodeTransfer("payout", r, &out); err != nil {
		return nil, err
	}
	return a.transferOutcome(r, out.Status, out.BankRef, out.Reason)
}

func (a *PayStream) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, err := a.get(ctx, "status", cfg, creds, "/v2/payouts/"+url.PathEscape(correlationID))
	if err != nil {
		return nil, err
	}
	var out payStreamPayout
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return nil, err
		}
	}
	return a.statusOutcome(r, out.Status, out.BankRef, out.Reason)
}

func (a *PayStream) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, err := a.get(ctx, "balance", cfg, creds, "/v2/account/balance")
	if err != nil {
		return 0, err
	}
	var out struct {
		Available Amount `json:"available_balance"`
	}
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return 0, err
		}
	}
	return a.balanceOutcome(r, out.Available)
}

func (a *PayStream) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev payStreamPayout
	if err := jsonUnmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.Reference == "" {
		return nil, errMissingCorrelation(a.provider)
	}
	return &WebhookEvent{CorrelationID: ev.Reference, RawStatus: ev.Status}, nil
}

func (a *PayStream) VerifyWebhook(creds Credentials, header http.Header, body []byte) error {
	got := header.Get("X-Paystream-Signature")
	if got == "" || !VerifyHex(SaltedDigestHMAC(creds["secret"], creds["salt"], string(body)), got) {
		return ErrInvalidSignature
	}
	return nil
}
