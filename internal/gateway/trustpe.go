package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"fundflow/internal/core/domain"
)

const ProviderTrustPe = "trustpe"

var trustPeStatuses = NewStatusTable(ProviderTrustPe, map[domain.Status][]string{
	domain.StatusPending: {"PENDING", "ACCEPTED", "PROCESSING"},
	domain.StatusSuccess: {"SUCCESS"},
	domain.StatusFailed:  {"FAILED", "ERROR", "REJECTED"},
	domain.StatusRefund:  {"REFUNDED"},
})

// TrustPe authenticates with a merchant key and a salted body digest.
type TrustPe struct {
	base
}

func NewTrustPe(opts Options) *TrustPe {
	return &TrustPe{base: newBase(ProviderTrustPe, opts, trustPeStatuses, "merchant_key", "secret", "salt")}
}

type trustPeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
		UTR     string `json:"utr"`
		Balance Amount `json:"balance"`
	} `json:"data"`
}

func (a *TrustPe) post(ctx context.Context, op, url string, creds Credentials, payload any) (*reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Provider: a.provider, Op: op, Err: err}
	}
	h := jsonHeader()
	h.Set("X-Merchant-Key", creds["merchant_key"])
	h.Set("X-Hash", SaltedDigestHMAC(creds["secret"], creds["salt"], string(body)))
	return a.do(ctx, op, http.MethodPost, url, h, body)
}

func (a *TrustPe) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, err := a.post(ctx, "payout", cfg.BaseURL+"/payout/initiate", creds, map[string]string{
		"order_id":       correlationID,
		"amount":         FormatAmount(req.Amount),
		"transfer_type":  req.Method,
		"account_name":   req.Beneficiary.HolderName,
		"account_number": req.Beneficiary.AccountNumber,
		"ifsc_code":      req.Beneficiary.IFSC,
		"upi_id":         req.Beneficiary.VPA,
		"narration":      req.Remark,
	})
	if err != nil {
		return nil, err
	}
	var out trustPeResponse
	if err := a.decodeTransfer("payout", r, &out); err != nil {
		return nil, err
	}
	if r.StatusCode < http.StatusBadRequest && out.Data.Status == "" {
		return &TransferResult{Accepted: false, Status: domain.StatusFailed, RawStatus: out.Status, Message: out.Message, Raw: r.Body}, nil
	}
	return a.transferOutcome(r, out.Data.Status, out.Data.UTR, out.Message)
}

func (a *TrustPe) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, err := a.post(ctx, "status", cfg.BaseURL+"/payout/status", creds, map[string]string{"order_id": correlationID})
	if err != nil {
		return nil, err
	}
	var out trustPeResponse
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return nil, err
		}
	}
	return a.statusOutcome(r, out.Data.Status, out.Data.UTR, out.Message)
}

func (a *TrustPe) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, err := a.post(ctx, "balance", cfg.BaseURL+"/merchant/balance", creds, map[string]string{})
	if err != nil {
		return 0, err
	}
	var out trustPeResponse
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return 0, err
		}
	}
	return a.balanceOutcome(r, out.Data.Balance)
}

func (a *TrustPe) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	if err := jsonUnmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.OrderID == "" {
		return nil, errMissingCorrelation(a.provider)
	}
	return &WebhookEvent{CorrelationID: ev.OrderID, RawStatus: ev.Status}, nil
}

func (a *TrustPe) VerifyWebhook(creds Credentials, header http.Header, body []byte) error {
	got := header.Get("X-Hash")
	if got == "" || !VerifyHex(SaltedDigestHMAC(creds["secret"], creds["salt"], string(body)), got) {
		return ErrInvalidSignature
	}
	return nil
}
