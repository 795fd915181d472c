package gateway

import (
	"context"
	"net/http"
	"net/url"

	"fundflow/internal/core/domain"
)

const ProviderNimbusPay = "nimbuspay"

var nimbusPayStatuses = NewStatusTable(ProviderNimbusPay, map[domain.Status][]string{
	domain.StatusPending: {"pending", "processing", "queued"},
	domain.StatusSuccess: {"paid"},
	domain.StatusFailed:  {"failed", "cancelled"},
	domain.StatusRefund:  {"returned"},
})

// NimbusPay uses a static API key. Webhooks are unsigned.
type NimbusPay struct {
	base
}

func NewNimbusPay(opts Options) *NimbusPay {
	return &NimbusPay{base: newBase(ProviderNimbusPay, opts, nimbusPayStatuses, "api_key")}
}

type nimbusPayout struct {
	ID            string `json:"id"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	UTR           string `json:"utr"`
	FailureReason string `json:"failure_reason"`
	Error         struct {
		Description string `json:"description"`
	} `json:"error"`
}

func (p *nimbusPayout) message() string {
	if p.FailureReason != "" {
		return p.FailureReason
	}
	return p.Error.Description
}

func (a *NimbusPay) header(creds Credentials) http.Header {
	h := jsonHeader()
	h.Set("X-Api-Key", creds["api_key"])
	return h
}

func (a *NimbusPay) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, err := a.postJSON(ctx, "payout", cfg.BaseURL+"/v1/payouts", a.header(creds), map[string]any{
		"reference": correlationID,
		"amount":    req.Amount,
		"currency":  req.Currency,
		"mode":      req.Method,
		"fund_account": map[string]string{
			"name":           req.Beneficiary.HolderName,
			"account_number": req.Beneficiary.AccountNumber,
			"ifsc":           req.Beneficiary.IFSC,
			"vpa":            req.Beneficiary.VPA,
		},
		"narration": req.Remark,
	})
	if err != nil {
		return nil, err
	}
	var out nimbusPayout
	if err := a.decodeTransfer("payout", r, &out); err != nil {
		return nil, err
	}
	return a.transferOutcome(r, out.Status, out.UTR, out.message())
}

func (a *NimbusPay) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, err := a.do(ctx, "status", http.MethodGet, cfg.BaseURL+"/v1/payouts?reference="+url.QueryEscape(correlationID), a.header(creds), nil)
	if err != nil {
		return nil, err
	}
	var out nimbusPayout
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return nil, err
		}
	}
	return a.statusOutcome(r, out.Status, out.UTR, out.message())
}

// GetBalance reads the balance, which NimbusPay already reports in minor units.
func (a *NimbusPay) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, err := a.do(ctx, "balance", http.MethodGet, cfg.BaseURL+"/v1/balance", a.header(creds), nil)
	if err != nil {
		return 0, err
	}
	var out struct {
		Balance int64 `json:"balance"`
	}
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return 0, err
		}
	}
	return a.balanceOutcome(r, Amount(FormatAmount(out.Balance)))
}

func (a *NimbusPay) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev struct {
		Payload struct {
			Payout nimbusPayout `json:"payout"`
		} `json:"payload"`
	}
	if err := jsonUnmarshal(body, &ev); err != nil {
		return nil, err
	}
	p := ev.Payload.Payout
	if p.Reference == "" {
		return nil, errMissingCorrelation(a.provider)
	}
	return &WebhookEvent{CorrelationID: p.Reference, RawStatus: p.Status}, nil
}

func (a *NimbusPay) VerifyWebhook(Credentials, http.Header, []byte) error { return nil }
