package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"fundflow/internal/core/domain"
)

const ProviderMoneyRail = "moneyrail"

var moneyRailStatuses = NewStatusTable(ProviderMoneyRail, map[domain.Status][]string{
	domain.StatusPending: {"QUEUED", "SENT_TO_BANK", "AWAITING_BANK"},
	domain.StatusSuccess: {"CREDITED"},
	domain.StatusFailed:  {"REJECTED", "FAILED", "BENEFICIARY_INVALID"},
	domain.StatusRefund:  {"REVERSED"},
})

// MoneyRail issues bearer tokens from an API login. Callbacks are unsigned.
type MoneyRail struct {
	base
}

func NewMoneyRail(opts Options) *MoneyRail {
	return &MoneyRail{base: newBase(ProviderMoneyRail, opts, moneyRailStatuses, "api_user", "api_password")}
}

type moneyRailEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
		OrderID     string `json:"order_id"`
		Status      string `json:"status"`
		UTR         string `json:"utr"`
		Balance     Amount `json:"balance"`
	} `json:"data"`
}

func (a *MoneyRail) login(cfg *domain.GatewayConfig, creds Credentials) loginFunc {
	return func(ctx context.Context) (string, time.Duration, error) {
		r, err := a.postJSON(ctx, "auth", cfg.BaseURL+"/api/v1/login", nil, map[string]string{
			"user":     creds["api_user"],
			"password": creds["api_password"],
		})
		if err != nil {
			return "", 0, err
		}
		var out moneyRailEnvelope
		if r.StatusCode != http.StatusOK {
			return "", 0, &Error{Provider: a.provider, Op: "auth", StatusCode: r.StatusCode, Err: ErrAuthExhausted}
		}
		if err := a.decode(r, &out); err != nil {
			return "", 0, err
		}
		var ttl time.Duration
		if out.Data.ExpiresAt > 0 {
			ttl = time.Until(time.Unix(out.Data.ExpiresAt, 0))
		}
		return out.Data.AccessToken, ttl, nil
	}
}

func (a *MoneyRail) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"order_id": correlationID,
		"amount":   FormatAmount(req.Amount),
		"channel":  req.Method,
		"payee": map[string]string{
			"name":           req.Beneficiary.HolderName,
			"account_number": req.Beneficiary.AccountNumber,
			"ifsc":           req.Beneficiary.IFSC,
			"vpa":            req.Beneficiary.VPA,
		},
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.postJSON(ctx, "payout", cfg.BaseURL+"/api/v1/payouts", bearerHeader(token), payload)
	})
	if err != nil {
		return nil, err
	}
	var out moneyRailEnvelope
	if err := a.decodeTransfer("payout", r, &out); err != nil {
		return nil, err
	}
	if r.StatusCode < http.StatusBadRequest && !out.Success {
		return &TransferResult{Accepted: false, Status: domain.StatusFailed, Message: out.Error, Raw: r.Body}, nil
	}
	return a.transferOutcome(r, out.Data.Status, out.Data.UTR, out.Error)
}

func (a *MoneyRail) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.do(ctx, "status", http.MethodGet, cfg.BaseURL+"/api/v1/payouts/"+url.PathEscape(correlationID), bearerHeader(token), nil)
	})
	if err != nil {
		return nil, err
	}
	var out moneyRailEnvelope
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return nil, err
		}
		if !out.Success {
			return nil, &Error{Provider: a.provider, Op: "status", StatusCode: r.StatusCode, Err: errCode("error", out.Error)}
		}
	}
	return a.statusOutcome(r, out.Data.Status, out.Data.UTR, out.Error)
}

func (a *MoneyRail) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.do(ctx, "balance", http.MethodGet, cfg.BaseURL+"/api/v1/balance", bearerHeader(token), nil)
	})
	if err != nil {
		return 0, err
	}
	var out moneyRailEnvelope
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return 0, err
		}
	}
	return a.balanceOutcome(r, out.Data.Balance)
}

func (a *MoneyRail) ParseWebhook(body []byte) (*WebhookEvent, error) {
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

func (a *MoneyRail) VerifyWebhook(Credentials, http.Header, []byte) error { return nil }
