package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"fundflow/internal/core/domain"
)

const ProviderCashGrid = "cashgrid"

var cashGridStatuses = NewStatusTable(ProviderCashGrid, map[domain.Status][]string{
	domain.StatusPending: {"INITIATED", "IN_PROGRESS", "ON_HOLD"},
	domain.StatusSuccess: {"COMPLETED"},
	domain.StatusFailed:  {"FAILED", "DECLINED"},
	domain.StatusRefund:  {"RETURNED"},
})

// CashGrid logs in with a username and password for a bearer token.
// Its callbacks are unsigned, so they only trigger a status re-query.
type CashGrid struct {
	base
}

func NewCashGrid(opts Options) *CashGrid {
	return &CashGrid{base: newBase(ProviderCashGrid, opts, cashGridStatuses, "username", "password")}
}

type cashGridTransfer struct {
	ClientRef string `json:"client_ref"`
	State     string `json:"state"`
	BankRef   string `json:"bank_ref"`
	Remarks   string `json:"remarks"`
}

func (a *CashGrid) login(cfg *domain.GatewayConfig, creds Credentials) loginFunc {
	return func(ctx context.Context) (string, time.Duration, error) {
		r, err := a.postJSON(ctx, "auth", cfg.BaseURL+"/auth/login", nil, map[string]string{
			"username": creds["username"],
			"password": creds["password"],
		})
		if err != nil {
			return "", 0, err
		}
		if r.StatusCode != http.StatusOK {
			return "", 0, &Error{Provider: a.provider, Op: "auth", StatusCode: r.StatusCode, Err: ErrAuthExhausted}
		}
		var out struct {
			Token string `json:"token"`
		}
		if err := a.decode(r, &out); err != nil {
			return "", 0, err
		}
		return out.Token, 0, nil
	}
}

func (a *CashGrid) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	payload := map[string]string{
		"client_ref":          correlationID,
		"amount":              FormatAmount(req.Amount),
		"transfer_mode":       req.Method,
		"beneficiary_name":    req.Beneficiary.HolderName,
		"beneficiary_account": req.Beneficiary.AccountNumber,
		"beneficiary_ifsc":    req.Beneficiary.IFSC,
		"beneficiary_vpa":     req.Beneficiary.VPA,
		"remarks":             req.Remark,
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.postJSON(ctx, "payout", cfg.BaseURL+"/transfers", bearerHeader(token), payload)
	})
	if err != nil {
		return nil, err
	}
	var out cashGridTransfer
	if err := a.decodeTransfer("payout", r, &out); err != nil {
		return nil, err
	}
	return a.transferOutcome(r, out.State, out.BankRef, out.Remarks)
}

func (a *CashGrid) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.do(ctx, "status", http.MethodGet, cfg.BaseURL+"/transfers/"+url.PathEscape(correlationID), bearerHeader(token), nil)
	})
	if err != nil {
		return nil, err
	}
	var out cashGridTransfer
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return nil, err
		}
	}
	return a.statusOutcome(r, out.State, out.BankRef, out.Remarks)
}

func (a *CashGrid) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.do(ctx, "balance", http.MethodGet, cfg.BaseURL+"/wallet/balance", bearerHeader(token), nil)
	})
	if err != nil {
		return 0, err
	}
	var out struct {
		Balance Amount `json:"balance"`
	}
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return 0, err
		}
	}
	return a.balanceOutcome(r, out.Balance)
}

func (a *CashGrid) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev cashGridTransfer
	if err := jsonUnmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.ClientRef == "" {
		return nil, errMissingCorrelation(a.provider)
	}
	return &WebhookEvent{CorrelationID: ev.ClientRef, RawStatus: ev.State}, nil
}

func (a *CashGrid) VerifyWebhook(Credentials, http.Header, []byte) error { return nil }
