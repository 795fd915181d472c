package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fundflow/internal/core/domain"
)

const ProviderSwiftPay = "swiftpay"

var swiftPayStatuses = NewStatusTable(ProviderSwiftPay, map[domain.Status][]string{
	domain.StatusPending: {"CREATED", "QUEUED", "PENDING", "PROCESSING", "ATTEMPTED"},
	domain.StatusSuccess: {"PROCESSED", "PAID", "CAPTURED"},
	domain.StatusFailed:  {"FAILED", "REJECTED", "CANCELLED", "EXPIRED"},
	domain.StatusRefund:  {"REVERSED", "REFUNDED"},
})

// SwiftPay authenticates with OAuth client credentials and signs callbacks over the raw body.
type SwiftPay struct {
	base
}

func NewSwiftPay(opts Options) *SwiftPay {
	return &SwiftPay{base: newBase(ProviderSwiftPay, opts, swiftPayStatuses, "client_id", "client_secret", "webhook_secret")}
}

type swiftPayToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type swiftPayBeneficiary struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	VPA           string `json:"vpa,omitempty"`
}

type swiftPayPayout struct {
	ReferenceID string              `json:"reference_id"`
	Amount      string              `json:"amount"`
	Currency    string              `json:"currency"`
	Mode        string              `json:"mode"`
	Narration   string              `json:"narration,omitempty"`
	Beneficiary swiftPayBeneficiary `json:"beneficiary"`
}

type swiftPayCollection struct {
	ReferenceID  string `json:"reference_id"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Method       string `json:"method,omitempty"`
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name,omitempty"`
}

type swiftPayTransfer struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UTR        string `json:"utr"`
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
}

type swiftPayWebhook struct {
	Event string `json:"event"`
	Data  struct {
		ReferenceID string `json:"reference_id"`
		Status      string `json:"status"`
	} `json:"data"`
}

func (a *SwiftPay) login(cfg *domain.GatewayConfig, creds Credentials) loginFunc {
	return func(ctx context.Context) (string, time.Duration, error) {
		r, err := a.postJSON(ctx, "auth", cfg.BaseURL+"/oauth/token", nil, map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     creds["client_id"],
			"client_secret": creds["client_secret"],
		})
		if err != nil {
			return "", 0, err
		}
		if r.StatusCode != http.StatusOK {
			return "", 0, &Error{Provider: a.provider, Op: "auth", StatusCode: r.StatusCode, Err: ErrAuthExhausted}
		}
		var tok swiftPayToken
		if err := a.decode(r, &tok); err != nil {
			return "", 0, err
		}
		return tok.AccessToken, time.Duration(tok.ExpiresIn) * time.Second, nil
	}
}

func (a *SwiftPay) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	payload := swiftPayPayout{
		ReferenceID: correlationID,
		Amount:      FormatAmount(req.Amount),
		Currency:    req.Currency,
		Mode:        req.Method,
		Narration:   req.Remark,
		Beneficiary: swiftPayBeneficiary{
			Name:          req.Beneficiary.HolderName,
			AccountNumber: req.Beneficiary.AccountNumber,
			IFSC:          req.Beneficiary.IFSC,
			VPA:           req.Beneficiary.VPA,
		},
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.postJSON(ctx, "payout", cfg.BaseURL+"/v1/payouts", bearerHeader(token), payload)
	})
	if err != nil {
		return nil, err
	}
	var out swiftPayTransfer
	if err := a.decodeTransfer("payout", r, &out); err != nil {
		return nil, err
	}
	return a.transferOutcome(r, out.Status, out.UTR, out.Message)
}

func (a *SwiftPay) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	return a.query(ctx, cfg, "/v1/payouts/", correlationID)
}

func (a *SwiftPay) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.do(ctx, "balance", http.MethodGet, cfg.BaseURL+"/v1/balance", bearerHeader(token), nil)
	})
	if err != nil {
		return 0, err
	}
	var out struct {
		Available Amount `json:"available"`
	}
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return 0, err
		}
	}
	return a.balanceOutcome(r, out.Available)
}

func (a *SwiftPay) InitiateCollection(ctx context.Context, cfg *domain.GatewayConfig, req CollectionRequest, correlationID string) (*CollectionResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	payload := swiftPayCollection{
		ReferenceID:  correlationID,
		Amount:       FormatAmount(req.Amount),
		Currency:     req.Currency,
		Method:       req.Method,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.postJSON(ctx, "collect", cfg.BaseURL+"/v1/collections", bearerHeader(token), payload)
	})
	if err != nil {
		return nil, err
	}
	var out swiftPayTransfer
	if err := a.decodeTransfer("collect", r, &out); err != nil {
		return nil, err
	}
	res, err := a.transferOutcome(r, out.Status, out.ID, out.Message)
	if err != nil {
		return nil, err
	}
	return &CollectionResult{TransferResult: *res, PaymentURL: out.PaymentURL}, nil
}

func (a *SwiftPay) GetCollectionStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	return a.query(ctx, cfg, "/v1/collections/", correlationID)
}

func (a *SwiftPay) query(ctx context.Context, cfg *domain.GatewayConfig, path, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, err := a.withBearer(ctx, cfg, a.login(cfg, creds), func(token string) (*reply, error) {
		return a.do(ctx, "status", http.MethodGet, cfg.BaseURL+path+url.PathEscape(correlationID), bearerHeader(token), nil)
	})
	if err != nil {
		return nil, err
	}
	var out swiftPayTransfer
	if r.StatusCode < http.StatusBadRequest {
		if err := a.decode(r, &out); err != nil {
			return nil, err
		}
	}
	return a.statusOutcome(r, out.Status, out.UTR, out.Message)
}

func (a *SwiftPay) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev swiftPayWebhook
	if err := jsonUnmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.Data.ReferenceID == "" {
		return nil, errMissingCorrelation(a.provider)
	}
	return &WebhookEvent{CorrelationID: ev.Data.ReferenceID, RawStatus: ev.Data.Status}, nil
}

func (a *SwiftPay) VerifyWebhook(creds Credentials, header http.Header, body []byte) error {
	got := strings.TrimPrefix(header.Get("X-Swiftpay-Signature"), "sha256=")
	if got == "" || !VerifyHex(HMACSHA256(creds["webhook_secret"], string(body)), got) {
		return ErrInvalidSignature
	}
	return nil
}
