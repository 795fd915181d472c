package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fundflow/internal/core/domain"
)

const ProviderPayZen = "payzen"

var payZenStatuses = NewStatusTable(ProviderPayZen, map[domain.Status][]string{
	domain.StatusPending: {"INIT", "PROCESSING", "WAITING"},
	domain.StatusSuccess: {"SUCCESS"},
	domain.StatusFailed:  {"FAIL", "CLOSED"},
	domain.StatusRefund:  {"REFUND"},
})

const payZenOK = "00"

// PayZen signs every request body with HMAC-SHA256 over the sorted key=value join.
// Callbacks carry the same signature in a body field.
type PayZen struct {
	base
	now func() time.Time
}

func NewPayZen(opts Options) *PayZen {
	return &PayZen{
		base: newBase(ProviderPayZen, opts, payZenStatuses, "merchant_id", "secret_key"),
		now:  time.Now,
	}
}

type payZenResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		OrderNo string `json:"order_no"`
		Status  string `json:"status"`
		UTR     string `json:"utr"`
		PayURL  string `json:"pay_url"`
		Balance Amount `json:"balance"`
	} `json:"data"`
}

func (a *PayZen) signed(creds Credentials, fields map[string]string) map[string]string {
	fields["merchant_id"] = creds["merchant_id"]
	fields["timestamp"] = strconv.FormatInt(a.now().Unix(), 10)
	fields["signature"] = HMACSHA256(creds["secret_key"], SortedJoin(fields, "signature"))
	return fields
}

func (a *PayZen) call(ctx context.Context, op, url string, creds Credentials, fields map[string]string) (*reply, *payZenResponse, error) {
	r, err := a.postJSON(ctx, op, url, jsonHeader(), a.signed(creds, fields))
	if err != nil {
		return nil, nil, err
	}
	var out payZenResponse
	if op == "payout" || op == "collect" {
		err = a.decodeTransfer(op, r, &out)
	} else if r.StatusCode < http.StatusBadRequest {
		err = a.decode(r, &out)
	}
	if err != nil {
		return nil, nil, err
	}
	return r, &out, nil
}

func (a *PayZen) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, out, err := a.call(ctx, "payout", cfg.BaseURL+"/api/payout", creds, map[string]string{
		"order_no":     correlationID,
		"amount":       FormatAmount(req.Amount),
		"mode":         req.Method,
		"account_name": req.Beneficiary.HolderName,
		"account_no":   req.Beneficiary.AccountNumber,
		"ifsc":         req.Beneficiary.IFSC,
		"vpa":          req.Beneficiary.VPA,
	})
	if err != nil {
		return nil, err
	}
	if r.StatusCode < http.StatusBadRequest && out.Code != payZenOK {
		return &TransferResult{Accepted: false, Status: domain.StatusFailed, RawStatus: out.Code, Message: out.Msg, Raw: r.Body}, nil
	}
	return a.transferOutcome(r, out.Data.Status, out.Data.UTR, out.Msg)
}

func (a *PayZen) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	return a.query(ctx, cfg, "/api/payout/query", correlationID)
}

func (a *PayZen) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, out, err := a.call(ctx, "balance", cfg.BaseURL+"/api/balance", creds, map[string]string{})
	if err != nil {
		return 0, err
	}
	if r.StatusCode < http.StatusBadRequest && out.Code != payZenOK {
		return 0, &Error{Provider: a.provider, Op: "balance", StatusCode: r.StatusCode, Err: errCode(out.Code, out.Msg)}
	}
	return a.balanceOutcome(r, out.Data.Balance)
}

func (a *PayZen) InitiateCollection(ctx context.Context, cfg *domain.GatewayConfig, req CollectionRequest, correlationID string) (*CollectionResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, out, err := a.call(ctx, "collect", cfg.BaseURL+"/api/payin", creds, map[string]string{
		"order_no":    correlationID,
		"amount":      FormatAmount(req.Amount),
		"pay_type":    req.Method,
		"customer_id": req.CustomerID,
	})
	if err != nil {
		return nil, err
	}
	if r.StatusCode < http.StatusBadRequest && out.Code != payZenOK {
		return &CollectionResult{TransferResult: TransferResult{Accepted: false, Status: domain.StatusFailed, RawStatus: out.Code, Message: out.Msg, Raw: r.Body}}, nil
	}
	res, err := a.transferOutcome(r, out.Data.Status, out.Data.OrderNo, out.Msg)
	if err != nil {
		return nil, err
	}
	return &CollectionResult{TransferResult: *res, PaymentURL: out.Data.PayURL}, nil
}

func (a *PayZen) GetCollectionStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	return a.query(ctx, cfg, "/api/payin/query", correlationID)
}

func (a *PayZen) query(ctx context.Context, cfg *domain.GatewayConfig, path, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, out, err := a.call(ctx, "status", cfg.BaseURL+path, creds, map[string]string{"order_no": correlationID})
	if err != nil {
		return nil, err
	}
	if r.StatusCode < http.StatusBadRequest && out.Code != payZenOK {
		return nil, &Error{Provider: a.provider, Op: "status", StatusCode: r.StatusCode, Err: errCode(out.Code, out.Msg)}
	}
	return a.statusOutcome(r, out.Data.Status, out.Data.UTR, out.Msg)
}

func (a *PayZen) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev struct {
		OrderNo string `json:"order_no"`
		Status  string `json:"status"`
	}
	if err := jsonUnmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.OrderNo == "" {
		return nil, errMissingCorrelation(a.provider)
	}
	return &WebhookEvent{CorrelationID: ev.OrderNo, RawStatus: ev.Status}, nil
}

func (a *PayZen) VerifyWebhook(creds Credentials, _ http.Header, body []byte) error {
	fields, err := flatten(body)
	if err != nil {
		return ErrInvalidSignature
	}
	got := fields["signature"]
	if got == "" || !VerifyHex(HMACSHA256(creds["secret_key"], SortedJoin(fields, "signature")), got) {
		return ErrInvalidSignature
	}
	return nil
}
