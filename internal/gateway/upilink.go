package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fundflow/internal/core/domain"
)

const ProviderUPILink = "upilink"

var upiLinkStatuses = NewStatusTable(ProviderUPILink, map[domain.Status][]string{
	domain.StatusPending: {"PENDING", "SUBMITTED", "DEEMED"},
	domain.StatusSuccess: {"SUCCESS"},
	domain.StatusFailed:  {"FAILURE", "EXPIRED", "DECLINED"},
	domain.StatusRefund:  {"REFUNDED"},
})

// UPILink signs the sorted key=value join of the request fields into a header.
// It supports UPI intent collection as well as payouts.
type UPILink struct {
	base
	now func() time.Time
}

func NewUPILink(opts Options) *UPILink {
	return &UPILink{
		base: newBase(ProviderUPILink, opts, upiLinkStatuses, "partner_id", "api_secret"),
		now:  time.Now,
	}
}

type upiLinkResponse struct {
	Status    string `json:"status"`
	TxnStatus string `json:"txn_status"`
	RRN       string `json:"rrn"`
	Message   string `json:"message"`
	IntentURL string `json:"intent_url"`
	Balance   Amount `json:"balance"`
}

func (a *UPILink) call(ctx context.Context, op, url string, creds Credentials, fields map[string]string) (*reply, *upiLinkResponse, error) {
	fields["partner_id"] = creds["partner_id"]
	fields["ts"] = strconv.FormatInt(a.now().Unix(), 10)
	h := jsonHeader()
	h.Set("X-Partner-Id", creds["partner_id"])
	h.Set("X-Signature", HMACSHA256(creds["api_secret"], SortedJoin(fields)))

	r, err := a.postJSON(ctx, op, url, h, fields)
	if err != nil {
		return nil, nil, err
	}
	var out upiLinkResponse
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

func (a *UPILink) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, out, err := a.call(ctx, "payout", cfg.BaseURL+"/partner/payout", creds, map[string]string{
		"txn_id":       correlationID,
		"amount":       FormatAmount(req.Amount),
		"mode":         req.Method,
		"payee_name":   req.Beneficiary.HolderName,
		"payee_vpa":    req.Beneficiary.VPA,
		"payee_acc":    req.Beneficiary.AccountNumber,
		"payee_ifsc":   req.Beneficiary.IFSC,
		"payment_note": req.Remark,
	})
	if err != nil {
		return nil, err
	}
	return a.transferOutcome(r, out.TxnStatus, out.RRN, out.Message)
}

func (a *UPILink) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	return a.query(ctx, cfg, "/partner/payout/status", correlationID)
}

func (a *UPILink) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, out, err := a.call(ctx, "balance", cfg.BaseURL+"/partner/balance", creds, map[string]string{})
	if err != nil {
		return 0, err
	}
	return a.balanceOutcome(r, out.Balance)
}

func (a *UPILink) InitiateCollection(ctx context.Context, cfg *domain.GatewayConfig, req CollectionRequest, correlationID string) (*CollectionResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, out, err := a.call(ctx, "collect", cfg.BaseURL+"/partner/collect", creds, map[string]string{
		"txn_id":     correlationID,
		"amount":     FormatAmount(req.Amount),
		"payer_ref":  req.CustomerID,
		"payer_name": req.CustomerName,
	})
	if err != nil {
		return nil, err
	}
	res, err := a.transferOutcome(r, out.TxnStatus, out.RRN, out.Message)
	if err != nil {
		return nil, err
	}
	return &CollectionResult{TransferResult: *res, PaymentURL: out.IntentURL}, nil
}

func (a *UPILink) GetCollectionStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	return a.query(ctx, cfg, "/partner/collect/status", correlationID)
}

func (a *UPILink) query(ctx context.Context, cfg *domain.GatewayConfig, path, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, out, err := a.call(ctx, "status", cfg.BaseURL+path, creds, map[string]string{"txn_id": correlationID})
	if err != nil {
		return nil, err
	}
	return a.statusOutcome(r, out.TxnStatus, out.RRN, out.Message)
}

func (a *UPILink) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev struct {
		TxnID     string `json:"txn_id"`
		TxnStatus string `json:"txn_status"`
	}
	if err := jsonUnmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.TxnID == "" {
		return nil, errMissingCorrelation(a.provider)
	}
	return &WebhookEvent{CorrelationID: ev.TxnID, RawStatus: ev.TxnStatus}, nil
}

func (a *UPILink) VerifyWebhook(creds Credentials, header http.Header, body []byte) error {
	fields, err := flatten(body)
	if err != nil {
		return ErrInvalidSignature
	}
	got := header.Get("X-Signature")
	if got == "" || !VerifyHex(HMACSHA256(creds["api_secret"], SortedJoin(fields)), got) {
		return ErrInvalidSignature
	}
	return nil
}
