package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fundflow/internal/core/domain"
)

const ProviderZipPay = "zippay"

// ZipPay reports numeric state codes.
var zipPayStatuses = NewStatusTable(ProviderZipPay, map[domain.Status][]string{
	domain.StatusPending: {"0", "1"},
	domain.StatusSuccess: {"2"},
	domain.StatusFailed:  {"3", "5"},
	domain.StatusRefund:  {"4"},
})

// ZipPay signs the sorted key=value join of the body, appending the app secret as a key.
type ZipPay struct {
	base
	now func() time.Time
}

func NewZipPay(opts Options) *ZipPay {
	return &ZipPay{
		base: newBase(ProviderZipPay, opts, zipPayStatuses, "app_id", "app_secret"),
		now:  time.Now,
	}
}

type zipPayResponse struct {
	RetCode string `json:"ret_code"`
	RetMsg  string `json:"ret_msg"`
	OutNo   string `json:"out_trade_no"`
	State   Amount `json:"state"`
	BankRef string `json:"bank_ref"`
	Balance Amount `json:"available"`
}

func zipPaySign(creds Credentials, fields map[string]string) string {
	return HMACSHA256(creds["app_secret"], SortedJoin(fields, "sign")+"&key="+creds["app_secret"])
}

func (a *ZipPay) call(ctx context.Context, op, url string, creds Credentials, fields map[string]string) (*reply, *zipPayResponse, error) {
	fields["app_id"] = creds["app_id"]
	fields["nonce"] = strconv.FormatInt(a.now().UnixNano(), 36)
	h := jsonHeader()
	h.Set("X-Zip-Sign", zipPaySign(creds, fields))

	r, err := a.postJSON(ctx, op, url, h, fields)
	if err != nil {
		return nil, nil, err
	}
	var out zipPayResponse
	if op == "payout" {
		err = a.decodeTransfer(op, r, &out)
	} else if r.StatusCode < http.StatusBadRequest {
		err = a.decode(r, &out)
	}
	if err != nil {
		return nil, nil, err
	}
	return r, &out, nil
}

func (a *ZipPay) InitiateTransfer(ctx context.Context, cfg *domain.GatewayConfig, req TransferRequest, correlationID string) (*TransferResult, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, out, err := a.call(ctx, "payout", cfg.BaseURL+"/gateway/df/apply", creds, map[string]string{
		"out_trade_no": correlationID,
		"amount":       FormatAmount(req.Amount),
		"pay_mode":     req.Method,
		"acc_name":     req.Beneficiary.HolderName,
		"acc_no":       req.Beneficiary.AccountNumber,
		"acc_ifsc":     req.Beneficiary.IFSC,
		"acc_vpa":      req.Beneficiary.VPA,
	})
	if err != nil {
		return nil, err
	}
	if r.StatusCode < http.StatusBadRequest && out.RetCode != "0" {
		return &TransferResult{Accepted: false, Status: domain.StatusFailed, RawStatus: out.RetCode, Message: out.RetMsg, Raw: r.Body}, nil
	}
	return a.transferOutcome(r, string(out.State), out.BankRef, out.RetMsg)
}

func (a *ZipPay) GetStatus(ctx context.Context, cfg *domain.GatewayConfig, correlationID string) (*ProviderStatus, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return nil, err
	}
	r, out, err := a.call(ctx, "status", cfg.BaseURL+"/gateway/df/query", creds, map[string]string{"out_trade_no": correlationID})
	if err != nil {
		return nil, err
	}
	if r.StatusCode < http.StatusBadRequest && out.RetCode != "0" {
		return nil, &Error{Provider: a.provider, Op: "status", StatusCode: r.StatusCode, Err: errCode(out.RetCode, out.RetMsg)}
	}
	return a.statusOutcome(r, string(out.State), out.BankRef, out.RetMsg)
}

func (a *ZipPay) GetBalance(ctx context.Context, cfg *domain.GatewayConfig) (int64, error) {
	creds, err := a.GetCredentials(cfg)
	if err != nil {
		return 0, err
	}
	r, out, err := a.call(ctx, "balance", cfg.BaseURL+"/gateway/balance", creds, map[string]string{})
	if err != nil {
		return 0, err
	}
	return a.balanceOutcome(r, out.Balance)
}

func (a *ZipPay) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev struct {
		OutNo string `json:"out_trade_no"`
		State Amount `json:"state"`
	}
	if err := jsonUnmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.OutNo == "" {
		return nil, errMissingCorrelation(a.provider)
	}
	return &WebhookEvent{CorrelationID: ev.OutNo, RawStatus: string(ev.State)}, nil
}

func (a *ZipPay) VerifyWebhook(creds Credentials, header http.Header, body []byte) error {
	fields, err := flatten(body)
	if err != nil {
		return ErrInvalidSignature
	}
	got := header.Get("X-Zip-Sign")
	if got == "" || !VerifyHex(zipPaySign(creds, fields), got) {
		return ErrInvalidSignature
	}
	return nil
}
