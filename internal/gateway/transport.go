package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	maxAuthAttempts = 4
	maxBodyBytes    = 1 << 20
)

// Decrypter opens stored gateway credentials.
type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// Options are shared by every adapter.
type Options struct {
	HTTPClient *http.Client
	Decrypter  Decrypter
	Tokens     TokenCache
	TokenTTL   time.Duration
	Metrics    *metrics.Metrics
	Log        zerolog.Logger
}

// base carries what every adapter needs: credentials, transport, token cache and status table.
type base struct {
	provider string
	required []string
	statuses StatusTable
	client   *http.Client
	dec      Decrypter
	tokens   TokenCache
	tokenTTL time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func newBase(provider string, opts Options, statuses StatusTable, required ...string) base {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = NewMemoryTokenCache()
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 50 * time.Minute
	}
	return base{
		provider: provider,
		required: required,
		statuses: statuses,
		client:   client,
		dec:      opts.Decrypter,
		tokens:   tokens,
		tokenTTL: ttl,
		metrics:  opts.Metrics,
		log:      opts.Log.With().Str("provider", provider).Logger(),
	}
}

func (b *base) Provider() string { return b.provider }

// GetCredentials decrypts the gateway's credential blob and checks required keys are present.
func (b *base) GetCredentials(cfg *domain.GatewayConfig) (Credentials, error) {
	if cfg.CredentialsEnc == "" {
		return nil, fmt.Errorf("%s: %w: no credentials configured", b.provider, ErrMissingCredential)
	}
	if b.dec == nil {
		return nil, fmt.Errorf("%s: no decrypter configured", b.provider)
	}
	plain, err := b.dec.Decrypt(cfg.CredentialsEnc)
	if err != nil {
		return nil, fmt.Errorf("%s: decrypting credentials: %w", b.provider, err)
	}
	var creds Credentials
	if err := json.Unmarshal([]byte(plain), &creds); err != nil {
		return nil, fmt.Errorf("%s: credentials are not a JSON object", b.provider)
	}
	for _, k := range b.required {
		if creds[k] == "" {
			return nil, fmt.Errorf("%s: %w: %s", b.provider, ErrMissingCredential, k)
		}
	}
	return creds, nil
}

type reply struct {
	StatusCode int
	Body       []byte
}

// do sends one request and classifies failures. Anything that fails before the request
// was fully written is retryable; anything after, including a 5xx, is ambiguous.
// 4xx replies are returned to the caller, which decides what they mean.
func (b *base) do(ctx context.Context, op, method, url string, header http.Header, body []byte) (*reply, error) {
	var wrote atomic.Bool
	trace := &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				wrote.Store(true)
			}
		},
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), method, url, rdr)
	if err != nil {
		return nil, &Error{Provider: b.provider, Op: op, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		b.metrics.GatewayRequest(b.provider, op, "transport_error", time.Since(start))
		return nil, &Error{Provider: b.provider, Op: op, Ambiguous: wrote.Load(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		b.metrics.GatewayRequest(b.provider, op, "read_error", time.Since(start))
		return nil, &Error{Provider: b.provider, Op: op, Ambiguous: true, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		b.metrics.GatewayRequest(b.provider, op, "server_error", time.Since(start))
		return nil, &Error{Provider: b.provider, Op: op, Ambiguous: true, StatusCode: resp.StatusCode, Err: fmt.Errorf("server error: %s", snippet(data))}
	}

	outcome := "ok"
	if resp.StatusCode >= http.StatusBadRequest {
		outcome = "client_error"
	}
	b.metrics.GatewayRequest(b.provider, op, outcome, time.Since(start))
	return &reply{StatusCode: resp.StatusCode, Body: data}, nil
}

func (b *base) postJSON(ctx context.Context, op, url string, header http.Header, payload any) (*reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Provider: b.provider, Op: op, Err: err}
	}
	return b.do(ctx, op, http.MethodPost, url, header, body)
}

func (b *base) decode(r *reply, out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", b.provider, err)
	}
	return nil
}

// decodeTransfer decodes a money-moving reply. A reply that cannot be read after the
// provider accepted the request leaves the outcome unknown.
func (b *base) decodeTransfer(op string, r *reply, out any) error {
	if r.StatusCode >= http.StatusBadRequest {
		_ = json.Unmarshal(r.Body, out)
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return &Error{Provider: b.provider, Op: op, Ambiguous: true, StatusCode: r.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (b *base) tokenKey(cfg *domain.GatewayConfig) string {
	return "gwtoken:" + b.provider + ":" + cfg.ID.String()
}

// loginFunc obtains a fresh token and how long the provider says it lives.
type loginFunc func(ctx context.Context) (string, time.Duration, error)

// withBearer runs call with a cached token. A failed login or a 401/403 on the call
// counts against the same budget of maxAuthAttempts.
func (b *base) withBearer(ctx context.Context, cfg *domain.GatewayConfig, login loginFunc, call func(token string) (*reply, error)) (*reply, error) {
	key := b.tokenKey(cfg)
	var loginErr error
	for attempt := 1; attempt <= maxAuthAttempts; attempt++ {
		token, ok, err := b.tokens.GetToken(ctx, key)
		if err != nil {
			b.log.Warn().Err(err).Msg("token cache read failed")
			ok = false
		}
		if !ok {
			var ttl time.Duration
			token, ttl, err = login(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				b.log.Warn().Err(err).Int("attempt", attempt).Msg("authentication failed")
				loginErr = err
				continue
			}
			loginErr = nil
			if ttl <= 0 || ttl > b.tokenTTL {
				ttl = b.tokenTTL
			}
			if err := b.tokens.SetToken(ctx, key, token, ttl); err != nil {
				b.log.Warn().Err(err).Msg("token cache write failed")
			}
		}

		r, err := call(token)
		if err != nil {
			return nil, err
		}
		if r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden {
			if err := b.tokens.DeleteToken(ctx, key); err != nil {
				b.log.Warn().Err(err).Msg("token cache delete failed")
			}
			b.log.Warn().Int("attempt", attempt).Int("status", r.StatusCode).Msg("token rejected, re-authenticating")
			continue
		}
		return r, nil
	}
	if loginErr != nil {
		return nil, loginErr
	}
	return nil, &Error{Provider: b.provider, Op: "auth", Err: ErrAuthExhausted}
}

// transferOutcome turns a payout or collection reply into a result.
// 4xx and mapped failures are rejections; an unmapped status is returned as an error.
func (b *base) transferOutcome(r *reply, raw, reference, message string) (*TransferResult, error) {
	if r.StatusCode >= http.StatusBadRequest {
		if message == "" {
			message = http.StatusText(r.StatusCode)
		}
		return &TransferResult{Accepted: false, Status: domain.StatusFailed, RawStatus: raw, Message: message, Raw: r.Body}, nil
	}
	st, err := b.statuses.Map(raw)
	if err != nil {
		return nil, err
	}
	return &TransferResult{
		Accepted:  st == domain.StatusPending || st == domain.StatusSuccess,
		Status:    st,
		RawStatus: raw,
		Reference: reference,
		Message:   message,
		Raw:       r.Body,
	}, nil
}

// statusOutcome turns a status query reply into a canonical status.
func (b *base) statusOutcome(r *reply, raw, reference, message string) (*ProviderStatus, error) {
	if r.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Provider: b.provider, Op: "status", StatusCode: r.StatusCode, Err: fmt.Errorf("status query rejected: %s", snippet(r.Body))}
	}
	st, err := b.statuses.Map(raw)
	if err != nil {
		return nil, err
	}
	return &ProviderStatus{Status: st, RawStatus: raw, Reference: reference, Message: message, Raw: r.Body}, nil
}

func (b *base) balanceOutcome(r *reply, amount Amount) (int64, error) {
	if r.StatusCode >= http.StatusBadRequest {
		return 0, &Error{Provider: b.provider, Op: "balance", StatusCode: r.StatusCode, Err: fmt.Errorf("balance query rejected: %s", snippet(r.Body))}
	}
	v, err := amount.Minor()
	if err != nil {
		return 0, fmt.Errorf("%s: balance: %w", b.provider, err)
	}
	return v, nil
}

func snippet(b []byte) string {
	const n = 200
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

func jsonHeader() http.Header {
	return http.Header{"Content-Type": []string{"application/json"}}
}

func bearerHeader(token string) http.Header {
	h := jsonHeader()
	h.Set("Authorization", "Bearer "+token)
	return h
}

// flatten reads a JSON object into string values for signature checks. Nested values keep their JSON text.
func flatten(body []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		out[k] = string(bytes.TrimSpace(v))
	}
	return out, nil
}

func errCode(code, msg string) error {
	return fmt.Errorf("provider code %s: %s", code, msg)
}
