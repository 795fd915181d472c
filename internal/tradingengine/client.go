// Package tradingengine is the HTTP client for the trading platform's account ledger.
package tradingengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/metrics"
	"fundflow/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const maxAuthAttempts = 3

var errUnauthorized = errors.New("manager token rejected")

// Config holds the manager credentials used for every call.
type Config struct {
	BaseURL         string
	ManagerLogin    string
	ManagerPassword string
	Group           string
	Timeout         time.Duration
}

// Client talks to the trading engine with a cached manager token.
type Client struct {
	cfg     Config
	http    *http.Client
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu    sync.Mutex
	token string
}

var _ ports.TradingEngine = (*Client)(nil)

func New(cfg Config, m *metrics.Metrics, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: timeout},
		metrics: m,
		log:     log.With().Str("component", "trading_engine").Logger(),
	}
}

type balanceRequest struct {
	Type    string `json:"type"`
	Amount  string `json:"amount"`
	Comment string `json:"comment,omitempty"`
}

type balanceResponse struct {
	OK         bool            `json:"ok"`
	DealID     dealID          `json:"deal_id"`
	Equity     decimal.Decimal `json:"equity"`
	Margin     decimal.Decimal `json:"margin"`
	FreeMargin decimal.Decimal `json:"free_margin"`
	Message    string          `json:"message"`
}

// Deposit credits the trading account.
func (c *Client) Deposit(ctx context.Context, login string, amount int64, comment string) (*domain.TradingResult, error) {
	return c.balance(ctx, "deposit", login, amount, comment)
}

// Withdraw debits the trading account.
func (c *Client) Withdraw(ctx context.Context, login string, amount int64, comment string) (*domain.TradingResult, error) {
	return c.balance(ctx, "withdraw", login, amount, comment)
}

func (c *Client) balance(ctx context.Context, op, login string, amount int64, comment string) (*domain.TradingResult, error) {
	body, err := json.Marshal(balanceRequest{
		Type:    op,
		Amount:  decimal.New(amount, -2).StringFixed(2),
		Comment: comment,
	})
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	status, data, err := c.authorized(ctx, op, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(login)+"/balance", body)
	if err != nil {
		c.metrics.TradingCall(op, outcomeOf(err))
		return nil, err
	}

	var out balanceResponse
	if status >= http.StatusBadRequest {
		_ = json.Unmarshal(data, &out)
		if out.Message == "" {
			out.Message = http.StatusText(status)
		}
		c.metrics.TradingCall(op, "rejected")
		return &domain.TradingResult{OK: false, Message: out.Message}, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		c.metrics.TradingCall(op, "ambiguous")
		return nil, apperror.ErrTradingEngineAmbiguous(fmt.Errorf("decoding %s response: %w", op, err))
	}
	if !out.OK {
		c.metrics.TradingCall(op, "rejected")
		return &domain.TradingResult{OK: false, Message: out.Message}, nil
	}

	c.metrics.TradingCall(op, "ok")
	return &domain.TradingResult{
		OK:         true,
		DealID:     string(out.DealID),
		Equity:     minor(out.Equity),
		Margin:     minor(out.Margin),
		FreeMargin: minor(out.FreeMargin),
		Message:    out.Message,
	}, nil
}

// Register opens a trading account in the configured group unless req names one.
func (c *Client) Register(ctx context.Context, req ports.TradingRegistration) (*ports.TradingAccountCredentials, error) {
	group := req.Group
	if group == "" {
		group = c.cfg.Group
	}
	body, err := json.Marshal(map[string]string{"name": req.Name, "email": req.Email, "group": group})
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	status, data, err := c.authorized(ctx, "register", http.MethodPost, "/api/v1/accounts", body)
	if err != nil {
		c.metrics.TradingCall("register", outcomeOf(err))
		return nil, err
	}
	if status >= http.StatusBadRequest {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &e)
		if e.Message == "" {
			e.Message = "trading account registration rejected"
		}
		c.metrics.TradingCall("register", "rejected")
		return nil, apperror.ErrTradingEngineRejected(e.Message)
	}

	var creds ports.TradingAccountCredentials
	if err := json.Unmarshal(data, &creds); err != nil || creds.Login == "" {
		c.metrics.TradingCall("register", "ambiguous")
		return nil, apperror.ErrTradingEngineAmbiguous(fmt.Errorf("unreadable register response: %s", snippet(data)))
	}
	c.metrics.TradingCall("register", "ok")
	return &creds, nil
}

// authorized performs the call with the manager token, logging in again when it is rejected.
func (c *Client) authorized(ctx context.Context, op, method, path string, body []byte) (int, []byte, error) {
	for attempt := 1; attempt <= maxAuthAttempts; attempt++ {
		token, err := c.managerToken(ctx)
		if err != nil {
			return 0, nil, err
		}
		status, data, err := c.do(ctx, method, path, token, body)
		if err != nil {
			return 0, nil, err
		}
		if status == http.StatusUnauthorized {
			c.clearToken(token)
			c.log.Warn().Str("op", op).Int("attempt", attempt).Msg("manager token rejected, logging in again")
			continue
		}
		return status, data, nil
	}
	return 0, nil, apperror.ErrTradingEngineRetryable(errUnauthorized)
}

func (c *Client) managerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	body, _ := json.Marshal(map[string]string{"login": c.cfg.ManagerLogin, "password": c.cfg.ManagerPassword})
	status, data, err := c.do(ctx, http.MethodPost, "/api/v1/manager/login", "", body)
	if err != nil {
		// Login moves no money; every failure is retryable.
		return "", apperror.ErrTradingEngineRetryable(err)
	}
	if status != http.StatusOK {
		return "", apperror.ErrTradingEngineRetryable(fmt.Errorf("manager login: http %d", status))
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		return "", apperror.ErrTradingEngineRetryable(fmt.Errorf("manager login: no token in response"))
	}
	c.token = out.Token
	return c.token, nil
}

func (c *Client) clearToken(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = ""
	}
}

// do sends one request. Errors before the request was written are retryable,
// errors after it and 5xx replies are ambiguous.
func (c *Client) do(ctx context.Context, method, path, token string, body []byte) (int, []byte, error) {
	var wrote atomic.Bool
	trace := &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				wrote.Store(true)
			}
		},
	}
	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), method, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, apperror.ErrTradingEngineRetryable(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if wrote.Load() {
			return 0, nil, apperror.ErrTradingEngineAmbiguous(err)
		}
		return 0, nil, apperror.ErrTradingEngineRetryable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, apperror.ErrTradingEngineAmbiguous(err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return 0, nil, apperror.ErrTradingEngineAmbiguous(fmt.Errorf("http %d: %s", resp.StatusCode, snippet(data)))
	}
	return resp.StatusCode, data, nil
}

// dealID accepts deal tickets sent as JSON numbers or strings.
type dealID string

func (d *dealID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = dealID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = dealID(n.String())
	return nil
}

func outcomeOf(err error) string {
	if apperror.IsKind(err, apperror.KindGatewayAmbiguous) {
		return "ambiguous"
	}
	return "retryable"
}

func minor(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func snippet(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}
