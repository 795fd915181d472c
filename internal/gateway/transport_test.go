package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBase() base {
	return newBase("demo", testOptions(), NewStatusTable("demo", map[domain.Status][]string{
		domain.StatusPending: {"PENDING"},
		domain.StatusSuccess: {"SUCCESS"},
		domain.StatusFailed:  {"FAILED"},
	}))
}

func TestDo_ConnectionRefusedIsRetryable(t *testing.T) {
	srv := newServer(t, func(http.ResponseWriter, *http.Request) {})
	url := srv.URL
	srv.Close()

	b := newTestBase()
	_, err := b.do(context.Background(), "payout", http.MethodPost, url+"/x", nil, []byte(`{}`))

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.False(t, gwErr.Ambiguous)
	assert.True(t, gwErr.Retryable())
	assert.False(t, IsAmbiguous(err))
}

func TestDo_DroppedAfterWriteIsAmbiguous(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	})

	b := newTestBase()
	_, err := b.do(context.Background(), "payout", http.MethodPost, srv.URL+"/x", nil, []byte(`{"a":1}`))

	require.Error(t, err)
	assert.True(t, IsAmbiguous(err))
}

func TestDo_ServerErrorIsAmbiguous(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	b := newTestBase()
	_, err := b.do(context.Background(), "payout", http.MethodPost, srv.URL, nil, []byte(`{}`))

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.True(t, gwErr.Ambiguous)
	assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
}

func TestDo_ClientErrorReturnedToCaller(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.Header.Get("X-Custom"))
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad account"}`))
	})

	b := newTestBase()
	r, err := b.do(context.Background(), "payout", http.MethodPost, srv.URL, http.Header{"X-Custom": {"v"}}, []byte(`{}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, r.StatusCode)
	assert.JSONEq(t, `{"error":"bad account"}`, string(r.Body))
}

func TestDo_RecordsMetrics(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	opts := testOptions()
	opts.Metrics = metrics.New(prometheus.NewRegistry())
	b := newBase("demo", opts, StatusTable{})

	_, err := b.do(context.Background(), "balance", http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)
}

func TestDecodeTransfer_GarbledSuccessIsAmbiguous(t *testing.T) {
	b := newTestBase()
	var out map[string]any

	err := b.decodeTransfer("payout", &reply{StatusCode: 200, Body: []byte("<html>")}, &out)
	assert.True(t, IsAmbiguous(err))

	err = b.decodeTransfer("payout", &reply{StatusCode: 400, Body: []byte("<html>")}, &out)
	assert.NoError(t, err, "4xx bodies are best effort")
}

func TestTransferOutcome(t *testing.T) {
	b := newTestBase()

	res, err := b.transferOutcome(&reply{StatusCode: 200}, "pending", "utr1", "")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, "utr1", res.Reference)

	res, err = b.transferOutcome(&reply{StatusCode: 200}, "FAILED", "", "insufficient funds")
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, domain.StatusFailed, res.Status)

	res, err = b.transferOutcome(&reply{StatusCode: 400}, "", "", "")
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, "Bad Request", res.Message)

	_, err = b.transferOutcome(&reply{StatusCode: 200}, "MYSTERY", "", "")
	var unhandled *UnhandledStatusError
	assert.True(t, errors.As(err, &unhandled))
}

func TestStatusOutcome_ClientErrorIsNotAmbiguous(t *testing.T) {
	b := newTestBase()

	_, err := b.statusOutcome(&reply{StatusCode: 404, Body: []byte("not found")}, "", "", "")

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.False(t, gwErr.Ambiguous)
	assert.Equal(t, "status", gwErr.Op)
}

func TestWithBearer_CachesToken(t *testing.T) {
	b := newTestBase()
	cfg := testConfig(t, "demo", "http://unused", map[string]string{})
	var logins int32
	login := func(context.Context) (string, time.Duration, error) {
		atomic.AddInt32(&logins, 1)
		return "tok", 0, nil
	}
	call := func(token string) (*reply, error) {
		assert.Equal(t, "tok", token)
		return &reply{StatusCode: http.StatusOK}, nil
	}

	for i := 0; i < 3; i++ {
		_, err := b.withBearer(context.Background(), cfg, login, call)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins))
}

func TestWithBearer_ReauthenticatesOnUnauthorized(t *testing.T) {
	b := newTestBase()
	cfg := testConfig(t, "demo", "http://unused", map[string]string{})
	var logins, calls int32
	login := func(context.Context) (string, time.Duration, error) {
		n := atomic.AddInt32(&logins, 1)
		return "tok" + string(rune('0'+n)), time.Minute, nil
	}
	call := func(token string) (*reply, error) {
		atomic.AddInt32(&calls, 1)
		if token == "tok1" {
			return &reply{StatusCode: http.StatusUnauthorized}, nil
		}
		return &reply{StatusCode: http.StatusOK}, nil
	}

	r, err := b.withBearer(context.Background(), cfg, login, call)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, int32(2), logins)
	assert.Equal(t, int32(2), calls)
}

func TestWithBearer_GivesUpAfterMaxAttempts(t *testing.T) {
	b := newTestBase()
	cfg := testConfig(t, "demo", "http://unused", map[string]string{})
	var logins int32
	login := func(context.Context) (string, time.Duration, error) {
		atomic.AddInt32(&logins, 1)
		return "tok", 0, nil
	}
	call := func(string) (*reply, error) {
		return &reply{StatusCode: http.StatusForbidden}, nil
	}

	_, err := b.withBearer(context.Background(), cfg, login, call)

	assert.ErrorIs(t, err, ErrAuthExhausted)
	assert.Equal(t, int32(maxAuthAttempts), logins)
	_, ok, _ := b.tokens.GetToken(context.Background(), b.tokenKey(cfg))
	assert.False(t, ok, "rejected token must not stay cached")
}

func TestWithBearer_RetriesFailedLogin(t *testing.T) {
	b := newTestBase()
	cfg := testConfig(t, "demo", "http://unused", map[string]string{})
	var logins int32
	login := func(context.Context) (string, time.Duration, error) {
		if atomic.AddInt32(&logins, 1) < 3 {
			return "", 0, &Error{Provider: "demo", Op: "auth", StatusCode: http.StatusServiceUnavailable, Err: ErrAuthExhausted}
		}
		return "tok", time.Minute, nil
	}
	call := func(token string) (*reply, error) {
		assert.Equal(t, "tok", token)
		return &reply{StatusCode: http.StatusOK}, nil
	}

	r, err := b.withBearer(context.Background(), cfg, login, call)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, int32(3), logins)
}

func TestWithBearer_LoginNeverSucceeds(t *testing.T) {
	b := newTestBase()
	cfg := testConfig(t, "demo", "http://unused", map[string]string{})
	var logins, calls int32
	login := func(context.Context) (string, time.Duration, error) {
		atomic.AddInt32(&logins, 1)
		return "", 0, &Error{Provider: "demo", Op: "auth", StatusCode: http.StatusUnauthorized, Err: ErrAuthExhausted}
	}
	call := func(string) (*reply, error) {
		atomic.AddInt32(&calls, 1)
		return &reply{StatusCode: http.StatusOK}, nil
	}

	_, err := b.withBearer(context.Background(), cfg, login, call)

	assert.ErrorIs(t, err, ErrAuthExhausted)
	assert.Equal(t, int32(maxAuthAttempts), logins)
	assert.Zero(t, calls)
}

func TestGetCredentials(t *testing.T) {
	b := newBase("demo", testOptions(), StatusTable{}, "api_key")

	creds, err := b.GetCredentials(testConfig(t, "demo", "", map[string]string{"api_key": "k"}))
	require.NoError(t, err)
	assert.Equal(t, "k", creds["api_key"])

	_, err = b.GetCredentials(testConfig(t, "demo", "", map[string]string{"other": "x"}))
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = b.GetCredentials(&domain.GatewayConfig{})
	assert.ErrorIs(t, err, ErrMissingCredential)
}
