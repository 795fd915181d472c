package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fundflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// plainDecrypter treats stored credentials as plaintext.
type plainDecrypter struct{}

func (plainDecrypter) Decrypt(s string) (string, error) { return s, nil }

func testOptions() Options {
	return Options{Decrypter: plainDecrypter{}, Tokens: NewMemoryTokenCache()}
}

func testConfig(t *testing.T, provider, baseURL string, creds map[string]string) *domain.GatewayConfig {
	t.Helper()
	b, err := json.Marshal(creds)
	require.NoError(t, err)
	return &domain.GatewayConfig{
		ID:             uuid.New(),
		Name:           provider + "-test",
		Provider:       provider,
		Direction:      domain.DirectionBoth,
		BaseURL:        baseURL,
		CredentialsEnc: string(b),
		Enabled:        true,
	}
}

func jsonReply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}
