package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// SortedJoin builds the canonical key=value&key=value string over params sorted by key.
// Empty values and excluded keys are skipped.
func SortedJoin(params map[string]string, exclude ...string) string {
	skip := make(map[string]struct{}, len(exclude))
	for _, k := range exclude {
		skip[k] = struct{}{}
	}
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if _, ok := skip[k]; ok || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// HMACSHA256 returns the lowercase hex HMAC-SHA256 of payload under secret.
func HMACSHA256(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// SaltedDigestHMAC hashes payload with salt using SHA-256, then HMACs the hex digest.
func SaltedDigestHMAC(secret, salt, payload string) string {
	sum := sha256.Sum256([]byte(payload + "|" + salt))
	return HMACSHA256(secret, hex.EncodeToString(sum[:]))
}

// VerifyHex compares two hex signatures in constant time, ignoring case.
func VerifyHex(expected, got string) bool {
	return hmac.Equal([]byte(strings.ToLower(expected)), []byte(strings.ToLower(strings.TrimSpace(got))))
}
