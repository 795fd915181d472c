package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transfer methods offered by payout providers.
const (
	MethodIMPS = "IMPS"
	MethodNEFT = "NEFT"
	MethodRTGS = "RTGS"
	MethodUPI  = "UPI"
)

// MethodBand is an enabled amount range for one transfer method.
type MethodBand struct {
	Method  string `json:"method"`
	Min     int64  `json:"min"`
	Max     int64  `json:"max"`
	Enabled bool   `json:"enabled"`
}

// Accepts reports whether the band is enabled and covers amount.
func (b MethodBand) Accepts(amount int64) bool {
	return b.Enabled && amount >= b.Min && (b.Max == 0 || amount <= b.Max)
}

// GatewayConfig is one configured payment provider account.
type GatewayConfig struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Provider       string       `json:"provider"`
	Direction      Direction    `json:"direction"`
	BaseURL        string       `json:"base_url"`
	CredentialsEnc string       `json:"-"` // AES-256-GCM encrypted JSON object
	ThresholdLimit int64        `json:"threshold_limit"` // 0 means unlimited
	Methods        []MethodBand `json:"methods"`
	IsDefault      bool         `json:"is_default"`
	Enabled        bool         `json:"enabled"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Serves reports whether the gateway handles the given direction.
func (g *GatewayConfig) Serves(d Direction) bool {
	return g.Direction == DirectionBoth || g.Direction == d
}

// WithinThreshold reports whether amount may be sent through this gateway.
func (g *GatewayConfig) WithinThreshold(amount int64) bool {
	return g.ThresholdLimit <= 0 || amount <= g.ThresholdLimit
}

// SelectMethod returns the first enabled band that accepts amount, in configured order.
func (g *GatewayConfig) SelectMethod(amount int64) (MethodBand, bool) {
	for _, b := range g.Methods {
		if b.Accepts(amount) {
			return b, true
		}
	}
	return MethodBand{}, false
}
