package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Direction is the money flow through a gateway.
type Direction string

const (
	DirectionPayin  Direction = "PAYIN"
	DirectionPayout Direction = "PAYOUT"
	DirectionBoth   Direction = "BOTH"
)

// DirectionFor returns the gateway direction that serves a transaction kind.
func DirectionFor(kind Kind) Direction {
	if kind == KindDeposit {
		return DirectionPayin
	}
	return DirectionPayout
}

// GatewayAttempt is the audit row for one outbound gateway call, keyed by its correlation id.
// At most one attempt per transaction is in flight at a time.
type GatewayAttempt struct {
	ID             uuid.UUID       `json:"id"`
	TransactionID  uuid.UUID       `json:"transaction_id"`
	Direction      Direction       `json:"direction"`
	GatewayID      uuid.UUID       `json:"gateway_id"`
	Provider       string          `json:"provider"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Method         string          `json:"method,omitempty"`
	Amount         int64           `json:"amount"`
	Status         Status          `json:"status"`
	RawStatus      string          `json:"raw_status,omitempty"`
	InFlight       bool            `json:"in_flight"`
	Reference      *string         `json:"reference,omitempty"`
	Message        *string         `json:"message,omitempty"`
	Response       json.RawMessage `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewGatewayAttempt builds the attempt row for a dispatched transaction.
func NewGatewayAttempt(tx *Transaction, gw *GatewayConfig, orderID string) *GatewayAttempt {
	now := time.Now().UTC()
	return &GatewayAttempt{
		ID:             uuid.New(),
		TransactionID:  tx.ID,
		Direction:      DirectionFor(tx.Kind),
		GatewayID:      gw.ID,
		Provider:       gw.Provider,
		GatewayOrderID: orderID,
		Method:         tx.GatewayMethod,
		Amount:         tx.Amount,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Record stores the provider's answer on the attempt. Only pending outcomes keep it in flight.
func (a *GatewayAttempt) Record(status Status, raw, reference, message string, response []byte) {
	a.Status = status
	a.RawStatus = raw
	a.InFlight = status == StatusPending || status == StatusProcessing
	if reference != "" {
		a.Reference = &reference
	}
	if message != "" {
		a.Message = &message
	} else {
		a.Message = nil
	}
	if len(response) > 0 {
		a.Response = append(json.RawMessage(nil), response...)
	}
	a.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy.
func (a *GatewayAttempt) Clone() *GatewayAttempt {
	c := *a
	c.Reference = cloneString(a.Reference)
	c.Message = cloneString(a.Message)
	if a.Response != nil {
		c.Response = append(json.RawMessage(nil), a.Response...)
	}
	return &c
}
