package domain

import (
	"time"

	"github.com/google/uuid"
)

// Actors recorded on history entries. Admin actors are "admin:<id>".
const (
	ActorSystem  = "system"
	ActorSweeper = "sweeper"
)

// AdminActor formats an admin identity for history and audit rows.
func AdminActor(adminID string) string {
	return "admin:" + adminID
}

// WebhookActor formats a provider callback identity.
func WebhookActor(provider string) string {
	return "webhook:" + provider
}

// HistoryEntry is an immutable snapshot appended on every transaction mutation.
type HistoryEntry struct {
	ID             uuid.UUID `json:"id"`
	TransactionID  uuid.UUID `json:"transaction_id"`
	Event          string    `json:"event"`
	Actor          string    `json:"actor"`
	Status         Status    `json:"status"`
	TradingStatus  Status    `json:"trading_status"`
	GatewayStatus  Status    `json:"gateway_status"`
	InFlight       bool      `json:"in_flight"`
	GatewayOrderID *string   `json:"gateway_order_id,omitempty"`
	FailCount      int       `json:"fail_count"`
	Message        *string   `json:"message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewHistoryEntry snapshots tx after a mutation.
func NewHistoryEntry(tx *Transaction, event, actor string) *HistoryEntry {
	return &HistoryEntry{
		ID:             uuid.New(),
		TransactionID:  tx.ID,
		Event:          event,
		Actor:          actor,
		Status:         tx.Status,
		TradingStatus:  tx.TradingStatus,
		GatewayStatus:  tx.GatewayStatus,
		InFlight:       tx.InFlight,
		GatewayOrderID: cloneString(tx.GatewayOrderID),
		FailCount:      tx.FailCount,
		Message:        cloneString(tx.Message),
		CreatedAt:      time.Now().UTC(),
	}
}

// History events.
const (
	EventCreated            = "created"
	EventTradingClaimed     = "trading_claimed"
	EventTradingResult      = "trading_result"
	EventTradingUnconfirmed = "trading_unconfirmed"
	EventTradingReverted    = "trading_reverted"
	EventGatewayClaimed     = "gateway_claimed"
	EventGatewayAccepted    = "gateway_accepted"
	EventGatewayRejected    = "gateway_rejected"
	EventGatewayUnconfirmed = "gateway_unconfirmed"
	EventGatewayReleased    = "gateway_released"
	EventGatewayStatus      = "gateway_status"
	EventRejected           = "rejected"
	EventRefundLinked       = "refund_linked"
	EventRefunded           = "refunded"
	EventRefundUnlinked     = "refund_unlinked"
	EventAcknowledged       = "acknowledged"
)
