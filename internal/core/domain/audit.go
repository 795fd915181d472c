package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited admin action.
type AuditAction string

const (
	AuditActionResolve       AuditAction = "RESOLVE"
	AuditActionRetry         AuditAction = "RETRY"
	AuditActionRefund        AuditAction = "REFUND"
	AuditActionRetryCredit   AuditAction = "RETRY_CREDIT"
	AuditActionAcknowledge   AuditAction = "ACKNOWLEDGE"
	AuditActionRefresh       AuditAction = "REFRESH"
	AuditActionBulkRefresh   AuditAction = "BULK_REFRESH"
	AuditActionOpenAccount   AuditAction = "OPEN_ACCOUNT"
	AuditActionSearchAccount AuditAction = "SEARCH_ACCOUNT"
)

// AuditLog records a single audited admin action.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ActorID      string      `json:"actor_id"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
