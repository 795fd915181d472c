package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"fundflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrConflict is returned (wrapped) when a write violates a uniqueness guarantee:
// a reused correlation id or a second in-flight attempt for one transaction.
var ErrConflict = errors.New("conflicting write")

// TransactionRepository defines persistence operations for transactions.
// Methods accepting pgx.Tx run inside a transaction block; ForUpdate reads take a row lock
// that is held until the block commits or rolls back.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	// ListInFlight returns transactions with an outstanding gateway call last touched before olderThan.
	ListInFlight(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	Kind          *domain.Kind
	Status        *domain.Status
	TradingStatus *domain.Status
	GatewayStatus *domain.Status
	InFlight      *bool
	CustomerID    *uuid.UUID
	Page          int
	PageSize      int
}

// AttemptRepository persists per-dispatch gateway attempts.
type AttemptRepository interface {
	Create(ctx context.Context, tx pgx.Tx, a *domain.GatewayAttempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GatewayAttempt, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.GatewayAttempt, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.GatewayAttempt, error)
	Update(ctx context.Context, tx pgx.Tx, a *domain.GatewayAttempt) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.GatewayAttempt, error)
	// OrderIDExists reports whether a correlation id was ever assigned to a transaction or attempt.
	OrderIDExists(ctx context.Context, orderID string) (bool, error)
}

// HistoryRepository is the append-only transaction history log.
type HistoryRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.HistoryEntry) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.HistoryEntry, error)
}

// GatewayRepository reads configured payment gateways.
type GatewayRepository interface {
	Create(ctx context.Context, g *domain.GatewayConfig) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GatewayConfig, error)
	// GetDefault returns the enabled default gateway serving the direction.
	GetDefault(ctx context.Context, direction domain.Direction) (*domain.GatewayConfig, error)
	List(ctx context.Context) ([]domain.GatewayConfig, error)
}

// TradingAccountRepository persists customer trading accounts.
type TradingAccountRepository interface {
	Create(ctx context.Context, a *domain.TradingAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TradingAccount, error)
}

// PaymentMethodRepository persists payout destinations.
type PaymentMethodRepository interface {
	Create(ctx context.Context, pm *domain.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error)
	// FindByAccountNumberEnc matches on ciphertext produced by the deterministic cipher.
	FindByAccountNumberEnc(ctx context.Context, accountNumberEnc string) ([]domain.PaymentMethod, error)
}

// AuditRepository persists admin audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
