package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, kind, type, customer_id, trading_account_id, payment_method_id, refund_transaction_id,
		amount, currency, status, trading_status, gateway_status, gateway_id, gateway_order_id, gateway_reference,
		gateway_method, in_flight, fail_count, message, deal_id, equity, margin, free_margin,
		created_by, deleted, created_at, updated_at, processed_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.Kind, t.Type, t.CustomerID, t.TradingAccountID, t.PaymentMethodID, t.RefundTransactionID,
		t.Amount, t.Currency, t.Status, t.TradingStatus, t.GatewayStatus, t.GatewayID, t.GatewayOrderID, t.GatewayReference,
		t.GatewayMethod, t.InFlight, t.FailCount, t.Message, t.DealID, t.Equity, t.Margin, t.FreeMargin,
		t.CreatedBy, t.Deleted, t.CreatedAt, t.UpdatedAt, t.ProcessedAt,
	)
	if err != nil {
		return conflictErr("insert transaction", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID (non-locking read).
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND NOT deleted`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a transaction with pessimistic locking.
// This MUST be called within a transaction.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND NOT deleted FOR UPDATE`
	return scanTransaction(tx.QueryRow(ctx, query, id))
}

// Update writes every mutable column. Kind, amount and ownership never change after creation.
func (r *TransactionRepo) Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `UPDATE transactions SET status = $1, trading_status = $2, gateway_status = $3,
		gateway_id = $4, gateway_order_id = $5, gateway_reference = $6, gateway_method = $7,
		in_flight = $8, fail_count = $9, message = $10, refund_transaction_id = $11,
		deal_id = $12, equity = $13, margin = $14, free_margin = $15,
		updated_at = $16, processed_at = $17
		WHERE id = $18`

	tag, err := tx.Exec(ctx, query,
		t.Status, t.TradingStatus, t.GatewayStatus,
		t.GatewayID, t.GatewayOrderID, t.GatewayReference, t.GatewayMethod,
		t.InFlight, t.FailCount, t.Message, t.RefundTransactionID,
		t.DealID, t.Equity, t.Margin, t.FreeMargin,
		t.UpdatedAt, t.ProcessedAt,
		t.ID,
	)
	if err != nil {
		return conflictErr("update transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", t.ID)
	}
	return nil
}

// List fetches transactions with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	conditions := []string{"NOT deleted"}
	var args []any
	argIdx := 1

	add := func(column string, v any) {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, v)
		argIdx++
	}
	if params.Kind != nil {
		add("kind", *params.Kind)
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.TradingStatus != nil {
		add("trading_status", *params.TradingStatus)
	}
	if params.GatewayStatus != nil {
		add("gateway_status", *params.GatewayStatus)
	}
	if params.InFlight != nil {
		add("in_flight", *params.InFlight)
	}
	if params.CustomerID != nil {
		add("customer_id", *params.CustomerID)
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+transactionColumns+`
		FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	txns, err := r.queryTransactions(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txns, total, nil
}

// ListInFlight returns transactions awaiting a gateway outcome that were last touched before olderThan.
func (r *TransactionRepo) ListInFlight(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE in_flight AND NOT deleted AND updated_at < $1
		ORDER BY updated_at ASC LIMIT $2`

	txns, err := r.queryTransactions(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list in-flight transactions: %w", err)
	}
	return txns, nil
}

func (r *TransactionRepo) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// scanTransaction scans a single row into a Transaction. A missing row yields (nil, nil).
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Kind, &t.Type, &t.CustomerID, &t.TradingAccountID, &t.PaymentMethodID, &t.RefundTransactionID,
		&t.Amount, &t.Currency, &t.Status, &t.TradingStatus, &t.GatewayStatus, &t.GatewayID, &t.GatewayOrderID, &t.GatewayReference,
		&t.GatewayMethod, &t.InFlight, &t.FailCount, &t.Message, &t.DealID, &t.Equity, &t.Margin, &t.FreeMargin,
		&t.CreatedBy, &t.Deleted, &t.CreatedAt, &t.UpdatedAt, &t.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
