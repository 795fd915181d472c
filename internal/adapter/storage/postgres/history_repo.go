package postgres

import (
	"context"
	"fmt"

	"fundflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HistoryRepo implements ports.HistoryRepository. Rows are never updated or deleted.
type HistoryRepo struct {
	pool Pool
}

func NewHistoryRepo(pool Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

// Append writes a snapshot in the same database transaction as the mutation it records.
func (r *HistoryRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.HistoryEntry) error {
	query := `INSERT INTO transaction_history (id, transaction_id, event, actor, status, trading_status,
		gateway_status, in_flight, gateway_order_id, fail_count, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.TransactionID, e.Event, e.Actor, e.Status, e.TradingStatus,
		e.GatewayStatus, e.InFlight, e.GatewayOrderID, e.FailCount, e.Message, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.HistoryEntry, error) {
	query := `SELECT id, transaction_id, event, actor, status, trading_status, gateway_status, in_flight,
		gateway_order_id, fail_count, message, created_at
		FROM transaction_history WHERE transaction_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.TransactionID, &e.Event, &e.Actor, &e.Status, &e.TradingStatus, &e.GatewayStatus, &e.InFlight,
			&e.GatewayOrderID, &e.FailCount, &e.Message, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}
