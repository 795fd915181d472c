package postgres

import (
	"context"
	"errors"
	"fmt"

	"fundflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attemptColumns = `id, transaction_id, direction, gateway_id, provider, gateway_order_id, method, amount,
		status, raw_status, in_flight, reference, message, response, created_at, updated_at`

// AttemptRepo implements ports.AttemptRepository.
type AttemptRepo struct {
	pool Pool
}

// NewAttemptRepo creates a new AttemptRepo.
func NewAttemptRepo(pool Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

// Create inserts an attempt. The partial unique index on (transaction_id) WHERE in_flight
// rejects a second concurrent dispatch.
func (r *AttemptRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.GatewayAttempt) error {
	query := `INSERT INTO gateway_attempts (` + attemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := tx.Exec(ctx, query,
		a.ID, a.TransactionID, a.Direction, a.GatewayID, a.Provider, a.GatewayOrderID, a.Method, a.Amount,
		a.Status, a.RawStatus, a.InFlight, a.Reference, a.Message, nullJSON(a.Response), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return conflictErr("insert gateway attempt", err)
	}
	return nil
}

func (r *AttemptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GatewayAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM gateway_attempts WHERE id = $1`
	return scanAttempt(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches an attempt with pessimistic locking.
func (r *AttemptRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.GatewayAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM gateway_attempts WHERE id = $1 FOR UPDATE`
	return scanAttempt(tx.QueryRow(ctx, query, id))
}

// GetByOrderID resolves a provider correlation id to its attempt.
func (r *AttemptRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.GatewayAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM gateway_attempts WHERE gateway_order_id = $1`
	return scanAttempt(r.pool.QueryRow(ctx, query, orderID))
}

func (r *AttemptRepo) Update(ctx context.Context, tx pgx.Tx, a *domain.GatewayAttempt) error {
	query := `UPDATE gateway_attempts SET status = $1, raw_status = $2, in_flight = $3, reference = $4,
		message = $5, response = $6, updated_at = $7
		WHERE id = $8`

	tag, err := tx.Exec(ctx, query,
		a.Status, a.RawStatus, a.InFlight, a.Reference,
		a.Message, nullJSON(a.Response), a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return conflictErr("update gateway attempt", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("gateway attempt not found: %s", a.ID)
	}
	return nil
}

// ListByTransaction returns a transaction's attempts, oldest first.
func (r *AttemptRepo) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.GatewayAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM gateway_attempts WHERE transaction_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list gateway attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.GatewayAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gateway attempt rows: %w", err)
	}
	return out, nil
}

// OrderIDExists checks both attempts and transactions, since a correlation id is never reused.
func (r *AttemptRepo) OrderIDExists(ctx context.Context, orderID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM gateway_attempts WHERE gateway_order_id = $1)
		OR EXISTS(SELECT 1 FROM transactions WHERE gateway_order_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check order id exists: %w", err)
	}
	return exists, nil
}

func scanAttempt(row pgx.Row) (*domain.GatewayAttempt, error) {
	a := &domain.GatewayAttempt{}
	var response []byte
	err := row.Scan(
		&a.ID, &a.TransactionID, &a.Direction, &a.GatewayID, &a.Provider, &a.GatewayOrderID, &a.Method, &a.Amount,
		&a.Status, &a.RawStatus, &a.InFlight, &a.Reference, &a.Message, &response, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan gateway attempt: %w", err)
	}
	if len(response) > 0 {
		a.Response = response
	}
	return a, nil
}

// nullJSON stores empty payloads as NULL rather than invalid jsonb.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
