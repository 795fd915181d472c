package postgres

import (
	"context"
	"errors"
	"fmt"

	"fundflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TradingAccountRepo implements ports.TradingAccountRepository.
type TradingAccountRepo struct {
	pool Pool
}

func NewTradingAccountRepo(pool Pool) *TradingAccountRepo {
	return &TradingAccountRepo{pool: pool}
}

func (r *TradingAccountRepo) Create(ctx context.Context, a *domain.TradingAccount) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO trading_accounts (id, customer_id, login, account_group, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.CustomerID, a.Login, a.Group, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trading account: %w", err)
	}
	return nil
}

func (r *TradingAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TradingAccount, error) {
	a := &domain.TradingAccount{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, login, account_group, created_at FROM trading_accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.CustomerID, &a.Login, &a.Group, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trading account: %w", err)
	}
	return a, nil
}

const paymentMethodColumns = `id, customer_id, kind, holder_name_enc, account_number_enc, ifsc_enc, vpa_enc, created_at`

// PaymentMethodRepo implements ports.PaymentMethodRepository.
// Sensitive columns hold deterministic-cipher ciphertext and are never decrypted here.
type PaymentMethodRepo struct {
	pool Pool
}

func NewPaymentMethodRepo(pool Pool) *PaymentMethodRepo {
	return &PaymentMethodRepo{pool: pool}
}

func (r *PaymentMethodRepo) Create(ctx context.Context, m *domain.PaymentMethod) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payment_methods (`+paymentMethodColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.CustomerID, m.Kind, m.HolderNameEnc, m.AccountNumberEnc, m.IFSCEnc, m.VPAEnc, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	m, err := scanPaymentMethod(r.pool.QueryRow(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return m, nil
}

// FindByAccountNumberEnc is an exact ciphertext match; callers encrypt the search term first.
func (r *PaymentMethodRepo) FindByAccountNumberEnc(ctx context.Context, accountNumberEnc string) ([]domain.PaymentMethod, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE account_number_enc = $1 ORDER BY created_at DESC`,
		accountNumberEnc,
	)
	if err != nil {
		return nil, fmt.Errorf("find payment methods: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment method rows: %w", err)
	}
	return out, nil
}

func scanPaymentMethod(row pgx.Row) (*domain.PaymentMethod, error) {
	m := &domain.PaymentMethod{}
	if err := row.Scan(&m.ID, &m.CustomerID, &m.Kind, &m.HolderNameEnc, &m.AccountNumberEnc, &m.IFSCEnc, &m.VPAEnc, &m.CreatedAt); err != nil {
		return nil, err
	}
	return m, nil
}
