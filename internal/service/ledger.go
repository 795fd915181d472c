package service

import (
	"context"
	"errors"
	"fmt"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repositories bundles the ledger store ports shared by the reconciliation services.
type Repositories struct {
	Transactions   ports.TransactionRepository
	Attempts       ports.AttemptRepository
	History        ports.HistoryRepository
	Gateways       ports.GatewayRepository
	Accounts       ports.TradingAccountRepository
	PaymentMethods ports.PaymentMethodRepository
	Transactor     ports.DBTransactor
}

// mutation changes a locked transaction. It returns the history event to record,
// or "" when the transaction itself is unchanged (other rows written through dbTx
// are still committed).
type mutation func(dbTx pgx.Tx, tx *domain.Transaction) (string, error)

// mutate runs fn against the row locked with SELECT ... FOR UPDATE and commits.
// Any error rolls the whole block back.
func (r Repositories) mutate(ctx context.Context, id uuid.UUID, actor string, fn mutation) (*domain.Transaction, error) {
	dbTx, err := r.Transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	tx, err := r.Transactions.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock transaction: %w", err))
	}
	if tx == nil {
		return nil, apperror.ErrNotFound("transaction")
	}

	event, err := fn(dbTx, tx)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	if event != "" {
		if err := r.Transactions.Update(ctx, dbTx, tx); err != nil {
			return nil, mapDomainErr(err)
		}
		if err := r.History.Append(ctx, dbTx, domain.NewHistoryEntry(tx, event, actor)); err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("append history: %w", err))
		}
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, mapDomainErr(fmt.Errorf("commit: %w", err))
	}
	return tx, nil
}

// load reads a transaction without locking.
func (r Repositories) load(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := r.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get transaction: %w", err))
	}
	if tx == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	return tx, nil
}

// create inserts a new transaction with its "created" history entry.
func (r Repositories) create(ctx context.Context, tx *domain.Transaction) error {
	dbTx, err := r.Transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := r.Transactions.Create(ctx, dbTx, tx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("create transaction: %w", err))
	}
	if err := r.History.Append(ctx, dbTx, domain.NewHistoryEntry(tx, domain.EventCreated, tx.CreatedBy)); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("append history: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// mapDomainErr translates state-machine and store errors into application errors.
func mapDomainErr(err error) error {
	var appErr *apperror.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, domain.ErrSuccessIsFinal):
		return apperror.ErrSuccessIsFinal()
	case errors.Is(err, domain.ErrAlreadyInFlight), errors.Is(err, ports.ErrConflict):
		return apperror.ErrAlreadyInFlight()
	case errors.Is(err, domain.ErrStatusChangedRetry):
		return apperror.ErrStatusChangedRetry()
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperror.ErrPrecondition(err.Error())
	}
	return apperror.ErrDatabaseError(err)
}
