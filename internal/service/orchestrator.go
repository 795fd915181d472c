package service

import (
	"context"
	"errors"
	"fmt"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/gateway"
	"fundflow/internal/metrics"
	"fundflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const defaultCurrency = "INR"

// AdapterSource resolves a provider name to its adapter. *gateway.Registry implements it.
type AdapterSource interface {
	Get(provider string) (gateway.Adapter, error)
}

// ReconciliationServiceImpl implements ports.ReconciliationService.
// Every transition locks the transaction row, and no external call is made while a lock is held:
// a leg is claimed and committed, the call runs, then its outcome is applied under a fresh lock.
type ReconciliationServiceImpl struct {
	repos            Repositories
	adapters         AdapterSource
	engine           ports.TradingEngine
	accounts         ports.AccountService
	ids              *IDGenerator
	autoApproveLimit int64
	metrics          *metrics.Metrics
	log              zerolog.Logger
}

// NewReconciliationService creates a new ReconciliationServiceImpl.
// Withdraws at or below autoApproveLimit are approved on creation; 0 disables auto-approve.
func NewReconciliationService(
	repos Repositories,
	adapters AdapterSource,
	engine ports.TradingEngine,
	accounts ports.AccountService,
	ids *IDGenerator,
	autoApproveLimit int64,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ReconciliationServiceImpl {
	return &ReconciliationServiceImpl{
		repos:            repos,
		adapters:         adapters,
		engine:           engine,
		accounts:         accounts,
		ids:              ids,
		autoApproveLimit: autoApproveLimit,
		metrics:          m,
		log:              log,
	}
}

// CreateDeposit records a pending deposit and asks the default payin gateway to collect it.
// A deposit whose collection could not be started is failed so it never lingers as pending.
func (s *ReconciliationServiceImpl) CreateDeposit(ctx context.Context, req ports.CreateDepositRequest) (*ports.DepositResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if _, err := s.ownedAccount(ctx, req.CustomerID, req.TradingAccountID); err != nil {
		return nil, err
	}

	tx := domain.NewDeposit(req.CustomerID, req.TradingAccountID, req.Amount, currencyOr(req.Currency), req.Actor)
	if err := s.repos.create(ctx, tx); err != nil {
		return nil, err
	}
	s.log.Info().Str("tx_id", tx.ID.String()).Int64("amount", tx.Amount).Msg("deposit created")

	out, err := s.dispatchGateway(ctx, tx, req.Actor)
	if err != nil {
		failed, ferr := s.repos.mutate(context.WithoutCancel(ctx), tx.ID, req.Actor, func(_ pgx.Tx, cur *domain.Transaction) (string, error) {
			if cur.InFlight || cur.GatewayStatus != domain.StatusPending {
				return "", nil
			}
			cur.FailCollection(err.Error())
			return domain.EventGatewayRejected, nil
		})
		if ferr != nil {
			s.log.Error().Err(ferr).Str("tx_id", tx.ID.String()).Msg("failed to close deposit after collection error")
			return &ports.DepositResult{Transaction: tx}, err
		}
		return &ports.DepositResult{Transaction: failed}, err
	}
	return &ports.DepositResult{Transaction: out.tx, PaymentURL: out.paymentURL}, nil
}

// CreateWithdraw records a pending withdraw. Small amounts are approved immediately by the system actor;
// the returned transaction reflects whatever that approval reached.
func (s *ReconciliationServiceImpl) CreateWithdraw(ctx context.Context, req ports.CreateWithdrawRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if _, err := s.ownedAccount(ctx, req.CustomerID, req.TradingAccountID); err != nil {
		return nil, err
	}
	pm, err := s.repos.PaymentMethods.GetByID(ctx, req.PaymentMethodID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment method: %w", err))
	}
	if pm == nil || pm.CustomerID != req.CustomerID {
		return nil, apperror.ErrNotFound("payment method")
	}

	tx := domain.NewWithdraw(req.CustomerID, req.TradingAccountID, req.PaymentMethodID, req.Amount, currencyOr(req.Currency), req.Actor)
	if err := s.repos.create(ctx, tx); err != nil {
		return nil, err
	}
	log := s.log.With().Str("tx_id", tx.ID.String()).Logger()
	log.Info().Int64("amount", tx.Amount).Msg("withdraw created")

	if s.autoApproveLimit <= 0 || tx.Amount > s.autoApproveLimit {
		return tx, nil
	}
	resolved, err := s.Resolve(ctx, ports.ResolveRequest{ID: tx.ID, Decision: ports.DecisionApprove, Actor: domain.ActorSystem})
	if err != nil {
		log.Warn().Err(err).Msg("auto-approve did not complete")
		if cur, lerr := s.repos.load(ctx, tx.ID); lerr == nil {
			return cur, nil
		}
		return tx, nil
	}
	return resolved, nil
}

// DispatchToTradingEngine runs the trading leg: debit for a withdraw, credit for a collected deposit.
func (s *ReconciliationServiceImpl) DispatchToTradingEngine(ctx context.Context, id uuid.UUID, actor string) (*domain.Transaction, error) {
	tx, err := s.repos.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.dispatchTrading(ctx, tx, actor)
}

// DispatchToGateway sends a debited withdraw to the default payout gateway.
func (s *ReconciliationServiceImpl) DispatchToGateway(ctx context.Context, id uuid.UUID, actor string) (*domain.Transaction, error) {
	tx, err := s.repos.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.IsWithdraw() {
		return nil, apperror.ErrPrecondition("deposits are collected when created")
	}
	out, err := s.dispatchGateway(ctx, tx, actor)
	if err != nil {
		return nil, err
	}
	return out.tx, nil
}

// Resolve applies an admin verdict on a withdraw whose legs are all pending.
// Approval chains the trading debit and, only when it succeeds, the payout.
func (s *ReconciliationServiceImpl) Resolve(ctx context.Context, req ports.ResolveRequest) (*domain.Transaction, error) {
	tx, err := s.repos.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.CanResolve(); err != nil {
		return nil, mapDomainErr(err)
	}

	switch req.Decision {
	case ports.DecisionReject:
		reason := req.Reason
		if reason == "" {
			reason = "rejected by admin"
		}
		return s.repos.mutate(ctx, tx.ID, req.Actor, func(_ pgx.Tx, cur *domain.Transaction) (string, error) {
			return domain.EventRejected, cur.Reject(reason)
		})

	case ports.DecisionApprove:
		debited, err := s.dispatchTrading(ctx, tx, req.Actor)
		if err != nil {
			return nil, err
		}
		if debited.TradingStatus != domain.StatusSuccess {
			return debited, nil
		}
		out, err := s.dispatchGateway(ctx, debited, req.Actor)
		if err != nil {
			return nil, err
		}
		return out.tx, nil
	}
	return nil, apperror.Validation(fmt.Sprintf("unknown decision %q", req.Decision))
}

// Retry re-dispatches a payout. The dispatch guard makes repeated calls safe.
func (s *ReconciliationServiceImpl) Retry(ctx context.Context, id uuid.UUID, actor string) (*domain.Transaction, error) {
	return s.DispatchToGateway(ctx, id, actor)
}

// RetryCredit re-attempts the trading credit of a deposit whose funds were collected.
func (s *ReconciliationServiceImpl) RetryCredit(ctx context.Context, id uuid.UUID, actor string) (*domain.Transaction, error) {
	tx, err := s.repos.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.IsDeposit() || tx.Type != domain.TransactionTypeNormal {
		return nil, apperror.ErrPrecondition("only collected deposits are re-credited")
	}
	return s.dispatchTrading(ctx, tx, actor)
}

// Acknowledge closes a processing transaction that an admin has followed up manually.
func (s *ReconciliationServiceImpl) Acknowledge(ctx context.Context, id uuid.UUID, reason, actor string) (*domain.Transaction, error) {
	return s.repos.mutate(ctx, id, actor, func(_ pgx.Tx, cur *domain.Transaction) (string, error) {
		return domain.EventAcknowledged, cur.Acknowledge(reason)
	})
}

// Refund credits a withdraw's amount back to the trading account through a linked refund deposit.
// The link is written before the credit call, so a second refund is rejected even while the
// first is running. A rejected credit unlinks the refund and is reported as PAY_007.
func (s *ReconciliationServiceImpl) Refund(ctx context.Context, id uuid.UUID, actor string) (*ports.RefundResult, error) {
	w, err := s.repos.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.CanRefund(); err != nil {
		return nil, apperror.ErrRefundNotAllowed(err.Error())
	}
	acct, err := s.account(ctx, w.TradingAccountID)
	if err != nil {
		return nil, err
	}

	dep := domain.NewRefundDeposit(w, actor)
	if err := s.linkRefund(ctx, w.ID, dep, actor); err != nil {
		return nil, err
	}
	log := s.log.With().Str("tx_id", w.ID.String()).Str("refund_tx_id", dep.ID.String()).Logger()

	res, callErr := s.engine.Deposit(ctx, acct.Login, dep.Amount, "refund "+w.ID.String())
	outcome := tradingOutcome(res, callErr)
	s.metrics.Dispatch("refund", outcome)

	var result ports.RefundResult
	err = s.applyInTx(context.WithoutCancel(ctx), func(dbTx pgx.Tx) error {
		wCur, err := s.repos.Transactions.GetByIDForUpdate(ctx, dbTx, w.ID)
		if err != nil || wCur == nil {
			return fmt.Errorf("lock withdraw: %w", errOrMissing(err))
		}
		dCur, err := s.repos.Transactions.GetByIDForUpdate(ctx, dbTx, dep.ID)
		if err != nil || dCur == nil {
			return fmt.Errorf("lock refund deposit: %w", errOrMissing(err))
		}

		var wEvent, dEvent string
		switch outcome {
		case outcomeOK:
			if err := dCur.ApplyTradingResult(*res); err != nil {
				return err
			}
			wCur.CompleteRefund()
			wEvent, dEvent = domain.EventRefunded, domain.EventTradingResult
		case outcomeAmbiguous:
			dCur.MarkTradingUnconfirmed()
			dEvent = domain.EventTradingUnconfirmed
		default:
			msg := "refund credit failed: " + tradingFailureMessage(res, callErr)
			if res != nil {
				if err := dCur.ApplyTradingResult(*res); err != nil {
					return err
				}
			} else {
				dCur.RevertTradingClaim(msg)
			}
			if err := dCur.Acknowledge(msg); err != nil {
				return err
			}
			wCur.UnlinkRefund(msg)
			wEvent, dEvent = domain.EventRefundUnlinked, domain.EventAcknowledged
		}

		if wEvent != "" {
			if err := s.writeWithHistory(ctx, dbTx, wCur, wEvent, actor); err != nil {
				return err
			}
		}
		if err := s.writeWithHistory(ctx, dbTx, dCur, dEvent, actor); err != nil {
			return err
		}
		result = ports.RefundResult{Withdraw: wCur, Deposit: dCur}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("outcome", outcome).Msg("refund credit outcome not persisted")
		return nil, apperror.ErrDatabaseError(err)
	}

	switch outcome {
	case outcomeOK:
		log.Info().Msg("withdraw refunded")
	case outcomeAmbiguous:
		log.Warn().Err(callErr).Msg("refund credit unconfirmed")
	default:
		log.Warn().Err(callErr).Msg("refund credit rejected")
		reason := callErr
		if reason == nil {
			reason = errors.New(tradingFailureMessage(res, nil))
		}
		return &result, apperror.ErrRefundCreditFailed(reason)
	}
	return &result, nil
}

// linkRefund records the refund deposit, claims its trading leg and links it to the withdraw in one commit.
func (s *ReconciliationServiceImpl) linkRefund(ctx context.Context, withdrawID uuid.UUID, dep *domain.Transaction, actor string) error {
	_, err := s.repos.mutate(ctx, withdrawID, actor, func(dbTx pgx.Tx, w *domain.Transaction) (string, error) {
		if err := w.LinkRefund(dep.ID); err != nil {
			return "", apperror.ErrRefundNotAllowed(err.Error())
		}
		created := domain.NewHistoryEntry(dep, domain.EventCreated, actor)
		if err := dep.ClaimTrading(); err != nil {
			return "", err
		}
		if err := s.repos.Transactions.Create(ctx, dbTx, dep); err != nil {
			return "", err
		}
		if err := s.repos.History.Append(ctx, dbTx, created); err != nil {
			return "", err
		}
		if err := s.repos.History.Append(ctx, dbTx, domain.NewHistoryEntry(dep, domain.EventTradingClaimed, actor)); err != nil {
			return "", err
		}
		return domain.EventRefundLinked, nil
	})
	return err
}

// applyInTx runs fn in a storage transaction and commits it.
func (s *ReconciliationServiceImpl) applyInTx(ctx context.Context, fn func(dbTx pgx.Tx) error) error {
	dbTx, err := s.repos.Transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck
	if err := fn(dbTx); err != nil {
		return err
	}
	return dbTx.Commit(ctx)
}

func (s *ReconciliationServiceImpl) writeWithHistory(ctx context.Context, dbTx pgx.Tx, tx *domain.Transaction, event, actor string) error {
	if err := s.repos.Transactions.Update(ctx, dbTx, tx); err != nil {
		return err
	}
	return s.repos.History.Append(ctx, dbTx, domain.NewHistoryEntry(tx, event, actor))
}

func (s *ReconciliationServiceImpl) account(ctx context.Context, id uuid.UUID) (*domain.TradingAccount, error) {
	acct, err := s.repos.Accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get trading account: %w", err))
	}
	if acct == nil {
		return nil, apperror.ErrNotFound("trading account")
	}
	return acct, nil
}

func (s *ReconciliationServiceImpl) ownedAccount(ctx context.Context, customerID, accountID uuid.UUID) (*domain.TradingAccount, error) {
	acct, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.CustomerID != customerID {
		return nil, apperror.ErrNotFound("trading account")
	}
	return acct, nil
}

func currencyOr(c string) string {
	if c == "" {
		return defaultCurrency
	}
	return c
}

func errOrMissing(err error) error {
	if err != nil {
		return err
	}
	return errors.New("row missing")
}
