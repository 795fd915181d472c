package service

import (
	"context"
	"errors"
	"fmt"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/gateway"
	"fundflow/internal/worker"
	"fundflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// StatusServiceImpl implements ports.StatusService. Provider answers are always re-read with
// GetStatus; callback bodies are never trusted for the status itself.
type StatusServiceImpl struct {
	repos    Repositories
	adapters AdapterSource
	credit   ports.ReconciliationService
	pool     *worker.Pool
	log      zerolog.Logger
}

// NewStatusService creates a new StatusServiceImpl. credit chains the trading credit once a
// deposit's collection succeeds.
func NewStatusService(repos Repositories, adapters AdapterSource, credit ports.ReconciliationService, pool *worker.Pool, log zerolog.Logger) *StatusServiceImpl {
	return &StatusServiceImpl{repos: repos, adapters: adapters, credit: credit, pool: pool, log: log}
}

// RefreshTransaction re-reads the status of the transaction's current order and applies it.
func (s *StatusServiceImpl) RefreshTransaction(ctx context.Context, id uuid.UUID, actor string) (*ports.RefreshResult, error) {
	tx, err := s.repos.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.OrderID() == "" {
		return &ports.RefreshResult{TransactionID: tx.ID, Outcome: ports.OutcomeUnchanged, Transaction: tx}, nil
	}
	att, err := s.repos.Attempts.GetByOrderID(ctx, tx.OrderID())
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get attempt: %w", err))
	}
	if att == nil {
		return nil, apperror.ErrNotFound("gateway attempt")
	}
	return s.reconcile(ctx, att, true, actor)
}

// RefreshAttempt re-reads one attempt and updates only its row.
func (s *StatusServiceImpl) RefreshAttempt(ctx context.Context, attemptID uuid.UUID, actor string) (*ports.RefreshResult, error) {
	att, err := s.repos.Attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get attempt: %w", err))
	}
	if att == nil {
		return nil, apperror.ErrNotFound("gateway attempt")
	}
	return s.reconcile(ctx, att, false, actor)
}

// BulkRefresh refreshes each transaction on the worker pool. Failures are reported per id.
func (s *StatusServiceImpl) BulkRefresh(ctx context.Context, ids []uuid.UUID, actor string) []ports.RefreshResult {
	results := make([]ports.RefreshResult, len(ids))
	for i, id := range ids {
		results[i] = ports.RefreshResult{TransactionID: id, Outcome: ports.OutcomeError, Error: "not processed"}
	}
	err := s.pool.Each(ctx, len(ids), func(i int) {
		res, err := s.RefreshTransaction(ctx, ids[i], actor)
		if err != nil {
			results[i] = ports.RefreshResult{TransactionID: ids[i], Outcome: ports.OutcomeError, Error: err.Error()}
			return
		}
		results[i] = *res
	})
	if err != nil {
		s.log.Warn().Err(err).Int("count", len(ids)).Msg("bulk refresh stopped early")
	}
	return results
}

// reconcile queries the provider for att and applies the answer. In attempt-only mode, or when the
// attempt no longer carries the transaction's current order, only the attempt row is written.
func (s *StatusServiceImpl) reconcile(ctx context.Context, att *domain.GatewayAttempt, full bool, actor string) (*ports.RefreshResult, error) {
	gw, err := s.repos.Gateways.GetByID(ctx, att.GatewayID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get gateway: %w", err))
	}
	if gw == nil {
		return nil, apperror.ErrNotFound("gateway")
	}
	adapter, err := s.adapters.Get(gw.Provider)
	if err != nil {
		return nil, gateway.AsAppError(err)
	}

	log := s.log.With().
		Str("tx_id", att.TransactionID.String()).
		Str("provider", gw.Provider).
		Str("order_id", att.GatewayOrderID).
		Logger()

	remote, err := gateway.QueryStatus(ctx, adapter, gw, att.Direction, att.GatewayOrderID)
	if err != nil {
		log.Warn().Err(err).Msg("status query failed")
		return nil, gateway.AsAppError(err)
	}

	result := &ports.RefreshResult{
		TransactionID: att.TransactionID,
		AttemptID:     att.ID,
		RemoteStatus:  remote.Status,
		Outcome:       ports.OutcomeUnchanged,
	}
	tx, err := s.repos.mutate(ctx, att.TransactionID, actor, func(dbTx pgx.Tx, cur *domain.Transaction) (string, error) {
		locked, err := s.repos.Attempts.GetByIDForUpdate(ctx, dbTx, att.ID)
		if err != nil || locked == nil {
			return "", fmt.Errorf("lock attempt: %w", errOrMissing(err))
		}
		attemptChanged := locked.Status != remote.Status || locked.RawStatus != remote.RawStatus
		if attemptChanged {
			locked.Record(remote.Status, remote.RawStatus, remote.Reference, remote.Message, remote.Raw)
			if err := s.repos.Attempts.Update(ctx, dbTx, locked); err != nil {
				return "", err
			}
		}

		if !full || cur.OrderID() != locked.GatewayOrderID {
			if attemptChanged {
				result.Outcome = ports.OutcomeAttemptOnly
			}
			return "", nil
		}

		changed, err := cur.ApplyGatewayStatus(remote.Status, remote.Reference)
		if errors.Is(err, domain.ErrStatusChangedRetry) {
			result.Outcome = ports.OutcomeStatusChanged
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if !changed {
			return "", nil
		}
		result.Outcome = ports.OutcomeApplied
		return domain.EventGatewayStatus, nil
	})
	if err != nil {
		log.Warn().Err(err).Str("remote_status", string(remote.Status)).Msg("status not applied")
		return nil, err
	}
	result.Transaction = tx

	log.Info().
		Str("remote_status", string(remote.Status)).
		Str("outcome", string(result.Outcome)).
		Msg("status reconciled")

	if result.Outcome == ports.OutcomeApplied && tx.IsDeposit() &&
		tx.GatewayStatus == domain.StatusSuccess && tx.TradingStatus == domain.StatusPending {
		credited, err := s.credit.DispatchToTradingEngine(ctx, tx.ID, actor)
		if err != nil {
			log.Warn().Err(err).Msg("credit after collection failed")
			result.Error = err.Error()
		}
		if credited != nil {
			result.Transaction = credited
		}
	}
	return result, nil
}
