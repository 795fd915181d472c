package service

import (
	"context"
	"errors"
	"fmt"

	"fundflow/internal/core/domain"
	"fundflow/internal/gateway"
	"fundflow/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type gatewayDispatch struct {
	tx         *domain.Transaction
	paymentURL string
}

// gatewayOutcome classifies a provider call. Anything not known to have failed before the
// request reached the provider is treated as ambiguous.
func gatewayOutcome(res *gateway.TransferResult, err error) string {
	var gwErr *gateway.Error
	switch {
	case err == nil && res != nil && res.Accepted:
		return outcomeOK
	case err == nil && res != nil:
		return outcomeRejected
	case errors.Is(err, gateway.ErrInsufficientBalance):
		return outcomeInsufficient
	case gateway.IsAmbiguous(err):
		return outcomeAmbiguous
	case errors.As(err, &gwErr),
		errors.Is(err, gateway.ErrAuthExhausted),
		errors.Is(err, gateway.ErrMissingCredential):
		return outcomeRetryable
	}
	return outcomeAmbiguous
}

// dispatchGateway sends the gateway leg: a payout for a debited withdraw, a collection for a new deposit.
//
// Pre-checks (threshold, method band, balance) change nothing. Otherwise the leg is claimed under a
// fresh correlation id together with an in-flight attempt row, the provider is called with no lock held,
// and the outcome is applied: acceptance marks processing, a rejection releases the claim (or fails the
// deposit), a call that never left releases the claim without counting a failure, and anything after
// the request was sent keeps the claim with the unconfirmed marker.
func (s *ReconciliationServiceImpl) dispatchGateway(ctx context.Context, tx *domain.Transaction, actor string) (*gatewayDispatch, error) {
	if err := tx.CanDispatchGateway(); err != nil {
		return nil, mapDomainErr(err)
	}

	direction := domain.DirectionFor(tx.Kind)
	gw, err := s.repos.Gateways.GetDefault(ctx, direction)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get default gateway: %w", err))
	}
	if gw == nil {
		return nil, apperror.ErrNotFound("gateway")
	}
	if !gw.Enabled {
		return nil, apperror.ErrGatewayDisabled()
	}
	if !gw.Serves(direction) {
		return nil, apperror.ErrPrecondition(fmt.Sprintf("gateway %s does not serve %s", gw.Name, direction))
	}
	if !gw.WithinThreshold(tx.Amount) {
		return nil, apperror.ErrThresholdExceeded()
	}
	band, ok := gw.SelectMethod(tx.Amount)
	if !ok && (direction == domain.DirectionPayout || len(gw.Methods) > 0) {
		return nil, apperror.ErrNoEligibleMethod()
	}

	adapter, err := s.adapters.Get(gw.Provider)
	if err != nil {
		return nil, gateway.AsAppError(err)
	}
	log := s.log.With().
		Str("tx_id", tx.ID.String()).
		Str("provider", gw.Provider).
		Str("direction", string(direction)).
		Logger()

	call, err := s.prepareCall(ctx, tx, gw, adapter, band.Method)
	if err != nil {
		return nil, err
	}

	orderID, err := s.ids.Next(ctx)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("order_id", orderID).Logger()

	var attempt *domain.GatewayAttempt
	if _, err := s.repos.mutate(ctx, tx.ID, actor, func(dbTx pgx.Tx, cur *domain.Transaction) (string, error) {
		if err := cur.ClaimGateway(gw.ID, orderID, band.Method); err != nil {
			return "", err
		}
		attempt = domain.NewGatewayAttempt(cur, gw, orderID)
		attempt.InFlight = true
		if err := s.repos.Attempts.Create(ctx, dbTx, attempt); err != nil {
			return "", err
		}
		return domain.EventGatewayClaimed, nil
	}); err != nil {
		return nil, err
	}

	res, paymentURL, callErr := call(ctx, orderID)
	outcome := gatewayOutcome(res, callErr)
	s.metrics.Dispatch("gateway", outcome)

	applied, err := s.repos.mutate(context.WithoutCancel(ctx), tx.ID, actor, func(dbTx pgx.Tx, cur *domain.Transaction) (string, error) {
		att, err := s.repos.Attempts.GetByIDForUpdate(ctx, dbTx, attempt.ID)
		if err != nil || att == nil {
			return "", fmt.Errorf("lock attempt: %w", errOrMissing(err))
		}
		if !att.InFlight || !cur.InFlight || cur.OrderID() != orderID {
			// A callback settled this order before the call returned.
			return "", nil
		}
		event, err := applyDispatchOutcome(cur, att, outcome, res, callErr)
		if err != nil {
			return "", err
		}
		if err := s.repos.Attempts.Update(ctx, dbTx, att); err != nil {
			return "", err
		}
		return event, nil
	})
	if err != nil {
		log.Error().Err(err).Str("outcome", outcome).Msg("gateway outcome not persisted; claim stays in flight for the sweeper")
		return nil, err
	}

	s.logDispatch(log, outcome, res, callErr)
	switch outcome {
	case outcomeRetryable:
		return nil, gateway.AsAppError(callErr)
	case outcomeInsufficient:
		return nil, apperror.ErrInsufficientGatewayBalance()
	}

	if applied.IsDeposit() && applied.GatewayStatus == domain.StatusSuccess && applied.TradingStatus == domain.StatusPending {
		credited, err := s.dispatchTrading(ctx, applied, actor)
		if err != nil {
			log.Warn().Err(err).Msg("credit after immediate collection failed")
		} else {
			applied = credited
		}
	}
	return &gatewayDispatch{tx: applied, paymentURL: paymentURL}, nil
}

type providerCall func(ctx context.Context, orderID string) (*gateway.TransferResult, string, error)

// prepareCall does every check that needs the adapter before the leg is claimed, and returns the
// money-moving call itself.
func (s *ReconciliationServiceImpl) prepareCall(ctx context.Context, tx *domain.Transaction, gw *domain.GatewayConfig, adapter gateway.Adapter, method string) (providerCall, error) {
	if tx.IsDeposit() {
		collector, ok := adapter.(gateway.Collector)
		if !ok {
			return nil, gateway.AsAppError(fmt.Errorf("%s: %w", gw.Provider, gateway.ErrPayinNotSupported))
		}
		req := gateway.CollectionRequest{
			Amount:     tx.Amount,
			Currency:   tx.Currency,
			Method:     method,
			CustomerID: tx.CustomerID.String(),
		}
		return func(ctx context.Context, orderID string) (*gateway.TransferResult, string, error) {
			res, err := collector.InitiateCollection(ctx, gw, req, orderID)
			if err != nil || res == nil {
				return nil, "", err
			}
			return &res.TransferResult, res.PaymentURL, nil
		}, nil
	}

	if tx.PaymentMethodID == nil {
		return nil, apperror.ErrPrecondition("withdraw has no payment method")
	}
	details, err := s.accounts.PaymentDetails(ctx, *tx.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	balance, err := adapter.GetBalance(ctx, gw)
	if err != nil {
		s.metrics.Dispatch("gateway", "balance_error")
		return nil, gateway.AsAppError(err)
	}
	if balance < tx.Amount {
		s.metrics.Dispatch("gateway", outcomeInsufficient)
		return nil, apperror.ErrInsufficientGatewayBalance()
	}

	req := gateway.TransferRequest{
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Method:      method,
		Beneficiary: *details,
		Remark:      "withdraw " + tx.ID.String(),
	}
	return func(ctx context.Context, orderID string) (*gateway.TransferResult, string, error) {
		res, err := adapter.InitiateTransfer(ctx, gw, req, orderID)
		return res, "", err
	}, nil
}

// applyDispatchOutcome records a provider call's outcome on the claimed transaction and its attempt.
func applyDispatchOutcome(tx *domain.Transaction, att *domain.GatewayAttempt, outcome string, res *gateway.TransferResult, callErr error) (string, error) {
	switch outcome {
	case outcomeOK:
		status := res.Status
		if status != domain.StatusSuccess {
			status = domain.StatusPending
		}
		att.Record(status, res.RawStatus, res.Reference, res.Message, res.Raw)
		tx.MarkGatewayAccepted(res.Reference)
		if res.Status == domain.StatusSuccess {
			if _, err := tx.ApplyGatewayStatus(domain.StatusSuccess, res.Reference); err != nil {
				return "", err
			}
		}
		return domain.EventGatewayAccepted, nil

	case outcomeRejected:
		msg := res.Message
		if msg == "" {
			msg = "rejected by provider"
		}
		att.Record(domain.StatusFailed, res.RawStatus, res.Reference, msg, res.Raw)
		if tx.IsWithdraw() {
			tx.ReleaseGatewayClaim(msg, true)
		} else {
			tx.FailCollection(msg)
		}
		return domain.EventGatewayRejected, nil

	case outcomeRetryable, outcomeInsufficient:
		att.Record(domain.StatusFailed, "", "", callErr.Error(), nil)
		tx.ReleaseGatewayClaim(callErr.Error(), false)
		return domain.EventGatewayReleased, nil
	}

	att.Record(domain.StatusPending, "", "", domain.MessageGatewayUnconfirmed, nil)
	tx.MarkGatewayUnconfirmed()
	return domain.EventGatewayUnconfirmed, nil
}

func (s *ReconciliationServiceImpl) logDispatch(log zerolog.Logger, outcome string, res *gateway.TransferResult, callErr error) {
	switch outcome {
	case outcomeOK:
		log.Info().Str("raw_status", res.RawStatus).Msg("gateway accepted")
	case outcomeRejected:
		log.Warn().Str("raw_status", res.RawStatus).Str("reason", res.Message).Msg("gateway rejected")
	case outcomeAmbiguous:
		log.Warn().Err(callErr).Msg("gateway call unconfirmed - verify on provider dashboard")
	default:
		log.Warn().Err(callErr).Str("outcome", outcome).Msg("gateway call did not reach provider, claim released")
	}
}
