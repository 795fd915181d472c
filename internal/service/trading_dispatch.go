package service

import (
	"context"
	"errors"

	"fundflow/internal/core/domain"
	"fundflow/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// Dispatch outcomes, shared by both legs and the metrics labels.
const (
	outcomeOK           = "ok"
	outcomeRejected     = "rejected"
	outcomeRetryable    = "retryable"
	outcomeAmbiguous    = "ambiguous"
	outcomeInsufficient = "insufficient_balance"
)

// tradingOutcome classifies a trading engine call. An error that is not explicitly retryable
// may have been applied, so it counts as ambiguous.
func tradingOutcome(res *domain.TradingResult, err error) string {
	switch {
	case err == nil && res != nil && res.OK:
		return outcomeOK
	case err == nil && res != nil:
		return outcomeRejected
	case err != nil && apperror.IsKind(err, apperror.KindGatewayRetryable):
		return outcomeRetryable
	}
	return outcomeAmbiguous
}

func tradingFailureMessage(res *domain.TradingResult, err error) string {
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Err != nil {
			return appErr.Message + ": " + appErr.Err.Error()
		}
		return err.Error()
	}
	if res != nil && res.Message != "" {
		return res.Message
	}
	return "trading engine rejected the request"
}

// dispatchTrading claims the trading leg, calls the trading engine and applies the answer.
// Only a retryable failure is returned as an error; rejections and unconfirmed calls are
// recorded on the transaction.
func (s *ReconciliationServiceImpl) dispatchTrading(ctx context.Context, tx *domain.Transaction, actor string) (*domain.Transaction, error) {
	log := s.log.With().Str("tx_id", tx.ID.String()).Str("kind", string(tx.Kind)).Logger()

	acct, err := s.account(ctx, tx.TradingAccountID)
	if err != nil {
		return nil, err
	}
	claimed, err := s.repos.mutate(ctx, tx.ID, actor, func(_ pgx.Tx, cur *domain.Transaction) (string, error) {
		return domain.EventTradingClaimed, cur.ClaimTrading()
	})
	if err != nil {
		return nil, err
	}

	comment := string(claimed.Kind) + " " + claimed.ID.String()
	var res *domain.TradingResult
	var callErr error
	if claimed.IsWithdraw() {
		res, callErr = s.engine.Withdraw(ctx, acct.Login, claimed.Amount, comment)
	} else {
		res, callErr = s.engine.Deposit(ctx, acct.Login, claimed.Amount, comment)
	}
	outcome := tradingOutcome(res, callErr)
	s.metrics.Dispatch("trading", outcome)

	applied, err := s.repos.mutate(context.WithoutCancel(ctx), tx.ID, actor, func(_ pgx.Tx, cur *domain.Transaction) (string, error) {
		if cur.TradingStatus != domain.StatusProcessing {
			return "", nil
		}
		switch outcome {
		case outcomeOK, outcomeRejected:
			return domain.EventTradingResult, cur.ApplyTradingResult(*res)
		case outcomeRetryable:
			cur.RevertTradingClaim(tradingFailureMessage(nil, callErr))
			return domain.EventTradingReverted, nil
		}
		cur.MarkTradingUnconfirmed()
		return domain.EventTradingUnconfirmed, nil
	})
	if err != nil {
		log.Error().Err(err).Str("outcome", outcome).Msg("trading outcome not persisted; leg stays processing")
		return nil, err
	}

	switch outcome {
	case outcomeOK:
		log.Info().Str("status", string(applied.Status)).Msg("trading leg succeeded")
	case outcomeRejected:
		log.Warn().Str("reason", res.Message).Msg("trading engine rejected")
	case outcomeRetryable:
		log.Warn().Err(callErr).Msg("trading engine unreachable, claim reverted")
		var appErr *apperror.AppError
		if errors.As(callErr, &appErr) {
			return applied, callErr
		}
		return applied, apperror.ErrTradingEngineRetryable(callErr)
	default:
		log.Warn().Err(callErr).Msg("trading call unconfirmed")
	}
	return applied, nil
}
