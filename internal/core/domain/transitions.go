package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTransition is returned when an operation is attempted in the wrong state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrSuccessIsFinal guards the one-way success state.
	ErrSuccessIsFinal = errors.New("transaction already succeeded")
	// ErrAlreadyInFlight is returned when a leg is already dispatched or holds a correlation id.
	ErrAlreadyInFlight = errors.New("leg already in flight")
	// ErrStatusChangedRetry is returned when a provider reports pending for a leg that has moved on.
	ErrStatusChangedRetry = errors.New("status changed, retry")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// TradingResult is the outcome of a trading engine deposit or withdraw call.
type TradingResult struct {
	OK         bool
	DealID     string
	Equity     int64
	Margin     int64
	FreeMargin int64
	Message    string
}

// ---- Trading leg ----

// ClaimTrading marks the trading leg as dispatched. A withdraw debits before anything else
// happens; a deposit credits only after the gateway collected the funds.
func (t *Transaction) ClaimTrading() error {
	if t.Status == StatusSuccess {
		return ErrSuccessIsFinal
	}
	if t.TradingStatus == StatusProcessing {
		return ErrAlreadyInFlight
	}
	switch t.Kind {
	case KindWithdraw:
		if t.Status != StatusPending || t.TradingStatus != StatusPending || t.GatewayStatus != StatusPending {
			return invalid("withdraw debit requires all legs pending (status=%s trading=%s gateway=%s)",
				t.Status, t.TradingStatus, t.GatewayStatus)
		}
	case KindDeposit:
		if t.GatewayStatus != StatusSuccess {
			return invalid("deposit credit requires gateway success (gateway=%s)", t.GatewayStatus)
		}
		if t.TradingStatus != StatusPending && t.TradingStatus != StatusFailed {
			return invalid("deposit credit requires trading pending or failed (trading=%s)", t.TradingStatus)
		}
		if t.Status == StatusFailed || t.Status == StatusAcknowledged {
			return invalid("deposit is %s", t.Status)
		}
	default:
		return invalid("unknown kind %q", t.Kind)
	}
	t.TradingStatus = StatusProcessing
	t.Status = StatusProcessing
	t.setMessage("")
	t.touch()
	return nil
}

// ApplyTradingResult records the trading engine's definitive answer for a claimed leg.
func (t *Transaction) ApplyTradingResult(res TradingResult) error {
	if t.TradingStatus != StatusProcessing {
		return invalid("trading leg not dispatched (trading=%s)", t.TradingStatus)
	}
	now := time.Now().UTC()
	switch {
	case t.IsWithdraw() && res.OK:
		t.Status = StatusProcessing
		t.TradingStatus = StatusSuccess
		t.GatewayStatus = StatusPending
		t.captureSnapshot(res)
		t.setMessage("")
	case t.IsWithdraw():
		t.Status = StatusFailed
		t.TradingStatus = StatusFailed
		t.GatewayStatus = StatusFailed
		t.setMessage(res.Message)
		t.ProcessedAt = &now
	case res.OK:
		t.Status = StatusSuccess
		t.TradingStatus = StatusSuccess
		t.captureSnapshot(res)
		t.setMessage("")
		t.ProcessedAt = &now
	default:
		// Money collected but not credited. Stays visible for manual follow-up.
		t.Status = StatusProcessing
		t.TradingStatus = StatusFailed
		msg := res.Message
		if msg == "" {
			msg = "trading engine rejected credit"
		}
		t.setMessage(msg)
	}
	t.touch()
	return nil
}

// MarkTradingUnconfirmed leaves the trading leg processing after an ambiguous call.
func (t *Transaction) MarkTradingUnconfirmed() {
	t.setMessage(MessageTradingUnconfirmed)
	t.touch()
}

// RevertTradingClaim undoes ClaimTrading after a call that never reached the trading engine.
func (t *Transaction) RevertTradingClaim(msg string) {
	if t.IsWithdraw() {
		t.TradingStatus = StatusPending
		t.Status = StatusPending
	} else {
		t.TradingStatus = StatusFailed
		t.Status = StatusProcessing
	}
	t.setMessage(msg)
	t.touch()
}

func (t *Transaction) captureSnapshot(res TradingResult) {
	if t.DealID != nil {
		return
	}
	deal := res.DealID
	equity, margin, free := res.Equity, res.Margin, res.FreeMargin
	t.DealID = &deal
	t.Equity = &equity
	t.Margin = &margin
	t.FreeMargin = &free
}

// ---- Gateway leg ----

// CanDispatchGateway is the duplicate-dispatch guard.
func (t *Transaction) CanDispatchGateway() error {
	if t.Status == StatusSuccess {
		return ErrSuccessIsFinal
	}
	if t.InFlight || t.GatewayOrderID != nil {
		return ErrAlreadyInFlight
	}
	if t.GatewayStatus != StatusPending {
		return invalid("gateway leg is %s", t.GatewayStatus)
	}
	if t.Status == StatusFailed || t.Status == StatusAcknowledged {
		return invalid("transaction is %s", t.Status)
	}
	if t.IsWithdraw() && t.TradingStatus != StatusSuccess {
		return invalid("payout requires a completed trading debit (trading=%s)", t.TradingStatus)
	}
	if t.IsDeposit() && (t.Type == TransactionTypeRefund || t.TradingStatus != StatusPending) {
		return invalid("deposit is not awaiting collection")
	}
	return nil
}

// ClaimGateway reserves the gateway leg under a fresh correlation id before the provider is called.
func (t *Transaction) ClaimGateway(gatewayID uuid.UUID, orderID, method string) error {
	if err := t.CanDispatchGateway(); err != nil {
		return err
	}
	t.GatewayID = &gatewayID
	t.GatewayOrderID = &orderID
	t.GatewayMethod = method
	t.InFlight = true
	t.touch()
	return nil
}

// MarkGatewayAccepted records a provider acceptance for the claimed leg.
func (t *Transaction) MarkGatewayAccepted(reference string) {
	t.Status = StatusProcessing
	t.GatewayStatus = StatusProcessing
	t.InFlight = true
	if reference != "" {
		t.GatewayReference = &reference
	}
	t.setMessage("")
	t.touch()
}

// MarkGatewayUnconfirmed keeps the claim after an error raised once the request was on the wire.
func (t *Transaction) MarkGatewayUnconfirmed() {
	t.Status = StatusProcessing
	t.GatewayStatus = StatusProcessing
	t.InFlight = true
	t.setMessage(MessageGatewayUnconfirmed)
	t.touch()
}

// ReleaseGatewayClaim clears the dispatch guard so a later retry can run.
// Provider rejections count as failures; pre-checks such as balance do not.
func (t *Transaction) ReleaseGatewayClaim(msg string, countFailure bool) {
	t.InFlight = false
	t.GatewayOrderID = nil
	if countFailure {
		t.FailCount++
	}
	t.setMessage(msg)
	t.touch()
}

// FailCollection fails a deposit whose payin the provider refused outright.
func (t *Transaction) FailCollection(msg string) {
	now := time.Now().UTC()
	t.Status = StatusFailed
	t.GatewayStatus = StatusFailed
	t.InFlight = false
	t.FailCount++
	t.ProcessedAt = &now
	t.setMessage(msg)
	t.touch()
}

// ApplyGatewayStatus applies a canonical provider status to the gateway leg.
// It reports whether anything changed. A deposit that reaches gateway success is
// left for the caller to credit on the trading engine.
func (t *Transaction) ApplyGatewayStatus(remote Status, reference string) (bool, error) {
	if t.Status == StatusAcknowledged {
		return false, invalid("transaction acknowledged by admin")
	}
	if t.Status == StatusSuccess {
		if remote == StatusFailed || remote == StatusRefund {
			return false, ErrSuccessIsFinal
		}
		return false, nil
	}
	if t.Status == StatusFailed {
		if remote == StatusSuccess {
			return false, invalid("provider reports success for a failed transaction")
		}
		return false, nil
	}

	switch remote {
	case StatusPending:
		if t.GatewayStatus == StatusPending || t.GatewayStatus == StatusProcessing {
			return false, nil
		}
		return false, ErrStatusChangedRetry

	case StatusSuccess:
		if t.GatewayStatus == StatusSuccess {
			return false, nil
		}
		if t.GatewayOrderID == nil {
			return false, invalid("no gateway order to settle")
		}
		if reference != "" {
			t.GatewayReference = &reference
		}
		t.GatewayStatus = StatusSuccess
		t.InFlight = false
		t.setMessage("")
		if t.IsWithdraw() {
			now := time.Now().UTC()
			t.Status = StatusSuccess
			t.ProcessedAt = &now
		} else {
			t.Status = StatusProcessing
		}

	case StatusFailed, StatusRefund:
		// Collected money stays collected while the credit is retried or confirmed.
		if t.GatewayStatus == StatusSuccess {
			return false, ErrSuccessIsFinal
		}
		if t.GatewayOrderID == nil && !t.InFlight {
			// Already released by an earlier report for this order.
			return false, nil
		}
		if t.IsWithdraw() {
			t.Status = StatusProcessing
			if remote == StatusRefund {
				t.GatewayStatus = StatusRefund
			} else {
				t.GatewayStatus = StatusPending
			}
			t.InFlight = false
			t.GatewayOrderID = nil
			t.FailCount++
			t.setMessage(fmt.Sprintf("payout %s by provider", lower(remote)))
		} else {
			now := time.Now().UTC()
			t.Status = StatusFailed
			t.GatewayStatus = remote
			t.InFlight = false
			t.ProcessedAt = &now
			t.setMessage(fmt.Sprintf("collection %s by provider", lower(remote)))
		}

	default:
		return false, invalid("unknown canonical status %q", remote)
	}
	t.touch()
	return true, nil
}

// ---- Admin operations ----

// CanResolve reports whether an admin may approve or reject the withdraw.
func (t *Transaction) CanResolve() error {
	if !t.IsWithdraw() {
		return invalid("only withdraws are resolved")
	}
	if t.Status != StatusPending || t.TradingStatus != StatusPending || t.GatewayStatus != StatusPending {
		return invalid("withdraw already resolved (status=%s trading=%s gateway=%s)",
			t.Status, t.TradingStatus, t.GatewayStatus)
	}
	return nil
}

// Reject fails every leg with the admin-supplied reason.
func (t *Transaction) Reject(reason string) error {
	if err := t.CanResolve(); err != nil {
		return err
	}
	now := time.Now().UTC()
	t.Status = StatusFailed
	t.TradingStatus = StatusFailed
	t.GatewayStatus = StatusFailed
	t.ProcessedAt = &now
	t.setMessage(reason)
	t.touch()
	return nil
}

// CanRefund reports whether a compensating deposit may be created for this withdraw.
func (t *Transaction) CanRefund() error {
	if !t.IsWithdraw() || t.Type != TransactionTypeNormal {
		return invalid("only normal withdraws are refunded")
	}
	if t.RefundTransactionID != nil {
		return invalid("withdraw already refunded")
	}
	if t.Status == StatusSuccess {
		return ErrSuccessIsFinal
	}
	if t.GatewayStatus == StatusProcessing || t.GatewayStatus == StatusSuccess || t.InFlight {
		return invalid("payout may still settle (gateway=%s)", t.GatewayStatus)
	}
	if t.TradingStatus != StatusSuccess {
		return invalid("nothing was debited (trading=%s)", t.TradingStatus)
	}
	if t.Status == StatusAcknowledged {
		return invalid("transaction acknowledged by admin")
	}
	return nil
}

// LinkRefund records the compensating deposit before its credit is attempted.
func (t *Transaction) LinkRefund(depositID uuid.UUID) error {
	if err := t.CanRefund(); err != nil {
		return err
	}
	t.RefundTransactionID = &depositID
	t.touch()
	return nil
}

// CompleteRefund fails the withdraw once its refund deposit is credited.
func (t *Transaction) CompleteRefund() {
	now := time.Now().UTC()
	t.Status = StatusFailed
	t.ProcessedAt = &now
	t.setMessage("refunded to trading account")
	t.touch()
}

// UnlinkRefund clears the link after the refund credit was rejected.
func (t *Transaction) UnlinkRefund(msg string) {
	t.RefundTransactionID = nil
	t.setMessage(msg)
	t.touch()
}

// Acknowledge closes a processing transaction that needs manual follow-up.
func (t *Transaction) Acknowledge(reason string) error {
	if t.Status != StatusProcessing {
		return invalid("only processing transactions are acknowledged (status=%s)", t.Status)
	}
	now := time.Now().UTC()
	t.Status = StatusAcknowledged
	t.ProcessedAt = &now
	t.setMessage(reason)
	t.touch()
	return nil
}

func lower(s Status) string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusRefund:
		return "refunded"
	}
	return string(s)
}
