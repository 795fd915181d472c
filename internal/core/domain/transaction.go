package domain

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the direction of a logical transfer.
type Kind string

const (
	KindDeposit  Kind = "DEPOSIT"
	KindWithdraw Kind = "WITHDRAW"
)

// TransactionType distinguishes customer-initiated transfers from compensating refunds.
type TransactionType string

const (
	TransactionTypeNormal TransactionType = "NORMAL"
	TransactionTypeRefund TransactionType = "REFUND"
)

// Status is shared by the overall status and both legs.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusProcessing   Status = "PROCESSING"
	StatusSuccess      Status = "SUCCESS"
	StatusFailed       Status = "FAILED"
	StatusRefund       Status = "REFUND"
	StatusAcknowledged Status = "ACKNOWLEDGED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSuccess, StatusFailed, StatusRefund, StatusAcknowledged:
		return true
	}
	return false
}

const (
	MessageGatewayUnconfirmed = "unconfirmed - verify on provider dashboard"
	MessageTradingUnconfirmed = "unconfirmed - verify on trading platform"
)

// Transaction is one logical transfer across the ledger, the trading engine and a payment gateway.
// Status is derived from TradingStatus and GatewayStatus and only changes through the
// transition methods in transitions.go.
type Transaction struct {
	ID                  uuid.UUID       `json:"id"`
	Kind                Kind            `json:"kind"`
	Type                TransactionType `json:"type"`
	CustomerID          uuid.UUID       `json:"customer_id"`
	TradingAccountID    uuid.UUID       `json:"trading_account_id"`
	PaymentMethodID     *uuid.UUID      `json:"payment_method_id,omitempty"`
	RefundTransactionID *uuid.UUID      `json:"refund_transaction_id,omitempty"`
	Amount              int64           `json:"amount"` // minor units
	Currency            string          `json:"currency"`

	Status        Status `json:"status"`
	TradingStatus Status `json:"trading_status"`
	GatewayStatus Status `json:"gateway_status"`

	GatewayID        *uuid.UUID `json:"gateway_id,omitempty"`
	GatewayOrderID   *string    `json:"gateway_order_id,omitempty"`
	GatewayReference *string    `json:"gateway_reference,omitempty"`
	GatewayMethod    string     `json:"gateway_method,omitempty"`
	InFlight         bool       `json:"in_flight"`
	FailCount        int        `json:"fail_count"`
	Message          *string    `json:"message,omitempty"`

	// Trading engine snapshot, captured once when the trading leg succeeds.
	DealID     *string `json:"deal_id,omitempty"`
	Equity     *int64  `json:"equity,omitempty"`
	Margin     *int64  `json:"margin,omitempty"`
	FreeMargin *int64  `json:"free_margin,omitempty"`

	CreatedBy   string     `json:"created_by"`
	Deleted     bool       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// NewDeposit creates a pending payin-funded deposit.
func NewDeposit(customerID, accountID uuid.UUID, amount int64, currency, createdBy string) *Transaction {
	return newTransaction(KindDeposit, customerID, accountID, amount, currency, createdBy)
}

// NewWithdraw creates a pending withdraw paid out to the given payment method.
func NewWithdraw(customerID, accountID, paymentMethodID uuid.UUID, amount int64, currency, createdBy string) *Transaction {
	tx := newTransaction(KindWithdraw, customerID, accountID, amount, currency, createdBy)
	tx.PaymentMethodID = &paymentMethodID
	return tx
}

// NewRefundDeposit creates the compensating deposit for a withdraw whose payout will not happen.
// Funds never left the platform, so its gateway leg starts out successful.
func NewRefundDeposit(withdraw *Transaction, createdBy string) *Transaction {
	tx := newTransaction(KindDeposit, withdraw.CustomerID, withdraw.TradingAccountID, withdraw.Amount, withdraw.Currency, createdBy)
	tx.Type = TransactionTypeRefund
	tx.GatewayStatus = StatusSuccess
	return tx
}

func newTransaction(kind Kind, customerID, accountID uuid.UUID, amount int64, currency, createdBy string) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:               uuid.New(),
		Kind:             kind,
		Type:             TransactionTypeNormal,
		CustomerID:       customerID,
		TradingAccountID: accountID,
		Amount:           amount,
		Currency:         currency,
		Status:           StatusPending,
		TradingStatus:    StatusPending,
		GatewayStatus:    StatusPending,
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (t *Transaction) IsDeposit() bool  { return t.Kind == KindDeposit }
func (t *Transaction) IsWithdraw() bool { return t.Kind == KindWithdraw }

// IsTerminal returns true once no automatic transition can change the transaction.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusSuccess || t.Status == StatusFailed || t.Status == StatusAcknowledged
}

// OrderID returns the current correlation id, or "" when none is assigned.
func (t *Transaction) OrderID() string {
	if t.GatewayOrderID == nil {
		return ""
	}
	return *t.GatewayOrderID
}

// MessageText returns the operator-visible message, or "".
func (t *Transaction) MessageText() string {
	if t.Message == nil {
		return ""
	}
	return *t.Message
}

func (t *Transaction) setMessage(msg string) {
	if msg == "" {
		t.Message = nil
		return
	}
	t.Message = &msg
}

func (t *Transaction) touch() {
	t.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy, used by stores that hand out snapshots.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.PaymentMethodID = cloneUUID(t.PaymentMethodID)
	c.RefundTransactionID = cloneUUID(t.RefundTransactionID)
	c.GatewayID = cloneUUID(t.GatewayID)
	c.GatewayOrderID = cloneString(t.GatewayOrderID)
	c.GatewayReference = cloneString(t.GatewayReference)
	c.Message = cloneString(t.Message)
	c.DealID = cloneString(t.DealID)
	c.Equity = cloneInt64(t.Equity)
	c.Margin = cloneInt64(t.Margin)
	c.FreeMargin = cloneInt64(t.FreeMargin)
	if t.ProcessedAt != nil {
		p := *t.ProcessedAt
		c.ProcessedAt = &p
	}
	return &c
}

func cloneUUID(p *uuid.UUID) *uuid.UUID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
