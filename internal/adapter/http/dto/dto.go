package dto

import "fundflow/internal/core/domain"

// CreateDepositRequest is the customer request body for a gateway-funded deposit.
type CreateDepositRequest struct {
	TradingAccountID string `json:"trading_account_id" binding:"required,uuid"`
	Amount           int64  `json:"amount" binding:"required,gt=0"`
	Currency         string `json:"currency" binding:"omitempty,len=3"`
}

// CreateWithdrawRequest is the customer request body for a withdraw.
type CreateWithdrawRequest struct {
	TradingAccountID string `json:"trading_account_id" binding:"required,uuid"`
	PaymentMethodID  string `json:"payment_method_id" binding:"required,uuid"`
	Amount           int64  `json:"amount" binding:"required,gt=0"`
	Currency         string `json:"currency" binding:"omitempty,len=3"`
}

// AddPaymentMethodRequest registers a payout destination.
type AddPaymentMethodRequest struct {
	Kind          string `json:"kind" binding:"required,oneof=BANK UPI"`
	HolderName    string `json:"holder_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"omitempty,max=34,safe_id"`
	IFSC          string `json:"ifsc" binding:"omitempty,len=11,safe_id"`
	VPA           string `json:"vpa" binding:"omitempty,max=100"`
}

// ResolveRequest is an admin verdict on a pending withdraw.
type ResolveRequest struct {
	Decision string `json:"decision" binding:"required,decision"`
	Reason   string `json:"reason" binding:"max=500"`
}

// AcknowledgeRequest closes a transaction that needs manual follow-up.
type AcknowledgeRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// BulkRefreshRequest lists transactions to re-query.
type BulkRefreshRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=500,dive,uuid"`
}

// OpenTradingAccountRequest opens an account on the trading engine for a customer.
type OpenTradingAccountRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	Name       string `json:"name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
}

// TransactionResponse is the API view of a transaction.
type TransactionResponse struct {
	ID                  string  `json:"id"`
	Kind                string  `json:"kind"`
	Type                string  `json:"type"`
	CustomerID          string  `json:"customer_id"`
	TradingAccountID    string  `json:"trading_account_id"`
	PaymentMethodID     *string `json:"payment_method_id,omitempty"`
	RefundTransactionID *string `json:"refund_transaction_id,omitempty"`
	Amount              int64   `json:"amount"`
	Currency            string  `json:"currency"`
	Status              string  `json:"status"`
	TradingStatus       string  `json:"trading_status"`
	GatewayStatus       string  `json:"gateway_status"`
	GatewayID           *string `json:"gateway_id,omitempty"`
	OrderID             string  `json:"order_id,omitempty"`
	GatewayReference    *string `json:"gateway_reference,omitempty"`
	GatewayMethod       string  `json:"gateway_method,omitempty"`
	InFlight            bool    `json:"in_flight"`
	FailCount           int     `json:"fail_count"`
	Message             string  `json:"message,omitempty"`
	CreatedBy           string  `json:"created_by"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
	ProcessedAt         *string `json:"processed_at,omitempty"`
}

// DepositResponse carries the new deposit and where the customer completes payment.
type DepositResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	PaymentURL  string              `json:"payment_url,omitempty"`
}

// RefundResponse pairs the withdraw with its compensating deposit.
type RefundResponse struct {
	Withdraw TransactionResponse  `json:"withdraw"`
	Deposit  *TransactionResponse `json:"deposit,omitempty"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// TransactionDetailResponse is a transaction with its gateway attempts and history.
type TransactionDetailResponse struct {
	Transaction TransactionResponse     `json:"transaction"`
	Attempts    []domain.GatewayAttempt `json:"attempts"`
	History     []domain.HistoryEntry   `json:"history"`
}

// PaymentMethodResponse is a payout destination with masked details.
type PaymentMethodResponse struct {
	ID         string                `json:"id"`
	CustomerID string                `json:"customer_id"`
	Details    domain.PaymentDetails `json:"details"`
	CreatedAt  string                `json:"created_at"`
}

// BalanceResponse is a provider account balance in minor units.
type BalanceResponse struct {
	GatewayID string `json:"gateway_id"`
	Balance   int64  `json:"balance"`
}
