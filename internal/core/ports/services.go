package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"net/http"
	"time"

	"fundflow/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption of gateway credentials.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// AccountCipher is the deterministic cipher for account details. Equal plaintexts
// produce equal ciphertexts, which is what makes exact-match search possible.
type AccountCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Token roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string, role string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
	Role    string
}

// WebhookDeduper guards against replayed provider callbacks.
type WebhookDeduper interface {
	// CheckAndSet returns true if key is new, false if it was seen within ttl.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so the callback can be processed again.
	Release(ctx context.Context, key string) error
}

// TradingEngine is the external trading-account ledger.
// Errors carry apperror kinds: gateway_retryable when the request never left,
// gateway_ambiguous when it may have been applied.
type TradingEngine interface {
	Deposit(ctx context.Context, login string, amount int64, comment string) (*domain.TradingResult, error)
	Withdraw(ctx context.Context, login string, amount int64, comment string) (*domain.TradingResult, error)
	Register(ctx context.Context, req TradingRegistration) (*TradingAccountCredentials, error)
}

// TradingRegistration is the input for opening a trading account.
type TradingRegistration struct {
	Name  string
	Email string
	Group string
}

// TradingAccountCredentials is returned once when a trading account is opened.
type TradingAccountCredentials struct {
	Login          string `json:"login"`
	Password       string `json:"password"`
	InvestPassword string `json:"invest_password"`
}

// --- Service Ports (Business Logic) ---

// ReconciliationService drives the cross-system transaction state machine.
type ReconciliationService interface {
	CreateDeposit(ctx context.Context, req CreateDepositRequest) (*DepositResult, error)
	CreateWithdraw(ctx context.Context, req CreateWithdrawRequest) (*domain.Transaction, error)
	DispatchToTradingEngine(ctx context.Context, id uuid.UUID, actor string) (*domain.Transaction, error)
	DispatchToGateway(ctx context.Context, id uuid.UUID, actor string) (*domain.Transaction, error)
	Resolve(ctx context.Context, req ResolveRequest) (*domain.Transaction, error)
	Retry(ctx context.Context, id uuid.UUID, actor string) (*domain.Transaction, error)
	Refund(ctx context.Context, id uuid.UUID, actor string) (*RefundResult, error)
	RetryCredit(ctx context.Context, id uuid.UUID, actor string) (*domain.Transaction, error)
	Acknowledge(ctx context.Context, id uuid.UUID, reason, actor string) (*domain.Transaction, error)
}

// CreateDepositRequest holds validated input for a payin-funded deposit.
type CreateDepositRequest struct {
	CustomerID       uuid.UUID
	TradingAccountID uuid.UUID
	Amount           int64
	Currency         string
	Actor            string
}

// DepositResult carries the created deposit and where the customer pays.
type DepositResult struct {
	Transaction *domain.Transaction
	PaymentURL  string
}

// CreateWithdrawRequest holds validated input for a withdraw.
type CreateWithdrawRequest struct {
	CustomerID       uuid.UUID
	TradingAccountID uuid.UUID
	PaymentMethodID  uuid.UUID
	Amount           int64
	Currency         string
	Actor            string
}

// Decision is an admin verdict on a pending withdraw.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ResolveRequest holds an admin resolve action.
type ResolveRequest struct {
	ID       uuid.UUID
	Decision Decision
	Reason   string
	Actor    string
}

// RefundResult pairs the failed withdraw with its compensating deposit.
type RefundResult struct {
	Withdraw *domain.Transaction
	Deposit  *domain.Transaction
}

// StatusService re-queries providers and applies their answer.
type StatusService interface {
	// RefreshTransaction re-reads the current attempt's status and applies it to the transaction.
	RefreshTransaction(ctx context.Context, id uuid.UUID, actor string) (*RefreshResult, error)
	// RefreshAttempt updates only the attempt row.
	RefreshAttempt(ctx context.Context, attemptID uuid.UUID, actor string) (*RefreshResult, error)
	BulkRefresh(ctx context.Context, ids []uuid.UUID, actor string) []RefreshResult
}

// RefreshOutcome summarises what a status refresh did.
type RefreshOutcome string

const (
	OutcomeApplied       RefreshOutcome = "applied"
	OutcomeUnchanged     RefreshOutcome = "unchanged"
	OutcomeStatusChanged RefreshOutcome = "status_changed_retry"
	OutcomeAttemptOnly   RefreshOutcome = "attempt_only"
	OutcomeError         RefreshOutcome = "error"
)

// RefreshResult is the per-transaction result of a refresh.
type RefreshResult struct {
	TransactionID uuid.UUID           `json:"transaction_id"`
	AttemptID     uuid.UUID           `json:"attempt_id,omitempty"`
	Outcome       RefreshOutcome      `json:"outcome"`
	RemoteStatus  domain.Status       `json:"remote_status,omitempty"`
	Transaction   *domain.Transaction `json:"transaction,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// WebhookService authenticates provider callbacks and reconciles on them.
type WebhookService interface {
	Handle(ctx context.Context, provider string, header http.Header, body []byte) (*WebhookResult, error)
}

// WebhookResult is what gets acknowledged back to the provider.
type WebhookResult struct {
	Status  string // ok, ignored
	Message string
}

// QueryService serves admin reads.
type QueryService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetTransactionDetail(ctx context.Context, id uuid.UUID) (*TransactionDetail, error)
	GatewayBalance(ctx context.Context, gatewayID uuid.UUID) (int64, error)
}

// TransactionDetail is a transaction with its attempts and history.
type TransactionDetail struct {
	Transaction *domain.Transaction     `json:"transaction"`
	Attempts    []domain.GatewayAttempt `json:"attempts"`
	History     []domain.HistoryEntry   `json:"history"`
}

// AccountService manages trading accounts and payout destinations.
type AccountService interface {
	OpenTradingAccount(ctx context.Context, req OpenAccountRequest) (*OpenAccountResult, error)
	AddPaymentMethod(ctx context.Context, customerID uuid.UUID, details domain.PaymentDetails) (*domain.PaymentMethod, error)
	PaymentDetails(ctx context.Context, id uuid.UUID) (*domain.PaymentDetails, error)
	SearchByAccountNumber(ctx context.Context, accountNumber string) ([]domain.PaymentMethod, error)
}

// OpenAccountRequest holds input for opening a trading account.
type OpenAccountRequest struct {
	CustomerID uuid.UUID
	Name       string
	Email      string
}

// OpenAccountResult is shown once.
type OpenAccountResult struct {
	Account     *domain.TradingAccount     `json:"account"`
	Credentials *TradingAccountCredentials `json:"credentials"`
}

// AuditService records admin actions.
type AuditService interface {
	Log(ctx context.Context, entry AuditEntry)
}

// AuditEntry is the input for an audit record.
type AuditEntry struct {
	ActorID      string
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Details      map[string]interface{}
	IPAddress    string
}
