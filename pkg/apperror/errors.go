package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and retry decisions.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindPrecondition     Kind = "precondition"
	KindGatewayRetryable Kind = "gateway_retryable"
	KindGatewayAmbiguous Kind = "gateway_ambiguous"
	KindUnhandledStatus  Kind = "unhandled_status"
	KindSecurity         Kind = "security"
	KindInternal         Kind = "internal"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Kind       Kind   `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(kind Kind, code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Kind:       kind,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(kind Kind, code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Kind:       kind,
		Err:        err,
	}
}

// KindOf returns the Kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ---- Request validation (REQ) ----

// Validation returns a REQ_001 validation error.
func Validation(message string) *AppError {
	return New(KindValidation, "REQ_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New(KindValidation, "REQ_002", "Invalid amount", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(KindNotFound, "REQ_404", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Transaction state machine (PAY) ----

// ErrPrecondition reports an operation attempted in the wrong state.
func ErrPrecondition(message string) *AppError {
	return New(KindPrecondition, "PAY_001", message, http.StatusConflict)
}

func ErrAlreadyInFlight() *AppError {
	return New(KindPrecondition, "PAY_002", "Gateway leg already in flight", http.StatusConflict)
}

func ErrSuccessIsFinal() *AppError {
	return New(KindPrecondition, "PAY_003", "Transaction already succeeded", http.StatusConflict)
}

func ErrThresholdExceeded() *AppError {
	return New(KindPrecondition, "PAY_004", "Amount exceeds gateway threshold", http.StatusUnprocessableEntity)
}

func ErrNoEligibleMethod() *AppError {
	return New(KindPrecondition, "PAY_005", "No enabled payment method accepts this amount", http.StatusUnprocessableEntity)
}

func ErrRefundNotAllowed(message string) *AppError {
	return New(KindPrecondition, "PAY_006", message, http.StatusConflict)
}

func ErrRefundCreditFailed(err error) *AppError {
	return Wrap(KindPrecondition, "PAY_007", "Refund credit rejected by trading engine", http.StatusBadGateway, err)
}

func ErrStatusChangedRetry() *AppError {
	return New(KindPrecondition, "PAY_008", "Status changed, retry", http.StatusConflict)
}

func ErrIDExhausted() *AppError {
	return New(KindInternal, "PAY_009", "Could not allocate a unique correlation id", http.StatusServiceUnavailable)
}

// ---- Payment gateways (GW) ----

func ErrGatewayRetryable(err error) *AppError {
	return Wrap(KindGatewayRetryable, "GW_001", "Payment gateway unavailable", http.StatusBadGateway, err)
}

func ErrGatewayAmbiguous(err error) *AppError {
	return Wrap(KindGatewayAmbiguous, "GW_002", "Unconfirmed - verify on provider dashboard", http.StatusAccepted, err)
}

func ErrUnhandledStatus(err error) *AppError {
	return Wrap(KindUnhandledStatus, "GW_003", "Provider returned an unhandled status", http.StatusBadGateway, err)
}

func ErrInsufficientGatewayBalance() *AppError {
	return New(KindPrecondition, "GW_004", "Insufficient balance at payment gateway", http.StatusUnprocessableEntity)
}

func ErrProviderNotSupported(provider string) *AppError {
	return New(KindValidation, "GW_005", fmt.Sprintf("Provider %q is not supported", provider), http.StatusBadRequest)
}

func ErrGatewayDisabled() *AppError {
	return New(KindPrecondition, "GW_006", "Payment gateway is disabled", http.StatusUnprocessableEntity)
}

// ---- Trading engine (TE) ----

func ErrTradingEngineRetryable(err error) *AppError {
	return Wrap(KindGatewayRetryable, "TE_001", "Trading engine unavailable", http.StatusBadGateway, err)
}

func ErrTradingEngineAmbiguous(err error) *AppError {
	return Wrap(KindGatewayAmbiguous, "TE_002", "Unconfirmed - verify on trading platform", http.StatusAccepted, err)
}

func ErrTradingEngineRejected(message string) *AppError {
	return New(KindPrecondition, "TE_003", message, http.StatusUnprocessableEntity)
}

// ---- Security (SEC) ----

func ErrInvalidSignature() *AppError {
	return New(KindSecurity, "SEC_001", "Invalid signature", http.StatusBadRequest)
}

func ErrInvalidToken() *AppError {
	return New(KindSecurity, "SEC_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New(KindSecurity, "SEC_003", "Insufficient role", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(KindValidation, "RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(KindInternal, "SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap(KindInternal, "SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(KindInternal, "SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
