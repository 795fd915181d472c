package gateway

import (
	"errors"
	"fmt"

	"fundflow/pkg/apperror"
)

var (
	ErrProviderNotFound    = errors.New("provider not registered")
	ErrPayinNotSupported   = errors.New("provider does not support payin")
	ErrInsufficientBalance = errors.New("insufficient gateway balance")
	ErrAuthExhausted       = errors.New("authentication retries exhausted")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrMissingCredential   = errors.New("missing credential")
	ErrMalformedWebhook    = errors.New("malformed webhook")
)

// Error is a transport or provider failure. Ambiguous means the request reached the
// provider and its effect is unknown; otherwise it is safe to retry.
type Error struct {
	Provider   string
	Op         string
	Ambiguous  bool
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	kind := "retryable"
	if e.Ambiguous {
		kind = "ambiguous"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s (%s, http %d): %v", e.Provider, e.Op, kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s (%s): %v", e.Provider, e.Op, kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the request never reached the provider.
func (e *Error) Retryable() bool { return !e.Ambiguous }

// UnhandledStatusError is raised for a raw provider status with no mapping.
type UnhandledStatusError struct {
	Provider string
	Raw      string
}

func (e *UnhandledStatusError) Error() string {
	return fmt.Sprintf("%s: unhandled provider status %q", e.Provider, e.Raw)
}

// IsAmbiguous reports whether err leaves a money-moving request's outcome unknown.
func IsAmbiguous(err error) bool {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Ambiguous
	}
	var unhandled *UnhandledStatusError
	return errors.As(err, &unhandled)
}

// AsAppError maps gateway errors onto the application error taxonomy.
func AsAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	var unhandled *UnhandledStatusError
	var gwErr *Error
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return apperror.ErrInsufficientGatewayBalance()
	case errors.Is(err, ErrProviderNotFound):
		return apperror.ErrProviderNotSupported(err.Error())
	case errors.Is(err, ErrPayinNotSupported):
		return apperror.ErrPrecondition(err.Error())
	case errors.Is(err, ErrInvalidSignature):
		return apperror.ErrInvalidSignature()
	case errors.Is(err, ErrMalformedWebhook):
		return apperror.Validation(err.Error())
	case errors.As(err, &unhandled):
		return apperror.ErrUnhandledStatus(err)
	case errors.As(err, &gwErr):
		if gwErr.Ambiguous {
			return apperror.ErrGatewayAmbiguous(err)
		}
		return apperror.ErrGatewayRetryable(err)
	}
	return apperror.InternalError(err)
}
