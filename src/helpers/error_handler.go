package helpers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"trading-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct wrappers for errors.As checks
type ConfigurationError struct{ DashboardError }
type StorageError struct{ DashboardError }
type BrokerError struct{ DashboardError }

// -----------------------------------------------------------------------------

// ValidationError reports the first record of a batch that does not match the
// record shape. Index is -1 when the payload itself is malformed.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid payload: %s", e.Reason)
	}
	return fmt.Sprintf("invalid record %d: field %q %s", e.Index, e.Field, e.Reason)
}

// -----------------------------------------------------------------------------

// TransportReason tells a normal stream close from a failure.
type TransportReason string

const (
	ReasonClosed TransportReason = "closed"
	ReasonError  TransportReason = "error"
)

// TransportError is a fetch or stream failure.
type TransportError struct {
	Operation string
	Reason    TransportReason
	Cause     error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Operation, e.Reason)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransport reports whether err carries a TransportError.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger                 *logger.Logger
	ErrorCount             int
	MaxErrorsBeforeRestart int
	BaseDelay              time.Duration
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger:                 log,
		ErrorCount:             0,
		MaxErrorsBeforeRestart: 10,
		BaseDelay:              time.Second,
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.ErrorCount = 0
}

// -----------------------------------------------------------------------------

// ExecuteWithRetry runs fn up to maxRetries times with exponential backoff and
// wraps the final failure according to the operation name.
func ExecuteWithRetry[T any](e *ErrorHandler, operation string, maxRetries int, fn func() (T, error)) (T, error) {
	var zero T
	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			if e.ErrorCount > 0 {
				e.ErrorCount--
			}
			return res, nil
		}

		if attempt == maxRetries-1 {
			e.ErrorCount++
			e.Logger.Error("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)

			base := DashboardError{Message: fmt.Sprintf("%s failed", operation), Cause: err}
			lowerOp := strings.ToLower(operation)
			switch {
			case strings.Contains(lowerOp, "broker") || strings.Contains(lowerOp, "fetch"):
				return zero, &BrokerError{base}
			case strings.Contains(lowerOp, "database") || strings.Contains(lowerOp, "save"):
				return zero, &StorageError{base}
			default:
				return zero, &base
			}
		}

		e.Logger.Warning("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)
		time.Sleep(e.BaseDelay * time.Duration(1<<attempt))
	}

	return zero, &DashboardError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries)}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
