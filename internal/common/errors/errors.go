package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a failure class of the wallet core.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	// Local input gates; these never reach the ledger node
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidAddress ErrorCode = "INVALID_ADDRESS"

	// Wallet lifecycle
	ErrCodeNotConnected     ErrorCode = "NOT_CONNECTED"
	ErrCodeAlreadyConnected ErrorCode = "ALREADY_CONNECTED"

	// Submission
	ErrCodeSubmissionInProgress ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeInsufficientBalance  ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeConfirmationTimeout  ErrorCode = "CONFIRMATION_TIMEOUT"
	ErrCodeCancelled            ErrorCode = "CANCELLED"
	ErrCodeTransactionRejected  ErrorCode = "TRANSACTION_REJECTED"

	// Ledger node / storage
	ErrCodeLedgerUnavailable ErrorCode = "LEDGER_UNAVAILABLE"
	ErrCodeStorageError      ErrorCode = "STORAGE_ERROR"

	// Rewards
	ErrCodeRewardMintFailure ErrorCode = "REWARD_MINT_FAILURE"
)

// AppError is the typed error carried across the wallet core.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsInput reports whether the error was rejected locally before any
// ledger interaction.
func (e *AppError) IsInput() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeInvalidInput ||
		e.Code == ErrCodeInvalidAddress ||
		e.Code == ErrCodeBadRequest
}

// IsRetryable reports whether the same call may succeed later without
// any change on the caller's side.
func (e *AppError) IsRetryable() bool {
	return e.Code == ErrCodeLedgerUnavailable ||
		e.Code == ErrCodeSubmissionInProgress ||
		e.Code == ErrCodeRewardMintFailure
}

// WithDetail attaches a named value to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Constructors for the common failure paths

// NewInvalidAddressError rejects a transfer destination before it is used.
func NewInvalidAddressError(reason string) *AppError {
	return New(ErrCodeInvalidAddress, fmt.Sprintf("Invalid address: %s", reason)).
		WithDetail("reason", reason)
}

// NewValidationError rejects a malformed field of a request.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewNotConnectedError is returned when an operation requires an active account.
func NewNotConnectedError() *AppError {
	return New(ErrCodeNotConnected, "No wallet is connected")
}

// NewSubmissionInProgressError guards against a double submit.
func NewSubmissionInProgressError() *AppError {
	return New(ErrCodeSubmissionInProgress, "A payment submission is already in flight")
}

// NewInsufficientBalanceError is raised before broadcast when the spend
// exceeds the known balance.
func NewInsufficientBalanceError(required, available string) *AppError {
	return New(ErrCodeInsufficientBalance, "Insufficient balance for payment").
		WithDetail("required", required).
		WithDetail("available", available)
}

// NewLedgerUnavailableError wraps a ledger node transport failure.
func NewLedgerUnavailableError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeLedgerUnavailable, fmt.Sprintf("Ledger node unavailable: %s", operation)).
		WithDetail("operation", operation)
}

// NewConfirmationTimeoutError reports an unknown transaction outcome; the
// transaction may still confirm later.
func NewConfirmationTimeoutError(txID string) *AppError {
	return New(ErrCodeConfirmationTimeout, fmt.Sprintf("Transaction %s not confirmed before deadline", txID)).
		WithDetail("tx_id", txID)
}

// NewCancelledError reports a submission aborted by disconnect.
func NewCancelledError(txID string) *AppError {
	return New(ErrCodeCancelled, "Submission cancelled").
		WithDetail("tx_id", txID)
}

// NewStorageError wraps a secure-storage failure.
func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageError, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewRewardMintFailure wraps a failed reward mint; never fatal for the
// payment flow.
func NewRewardMintFailure(milestone string, err error) *AppError {
	return Wrap(err, ErrCodeRewardMintFailure, fmt.Sprintf("Reward mint failed for milestone '%s'", milestone)).
		WithDetail("milestone", milestone)
}

// IsAppError checks whether err is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError casts err to AppError.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}

// CodeOf extracts the code from err, defaulting to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
