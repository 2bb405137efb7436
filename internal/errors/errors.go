package errors

import (
	"errors"
	"fmt"
)

const (
	ErrorFailedToConnectToTheDatabase = "Failed to connect to the database"
	ErrorFailedToRunTheServer         = "Failed to run the server"
	ErrorFailedToShutdownTheServer    = "Failed to shutdown the server"
	ErrorInvalidConfiguration         = "Invalid configuration"
	ErrFailedReadRequestBody          = "Failed to read request body"
	ErrInvalidRequestBody             = "Invalid request body"
	ErrRequestBodyTooLarge            = "Request body too large"
	ErrFailedProcessWebhook           = "Failed to process webhook"
	ErrFailedConfirmDeposit           = "Failed to confirm deposit"
	ErrFailedListDeposits             = "Failed to list deposits"
	ErrFailedGetAccountInfo           = "Failed to get exchange account info"
	ErrFailedNotify                   = "Failed to deliver notification"
	ErrReferenceRequired              = "Reference is required"
)

type BadRequestError struct {
	Message string
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("Bad request: %s", e.Message)
}

// ValidationError reports an input that failed a precondition before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// AuthenticationError is returned when a request could not be proven to come from its
// claimed sender.
type AuthenticationError struct {
	Reason string
}

func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{Reason: reason}
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// ConfigurationError marks a missing or invalid secret/setting. Never retried.
type ConfigurationError struct {
	Message string
}

func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{Message: message}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

type InvalidTransitionError struct {
	TxID string
	From string
	To   string
}

func NewInvalidTransitionError(txid, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{TxID: txid, From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transaction %q cannot move from %s to %s", e.TxID, e.From, e.To)
}

type PayloadTooLargeError struct {
	Limit int64
}

func NewPayloadTooLargeError(limit int64) *PayloadTooLargeError {
	return &PayloadTooLargeError{Limit: limit}
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

type TransactionDuplicateError struct{}

func NewTransactionDuplicateError() *TransactionDuplicateError {
	return &TransactionDuplicateError{}
}

func (e *TransactionDuplicateError) Error() string {
	return "transaction already exists"
}

// UpstreamError wraps a failed call to the exchange or payment provider.
type UpstreamError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Retryable  bool
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("upstream %s failed", e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Code != "" {
		msg += fmt.Sprintf(", code %s", e.Code)
	}
	if e.Message != "" {
		msg += fmt.Sprintf(", %s", e.Message)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
