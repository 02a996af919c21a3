package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports a malformed request shape, detected before any business rule runs.
type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// InvalidStateError reports a request that breaks a delivery invariant.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func NewInvalidStateError(message string) *InvalidStateError {
	return &InvalidStateError{Message: message}
}

func IsInvalidStateError(err error) (*InvalidStateError, bool) {
	var ise *InvalidStateError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// InvoiceUnavailableError means the invoicing collaborator failed in a way its
// resilience policy did not absorb. The cause is for operators only.
type InvoiceUnavailableError struct {
	Message string
	Cause   error
}

func (e *InvoiceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InvoiceUnavailableError) Unwrap() error {
	return e.Cause
}

func NewInvoiceUnavailableError(message string, cause error) *InvoiceUnavailableError {
	return &InvoiceUnavailableError{
		Message: message,
		Cause:   cause,
	}
}

func IsInvoiceUnavailableError(err error) (*InvoiceUnavailableError, bool) {
	var iue *InvoiceUnavailableError
	if errors.As(err, &iue) {
		return iue, true
	}
	return nil, false
}

// InternalError wraps a storage or infrastructure failure. Its cause is
// logged, never returned to API callers.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
