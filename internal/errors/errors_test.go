package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "Delivery not found: 42"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading deliveries: %w", NewNotFoundError("missing"))

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "missing", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestInvalidStateError(t *testing.T) {
	err := NewInvalidStateError("IN_PROGRESS deliveries must not have finishedAt")

	ise, ok := IsInvalidStateError(err)
	assert.True(t, ok)
	assert.Equal(t, "IN_PROGRESS deliveries must not have finishedAt", ise.Error())

	_, ok = IsNotFoundError(err)
	assert.False(t, ok)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "vehicleId", Message: "Vehicle ID must not be blank"},
		{Field: "address", Message: "Address must not be blank"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, details, ve.Details)
}

func TestInvoiceUnavailableError(t *testing.T) {
	cause := errors.New("empty response from invoice service")
	err := NewInvoiceUnavailableError("sending invoice", cause)

	assert.Contains(t, err.Error(), "sending invoice")
	assert.Contains(t, err.Error(), "empty response")
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("batch: %w", err)
	iue, ok := IsInvoiceUnavailableError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, cause, iue.Cause)
}

func TestInvoiceUnavailableError_NilCause(t *testing.T) {
	err := NewInvoiceUnavailableError("unavailable", nil)

	assert.Equal(t, "unavailable", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestInternalError_IsInternalError(t *testing.T) {
	err := fmt.Errorf("saving delivery: %w", NewInternalError("inserting delivery", errors.New("deadlock")))

	ie, ok := IsInternalError(err)
	assert.True(t, ok)
	assert.Equal(t, "inserting delivery", ie.Message)

	_, ok = IsInternalError(NewNotFoundError("missing"))
	assert.False(t, ok)
}
