package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", time.Second, zap.NewNop())
}

func TestHTTPClient_SendInvoice_Success(t *testing.T) {
	deliveryID := uuid.New()
	invoiceID := uuid.New()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/invoices", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, deliveryID.String(), body["deliveryId"])
		assert.Equal(t, "Test Street 1", body["address"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + invoiceID.String() + `","sent":true}`))
	})

	receipt, err := client.SendInvoice(context.Background(), deliveryID, "Test Street 1")
	require.NoError(t, err)
	assert.Equal(t, invoiceID, receipt.ID)
	assert.True(t, receipt.Sent)
}

func TestHTTPClient_SendInvoice_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"whitespace body", "  \n"},
		{"invalid json", "{not json"},
		{"missing id", `{"sent":true}`},
		{"nil id", `{"id":"00000000-0000-0000-0000-000000000000","sent":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			receipt, err := client.SendInvoice(context.Background(), uuid.New(), "addr")
			assert.Nil(t, receipt)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.False(t, Transient(err))
		})
	}
}

func TestHTTPClient_SendInvoice_StatusErrors(t *testing.T) {
	tests := []struct {
		code      int
		transient bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", tt.code)
			})

			_, err := client.SendInvoice(context.Background(), uuid.New(), "addr")

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, "boom", se.Body)
			assert.Equal(t, tt.transient, Transient(err))
		})
	}
}

func TestHTTPClient_SendInvoice_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewHTTPClient(url, time.Second, zap.NewNop())

	_, err := client.SendInvoice(context.Background(), uuid.New(), "addr")
	require.Error(t, err)
	assert.True(t, Transient(err))
}

func TestTransient_ContextCanceled(t *testing.T) {
	assert.False(t, Transient(context.Canceled))
	assert.False(t, Transient(errors.New("plain")))
}
