package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/internal/domain"
)

var ErrMalformedResponse = errors.New("malformed response from invoice service")

// StatusError is a non-2xx reply from the invoice service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invoice service returned %d: %s", e.Code, e.Body)
}

// Transient reports whether retrying the call may succeed.
func Transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

type sendInvoiceRequest struct {
	DeliveryID uuid.UUID `json:"deliveryId"`
	Address    string    `json:"address"`
}

type sendInvoiceResponse struct {
	ID   *uuid.UUID `json:"id"`
	Sent bool       `json:"sent"`
}

// HTTPClient performs a single POST {base}/v1/invoices call, without retries.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "invoice_client")),
	}
}

func (c *HTTPClient) SendInvoice(ctx context.Context, deliveryID uuid.UUID, address string) (*domain.InvoiceReceipt, error) {
	body, err := json.Marshal(sendInvoiceRequest{DeliveryID: deliveryID, Address: address})
	if err != nil {
		return nil, fmt.Errorf("encoding invoice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("sending invoice", zap.String("deliveryId", deliveryID.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var out sendInvoiceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.ID == nil || *out.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing invoice id", ErrMalformedResponse)
	}

	c.logger.Info("invoice sent",
		zap.String("deliveryId", deliveryID.String()),
		zap.String("invoiceId", out.ID.String()),
		zap.Bool("sent", out.Sent),
	)

	return &domain.InvoiceReceipt{ID: *out.ID, Sent: out.Sent}, nil
}
