package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/comanda-ar/comanda-gateway/pkg/config"
	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

var errLoggerRequired = errors.New("backend logger is required")

// Client talks to the restaurant backend that owns orders and payments. It
// centralizes transport, logging with redaction, circuit breaking, and the
// mapping between wire failures and domain error codes.
type Client struct {
	http    *http.Client
	cfg     config.BackendConfig
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *logger.Logger
}

// NewClient initializes the backend wrapper and validates its dependencies.
func NewClient(ctx context.Context, cfg config.BackendConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("backend base url is required")
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "restaurant-backend",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFails
		},
	})

	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		breaker: breaker,
		logger:  logg,
	}

	logg.Info(ctx, "backend client initialized")
	return c, nil
}

// OrderLine is one cart line as the backend expects it on the wire.
type OrderLine struct {
	ID       types.FlexID `json:"id"`
	Name     string       `json:"nombre"`
	Price    float64      `json:"precio"`
	Quantity int          `json:"cantidad"`
	Note     string       `json:"sugerency"`
}

// CreateOrderParams captures everything the order-creation endpoint needs.
type CreateOrderParams struct {
	Lines    []OrderLine
	Customer string
	Email    string
	DNI      string
	IP       string
	Table    string
}

type createOrderRequest struct {
	Carrito []OrderLine `json:"carrito"`
	Nombre  string      `json:"nombre"`
	Email   string      `json:"email"`
	DNI     string      `json:"dni,omitempty"`
	IP      string      `json:"ip"`
	Table   string      `json:"table"`
}

// CreateOrderResult is the subset of the order-creation response the gateway
// consumes.
type CreateOrderResult struct {
	OrderID types.FlexID
}

type createOrderResponse struct {
	Success bool         `json:"success"`
	OrderID types.FlexID `json:"order_id"`
	Error   string       `json:"error"`
}

// CreateOrder submits the cart snapshot and returns the backend order id.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResult, error) {
	c.log(ctx, "request", "create_order", map[string]any{
		"table":    params.Table,
		"lines":    len(params.Lines),
		"customer": params.Customer,
		"email":    params.Email,
	})

	body, err := c.post(ctx, c.cfg.OrderPath, createOrderRequest{
		Carrito: params.Lines,
		Nombre:  params.Customer,
		Email:   params.Email,
		DNI:     params.DNI,
		IP:      params.IP,
		Table:   params.Table,
	}, "create order")
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, err
	}

	var resp createOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order response")
	}
	if !resp.Success || resp.OrderID.IsZero() {
		return nil, upstreamError(resp.Error, "order was not created")
	}

	c.log(ctx, "response", "create_order", map[string]any{"order_id": resp.OrderID.String()})
	return &CreateOrderResult{OrderID: resp.OrderID}, nil
}

type preferenceRequest struct {
	OrderID   types.FlexID `json:"order_id"`
	ReturnURL string       `json:"return_url"`
}

// PreferenceResult carries the provider handoff for a created payment
// preference.
type PreferenceResult struct {
	InitPoint string
	PaymentID types.FlexID
}

type preferenceResponse struct {
	Success   bool         `json:"success"`
	InitPoint string       `json:"init_point"`
	PaymentID types.FlexID `json:"payment_id"`
	Error     string       `json:"error"`
}

// CreatePaymentPreference asks the backend for a payment-initiation URL.
func (c *Client) CreatePaymentPreference(ctx context.Context, orderID types.FlexID, returnURL string) (*PreferenceResult, error) {
	c.log(ctx, "request", "create_payment_preference", map[string]any{
		"order_id":   orderID.String(),
		"return_url": returnURL,
	})

	body, err := c.post(ctx, c.cfg.PaymentCreatePath, preferenceRequest{
		OrderID:   orderID,
		ReturnURL: returnURL,
	}, "create payment preference")
	if err != nil {
		c.log(ctx, "error", "create_payment_preference", map[string]any{"error": err.Error()})
		return nil, err
	}

	var resp preferenceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode preference response")
	}
	if !resp.Success || resp.InitPoint == "" {
		return nil, upstreamError(resp.Error, "payment preference was not created")
	}

	c.log(ctx, "response", "create_payment_preference", map[string]any{"payment_id": resp.PaymentID.String()})
	return &PreferenceResult{InitPoint: resp.InitPoint, PaymentID: resp.PaymentID}, nil
}

type paymentResultRequest struct {
	PaymentID string       `json:"payment_id"`
	Status    string       `json:"status"`
	OrderID   types.FlexID `json:"order_id"`
}

// PaymentResult is the backend-confirmed outcome of a payment attempt.
type PaymentResult struct {
	Status  string
	OrderID types.FlexID
}

type paymentResultResponse struct {
	Success bool         `json:"success"`
	Status  string       `json:"status"`
	OrderID types.FlexID `json:"order_id"`
	Error   string       `json:"error"`
}

// ProcessPaymentResult reports the provider redirect parameters and returns
// the confirmed status.
func (c *Client) ProcessPaymentResult(ctx context.Context, paymentID, status string, orderID types.FlexID) (*PaymentResult, error) {
	if strings.TrimSpace(paymentID) == "" {
		paymentID = "unknown"
	}
	c.log(ctx, "request", "process_payment_result", map[string]any{
		"payment_id": paymentID,
		"status":     status,
		"order_id":   orderID.String(),
	})

	body, err := c.post(ctx, c.cfg.PaymentResultPath, paymentResultRequest{
		PaymentID: paymentID,
		Status:    status,
		OrderID:   orderID,
	}, "process payment result")
	if err != nil {
		c.log(ctx, "error", "process_payment_result", map[string]any{"error": err.Error()})
		return nil, err
	}

	var resp paymentResultResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment result response")
	}
	if !resp.Success {
		return nil, upstreamError(resp.Error, "payment result was not processed")
	}

	c.log(ctx, "response", "process_payment_result", map[string]any{"status": resp.Status})
	return &PaymentResult{Status: resp.Status, OrderID: resp.OrderID}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, op string) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s request", op))
	}

	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(encoded))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", op))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s failed", op))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("read %s response", op))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, upstreamError(extractWireError(body), fmt.Sprintf("%s returned status %d", op, resp.StatusCode))
		}
		return body, nil
	})
}

// upstreamError builds the backend-reported failure, keeping the backend's
// own message verbatim when it sent one.
func upstreamError(wireMessage, fallback string) *pkgerrors.Error {
	msg := strings.TrimSpace(wireMessage)
	if msg == "" {
		msg = fallback
	}
	return pkgerrors.New(pkgerrors.CodeUpstream, msg)
}

func extractWireError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("backend %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("backend %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"email", "dni", "customer", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
