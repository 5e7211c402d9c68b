package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	cartsvc "github.com/comanda-ar/comanda-gateway/internal/cart"
	checkoutsvc "github.com/comanda-ar/comanda-gateway/internal/checkout"
	paymentsvc "github.com/comanda-ar/comanda-gateway/internal/payments"
	"github.com/comanda-ar/comanda-gateway/pkg/backend"
	"github.com/comanda-ar/comanda-gateway/pkg/config"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/metrics"
	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type memoryStorage struct {
	carts   map[string]string
	pending map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{carts: map[string]string{}, pending: map[string]string{}}
}

func (m *memoryStorage) ReadCart(_ context.Context, sessionID string) (string, error) {
	value, ok := m.carts[sessionID]
	if !ok {
		return "", cartsvc.ErrNotFound
	}
	return value, nil
}

func (m *memoryStorage) WriteCart(_ context.Context, sessionID, payload string) error {
	m.carts[sessionID] = payload
	return nil
}

func (m *memoryStorage) DeleteCart(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

func (m *memoryStorage) WritePendingOrder(_ context.Context, sessionID, orderID string) error {
	m.pending[sessionID] = orderID
	return nil
}

func (m *memoryStorage) ConsumePendingOrder(_ context.Context, sessionID string) (string, error) {
	value, ok := m.pending[sessionID]
	if !ok {
		return "", cartsvc.ErrNotFound
	}
	delete(m.pending, sessionID)
	return value, nil
}

type stubBackend struct {
	orderID   string
	initPoint string
	status    string
}

func (s *stubBackend) CreateOrder(context.Context, backend.CreateOrderParams) (*backend.CreateOrderResult, error) {
	return &backend.CreateOrderResult{OrderID: types.FlexID(s.orderID)}, nil
}

func (s *stubBackend) CreatePaymentPreference(context.Context, types.FlexID, string) (*backend.PreferenceResult, error) {
	return &backend.PreferenceResult{InitPoint: s.initPoint, PaymentID: "pref-1"}, nil
}

func (s *stubBackend) ProcessPaymentResult(_ context.Context, _, _ string, orderID types.FlexID) (*backend.PaymentResult, error) {
	return &backend.PaymentResult{Status: s.status, OrderID: orderID}, nil
}

type stubIPLookup struct{}

func (stubIPLookup) Lookup(context.Context) string { return "203.0.113.9" }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Session.CookieName = "comanda_session"
	cfg.Checkout.ReturnURLTemplate = "https://resto.example/%s/pedido_pagado/"
	return cfg
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	gm := metrics.NewGatewayMetrics(prometheus.NewRegistry())

	carts, err := cartsvc.NewService(newMemoryStorage(), gm, logg)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	be := &stubBackend{orderID: "42", initPoint: "https://pay.example/init/abc", status: "approved"}
	checkouts, err := checkoutsvc.NewService(carts, be, stubIPLookup{}, cfg.Checkout, gm, logg)
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	payments, err := paymentsvc.NewService(carts, be, gm, logg)
	if err != nil {
		t.Fatalf("payment service: %v", err)
	}

	return NewRouter(cfg, logg, stubPinger{}, carts, checkouts, payments, nil)
}

// do sends a request, carrying the session cookie across calls.
func do(t *testing.T, router http.Handler, cookie *http.Cookie, method, path, body string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == "comanda_session" {
			cookie = c
		}
	}
	return w, cookie
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope.Data
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w, _ := do(t, router, nil, http.MethodGet, "/health/live", "")
	if w.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", w.Code)
	}
	w, _ = do(t, router, nil, http.MethodGet, "/health/ready", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", w.Code)
	}
}

func TestCartFlowAcrossRequests(t *testing.T) {
	router := newTestRouter(t)

	w, cookie := do(t, router, nil, http.MethodPost, "/api/v1/t/5/cart/items",
		`{"id":"7","nombre":"Pizza","precio":7.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d body %s", w.Code, w.Body.String())
	}
	if cookie == nil {
		t.Fatal("expected a session cookie on first contact")
	}

	w, cookie = do(t, router, cookie, http.MethodPost, "/api/v1/t/5/cart/items",
		`{"id":"7","nombre":"Pizza","precio":7.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("second add: expected 200, got %d", w.Code)
	}
	data := decodeData(t, w)
	if data["item_count"].(float64) != 2 {
		t.Fatalf("expected merged quantity 2, got %v", data["item_count"])
	}

	w, cookie = do(t, router, cookie, http.MethodGet, "/api/v1/t/5/cart/", "")
	data = decodeData(t, w)
	if data["subtotal"].(float64) != 15.0 {
		t.Fatalf("expected subtotal 15.0, got %v", data["subtotal"])
	}

	w, _ = do(t, router, cookie, http.MethodGet, "/api/v1/t/5/cart/view?products=7,9", "")
	viewData := decodeData(t, w)
	products := viewData["products"].([]any)
	if len(products) != 2 {
		t.Fatalf("expected controls for both products, got %d", len(products))
	}
}

func TestRemoveItemRequiresConfirmation(t *testing.T) {
	router := newTestRouter(t)

	_, cookie := do(t, router, nil, http.MethodPost, "/api/v1/t/5/cart/items",
		`{"id":"7","nombre":"Pizza","precio":7.5}`)

	w, cookie := do(t, router, cookie, http.MethodDelete, "/api/v1/t/5/cart/items/7/", "")
	data := decodeData(t, w)
	if data["confirm_required"] != true {
		t.Fatalf("expected confirmation prompt, got %v", data)
	}

	w, cookie = do(t, router, cookie, http.MethodGet, "/api/v1/t/5/cart/", "")
	data = decodeData(t, w)
	if data["item_count"].(float64) != 1 {
		t.Fatalf("cart must be untouched before confirmation, got %v", data["item_count"])
	}

	w, cookie = do(t, router, cookie, http.MethodDelete, "/api/v1/t/5/cart/items/7/?confirmed=true", "")
	data = decodeData(t, w)
	if data["item_count"].(float64) != 0 {
		t.Fatalf("expected empty cart after confirmed removal, got %v", data["item_count"])
	}
}

func TestCheckoutFlow(t *testing.T) {
	router := newTestRouter(t)

	_, cookie := do(t, router, nil, http.MethodPost, "/api/v1/t/5/cart/items",
		`{"id":"7","nombre":"Pizza","precio":7.5}`)

	w, cookie := do(t, router, cookie, http.MethodPost, "/api/v1/t/5/checkout",
		`{"nombre":"Ana","email":"ana@example.com"}`)
	data := decodeData(t, w)
	if data["state"] != "confirming" {
		t.Fatalf("expected confirming state, got %v", data["state"])
	}
	summary, ok := data["summary"].(map[string]any)
	if !ok || summary["subtotal"].(float64) != 7.5 {
		t.Fatalf("expected order summary with subtotal 7.5, got %v", data["summary"])
	}

	w, cookie = do(t, router, cookie, http.MethodPost, "/api/v1/t/5/checkout",
		`{"nombre":"Ana","email":"ana@example.com","confirmed":true}`)
	data = decodeData(t, w)
	if data["state"] != "awaiting_payment_redirect" {
		t.Fatalf("expected redirect state, got %v", data)
	}
	if data["redirect_url"] != "https://pay.example/init/abc" {
		t.Fatalf("expected init point, got %v", data["redirect_url"])
	}

	w, cookie = do(t, router, cookie, http.MethodGet, "/api/v1/t/5/cart/", "")
	data = decodeData(t, w)
	if data["item_count"].(float64) != 0 {
		t.Fatalf("expected cart cleared after order, got %v", data["item_count"])
	}

	w, _ = do(t, router, cookie, http.MethodPost, "/api/v1/t/5/payment/result",
		`{"payment_id":"pay-9","status":"approved"}`)
	data = decodeData(t, w)
	if data["outcome"] != "approved" {
		t.Fatalf("expected approved outcome, got %v", data)
	}
	if data["order_id"] != "42" {
		t.Fatalf("expected bridged order id, got %v", data["order_id"])
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	router := newTestRouter(t)

	w, _ := do(t, router, nil, http.MethodPost, "/api/v1/t/5/checkout",
		`{"nombre":"Ana","email":"ana@example.com","confirmed":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", w.Code)
	}
}

func TestNonNumericTableRejected(t *testing.T) {
	router := newTestRouter(t)

	w, _ := do(t, router, nil, http.MethodGet, "/api/v1/t/patio/cart/", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric table, got %d", w.Code)
	}
}
