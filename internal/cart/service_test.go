package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

type memoryStorage struct {
	carts   map[string]string
	pending map[string]string
	readErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{carts: map[string]string{}, pending: map[string]string{}}
}

func (m *memoryStorage) ReadCart(_ context.Context, sessionID string) (string, error) {
	if m.readErr != nil {
		return "", m.readErr
	}
	value, ok := m.carts[sessionID]
	if !ok {
		return "", ErrNotFound
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
		return "", ErrNotFound
	}
	delete(m.pending, sessionID)
	return value, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, storage Storage) Service {
	t.Helper()
	svc, err := NewService(storage, nil, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresStorage(t *testing.T) {
	if _, err := NewService(nil, nil, testLogger()); err == nil {
		t.Fatal("expected error creating service without storage")
	}
}

func TestLoadStartsEmpty(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())

	cart, err := svc.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart))
	}
}

func TestLoadFailsOpenOnMalformedPayload(t *testing.T) {
	storage := newMemoryStorage()
	storage.carts["sess-1"] = `{"not":"a cart"`
	svc := newTestService(t, storage)

	cart, err := svc.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("expected empty cart after malformed payload, got %d lines", len(cart))
	}
}

func TestLoadFailsOpenOnStorageError(t *testing.T) {
	storage := newMemoryStorage()
	storage.readErr = errors.New("connection refused")
	svc := newTestService(t, storage)

	cart, err := svc.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("expected empty cart on storage error, got %d lines", len(cart))
	}
}

func TestLoadRequiresSession(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())

	_, err := svc.Load(context.Background(), "  ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", "7", "Pizza", 7.5); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(ctx, "sess-1", "7", "Pizza", 7.5)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart))
	}
	if cart[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart[0].Quantity)
	}
}

func TestAddItemMergesAcrossIDRepresentations(t *testing.T) {
	storage := newMemoryStorage()
	storage.carts["sess-1"] = `[{"id":7,"nombre":"Pizza","precio":7.5,"cantidad":1,"sugerency":""}]`
	svc := newTestService(t, storage)

	cart, err := svc.AddItem(context.Background(), "sess-1", "7", "Pizza", 7.5)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(cart) != 1 || cart[0].Quantity != 2 {
		t.Fatalf("expected numeric and string ids to merge, got %+v", cart)
	}
}

func TestAddItemAppendsNewLine(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", "7", "Pizza", 7.5); err != nil {
		t.Fatalf("add pizza: %v", err)
	}
	cart, err := svc.AddItem(ctx, "sess-1", "9", "Soda", 2.5)
	if err != nil {
		t.Fatalf("add soda: %v", err)
	}

	if len(cart) != 2 {
		t.Fatalf("expected two lines, got %d", len(cart))
	}
	if cart[1].Quantity != 1 || cart[1].Note != "" {
		t.Fatalf("expected fresh line with quantity 1 and empty note, got %+v", cart[1])
	}
}

func TestAddItemValidation(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	cases := []struct {
		name  string
		id    types.FlexID
		pname string
		price float64
	}{
		{"missing id", "", "Pizza", 7.5},
		{"missing name", "7", "  ", 7.5},
		{"negative price", "7", "Pizza", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, "sess-1", tc.id, tc.pname, tc.price)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestChangeQuantityRemovesAtZero(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", "7", "Pizza", 7.5); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.ChangeQuantity(ctx, "sess-1", "7", -1)
	if err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("expected line removed at quantity zero, got %+v", cart)
	}

	reloaded, err := svc.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, line := range reloaded {
		if line.Quantity <= 0 {
			t.Fatalf("persisted line with non-positive quantity: %+v", line)
		}
	}
}

func TestChangeQuantityUnknownIDIsNoop(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", "7", "Pizza", 7.5); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.ChangeQuantity(ctx, "sess-1", "404", -1)
	if err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if len(cart) != 1 || cart[0].Quantity != 1 {
		t.Fatalf("expected cart untouched, got %+v", cart)
	}
}

func TestRemoveItem(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", "7", "Pizza", 7.5); err != nil {
		t.Fatalf("add pizza: %v", err)
	}
	if _, err := svc.AddItem(ctx, "sess-1", "9", "Soda", 2.5); err != nil {
		t.Fatalf("add soda: %v", err)
	}

	cart, err := svc.RemoveItem(ctx, "sess-1", "7")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart) != 1 || !cart[0].ID.Equal("9") {
		t.Fatalf("expected only soda to remain, got %+v", cart)
	}
}

func TestSetNotePersistsIndependently(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", "7", "Pizza", 7.5); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.SetNote(ctx, "sess-1", "7", "sin cebolla"); err != nil {
		t.Fatalf("set note: %v", err)
	}
	if _, err := svc.ChangeQuantity(ctx, "sess-1", "7", 1); err != nil {
		t.Fatalf("change quantity: %v", err)
	}

	cart, err := svc.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cart[0].Note != "sin cebolla" {
		t.Fatalf("expected note to survive quantity change, got %q", cart[0].Note)
	}
	if cart[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart[0].Quantity)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", "7", "Pizza", 7.5); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	cart, err := svc.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", cart)
	}
}

func TestPendingOrderConsumedOnce(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	if err := svc.SetPendingOrder(ctx, "sess-1", "42"); err != nil {
		t.Fatalf("set pending: %v", err)
	}

	orderID, err := svc.ConsumePendingOrder(ctx, "sess-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !orderID.Equal("42") {
		t.Fatalf("expected order id 42, got %s", orderID)
	}

	_, err = svc.ConsumePendingOrder(ctx, "sess-1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second consume, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	svc := newTestService(t, newMemoryStorage())
	ctx := context.Background()

	original := Cart{
		{ID: "7", Name: "Pizza", Price: 7.5, Quantity: 2, Note: "extra queso"},
		{ID: "9", Name: "Soda", Price: 2.5, Quantity: 3, Note: ""},
	}
	if err := svc.Save(ctx, "sess-1", original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := svc.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(loaded))
	}
	if loaded[0].Note != "extra queso" || loaded[1].Quantity != 3 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}
