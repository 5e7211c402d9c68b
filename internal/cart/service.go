package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/metrics"
	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

// Service owns the device-local cart: every mutation reads the persisted
// state, applies the change, and writes the full cart back, so the stored
// copy is always the single source of truth.
type Service interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, cart Cart) error
	AddItem(ctx context.Context, sessionID string, id types.FlexID, name string, price float64) (Cart, error)
	ChangeQuantity(ctx context.Context, sessionID string, id types.FlexID, delta int) (Cart, error)
	RemoveItem(ctx context.Context, sessionID string, id types.FlexID) (Cart, error)
	SetNote(ctx context.Context, sessionID string, id types.FlexID, note string) (Cart, error)
	Clear(ctx context.Context, sessionID string) error

	SetPendingOrder(ctx context.Context, sessionID string, orderID types.FlexID) error
	ConsumePendingOrder(ctx context.Context, sessionID string) (types.FlexID, error)
}

type service struct {
	storage Storage
	metrics *metrics.GatewayMetrics
	logger  *logger.Logger
}

// NewService builds a cart service backed by the provided storage.
func NewService(storage Storage, gm *metrics.GatewayMetrics, logg *logger.Logger) (Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{storage: storage, metrics: gm, logger: logg}, nil
}

// Load returns the persisted cart. Missing keys, malformed payloads, and
// storage failures all degrade to the empty cart: a broken stored cart must
// never take the ordering flow down.
func (s *service) Load(ctx context.Context, sessionID string) (Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}

	payload, err := s.storage.ReadCart(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn(s.logger.WithSessionID(ctx, sessionID), "cart read failed, starting empty")
		}
		return Cart{}, nil
	}

	var cart Cart
	if err := json.Unmarshal([]byte(payload), &cart); err != nil {
		s.logger.Warn(s.logger.WithSessionID(ctx, sessionID), "stored cart is malformed, starting empty")
		return Cart{}, nil
	}
	return cart, nil
}

// Save overwrites the persisted cart with the provided state.
func (s *service) Save(ctx context.Context, sessionID string, cart Cart) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if cart == nil {
		cart = Cart{}
	}

	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.storage.WriteCart(ctx, sessionID, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

// AddItem merges one unit of the product into the cart: an existing line
// gains quantity, a new product appends a fresh line with an empty note.
func (s *service) AddItem(ctx context.Context, sessionID string, id types.FlexID, name string, price float64) (Cart, error) {
	if id.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}

	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := cart.Find(id); i >= 0 {
		cart[i].Quantity++
	} else {
		cart = append(cart, Line{ID: id, Name: name, Price: price, Quantity: 1, Note: ""})
	}

	if err := s.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("add_item")
	return cart, nil
}

// ChangeQuantity applies delta to the matching line. A line that reaches
// quantity <= 0 is removed outright; an unknown id is a no-op.
func (s *service) ChangeQuantity(ctx context.Context, sessionID string, id types.FlexID, delta int) (Cart, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.Find(id)
	if i < 0 {
		return cart, nil
	}

	cart[i].Quantity += delta
	if cart[i].Quantity <= 0 {
		cart = append(cart[:i], cart[i+1:]...)
	}

	if err := s.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("change_quantity")
	return cart, nil
}

// RemoveItem drops the line for id, if present.
func (s *service) RemoveItem(ctx context.Context, sessionID string, id types.FlexID) (Cart, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.Find(id)
	if i < 0 {
		return cart, nil
	}
	cart = append(cart[:i], cart[i+1:]...)

	if err := s.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("remove_item")
	return cart, nil
}

// SetNote updates the free-text preference on the matching line; unknown ids
// are a no-op. Notes move independently of quantity.
func (s *service) SetNote(ctx context.Context, sessionID string, id types.FlexID, note string) (Cart, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.Find(id)
	if i < 0 {
		return cart, nil
	}
	cart[i].Note = note

	if err := s.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("set_note")
	return cart, nil
}

// Clear empties the session's cart.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.storage.DeleteCart(ctx, sessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.metrics.IncCartMutation("clear")
	return nil
}

// SetPendingOrder bridges the order id across the payment redirect.
func (s *service) SetPendingOrder(ctx context.Context, sessionID string, orderID types.FlexID) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if orderID.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if err := s.storage.WritePendingOrder(ctx, sessionID, orderID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist pending order")
	}
	return nil
}

// ConsumePendingOrder returns the bridged order id exactly once; a second
// call reports not-found.
func (s *service) ConsumePendingOrder(ctx context.Context, sessionID string) (types.FlexID, error) {
	if err := requireSession(sessionID); err != nil {
		return "", err
	}
	value, err := s.storage.ConsumePendingOrder(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "no pending order for session")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume pending order")
	}
	return types.FlexID(value), nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
