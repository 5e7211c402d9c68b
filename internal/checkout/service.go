package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/comanda-ar/comanda-gateway/internal/cart"
	"github.com/comanda-ar/comanda-gateway/internal/confirm"
	"github.com/comanda-ar/comanda-gateway/pkg/backend"
	"github.com/comanda-ar/comanda-gateway/pkg/config"
	"github.com/comanda-ar/comanda-gateway/pkg/enums"
	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/metrics"
	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

// OrderClient is the slice of the backend client checkout depends on.
type OrderClient interface {
	CreateOrder(ctx context.Context, params backend.CreateOrderParams) (*backend.CreateOrderResult, error)
	CreatePaymentPreference(ctx context.Context, orderID types.FlexID, returnURL string) (*backend.PreferenceResult, error)
}

// IPLookup resolves the device's public address, best effort.
type IPLookup interface {
	Lookup(ctx context.Context) string
}

// SubmitParams is one checkout attempt for a table session.
type SubmitParams struct {
	SessionID string
	Table     string
	Customer  string
	Email     string
	DNI       string
	Confirmer confirm.Confirmer
}

// Outcome reports where the submission landed. A confirming outcome carries
// the order summary the prompt renders; RedirectURL is set whenever an order
// was created, even if the payment preference step failed.
type Outcome struct {
	State       enums.CheckoutState `json:"state"`
	Prompt      string              `json:"prompt,omitempty"`
	Summary     *cart.ViewState     `json:"summary,omitempty"`
	OrderID     types.FlexID        `json:"order_id,omitempty"`
	RedirectURL string              `json:"redirect_url,omitempty"`
}

// Service drives the submission flow: confirm, create the order, bridge the
// order id, then hand off to payment.
type Service interface {
	Submit(ctx context.Context, params SubmitParams) (*Outcome, error)
}

type service struct {
	carts   cart.Service
	orders  OrderClient
	ip      IPLookup
	cfg     config.CheckoutConfig
	metrics *metrics.GatewayMetrics
	logger  *logger.Logger
}

func NewService(carts cart.Service, orders OrderClient, ip IPLookup, cfg config.CheckoutConfig, gm *metrics.GatewayMetrics, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order client required")
	}
	if ip == nil {
		return nil, fmt.Errorf("ip lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{carts: carts, orders: orders, ip: ip, cfg: cfg, metrics: gm, logger: logg}, nil
}

const confirmPrompt = "Seguro que desea realizar el pedido?"

// Submit runs one checkout attempt. An empty cart or missing customer data
// aborts before any network call. An unconfirmed attempt stops at the prompt.
// Once the order is created the cart is cleared and the caller always gets a
// redirect destination, falling back to the table's return page when the
// payment preference cannot be created.
func (s *service) Submit(ctx context.Context, params SubmitParams) (*Outcome, error) {
	if err := validateSubmit(params); err != nil {
		return nil, err
	}
	ctx = s.logger.WithTable(s.logger.WithSessionID(ctx, params.SessionID), params.Table)

	current, err := s.carts.Load(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	confirmer := params.Confirmer
	if confirmer == nil {
		confirmer = confirm.FromFlag(false)
	}
	confirmed, err := confirmer.Confirm(ctx, confirmPrompt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "collect confirmation")
	}
	if !confirmed {
		summary := cart.ComputeViewState(current, nil)
		return &Outcome{
			State:   enums.CheckoutStateConfirming,
			Prompt:  confirmPrompt,
			Summary: &summary,
		}, nil
	}

	order, err := s.orders.CreateOrder(ctx, backend.CreateOrderParams{
		Lines:    orderLines(current),
		Customer: params.Customer,
		Email:    params.Email,
		DNI:      params.DNI,
		IP:       s.ip.Lookup(ctx),
		Table:    params.Table,
	})
	if err != nil {
		s.metrics.IncCheckout("order_failed")
		return nil, err
	}

	// The order exists on the backend from here on: the local cart is done
	// regardless of how the payment handoff goes.
	if err := s.carts.Clear(ctx, params.SessionID); err != nil {
		s.logger.Error(ctx, "clear cart after order creation", err)
	}
	if err := s.carts.SetPendingOrder(ctx, params.SessionID, order.OrderID); err != nil {
		s.logger.Error(ctx, "persist pending order", err)
	}

	returnURL := s.cfg.ReturnURL(params.Table)
	preference, err := s.orders.CreatePaymentPreference(ctx, order.OrderID, returnURL)
	if err != nil {
		s.logger.Error(ctx, "create payment preference", err)
		s.metrics.IncCheckout("preference_failed")
		return &Outcome{
			State:       enums.CheckoutStateAwaitingRedirect,
			OrderID:     order.OrderID,
			RedirectURL: returnURL,
		}, nil
	}

	s.metrics.IncCheckout("redirected")
	return &Outcome{
		State:       enums.CheckoutStateAwaitingRedirect,
		OrderID:     order.OrderID,
		RedirectURL: preference.InitPoint,
	}, nil
}

func validateSubmit(params SubmitParams) error {
	if strings.TrimSpace(params.SessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(params.Table) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "table is required")
	}
	if strings.TrimSpace(params.Customer) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(params.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	return nil
}

func orderLines(current cart.Cart) []backend.OrderLine {
	lines := make([]backend.OrderLine, 0, len(current))
	for _, line := range current {
		lines = append(lines, backend.OrderLine{
			ID:       line.ID,
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
			Note:     line.Note,
		})
	}
	return lines
}
