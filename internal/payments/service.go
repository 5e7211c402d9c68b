package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/comanda-ar/comanda-gateway/internal/cart"
	"github.com/comanda-ar/comanda-gateway/pkg/backend"
	"github.com/comanda-ar/comanda-gateway/pkg/enums"
	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/metrics"
	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

// ResultClient is the slice of the backend client result resolution uses.
type ResultClient interface {
	ProcessPaymentResult(ctx context.Context, paymentID, status string, orderID types.FlexID) (*backend.PaymentResult, error)
}

// ResolveParams are the provider redirect parameters as they arrive on the
// return page. Any of them may be missing or garbage.
type ResolveParams struct {
	SessionID         string
	PaymentID         string
	Status            string
	ExternalReference types.FlexID
}

// Resolution is what the return page renders.
type Resolution struct {
	Outcome enums.PaymentOutcome `json:"outcome"`
	OrderID types.FlexID         `json:"order_id,omitempty"`
}

// Service resolves a payment redirect into a terminal outcome, reporting it
// to the backend at most once per pending order.
type Service interface {
	Resolve(ctx context.Context, params ResolveParams) (*Resolution, error)
}

type service struct {
	carts   cart.Service
	results ResultClient
	metrics *metrics.GatewayMetrics
	logger  *logger.Logger
}

func NewService(carts cart.Service, results ResultClient, gm *metrics.GatewayMetrics, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if results == nil {
		return nil, fmt.Errorf("result client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{carts: carts, results: results, metrics: gm, logger: logg}, nil
}

// Resolve identifies the order, reports the redirect parameters to the
// backend, and classifies the confirmed status. The pending-order bridge is
// consumed regardless of which identifier wins, so a reload of the return
// page cannot resubmit the same result.
func (s *service) Resolve(ctx context.Context, params ResolveParams) (*Resolution, error) {
	if strings.TrimSpace(params.SessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	ctx = s.logger.WithSessionID(ctx, params.SessionID)

	orderID := params.ExternalReference
	pending, err := s.carts.ConsumePendingOrder(ctx, params.SessionID)
	switch {
	case err == nil:
		if orderID.IsZero() {
			orderID = pending
		}
	case pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound:
		// A missing bridge entry is normal; a broken one is not.
		s.logger.Warn(ctx, fmt.Sprintf("consume pending order: %v", err))
	}

	if strings.TrimSpace(params.Status) == "" || orderID.IsZero() {
		s.logger.Warn(ctx, "payment redirect lacks status or order id, leaving unverified")
		s.metrics.IncPaymentResult(string(enums.PaymentOutcomeUnverified))
		return &Resolution{Outcome: enums.PaymentOutcomeUnverified, OrderID: orderID}, nil
	}

	result, err := s.results.ProcessPaymentResult(ctx, params.PaymentID, params.Status, orderID)
	if err != nil {
		s.logger.Error(ctx, "report payment result", err)
		s.metrics.IncPaymentResult(string(enums.PaymentOutcomeUnverified))
		return &Resolution{Outcome: enums.PaymentOutcomeUnverified, OrderID: orderID}, nil
	}

	outcome := classify(result.Status)
	if outcome == enums.PaymentOutcomeApproved {
		if err := s.carts.Clear(ctx, params.SessionID); err != nil {
			s.logger.Error(ctx, "clear cart after approved payment", err)
		}
	}

	s.metrics.IncPaymentResult(string(outcome))
	return &Resolution{Outcome: outcome, OrderID: orderID}, nil
}

func classify(status string) enums.PaymentOutcome {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved":
		return enums.PaymentOutcomeApproved
	case "in_process", "pending":
		return enums.PaymentOutcomeInProcess
	default:
		return enums.PaymentOutcomeRejected
	}
}
