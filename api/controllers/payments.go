package controllers

import (
	"net/http"

	"github.com/comanda-ar/comanda-gateway/api/middleware"
	"github.com/comanda-ar/comanda-gateway/api/responses"
	"github.com/comanda-ar/comanda-gateway/api/validators"
	cartsvc "github.com/comanda-ar/comanda-gateway/internal/cart"
	paymentsvc "github.com/comanda-ar/comanda-gateway/internal/payments"
	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

// PaymentResultRequest carries the provider redirect parameters as the
// return page received them. All fields are optional on the wire; resolution
// decides what can be verified.
type PaymentResultRequest struct {
	PaymentID         string       `json:"payment_id"`
	Status            string       `json:"status"`
	ExternalReference types.FlexID `json:"external_reference"`
}

// PaymentResult resolves a provider redirect into a terminal outcome.
func PaymentResult(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var payload PaymentResultRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.Resolve(r.Context(), paymentsvc.ResolveParams{
			SessionID:         middleware.SessionIDFromContext(r.Context()),
			PaymentID:         validators.SanitizeString(payload.PaymentID, 100),
			Status:            validators.SanitizeString(payload.Status, 50),
			ExternalReference: payload.ExternalReference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolution)
	}
}

// PendingOrder hands the bridged order id to the return page, once.
func PendingOrder(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		orderID, err := svc.ConsumePendingOrder(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"order_id": orderID})
	}
}
