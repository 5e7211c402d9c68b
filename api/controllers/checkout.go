package controllers

import (
	"net/http"

	"github.com/comanda-ar/comanda-gateway/api/middleware"
	"github.com/comanda-ar/comanda-gateway/api/responses"
	"github.com/comanda-ar/comanda-gateway/api/validators"
	checkoutsvc "github.com/comanda-ar/comanda-gateway/internal/checkout"
	"github.com/comanda-ar/comanda-gateway/internal/confirm"
	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
)

// CheckoutRequest is the order form as submitted from the cart page.
type CheckoutRequest struct {
	Customer  string `json:"nombre" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,email"`
	DNI       string `json:"dni" validate:"omitempty,max=20"`
	Confirmed bool   `json:"confirmed"`
}

// Checkout runs one submission attempt for the session's cart.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Submit(r.Context(), checkoutsvc.SubmitParams{
			SessionID: middleware.SessionIDFromContext(r.Context()),
			Table:     middleware.TableFromContext(r.Context()),
			Customer:  validators.SanitizeString(payload.Customer, 200),
			Email:     validators.SanitizeString(payload.Email, 200),
			DNI:       validators.SanitizeString(payload.DNI, 20),
			Confirmer: confirm.FromFlag(payload.Confirmed),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, outcome)
	}
}
