package cart

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-ar/comanda-gateway/api/middleware"
	"github.com/comanda-ar/comanda-gateway/api/responses"
	"github.com/comanda-ar/comanda-gateway/api/validators"
	cartsvc "github.com/comanda-ar/comanda-gateway/internal/cart"
	"github.com/comanda-ar/comanda-gateway/internal/confirm"
	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

const removePrompt = "Seguro quieres eliminar este producto?"

// CartFetch returns the session's cart with derived totals.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		current, err := svc.Load(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(current))
	}
}

// CartView returns the full render state, including per-product controls for
// the ids listed in the products query parameter.
func CartView(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		current, err := svc.Load(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartsvc.ComputeViewState(current, parseProductIDs(r)))
	}
}

// CartAddItem merges one unit of a product into the cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.AddItem(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			payload.ID,
			validators.SanitizeString(payload.Name, 200),
			payload.Price,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(current))
	}
}

// CartChangeQuantity applies the stepper delta to a line.
func CartChangeQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload ChangeQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.ChangeQuantity(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			itemID(r),
			payload.Delta,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(current))
	}
}

// CartSetNote replaces a line's free-text preference.
func CartSetNote(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload SetNoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.SetNote(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			itemID(r),
			validators.SanitizeString(payload.Note, 500),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(current))
	}
}

// CartRemoveItem drops a line once the guest confirms. The first call lands
// on the prompt; confirmed=true proceeds.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		confirmer := confirm.FromFlag(r.URL.Query().Get("confirmed") == "true")
		confirmed, err := confirmer.Confirm(r.Context(), removePrompt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "collect confirmation"))
			return
		}
		if !confirmed {
			responses.WriteSuccess(w, ConfirmResponse{Confirm: true, Prompt: removePrompt})
			return
		}

		current, err := svc.RemoveItem(r.Context(), middleware.SessionIDFromContext(r.Context()), itemID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(current))
	}
}

// CartClear empties the session's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cartsvc.Cart{}))
	}
}

func itemID(r *http.Request) types.FlexID {
	return types.FlexID(chi.URLParam(r, "itemId"))
}

func parseProductIDs(r *http.Request) []types.FlexID {
	raw := strings.TrimSpace(r.URL.Query().Get("products"))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]types.FlexID, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, types.FlexID(trimmed))
		}
	}
	return ids
}
