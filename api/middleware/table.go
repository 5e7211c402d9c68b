package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-ar/comanda-gateway/api/responses"
	"github.com/comanda-ar/comanda-gateway/internal/tables"
	pkgerrors "github.com/comanda-ar/comanda-gateway/pkg/errors"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
)

// Table resolves the table id from the route param and rejects anything
// that is not all digits.
func Table(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			table := chi.URLParam(r, "table")
			if _, ok := tables.FromPath("/" + table + "/"); !ok {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "table must be numeric"))
				return
			}

			ctx := WithTable(r.Context(), table)
			if logg != nil {
				ctx = logg.WithTable(ctx, table)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
