package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comanda-ar/comanda-gateway/api/controllers"
	cartcontrollers "github.com/comanda-ar/comanda-gateway/api/controllers/cart"
	"github.com/comanda-ar/comanda-gateway/api/middleware"
	cartsvc "github.com/comanda-ar/comanda-gateway/internal/cart"
	checkoutsvc "github.com/comanda-ar/comanda-gateway/internal/checkout"
	paymentsvc "github.com/comanda-ar/comanda-gateway/internal/payments"
	"github.com/comanda-ar/comanda-gateway/pkg/config"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storagePinger controllers.Pinger,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	paymentService paymentsvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storagePinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/t/{table}", func(r chi.Router) {
		r.Use(
			middleware.Session(cfg.Session.CookieName, logg),
			middleware.Table(logg),
		)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Get("/view", cartcontrollers.CartView(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Route("/items/{itemId}", func(r chi.Router) {
				r.Post("/quantity", cartcontrollers.CartChangeQuantity(cartService, logg))
				r.Put("/note", cartcontrollers.CartSetNote(cartService, logg))
				r.Delete("/", cartcontrollers.CartRemoveItem(cartService, logg))
			})
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
		r.Post("/payment/result", controllers.PaymentResult(paymentService, logg))
		r.Get("/order/pending", controllers.PendingOrder(cartService, logg))
	})

	return r
}
