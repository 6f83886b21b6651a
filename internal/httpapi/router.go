package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ryghoul/akobylee/internal/checkout"
	"github.com/ryghoul/akobylee/internal/metrics"
	"github.com/ryghoul/akobylee/internal/payments"
	"github.com/ryghoul/akobylee/internal/relay"
	"github.com/ryghoul/akobylee/internal/service"
)

// RouterConfig collects everything the HTTP surface depends on.
type RouterConfig struct {
	Carts          *service.CartService
	Profiles       checkout.ProfileStore
	Sessions       *payments.SessionService
	Confirms       *payments.ConfirmService
	Relay          *relay.Service
	Pages          *Pages
	Metrics        *metrics.ServerMetrics
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter assembles the chi router: global middleware, the JSON API,
// and the static site.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}
	r.Use(CartIDMiddleware)

	cartHandler := NewCartHandler(cfg.Carts, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(cfg.Carts, cfg.Profiles, cfg.Sessions, cfg.Confirms, cfg.RequestTimeout)
	relayHandler := NewRelayHandler(cfg.Relay, cfg.RequestTimeout)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/contact", relayHandler.Contact)
	r.Post("/reserve", relayHandler.Reserve)
	r.Post("/create-checkout-session", checkoutHandler.CreateSession)

	r.Route("/api", func(r chi.Router) {
		r.Get("/confirm-order", checkoutHandler.ConfirmOrder)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{index}", cartHandler.AdjustQuantity)
			r.Delete("/items/{index}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.SubmitForm)
			r.Get("/quote", checkoutHandler.Quote)
			r.Get("/profile", checkoutHandler.GetProfile)
			r.Put("/profile", checkoutHandler.SaveProfile)
		})
	})

	if cfg.Pages != nil {
		r.Get("/debug/public-list", cfg.Pages.List)
		r.Get("/", cfg.Pages.Landing)
		r.Get("/success", cfg.Pages.Success)
		r.Get("/success.html", cfg.Pages.Success)
		r.Get("/shop", cfg.Pages.Shop)
		r.Get("/shop.html", cfg.Pages.Shop)
		r.NotFound(cfg.Pages.Fallback)
	}

	return r
}
