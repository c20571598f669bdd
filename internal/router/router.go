package router

import (
	"net/http"
	"net/netip"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Health   *handler.HealthHandler
	Product  *handler.ProductHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Audit    *handler.AuditHandler
	// Metrics defaults to the Prometheus default registry.
	Metrics http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
// trustedProxies names the peers whose X-Forwarded-For header is believed.
func New(h Handlers, tokens middleware.TokenValidator, apiKey string, trustedProxies []netip.Prefix, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	signedIn := func(fn http.HandlerFunc) http.Handler {
		return middleware.Authenticate(tokens, logger)(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.Chain(fn,
			middleware.Authenticate(tokens, logger),
			middleware.RequireRole(auth.RoleAdmin, logger),
		)
	}
	internal := func(next http.Handler) http.Handler {
		return middleware.APIKeyAuth(apiKey, logger)(next)
	}

	// Public
	mux.HandleFunc("GET /health", h.Health.Check)
	mux.HandleFunc("GET /api/products", h.Product.List)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("POST /api/checkout/guest", h.Checkout.Guest)

	// Signed-in customers
	mux.Handle("POST /api/checkout", signedIn(h.Checkout.Checkout))
	mux.Handle("GET /api/orders/{id}", signedIn(h.Order.GetByID))

	// Admin dashboard
	mux.Handle("GET /api/admin/audit", admin(h.Audit.List))
	mux.Handle("GET /api/admin/audit/{id}", admin(h.Audit.Get))
	mux.Handle("PATCH /api/admin/audit/{id}", admin(h.Audit.Reclassify))

	// Operations
	metricsHandler := h.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	mux.Handle("POST /internal/audit/archive", internal(http.HandlerFunc(h.Audit.Archive)))
	mux.Handle("GET /internal/metrics", internal(metricsHandler))

	// Apply middleware in order: RequestID -> ClientIP -> Recovery -> Logging -> CORS
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.ClientIP(trustedProxies),
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.CORS,
	)
}
