package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/EcommerceGo/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/storefront/pkg/health"
	"github.com/utafrali/EcommerceGo/storefront/pkg/middleware"
)

// Stores are the state stores exposed by the adapter.
type Stores struct {
	Auth     *service.AuthService
	Products *service.ProductService
	Cart     *service.CartService
	Wishlist *service.WishlistService
}

// RouterConfig holds the adapter's transport settings.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	PprofCIDRs     []string
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront adapter routes
// registered. ctx bounds background work owned by the middleware.
func NewRouter(
	ctx context.Context,
	stores Stores,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger, sessionUserID(stores.Auth)))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	authHandler := NewAuthHandler(stores.Auth, logger)
	productHandler := NewProductHandler(stores.Products, logger)
	cartHandler := NewCartHandler(stores.Cart, logger)
	wishlistHandler := NewWishlistHandler(stores.Wishlist, logger)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/check", authHandler.Check)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.Session)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetState)
			r.Post("/fetch/{view}", productHandler.Fetch)
			r.Post("/gender/{gender}", productHandler.FetchByGender)
			r.Post("/category/{category}", productHandler.FetchByCategory)
			r.Post("/search", productHandler.Search)
			r.Post("/filters", productHandler.ApplyFilters)
			r.Delete("/filters", productHandler.ClearFilters)
			r.Get("/{id}", productHandler.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/fetch", cartHandler.FetchCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{itemId}", cartHandler.UpdateItemQuantity)
			r.Post("/items/{itemId}/increment", cartHandler.Increment)
			r.Post("/items/{itemId}/decrement", cartHandler.Decrement)
			r.Delete("/items/{itemId}", cartHandler.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.GetWishlist)
			r.Delete("/", wishlistHandler.ClearWishlist)
			r.Post("/fetch", wishlistHandler.FetchWishlist)

			r.Post("/items", wishlistHandler.AddItem)
			r.Get("/items/{productId}", wishlistHandler.GetItem)
			r.Delete("/items/{productId}", wishlistHandler.RemoveItem)
		})
	})

	return r
}

// sessionUserID reports the signed-in user for request logs.
func sessionUserID(auth *service.AuthService) middleware.UserIDFunc {
	return func(context.Context) string {
		if auth == nil {
			return ""
		}
		if u := auth.State().User; u != nil {
			return u.ID
		}
		return ""
	}
}
