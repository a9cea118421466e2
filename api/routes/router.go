package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storefrontlabs/storefront-backend/api/controllers"
	"github.com/storefrontlabs/storefront-backend/api/middleware"
	authsvc "github.com/storefrontlabs/storefront-backend/internal/auth"
	cartsvc "github.com/storefrontlabs/storefront-backend/internal/cart"
	checkoutsvc "github.com/storefrontlabs/storefront-backend/internal/checkout"
	ordersvc "github.com/storefrontlabs/storefront-backend/internal/orders"
	productsvc "github.com/storefrontlabs/storefront-backend/internal/products"
	usersvc "github.com/storefrontlabs/storefront-backend/internal/users"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/metrics"
	"github.com/storefrontlabs/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	m *metrics.HTTPMetrics,
	authService authsvc.Service,
	userService *usersvc.Service,
	productService *productsvc.Service,
	cartService *cartsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService *ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(m),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var cachePinger interface{ Ping(ctx context.Context) error }
	if redisClient != nil {
		cachePinger = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.Login(authService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.Register(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(productService, logg))
		r.Get("/{id}", controllers.GetProduct(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Put("/{id}", controllers.UpdateProduct(productService, logg))
			r.Delete("/{id}", controllers.DeleteProduct(productService, logg))
		})
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/{id}", controllers.GetUser(userService, logg))
		r.Put("/{id}", controllers.UpdateUser(userService, logg))
		r.Delete("/{id}", controllers.DeleteUser(userService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Get("/", controllers.ListUsers(userService, logg))
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.RoleUser, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Get("/", controllers.GetCart(cartService, logg))
		r.Post("/", controllers.AddCartItem(cartService, logg))
		r.Put("/{productId}", controllers.ChangeCartItemQuantity(cartService, logg))
		r.Delete("/{productId}", controllers.RemoveCartItem(cartService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/", controllers.ListOrders(orderService, logg))
		r.Get("/{id}", controllers.GetOrder(orderService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleUser, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Post("/", controllers.Checkout(checkoutService, m, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Put("/{id}", controllers.UpdateOrderStatus(orderService, logg))
		})
	})

	return r
}
