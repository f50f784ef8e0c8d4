package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maldonadorepuestos/backend/api/controllers"
	"github.com/maldonadorepuestos/backend/api/middleware"
	adminsvc "github.com/maldonadorepuestos/backend/internal/admin"
	authsvc "github.com/maldonadorepuestos/backend/internal/auth"
	cartsvc "github.com/maldonadorepuestos/backend/internal/cart"
	catalogsvc "github.com/maldonadorepuestos/backend/internal/catalog"
	ordersvc "github.com/maldonadorepuestos/backend/internal/orders"
	paymentsvc "github.com/maldonadorepuestos/backend/internal/payments"
	quotesvc "github.com/maldonadorepuestos/backend/internal/quotes"
	"github.com/maldonadorepuestos/backend/pkg/config"
	"github.com/maldonadorepuestos/backend/pkg/db"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/redis"
)

// Services bundles every domain service the router exposes.
type Services struct {
	Auth     authsvc.Service
	Catalog  catalogsvc.Service
	Cart     cartsvc.Service
	Orders   ordersvc.Service
	Payments paymentsvc.Service
	Quotes   quotesvc.Service
	Admin    adminsvc.Service

	// OrdersRepo backs the admin order detail endpoint.
	OrdersRepo ordersvc.Repository
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Store.FrontendURL),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]db.Pinger{
			"postgres": dbPinger,
			"redis":    redisClient,
		}))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
				Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
				Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).
				Get("/me", controllers.AuthMe(svcs.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).
				Put("/me", controllers.AuthUpdateMe(svcs.Auth, logg))
		})

		// Public storefront reads.
		r.Get("/categories", controllers.CategoriesList(svcs.Catalog, logg))
		r.Get("/categories/{slug}", controllers.CategoryGetBySlug(svcs.Catalog, logg))
		r.Get("/products", controllers.ProductsList(svcs.Catalog, logg))
		r.Get("/products/code/{code}", controllers.ProductGetByCode(svcs.Catalog, logg))
		r.Get("/products/{productID}", controllers.ProductGet(svcs.Catalog, logg))
		r.Get("/banners", controllers.BannersList(svcs.Catalog, logg))

		// Quote submissions work anonymously; a token attaches the account.
		r.With(middleware.OptionalAuth(cfg.JWT, logg)).
			Post("/quotes", controllers.QuoteCreate(svcs.Quotes, logg))

		r.Post("/webhooks/mercadopago", controllers.MercadoPagoWebhook(svcs.Payments, logg))

		// Authenticated customer surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/quotes", controllers.QuoteListMine(svcs.Quotes, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(svcs.Cart, logg))
				r.Delete("/", controllers.CartClear(svcs.Cart, logg))
				r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
				r.Put("/items/{itemID}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(svcs.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(svcs.Orders, logg))
				r.Get("/", controllers.OrderList(svcs.Orders, logg))
				r.Get("/{orderID}", controllers.OrderGet(svcs.Orders, logg))
				r.Post("/{orderID}/payment", controllers.PaymentPreferenceCreate(svcs.Payments, logg))
				r.Get("/{orderID}/payment", controllers.PaymentStatus(svcs.Payments, logg))
			})
		})

		// Back-office surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg), middleware.RequireAdmin(logg))

			r.Get("/dashboard", controllers.AdminDashboard(svcs.Admin, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
				r.Get("/{orderID}", controllers.AdminOrderGet(svcs.OrdersRepo, logg))
				r.Patch("/{orderID}/status", controllers.AdminOrderUpdateStatus(svcs.Orders, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductList(svcs.Catalog, logg))
				r.Post("/", controllers.AdminProductCreate(svcs.Catalog, logg))
				r.Put("/{productID}", controllers.AdminProductUpdate(svcs.Catalog, logg))
				r.Delete("/{productID}", controllers.AdminProductDelete(svcs.Catalog, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.AdminCategoryList(svcs.Catalog, logg))
				r.Post("/", controllers.AdminCategoryCreate(svcs.Catalog, logg))
				r.Put("/{categoryID}", controllers.AdminCategoryUpdate(svcs.Catalog, logg))
				r.Delete("/{categoryID}", controllers.AdminCategoryDelete(svcs.Catalog, logg))
			})

			r.Route("/banners", func(r chi.Router) {
				r.Get("/", controllers.AdminBannerList(svcs.Catalog, logg))
				r.Post("/", controllers.AdminBannerCreate(svcs.Catalog, logg))
				r.Put("/{bannerID}", controllers.AdminBannerUpdate(svcs.Catalog, logg))
				r.Delete("/{bannerID}", controllers.AdminBannerDelete(svcs.Catalog, logg))
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", controllers.AdminQuoteList(svcs.Quotes, logg))
				r.Get("/{quoteID}", controllers.AdminQuoteGet(svcs.Quotes, logg))
				r.Patch("/{quoteID}", controllers.AdminQuoteUpdate(svcs.Quotes, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminUserList(svcs.Admin, logg))
				r.Patch("/{userID}/active", controllers.AdminUserSetActive(svcs.Admin, logg))
				r.Patch("/{userID}/role", controllers.AdminUserSetRole(svcs.Admin, logg))
			})
		})
	})

	return r
}
