package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sellpoint/api/internal/application/account"
	"github.com/sellpoint/api/internal/application/catalog"
	"github.com/sellpoint/api/internal/application/contact"
	"github.com/sellpoint/api/internal/application/order"
	"github.com/sellpoint/api/internal/application/partner"
	"github.com/sellpoint/api/internal/application/shop"
	"github.com/sellpoint/api/internal/config"
	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/sellpoint/api/internal/infrastructure/jwt"
	s3infra "github.com/sellpoint/api/internal/infrastructure/s3"
	"github.com/sellpoint/api/internal/infrastructure/signer"
	"github.com/sellpoint/api/internal/infrastructure/smtp"
	"github.com/sellpoint/api/internal/infrastructure/sns"
	"github.com/sellpoint/api/internal/transport/http/handler"
	appmiddleware "github.com/sellpoint/api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo        *dynamo.UserRepo
	SessionRepo     *dynamo.SessionRepo
	SnapshotRepo    *dynamo.SnapshotRepo
	ShopRepo        *dynamo.ShopRepo
	ContactRepo     *dynamo.ContactRepo
	CategoryRepo    *dynamo.CategoryRepo
	ProductRepo     *dynamo.ProductRepo
	ProductInfoRepo *dynamo.ProductInfoRepo
	OrderRepo       *dynamo.OrderRepo
	S3Store         *s3infra.Store
	Mailer          smtp.Mailer
	SMSSender       sns.SMSSender
	JWTProvider     *jwtinfra.Provider
	Signer          *signer.Generator
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	accountSvc := account.NewService(account.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		SnapshotRepo:    deps.SnapshotRepo,
		Signer:          deps.Signer,
		JWTProvider:     deps.JWTProvider,
		Mailer:          deps.Mailer,
		RefreshTokenDur: cfg.RefreshTokenDur,
		SnapshotTTL:     cfg.VerifyTTL,
		BaseURL:         cfg.BaseURL,
	})
	shopSvc := shop.NewService(deps.ShopRepo)
	contactSvc := contact.NewService(deps.ContactRepo)
	catalogSvc := catalog.NewService(deps.CategoryRepo, deps.ProductRepo, deps.ProductInfoRepo, deps.ShopRepo)
	orderSvc := order.NewService(order.ServiceDeps{
		OrderRepo:       deps.OrderRepo,
		ProductInfoRepo: deps.ProductInfoRepo,
		ContactRepo:     deps.ContactRepo,
		UserRepo:        deps.UserRepo,
		ShopRepo:        deps.ShopRepo,
		Mailer:          deps.Mailer,
		SMSSender:       deps.SMSSender,
	})
	partnerSvc := partner.NewService(partner.ServiceDeps{
		ShopRepo:        deps.ShopRepo,
		CategoryRepo:    deps.CategoryRepo,
		ProductRepo:     deps.ProductRepo,
		ProductInfoRepo: deps.ProductInfoRepo,
		Archive:         deps.S3Store,
	})

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc)
	shopH := handler.NewShopHandler(shopSvc)
	contactH := handler.NewContactHandler(contactSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	partnerH := handler.NewPartnerHandler(partnerSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/login", accountH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/register", accountH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/verify", accountH.Verify)
		r.Post("/auth/refresh", accountH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/look-me", accountH.LookMe)
			r.Post("/auth/update", accountH.Update)
			r.Post("/auth/token", accountH.RequestToken)
			r.Post("/auth/logout", accountH.Logout)
			r.Post("/auth/delete", accountH.Delete)

			r.Get("/contacts", contactH.List)
			r.Post("/contacts", contactH.Create)
			r.Get("/contacts/{id}", contactH.Get)
			r.Put("/contacts/{id}", contactH.Update)
			r.Delete("/contacts/{id}", contactH.Delete)

			r.Get("/shops", shopH.List)
			r.Get("/shops/{id}", shopH.Get)
			r.Patch("/shops/{id}", shopH.PartialUpdate)

			r.Get("/categories", catalogH.Categories)
			r.Get("/products", catalogH.Products)
			r.Get("/price", catalogH.PriceList)

			r.Get("/orders", orderH.List)
			r.Post("/orders", orderH.SetBasket)
			r.Get("/orders/basket", orderH.Basket)
			r.Get("/orders/{id}", orderH.Get)
			r.Put("/orders/{id}", orderH.Confirm)
			r.Patch("/orders/{id}", orderH.SetState)

			r.Post("/partner/update", partnerH.Update)
			r.Get("/partner/orders", orderH.PartnerOrders)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/shops", shopH.Create)
				r.Put("/shops/{id}", shopH.FullUpdate)
				r.Delete("/shops/{id}", shopH.Delete)
				r.Post("/categories", catalogH.UpsertCategory)
			})
		})
	})

	return r
}
