// Package billing собирает HTTP-сервис биллинга: хранилище, кэш скидок,
// публикацию событий, клиент курсов валют, сервисы и маршруты.
package billing

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/software-billing/internal/config"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/catalog/discountcreate"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/catalog/discountlist"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/catalog/productcreate"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/catalog/versioncreate"
	clientcreate "github.com/magabrotheeeer/software-billing/internal/http/handlers/client/create"
	clientread "github.com/magabrotheeeer/software-billing/internal/http/handlers/client/read"
	clientremove "github.com/magabrotheeeer/software-billing/internal/http/handlers/client/remove"
	clientupdate "github.com/magabrotheeeer/software-billing/internal/http/handlers/client/update"
	contractcreate "github.com/magabrotheeeer/software-billing/internal/http/handlers/contract/create"
	contractlist "github.com/magabrotheeeer/software-billing/internal/http/handlers/contract/listforclient"
	contractpayment "github.com/magabrotheeeer/software-billing/internal/http/handlers/contract/payment"
	contractread "github.com/magabrotheeeer/software-billing/internal/http/handlers/contract/read"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/contract/recognized"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/health"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/revenue/actual"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/revenue/convert"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/revenue/predicted"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/subscription/cancel"
	subcreate "github.com/magabrotheeeer/software-billing/internal/http/handlers/subscription/create"
	sublist "github.com/magabrotheeeer/software-billing/internal/http/handlers/subscription/listforclient"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/subscription/nextrenewal"
	subpayment "github.com/magabrotheeeer/software-billing/internal/http/handlers/subscription/payment"
	subread "github.com/magabrotheeeer/software-billing/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/subscription/revenuecurrent"
	"github.com/magabrotheeeer/software-billing/internal/http/handlers/subscription/revenuepredicted"
	"github.com/magabrotheeeer/software-billing/internal/http/middlewarectx"
	catalogservice "github.com/magabrotheeeer/software-billing/internal/services/catalog"
	clientservice "github.com/magabrotheeeer/software-billing/internal/services/client"
	contractservice "github.com/magabrotheeeer/software-billing/internal/services/contract"
	revenueservice "github.com/magabrotheeeer/software-billing/internal/services/revenue"
	subservice "github.com/magabrotheeeer/software-billing/internal/services/subscription"
)

// Services — сервисы, которые обслуживают маршруты.
type Services struct {
	Clients       *clientservice.ClientService
	Catalog       *catalogservice.CatalogService
	Contracts     *contractservice.ContractService
	Subscriptions *subservice.SubscriptionService
	Revenue       *revenueservice.RevenueService
	Health        health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

		r.Post("/clients", clientcreate.New(logger, s.Clients).ServeHTTP)
		r.Get("/clients/{id}", clientread.New(logger, s.Clients).ServeHTTP)
		r.Put("/clients/{id}", clientupdate.New(logger, s.Clients).ServeHTTP)
		r.Delete("/clients/{id}", clientremove.New(logger, s.Clients).ServeHTTP)
		r.Get("/clients/{id}/contracts", contractlist.New(logger, s.Contracts).ServeHTTP)
		r.Get("/clients/{id}/subscriptions", sublist.New(logger, s.Subscriptions).ServeHTTP)

		r.Post("/products", productcreate.New(logger, s.Catalog).ServeHTTP)
		r.Post("/products/{id}/versions", versioncreate.New(logger, s.Catalog).ServeHTTP)
		r.Post("/discounts", discountcreate.New(logger, s.Catalog).ServeHTTP)
		r.Get("/discounts", discountlist.New(logger, s.Catalog).ServeHTTP)

		r.Post("/contracts", contractcreate.New(logger, s.Contracts).ServeHTTP)
		r.Get("/contracts/{id}", contractread.New(logger, s.Contracts).ServeHTTP)
		r.Post("/contracts/{id}/payments", contractpayment.New(logger, s.Contracts).ServeHTTP)
		r.Get("/contracts/{id}/revenue-recognized", recognized.New(logger, s.Contracts).ServeHTTP)

		r.Post("/subscriptions", subcreate.New(logger, s.Subscriptions).ServeHTTP)
		r.Get("/subscriptions/revenue/current", revenuecurrent.New(logger, s.Subscriptions).ServeHTTP)
		r.Get("/subscriptions/revenue/predicted", revenuepredicted.New(logger, s.Subscriptions).ServeHTTP)
		r.Get("/subscriptions/{id}", subread.New(logger, s.Subscriptions).ServeHTTP)
		r.Post("/subscriptions/{id}/payments", subpayment.New(logger, s.Subscriptions).ServeHTTP)
		r.Post("/subscriptions/{id}/cancel", cancel.New(logger, s.Subscriptions).ServeHTTP)
		r.Get("/subscriptions/{id}/next-renewal", nextrenewal.New(logger, s.Subscriptions).ServeHTTP)

		r.Get("/revenue/actual", actual.New(logger, s.Revenue).ServeHTTP)
		r.Get("/revenue/predicted", predicted.New(logger, s.Revenue).ServeHTTP)
		r.Get("/revenue/convert", convert.New(logger, s.Revenue).ServeHTTP)
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
