package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/product-service/internal/api/http/handlers"
	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Users    *handlers.UsersHandler
	Products *handlers.ProductsHandler
	Gates    *auth.Gates
	Metrics  *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	bearer := cfg.Gates.Bearer()
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	users := app.Group("/users")
	users.Post("/", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Post("/refreshTokens", cfg.Users.RefreshTokens)

	users.Get("/", bearer, cfg.Users.List)
	users.Get("/me", bearer, cfg.Users.Me)
	users.Put("/me", bearer, cfg.Users.UpdateMe)
	users.Delete("/me", bearer, cfg.Users.DeleteMe)

	users.Get("/:userId", bearer, adminOnly, cfg.Users.Get)
	users.Put("/:userId", bearer, adminOnly, cfg.Users.Update)
	users.Delete("/:userId", bearer, adminOnly, cfg.Users.Delete)

	basic := cfg.Gates.Basic()
	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:productId", cfg.Products.Get)
	products.Post("/", basic, cfg.Products.Create)
	products.Put("/:productId", basic, cfg.Products.Update)
	products.Delete("/:productId", basic, cfg.Products.Delete)
}
