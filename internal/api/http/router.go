package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/register", cfg.Accounts.Register)
	app.Post("/login", cfg.Accounts.Login)

	app.Get("/me", cfg.AuthMiddleware.Handle, cfg.Accounts.Me)
	app.Put("/me", cfg.AuthMiddleware.Handle, cfg.Accounts.UpdateMe)

	admin := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Post("/", cfg.Admin.CreateUser)
	admin.Get("/", cfg.Admin.ListUsers)
	admin.Get("/:id", cfg.Admin.GetUser)
	admin.Put("/:id", cfg.Admin.UpdateUser)
}
