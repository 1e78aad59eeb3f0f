package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/http/handlers"
	"github.com/spec-kit/ticketdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	profile := authGroup.Group("", cfg.AuthMiddleware.Handle)
	profile.Get("/profile", cfg.Auth.GetProfile)
	profile.Put("/profile", cfg.Auth.UpdateProfile)
	profile.Put("/deactivate", cfg.Auth.Deactivate)
	profile.Put("/activate", cfg.Auth.Activate)

	admin := authGroup.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/", cfg.Auth.ListUsers)
	admin.Delete("/:id", cfg.Auth.DeleteUser)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	// stats registers before :id so "stats" never parses as a ticket id
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Delete("/:id", cfg.Tickets.Delete)
}
