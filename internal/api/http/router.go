package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/suggestion-service/internal/api/http/handlers"
	"github.com/spec-kit/suggestion-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Suggestions    *handlers.SuggestionsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Read endpoints use optional
// authentication so anonymous viewers get unpersonalized aggregates; the
// public single-suggestion route skips token handling entirely.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	app.Get("/users/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	suggestions := app.Group("/suggestions")
	suggestions.Get("/", cfg.AuthMiddleware.HandleOptional, cfg.Suggestions.List)
	suggestions.Post("/", cfg.AuthMiddleware.Handle, cfg.Suggestions.Create)
	suggestions.Get("/public/:id", cfg.Suggestions.GetPublic)
	suggestions.Get("/user/:user_id", cfg.AuthMiddleware.HandleOptional, cfg.Suggestions.ListByUser)
	suggestions.Get("/:id", cfg.AuthMiddleware.HandleOptional, cfg.Suggestions.Get)
	suggestions.Post("/:id/like", cfg.AuthMiddleware.Handle, cfg.Suggestions.Like)
	suggestions.Post("/:id/dislike", cfg.AuthMiddleware.Handle, cfg.Suggestions.Dislike)
	suggestions.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Suggestions.Delete)
}
