package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-issue-service/internal/api/http/handlers"
	"github.com/spec-kit/civic-issue-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	Public         *handlers.PublicHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	ReportLimiter  fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Users.ChangePassword)

	public := app.Group("/public")
	public.Get("/issues", cfg.Public.ListIssues)
	public.Get("/issues/:id", cfg.Public.GetIssue)

	issues := app.Group("/issues", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	issues.Post("/", cfg.ReportLimiter, cfg.Issues.CreateIssue)
	issues.Get("/", cfg.Issues.ListIssues)
	issues.Get("/:id", cfg.Issues.GetIssue)
	issues.Post("/:id/comments", cfg.Issues.AddComment)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/issues", cfg.Admin.ListIssues)
	admin.Get("/issues/:id", cfg.Admin.GetIssue)
	admin.Post("/issues/:id/progress", cfg.Admin.AddProgress)
	admin.Put("/issues/:id/assign", cfg.Admin.AssignIssue)
	admin.Get("/stats", cfg.Admin.GetStats)
	admin.Get("/users", cfg.Admin.ListUsers)
}
