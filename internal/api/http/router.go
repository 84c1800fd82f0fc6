package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-ops/ticket-assignment/internal/api/http/handlers"
	"github.com/helpdesk-ops/ticket-assignment/internal/auth"
	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authn := cfg.AuthMiddleware.Handle
	write := auth.RequireScope(domain.ScopeAssignmentsWrite)
	read := auth.RequireScope(domain.ScopeAssignmentsRead)

	app.Post("/assignments", authn, write, cfg.Assignments.Assign)
	app.Get("/assignments/:ticket_id", authn, read, cfg.Assignments.GetLatest)
	app.Get("/assignments/:ticket_id/history", authn, read, cfg.Assignments.History)
	app.Get("/technicians", authn, read, cfg.Assignments.ListTechnicians)
	app.Get("/technicians/:id", authn, read, cfg.Assignments.GetTechnician)
}
