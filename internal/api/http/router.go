package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dialog-engine/internal/api/http/handlers"
	"github.com/spec-kit/dialog-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Messages       *handlers.MessagesHandler
	Tickets        *handlers.TicketsHandler
	Events         *handlers.EventsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The message ingress is open (the channel
// adapter in front of it authenticates end users); ticket and event routes
// are operator-only.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1")
	v1.Post("/messages", cfg.Messages.HandleMessage)
	v1.Delete("/conversations/:user_id", cfg.Messages.ResetConversation)

	operator := v1.Group("", cfg.AuthMiddleware.Handle)
	operator.Get("/tickets", cfg.Tickets.ListTickets)
	operator.Get("/tickets/:id", cfg.Tickets.GetTicket)
	operator.Get("/tickets/:id/export", cfg.Tickets.ExportTicket)
	operator.Patch("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	operator.Get("/users/:user_id/events", cfg.Events.ListUserEvents)
}
