package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Customer *handlers.CustomerHandler
	Agent    *handlers.AgentHandler
	Admin    *handlers.AdminHandler
	Comments *handlers.CommentHandler
	Gate     *auth.Gate
	Policy   *auth.Policy
	Metrics  *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Everything under /api passes the gate and
// then the policy; /api/auth is public.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	api := app.Group("/api", cfg.Gate.Handle, cfg.Policy.Handle)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)

	admin := api.Group("/admin")
	admin.Post("/register", cfg.Admin.RegisterAgent)
	admin.Get("/customers", cfg.Admin.ListCustomers)
	admin.Delete("/customers/:id", cfg.Admin.DeleteCustomer)
	admin.Get("/agents", cfg.Admin.ListAgents)
	admin.Delete("/agents/:id", cfg.Admin.DeleteAgent)
	admin.Get("/departments", cfg.Admin.ListDepartments)
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Get("/ticket/:id", cfg.Admin.GetTicket)
	admin.Put("/tickets/:ticketId/assign", cfg.Admin.AssignTicket)

	customer := api.Group("/customer")
	customer.Post("/ticket", cfg.Customer.CreateTicket)
	customer.Get("/tickets", cfg.Customer.ListTickets)
	customer.Get("/ticket/:id", cfg.Customer.GetTicket)
	customer.Delete("/ticket/:id", cfg.Customer.DeleteTicket)
	customer.Put("/tickets/:ticketId/status", cfg.Customer.UpdateStatus)
	customer.Get("/departments", cfg.Customer.ListDepartments)

	agent := api.Group("/agent")
	agent.Get("/tickets", cfg.Agent.ListTickets)
	agent.Get("/ticket/:id", cfg.Agent.GetTicket)
	agent.Put("/tickets/:ticketId/assign", cfg.Agent.SelfAssign)
	agent.Get("/assigned/tickets", cfg.Agent.ListAssigned)
	agent.Get("/assigned/ticket/:id", cfg.Agent.GetAssigned)
	agent.Put("/assigned/tickets/:ticketId/priority", cfg.Agent.UpdatePriority)
	agent.Put("/assigned/tickets/:ticketId/status", cfg.Agent.UpdateStatus)
	agent.Get("/departments", cfg.Agent.ListDepartments)

	comments := api.Group("/comments")
	comments.Post("", cfg.Comments.Create)
	comments.Get("/:ticketId", cfg.Comments.List)
}
