package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AdminHandler exposes principal management and ticket assignment.
type AdminHandler struct {
	auth        *service.AuthService
	admin       *service.AdminService
	tickets     *service.TicketService
	departments *service.DepartmentService
}

// AdminDependencies bundles the services the admin endpoints call.
type AdminDependencies struct {
	Auth        *service.AuthService
	Admin       *service.AdminService
	Tickets     *service.TicketService
	Departments *service.DepartmentService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{auth: deps.Auth, admin: deps.Admin, tickets: deps.Tickets, departments: deps.Departments}
}

// RegisterAgent POST /api/admin/register.
func (h *AdminHandler) RegisterAgent(c *fiber.Ctx) error {
	var req dto.AgentRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	principal, err := h.auth.RegisterAgent(c.UserContext(), currentPrincipal(c), service.SignupProfile{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		PhoneNumber:    req.PhoneNumber,
		DepartmentName: req.DepartmentName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPrincipalResponse(principal)})
}

// ListCustomers GET /api/admin/customers?username=.
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	items, err := h.admin.ListCustomers(c.UserContext(), currentPrincipal(c), c.Query("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalResponses(items)})
}

// ListAgents GET /api/admin/agents?username=.
func (h *AdminHandler) ListAgents(c *fiber.Ctx) error {
	items, err := h.admin.ListAgents(c.UserContext(), currentPrincipal(c), c.Query("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalResponses(items)})
}

// DeleteCustomer DELETE /api/admin/customers/:id.
func (h *AdminHandler) DeleteCustomer(c *fiber.Ctx) error {
	result, err := h.admin.DeleteCustomer(c.UserContext(), currentPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticketsRemoved":  result.TicketsRemoved,
		"commentsRemoved": result.CommentsRemoved,
	}})
}

// DeleteAgent DELETE /api/admin/agents/:id.
func (h *AdminHandler) DeleteAgent(c *fiber.Ctx) error {
	result, err := h.admin.DeleteAgent(c.UserContext(), currentPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticketsUnassigned": result.TicketsUnassigned,
		"commentsRemoved":   result.CommentsRemoved,
	}})
}

// ListDepartments GET /api/admin/departments.
func (h *AdminHandler) ListDepartments(c *fiber.Ctx) error {
	return listDepartments(c, h.departments)
}

// ListTickets GET /api/admin/tickets.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListAll(c.UserContext(), currentPrincipal(c), ticketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// GetTicket GET /api/admin/ticket/:id.
func (h *AdminHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), currentPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AssignTicket PUT /api/admin/tickets/:ticketId/assign.
func (h *AdminHandler) AssignTicket(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.AssignByAdmin(c.UserContext(), currentPrincipal(c), c.Params("ticketId"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
