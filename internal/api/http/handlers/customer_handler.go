package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CustomerHandler manages the customer ticket endpoints.
type CustomerHandler struct {
	tickets     *service.TicketService
	departments *service.DepartmentService
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(tickets *service.TicketService, departments *service.DepartmentService) *CustomerHandler {
	return &CustomerHandler{tickets: tickets, departments: departments}
}

// CreateTicket POST /api/customer/ticket.
func (h *CustomerHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), currentPrincipal(c), service.TicketCreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		DepartmentName: req.DepartmentName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /api/customer/tickets.
func (h *CustomerHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListForCustomer(c.UserContext(), currentPrincipal(c), ticketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// GetTicket GET /api/customer/ticket/:id.
func (h *CustomerHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetForCustomer(c.UserContext(), currentPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /api/customer/ticket/:id.
func (h *CustomerHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.tickets.DeleteForCustomer(c.UserContext(), currentPrincipal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateStatus PUT /api/customer/tickets/:ticketId/status?status=CLOSED.
func (h *CustomerHandler) UpdateStatus(c *fiber.Ctx) error {
	status, err := statusParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatusByCustomer(c.UserContext(), currentPrincipal(c), c.Params("ticketId"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListDepartments GET /api/customer/departments.
func (h *CustomerHandler) ListDepartments(c *fiber.Ctx) error {
	return listDepartments(c, h.departments)
}

func listDepartments(c *fiber.Ctx, departments *service.DepartmentService) error {
	items, err := departments.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponses(items)})
}
