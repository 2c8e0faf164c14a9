package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AgentHandler manages the agent ticket endpoints.
type AgentHandler struct {
	tickets     *service.TicketService
	departments *service.DepartmentService
}

// NewAgentHandler constructs handler.
func NewAgentHandler(tickets *service.TicketService, departments *service.DepartmentService) *AgentHandler {
	return &AgentHandler{tickets: tickets, departments: departments}
}

// ListTickets GET /api/agent/tickets.
func (h *AgentHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListAll(c.UserContext(), currentPrincipal(c), ticketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// GetTicket GET /api/agent/ticket/:id.
func (h *AgentHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), currentPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// SelfAssign PUT /api/agent/tickets/:ticketId/assign.
func (h *AgentHandler) SelfAssign(c *fiber.Ctx) error {
	ticket, err := h.tickets.SelfAssign(c.UserContext(), currentPrincipal(c), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListAssigned GET /api/agent/assigned/tickets.
func (h *AgentHandler) ListAssigned(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListAssigned(c.UserContext(), currentPrincipal(c), ticketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// GetAssigned GET /api/agent/assigned/ticket/:id.
func (h *AgentHandler) GetAssigned(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetAssigned(c.UserContext(), currentPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdatePriority PUT /api/agent/assigned/tickets/:ticketId/priority?priority=HIGH.
func (h *AgentHandler) UpdatePriority(c *fiber.Ctx) error {
	priority, err := priorityParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.UpdatePriorityByAgent(c.UserContext(), currentPrincipal(c), c.Params("ticketId"), priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateStatus PUT /api/agent/assigned/tickets/:ticketId/status?status=RESOLVED.
func (h *AgentHandler) UpdateStatus(c *fiber.Ctx) error {
	status, err := statusParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatusByAgent(c.UserContext(), currentPrincipal(c), c.Params("ticketId"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListDepartments GET /api/agent/departments.
func (h *AgentHandler) ListDepartments(c *fiber.Ctx) error {
	return listDepartments(c, h.departments)
}
