package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// currentPrincipal returns the principal attached by the gate, or nil. The
// services reject a nil principal themselves.
func currentPrincipal(c *fiber.Ctx) *domain.Principal {
	principal, _ := auth.PrincipalFromContext(c)
	return principal
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}

func ticketQuery(c *fiber.Ctx) service.TicketQuery {
	return service.TicketQuery{
		Title:      c.Query("title"),
		Priority:   c.Query("priority"),
		Status:     c.Query("status"),
		Department: c.Query("department"),
	}
}

func statusParam(c *fiber.Ctx) (domain.TicketStatus, error) {
	raw := c.Query("status")
	status, ok := domain.ParseTicketStatus(raw)
	if !ok {
		return "", apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
	}
	return status, nil
}

func priorityParam(c *fiber.Ctx) (domain.TicketPriority, error) {
	raw := c.Query("priority")
	priority, ok := domain.ParseTicketPriority(raw)
	if !ok {
		return "", apperrors.NewValidationError("unknown priority", map[string]any{"priority": raw})
	}
	return priority, nil
}
