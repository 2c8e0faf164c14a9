package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// requireRole rejects a missing principal as Unauthorized and any role outside
// allowed as Forbidden.
func requireRole(principal *domain.Principal, allowed ...domain.Role) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	for _, role := range allowed {
		if principal.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden(fmt.Sprintf("role %s is not permitted", principal.Role))
}

// notFoundAs converts repository.ErrNotFound into a NotFound domain error for
// resource; other errors pass through.
func notFoundAs(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

// publish hands an event to the dispatcher. Delivery failures are logged and
// never fail the operation that produced the event.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
