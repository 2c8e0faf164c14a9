package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const previewLength = 80

// CommentService manages ticket comments.
type CommentService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewCommentService builds the service.
func NewCommentService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *CommentService {
	return &CommentService{store: store, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Create adds a comment. Only the ticket's customer or its current agent may
// write.
func (s *CommentService) Create(ctx context.Context, author *domain.Principal, ticketID, body string) (*domain.Comment, error) {
	if author == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body is required", map[string]any{"field": "body"})
	}

	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundAs(err, "ticket", ticketID)
	}
	if ticket.CustomerID != author.ID && !ticket.IsAssignedTo(author.ID) {
		return nil, apperrors.NewForbidden("only the ticket's customer or assigned agent may comment")
	}

	comment := &domain.Comment{
		ID:       uuid.NewString(),
		Body:     body,
		TicketID: ticket.ID,
		AuthorID: author.ID,
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.AuthorName = author.Username

	preview := body
	if utf8.RuneCountInString(preview) > previewLength {
		preview = string([]rune(preview)[:previewLength])
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventCommentAdded, ticket.ID, events.ActorOf(author), s.now(),
		events.CommentAddedPayload{CommentID: comment.ID, AuthorID: author.ID, BodyPreview: preview}))
	return comment, nil
}

// List returns a ticket's comments oldest first. The owning customer, any
// agent and any admin may read.
func (s *CommentService) List(ctx context.Context, reader *domain.Principal, ticketID string) ([]domain.Comment, error) {
	if reader == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundAs(err, "ticket", ticketID)
	}
	if reader.Role == domain.RoleCustomer && ticket.CustomerID != reader.ID {
		return nil, apperrors.NewForbidden("ticket belongs to another customer")
	}
	return s.store.Comments().ListByTicket(ctx, ticket.ID)
}
