package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketDeleted         EventType = "ticket_deleted"
	EventCommentAdded          EventType = "comment_added"
)

// Actor identifies the principal that caused an event.
type Actor struct {
	PrincipalID string      `json:"principal_id"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
}

// ActorOf builds an Actor from the acting principal.
func ActorOf(principal *domain.Principal) Actor {
	if principal == nil {
		return Actor{}
	}
	return Actor{PrincipalID: principal.ID, Username: principal.Username, Role: principal.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and timestamp.
func New(eventType EventType, ticketID string, actor Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID     string                `json:"customer_id"`
	DepartmentName string                `json:"department_name"`
	Priority       domain.TicketPriority `json:"priority"`
	Title          string                `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentID      string  `json:"agent_id"`
	AgentName    string  `json:"agent_name"`
	PreviousID   *string `json:"previous_agent_id,omitempty"`
	SelfAssigned bool    `json:"self_assigned"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	CustomerID      string `json:"customer_id"`
	CommentsRemoved int64  `json:"comments_removed"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}
