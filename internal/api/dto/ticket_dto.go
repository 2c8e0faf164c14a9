package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=4000"`
	Priority       string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH low medium high"`
	DepartmentName string `json:"departmentName" validate:"required"`
}

// AssignTicketRequest payload for admin assignment.
type AssignTicketRequest struct {
	AgentID string `json:"agentId" validate:"required"`
}

// TicketResponse is the transfer view of a ticket.
type TicketResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	CreatedDate    string                `json:"createdDate"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	CustomerID     string                `json:"customerId"`
	CustomerName   string                `json:"customerName"`
	AgentID        *string               `json:"agentId"`
	AgentName      *string               `json:"agentName"`
	DepartmentName string                `json:"departmentName"`
}

// NewTicketResponse maps a ticket. CreatedDate is rendered as YYYY-MM-DD.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		CreatedDate:    t.CreatedDate.Format(time.DateOnly),
		Priority:       t.Priority,
		Status:         t.Status,
		CustomerID:     t.CustomerID,
		CustomerName:   t.CustomerName,
		AgentID:        t.AgentID,
		AgentName:      t.AgentName,
		DepartmentName: t.DepartmentName,
	}
}

// NewTicketResponses maps a slice, never returning nil.
func NewTicketResponses(items []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(items))
	for i := range items {
		out = append(out, NewTicketResponse(&items[i]))
	}
	return out
}
