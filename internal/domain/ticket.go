package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusInProgress TicketStatus = "INPROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ParseTicketStatus accepts the status name in any case.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	status := TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return status, true
	}
	return "", false
}

// TicketPriority enumerates ticket urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// ParseTicketPriority accepts the priority name in any case.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	priority := TicketPriority(strings.ToUpper(strings.TrimSpace(raw)))
	switch priority {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return priority, true
	}
	return "", false
}

// Ticket is the work item filed by a customer.
// CustomerID and DepartmentID never change after creation. The name fields
// are read-side projections filled in by the store.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	CreatedDate    time.Time
	Priority       TicketPriority
	Status         TicketStatus
	CustomerID     string
	CustomerName   string
	AgentID        *string
	AgentName      *string
	DepartmentID   string
	DepartmentName string
}

// IsAssignedTo reports whether principalID is the ticket's current agent.
func (t *Ticket) IsAssignedTo(principalID string) bool {
	return t.AgentID != nil && *t.AgentID == principalID
}

// TicketDate truncates ts to the date granularity tickets are stored with.
func TicketDate(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
