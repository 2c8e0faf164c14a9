package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService owns the ticket lifecycle: creation, assignment, status and
// priority changes, and the read paths for each role.
//
// Mutations read the ticket, apply the transition and write it back with no
// row locking. Two concurrent assignments of one ticket both succeed and the
// later write wins.
type TicketService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService builds the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// TicketCreateInput describes ticket creation payload. An empty Priority
// defaults to MEDIUM.
type TicketCreateInput struct {
	Title          string
	Description    string
	Priority       string
	DepartmentName string
}

// TicketQuery holds the optional listing filters as received from callers.
type TicketQuery struct {
	Title      string
	Priority   string
	Status     string
	Department string
}

func (q TicketQuery) filter() (repository.TicketFilter, error) {
	filter := repository.TicketFilter{
		TitleContains:  q.Title,
		DepartmentName: q.Department,
	}
	if strings.TrimSpace(q.Priority) != "" {
		priority, ok := domain.ParseTicketPriority(q.Priority)
		if !ok {
			return filter, apperrors.NewValidationError("unknown priority", map[string]any{"priority": q.Priority})
		}
		filter.Priority = &priority
	}
	if strings.TrimSpace(q.Status) != "" {
		status, ok := domain.ParseTicketStatus(q.Status)
		if !ok {
			return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": q.Status})
		}
		filter.Status = &status
	}
	return filter, nil
}

// Create files a new ticket for customer. The ticket starts PENDING with no
// agent, in the department named by the input.
func (s *TicketService) Create(ctx context.Context, customer *domain.Principal, in TicketCreateInput) (*domain.Ticket, error) {
	if err := requireRole(customer, domain.RoleCustomer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}

	priority := domain.TicketPriorityMedium
	if strings.TrimSpace(in.Priority) != "" {
		parsed, ok := domain.ParseTicketPriority(in.Priority)
		if !ok {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": in.Priority})
		}
		priority = parsed
	}

	dept, err := s.store.Departments().GetByName(ctx, strings.TrimSpace(in.DepartmentName))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrDepartmentNotFound.WithDetails(map[string]any{"department": in.DepartmentName})
		}
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		CreatedDate:  domain.TicketDate(s.now()),
		Priority:     priority,
		Status:       domain.TicketStatusPending,
		CustomerID:   customer.ID,
		DepartmentID: dept.ID,
	}
	if err := s.store.Tickets().Create(ctx, ticket); err != nil {
		return nil, err
	}
	ticket.CustomerName = customer.Username
	ticket.DepartmentName = dept.Name

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketCreated, ticket.ID, events.ActorOf(customer), s.now(),
		events.TicketCreatedPayload{
			CustomerID:     customer.ID,
			DepartmentName: dept.Name,
			Priority:       priority,
			Title:          ticket.Title,
		}))
	return ticket, nil
}

// ListForCustomer returns the customer's own tickets.
func (s *TicketService) ListForCustomer(ctx context.Context, customer *domain.Principal, q TicketQuery) ([]domain.Ticket, error) {
	if err := requireRole(customer, domain.RoleCustomer); err != nil {
		return nil, err
	}
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	filter.CustomerID = &customer.ID
	return s.store.Tickets().List(ctx, filter)
}

// GetForCustomer returns one of the customer's tickets.
func (s *TicketService) GetForCustomer(ctx context.Context, customer *domain.Principal, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(customer, domain.RoleCustomer); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != customer.ID {
		return nil, apperrors.NewForbidden("ticket belongs to another customer")
	}
	return ticket, nil
}

// DeleteForCustomer removes one of the customer's tickets and its comments.
func (s *TicketService) DeleteForCustomer(ctx context.Context, customer *domain.Principal, ticketID string) error {
	if err := requireRole(customer, domain.RoleCustomer); err != nil {
		return err
	}
	var removed int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		ticket, err := s.load(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.CustomerID != customer.ID {
			return apperrors.NewForbidden("ticket belongs to another customer")
		}
		if removed, err = tx.Comments().DeleteByTicket(ctx, ticketID); err != nil {
			return err
		}
		return tx.Tickets().Delete(ctx, ticketID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketDeleted, ticketID, events.ActorOf(customer), s.now(),
		events.TicketDeletedPayload{CustomerID: customer.ID, CommentsRemoved: removed}))
	return nil
}

// UpdateStatusByCustomer lets the owning customer close a ticket. CLOSED is
// the only target a customer may request, and only once.
func (s *TicketService) UpdateStatusByCustomer(ctx context.Context, customer *domain.Principal, ticketID string, target domain.TicketStatus) (*domain.Ticket, error) {
	if err := requireRole(customer, domain.RoleCustomer); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != customer.ID {
		return nil, apperrors.NewForbidden("ticket belongs to another customer")
	}
	if target != domain.TicketStatusClosed {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(target))
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.ErrAlreadyClosed.WithDetails(map[string]any{"ticketId": ticket.ID})
	}
	return s.changeStatus(ctx, customer, ticket, target)
}

// ListAll returns every ticket matching q. Agents and admins only.
func (s *TicketService) ListAll(ctx context.Context, principal *domain.Principal, q TicketQuery) ([]domain.Ticket, error) {
	if err := requireRole(principal, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return nil, err
	}
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	return s.store.Tickets().List(ctx, filter)
}

// Get returns any ticket. Agents and admins only.
func (s *TicketService) Get(ctx context.Context, principal *domain.Principal, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(principal, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.load(ctx, s.store, ticketID)
}

// ListAssigned returns the tickets currently assigned to agent.
func (s *TicketService) ListAssigned(ctx context.Context, agent *domain.Principal, q TicketQuery) ([]domain.Ticket, error) {
	if err := requireRole(agent, domain.RoleAgent); err != nil {
		return nil, err
	}
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	filter.AgentID = &agent.ID
	return s.store.Tickets().List(ctx, filter)
}

// GetAssigned returns a ticket only if it is assigned to agent.
func (s *TicketService) GetAssigned(ctx context.Context, agent *domain.Principal, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(agent, domain.RoleAgent); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(agent.ID) {
		return nil, apperrors.NewForbidden("ticket is not assigned to you")
	}
	return ticket, nil
}

// AssignByAdmin assigns agentID to the ticket and moves it to INPROGRESS.
// A RESOLVED ticket may be reassigned; a CLOSED one may not.
func (s *TicketService) AssignByAdmin(ctx context.Context, admin *domain.Principal, ticketID, agentID string) (*domain.Ticket, error) {
	if err := requireRole(admin, domain.RoleAdmin); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	agent, err := s.store.Principals().GetByID(ctx, agentID)
	if err != nil {
		return nil, notFoundAs(err, "agent", agentID)
	}
	if agent.Role != domain.RoleAgent {
		return nil, apperrors.NewNotFound("agent", map[string]any{"id": agentID})
	}
	return s.assign(ctx, admin, ticket, agent, false)
}

// SelfAssign assigns an unassigned ticket of the agent's department to the
// agent.
func (s *TicketService) SelfAssign(ctx context.Context, agent *domain.Principal, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(agent, domain.RoleAgent); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AgentID != nil {
		return nil, apperrors.ErrAlreadyAssigned.WithDetails(map[string]any{"ticketId": ticket.ID})
	}
	return s.assign(ctx, agent, ticket, agent, true)
}

func (s *TicketService) assign(ctx context.Context, actor *domain.Principal, ticket *domain.Ticket, agent *domain.Principal, self bool) (*domain.Ticket, error) {
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusInProgress))
	}
	if !agent.IsAgentOf(ticket.DepartmentID) {
		return nil, apperrors.ErrDepartmentMismatch.WithDetails(map[string]any{
			"ticketDepartment": ticket.DepartmentName,
			"agentId":          agent.ID,
		})
	}

	previous := ticket.AgentID
	oldStatus := ticket.Status
	agentID := agent.ID
	ticket.AgentID = &agentID
	agentName := agent.Username
	ticket.AgentName = &agentName
	ticket.Status = domain.TicketStatusInProgress
	if err := s.store.Tickets().Update(ctx, ticket); err != nil {
		return nil, notFoundAs(err, "ticket", ticket.ID)
	}

	at := s.now()
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketAssigned, ticket.ID, events.ActorOf(actor), at,
		events.TicketAssignedPayload{AgentID: agent.ID, AgentName: agent.Username, PreviousID: previous, SelfAssigned: self}))
	if oldStatus != ticket.Status {
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketStatusChanged, ticket.ID, events.ActorOf(actor), at,
			events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status}))
	}
	return ticket, nil
}

// UpdateStatusByAgent applies the one transition an agent may make,
// INPROGRESS to RESOLVED, on a ticket assigned to that agent.
func (s *TicketService) UpdateStatusByAgent(ctx context.Context, agent *domain.Principal, ticketID string, target domain.TicketStatus) (*domain.Ticket, error) {
	if err := requireRole(agent, domain.RoleAgent); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(agent.ID) {
		return nil, apperrors.NewForbidden("ticket is not assigned to you")
	}
	if ticket.Status != domain.TicketStatusInProgress || target != domain.TicketStatusResolved {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(target))
	}
	return s.changeStatus(ctx, agent, ticket, target)
}

// UpdatePriorityByAgent sets any priority on a ticket assigned to agent,
// regardless of status.
func (s *TicketService) UpdatePriorityByAgent(ctx context.Context, agent *domain.Principal, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if err := requireRole(agent, domain.RoleAgent); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(agent.ID) {
		return nil, apperrors.NewForbidden("ticket is not assigned to you")
	}

	old := ticket.Priority
	ticket.Priority = priority
	if err := s.store.Tickets().Update(ctx, ticket); err != nil {
		return nil, notFoundAs(err, "ticket", ticket.ID)
	}
	if old != priority {
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketPriorityChanged, ticket.ID, events.ActorOf(agent), s.now(),
			events.TicketPriorityChangedPayload{OldPriority: old, NewPriority: priority}))
	}
	return ticket, nil
}

func (s *TicketService) changeStatus(ctx context.Context, actor *domain.Principal, ticket *domain.Ticket, target domain.TicketStatus) (*domain.Ticket, error) {
	old := ticket.Status
	ticket.Status = target
	if err := s.store.Tickets().Update(ctx, ticket); err != nil {
		return nil, notFoundAs(err, "ticket", ticket.ID)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketStatusChanged, ticket.ID, events.ActorOf(actor), s.now(),
		events.TicketStatusChangedPayload{OldStatus: old, NewStatus: target}))
	return ticket, nil
}

func (s *TicketService) load(ctx context.Context, store repository.Store, ticketID string) (*domain.Ticket, error) {
	ticket, err := store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundAs(err, "ticket", ticketID)
	}
	return ticket, nil
}
