package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures the listing filters shared by customers, agents and admins.
type TicketFilter struct {
	CustomerID     *string
	AgentID        *string
	DepartmentName string
	Status         *domain.TicketStatus
	Priority       *domain.TicketPriority
	TitleContains  string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// UnassignAgent clears the agent on every ticket assigned to agentID and
	// moves INPROGRESS tickets back to PENDING. It returns the affected rows.
	UnassignAgent(ctx context.Context, agentID string) (int64, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketSelect = `
        SELECT t.id, t.title, t.description, t.created_date, t.priority, t.status,
               t.customer_id, c.user_name, t.agent_id, a.user_name, t.department_id, d.name
        FROM tickets t
        JOIN principals c ON c.id = t.customer_id
        LEFT JOIN principals a ON a.id = t.agent_id
        JOIN departments d ON d.id = t.department_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, created_date, priority, status, customer_id, agent_id, department_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.CreatedDate,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerID,
		ticket.AgentID,
		ticket.DepartmentID,
	)
	return err
}

// Update writes the mutable columns. Customer and department are fixed at creation.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, priority=$3, status=$4, agent_id=$5
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.AgentID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id), &ticket); err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("t.customer_id=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("t.agent_id=$%d", len(args)))
	}
	if name := strings.TrimSpace(filter.DepartmentName); name != "" {
		args = append(args, name)
		clauses = append(clauses, fmt.Sprintf("d.name=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if title := strings.TrimSpace(filter.TitleContains); title != "" {
		args = append(args, strings.ToLower(title))
		clauses = append(clauses, fmt.Sprintf("strpos(LOWER(t.title), $%d) > 0", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_date DESC, t.id`,
		ticketSelect, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UnassignAgent(ctx context.Context, agentID string) (int64, error) {
	const query = `
        UPDATE tickets
        SET agent_id = NULL,
            status = CASE WHEN status = $2 THEN $3 ELSE status END
        WHERE agent_id=$1`
	cmd, err := r.db.Exec(ctx, query, agentID, domain.TicketStatusInProgress, domain.TicketStatusPending)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanTicket(row rowScanner, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.CreatedDate,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CustomerID,
		&ticket.CustomerName,
		&ticket.AgentID,
		&ticket.AgentName,
		&ticket.DepartmentID,
		&ticket.DepartmentName,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
