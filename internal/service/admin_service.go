package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// DeleteResult reports what a cascading delete removed or changed.
type DeleteResult struct {
	TicketsRemoved    int
	TicketsUnassigned int64
	CommentsRemoved   int64
}

// AdminService manages customers and agents on behalf of administrators.
type AdminService struct {
	store       repository.Store
	credentials *auth.CredentialStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewAdminService builds the service.
func NewAdminService(store repository.Store, credentials *auth.CredentialStore, logger *zap.Logger) *AdminService {
	return &AdminService{store: store, credentials: credentials, logger: logger, now: time.Now}
}

// ListCustomers returns customers whose username contains search.
func (s *AdminService) ListCustomers(ctx context.Context, admin *domain.Principal, search string) ([]domain.Principal, error) {
	return s.list(ctx, admin, domain.RoleCustomer, search)
}

// ListAgents returns agents whose username contains search.
func (s *AdminService) ListAgents(ctx context.Context, admin *domain.Principal, search string) ([]domain.Principal, error) {
	return s.list(ctx, admin, domain.RoleAgent, search)
}

func (s *AdminService) list(ctx context.Context, admin *domain.Principal, role domain.Role, search string) ([]domain.Principal, error) {
	if err := requireRole(admin, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.Principals().List(ctx, repository.PrincipalFilter{Role: &role, UsernameContains: search})
}

// DeleteCustomer removes the customer's tickets and their comments, then the
// customer, in one transaction.
func (s *AdminService) DeleteCustomer(ctx context.Context, admin *domain.Principal, customerID string) (*DeleteResult, error) {
	if err := requireRole(admin, domain.RoleAdmin); err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	var username string
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		customer, err := loadWithRole(ctx, tx, customerID, domain.RoleCustomer, "customer")
		if err != nil {
			return err
		}
		username = customer.Username

		tickets, err := tx.Tickets().List(ctx, repository.TicketFilter{CustomerID: &customer.ID})
		if err != nil {
			return err
		}
		for _, ticket := range tickets {
			n, err := tx.Comments().DeleteByTicket(ctx, ticket.ID)
			if err != nil {
				return err
			}
			result.CommentsRemoved += n
			if err := tx.Tickets().Delete(ctx, ticket.ID); err != nil {
				return err
			}
			result.TicketsRemoved++
		}
		n, err := tx.Comments().DeleteByAuthor(ctx, customer.ID)
		if err != nil {
			return err
		}
		result.CommentsRemoved += n
		return tx.Principals().Delete(ctx, customer.ID)
	})
	if err != nil {
		return nil, err
	}

	s.credentials.Evict(ctx, username)
	s.logger.Info("customer deleted",
		zap.String("admin", admin.Username),
		zap.String("customer", username),
		zap.Int("tickets_removed", result.TicketsRemoved),
		zap.Int64("comments_removed", result.CommentsRemoved))
	return result, nil
}

// DeleteAgent unassigns the agent's tickets, demoting INPROGRESS ones to
// PENDING, removes the agent's comments and then the agent, in one
// transaction.
func (s *AdminService) DeleteAgent(ctx context.Context, admin *domain.Principal, agentID string) (*DeleteResult, error) {
	if err := requireRole(admin, domain.RoleAdmin); err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	var username string
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		agent, err := loadWithRole(ctx, tx, agentID, domain.RoleAgent, "agent")
		if err != nil {
			return err
		}
		username = agent.Username

		if result.CommentsRemoved, err = tx.Comments().DeleteByAuthor(ctx, agent.ID); err != nil {
			return err
		}
		if result.TicketsUnassigned, err = tx.Tickets().UnassignAgent(ctx, agent.ID); err != nil {
			return err
		}
		return tx.Principals().Delete(ctx, agent.ID)
	})
	if err != nil {
		return nil, err
	}

	s.credentials.Evict(ctx, username)
	s.logger.Info("agent deleted",
		zap.String("admin", admin.Username),
		zap.String("agent", username),
		zap.Int64("tickets_unassigned", result.TicketsUnassigned),
		zap.Int64("comments_removed", result.CommentsRemoved))
	return result, nil
}

func loadWithRole(ctx context.Context, store repository.Store, id string, role domain.Role, resource string) (*domain.Principal, error) {
	principal, err := store.Principals().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, resource, id)
	}
	if principal.Role != role {
		return nil, apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return principal, nil
}
