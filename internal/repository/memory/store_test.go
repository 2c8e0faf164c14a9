package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

func seed(t *testing.T) (*Store, domain.Principal, domain.Principal, domain.Department) {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	dept := domain.Department{ID: "d-tech", Name: "Technical"}
	require.NoError(t, s.Departments().Create(ctx, &dept))

	customer := domain.Principal{ID: "c-1", Username: "alice", Email: "alice@example.com", Role: domain.RoleCustomer}
	require.NoError(t, s.Principals().Create(ctx, &customer))

	agent := domain.Principal{ID: "a-1", Username: "bob", Email: "bob@example.com", Role: domain.RoleAgent, DepartmentID: &dept.ID}
	require.NoError(t, s.Principals().Create(ctx, &agent))
	require.NotNil(t, agent.DepartmentName)
	assert.Equal(t, "Technical", *agent.DepartmentName)

	return s, customer, agent, dept
}

func TestPrincipalLookups(t *testing.T) {
	s, _, _, _ := seed(t)
	ctx := context.Background()

	p, err := s.Principals().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "c-1", p.ID)

	_, err = s.Principals().GetByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	p, err = s.Principals().GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, p.Role)

	role := domain.RoleAgent
	agents, err := s.Principals().List(ctx, repository.PrincipalFilter{Role: &role, UsernameContains: "o"})
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "bob", agents[0].Username)

	exists, err := s.Principals().ExistsWithRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTicketListFiltersAndOrder(t *testing.T) {
	s, customer, agent, dept := seed(t)
	ctx := context.Background()

	older := domain.Ticket{ID: "t-1", Title: "Printer jam", CreatedDate: domain.TicketDate(time.Now().Add(-48 * time.Hour)),
		Priority: domain.TicketPriorityLow, Status: domain.TicketStatusPending, CustomerID: customer.ID, DepartmentID: dept.ID}
	newer := domain.Ticket{ID: "t-2", Title: "VPN down", CreatedDate: domain.TicketDate(time.Now()),
		Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusInProgress, CustomerID: customer.ID,
		AgentID: &agent.ID, DepartmentID: dept.ID}
	require.NoError(t, s.Tickets().Create(ctx, &older))
	require.NoError(t, s.Tickets().Create(ctx, &newer))
	assert.Equal(t, "Technical", newer.DepartmentName)
	require.NotNil(t, newer.AgentName)
	assert.Equal(t, "bob", *newer.AgentName)

	all, err := s.Tickets().List(ctx, repository.TicketFilter{CustomerID: &customer.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t-2", all[0].ID)

	high := domain.TicketPriorityHigh
	got, err := s.Tickets().List(ctx, repository.TicketFilter{Priority: &high})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t-2", got[0].ID)

	got, err = s.Tickets().List(ctx, repository.TicketFilter{TitleContains: "printer", DepartmentName: "Technical"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t-1", got[0].ID)

	got, err = s.Tickets().List(ctx, repository.TicketFilter{AgentID: &agent.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.Tickets().List(ctx, repository.TicketFilter{DepartmentName: "Finance"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTicketReturnedCopiesAreIsolated(t *testing.T) {
	s, customer, agent, dept := seed(t)
	ctx := context.Background()

	ticket := domain.Ticket{ID: "t-1", Title: "x", Status: domain.TicketStatusPending, Priority: domain.TicketPriorityLow,
		CustomerID: customer.ID, DepartmentID: dept.ID}
	require.NoError(t, s.Tickets().Create(ctx, &ticket))

	loaded, err := s.Tickets().GetByID(ctx, "t-1")
	require.NoError(t, err)
	loaded.AgentID = &agent.ID
	loaded.Status = domain.TicketStatusInProgress

	again, err := s.Tickets().GetByID(ctx, "t-1")
	require.NoError(t, err)
	assert.Nil(t, again.AgentID)
	assert.Equal(t, domain.TicketStatusPending, again.Status)
}

func TestUnassignAgentDemotesInProgress(t *testing.T) {
	s, customer, agent, dept := seed(t)
	ctx := context.Background()

	inProgress := domain.Ticket{ID: "t-1", Title: "a", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusInProgress,
		CustomerID: customer.ID, AgentID: &agent.ID, DepartmentID: dept.ID}
	resolved := domain.Ticket{ID: "t-2", Title: "b", Priority: domain.TicketPriorityLow, Status: domain.TicketStatusResolved,
		CustomerID: customer.ID, AgentID: &agent.ID, DepartmentID: dept.ID}
	require.NoError(t, s.Tickets().Create(ctx, &inProgress))
	require.NoError(t, s.Tickets().Create(ctx, &resolved))

	affected, err := s.Tickets().UnassignAgent(ctx, agent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	got, err := s.Tickets().GetByID(ctx, "t-1")
	require.NoError(t, err)
	assert.Nil(t, got.AgentID)
	assert.Equal(t, domain.TicketStatusPending, got.Status)
	assert.Equal(t, domain.TicketPriorityHigh, got.Priority)

	got, err = s.Tickets().GetByID(ctx, "t-2")
	require.NoError(t, err)
	assert.Nil(t, got.AgentID)
	assert.Equal(t, domain.TicketStatusResolved, got.Status)
}

func TestCommentsByTicketAndAuthor(t *testing.T) {
	s, customer, agent, dept := seed(t)
	ctx := context.Background()

	ticket := domain.Ticket{ID: "t-1", Title: "a", Status: domain.TicketStatusPending, Priority: domain.TicketPriorityLow,
		CustomerID: customer.ID, DepartmentID: dept.ID}
	require.NoError(t, s.Tickets().Create(ctx, &ticket))

	first := domain.Comment{ID: "c-1", TicketID: "t-1", AuthorID: customer.ID, Body: "help"}
	second := domain.Comment{ID: "c-2", TicketID: "t-1", AuthorID: agent.ID, Body: "on it"}
	require.NoError(t, s.Comments().Create(ctx, &first))
	require.NoError(t, s.Comments().Create(ctx, &second))
	assert.Equal(t, "alice", first.AuthorName)

	comments, err := s.Comments().ListByTicket(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)

	n, err := s.Comments().DeleteByAuthor(ctx, agent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Comments().DeleteByTicket(ctx, "t-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s, customer, _, _ := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Principals().Delete(ctx, customer.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Principals().GetByID(ctx, customer.ID)
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx repository.Store) error {
		return tx.Principals().Delete(ctx, customer.ID)
	})
	require.NoError(t, err)
	_, err = s.Principals().GetByID(ctx, customer.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPrincipalCreateRejectsDuplicates(t *testing.T) {
	s, _, _, _ := seed(t)
	ctx := context.Background()

	err := s.Principals().Create(ctx, &domain.Principal{ID: "c-2", Username: "alice", Email: "other@example.com", Role: domain.RoleCustomer})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	err = s.Principals().Create(ctx, &domain.Principal{ID: "c-3", Username: "alice2", Email: "bob@example.com", Role: domain.RoleCustomer})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.Principals().GetByID(ctx, "c-2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsernameSearchIsLiteral(t *testing.T) {
	s, _, _, _ := seed(t)
	ctx := context.Background()
	require.NoError(t, s.Principals().Create(ctx, &domain.Principal{ID: "c-2", Username: "a_c%", Email: "ac@example.com", Role: domain.RoleCustomer}))

	for _, term := range []string{"_", "%", "a_c"} {
		found, err := s.Principals().List(ctx, repository.PrincipalFilter{UsernameContains: term})
		require.NoError(t, err)
		require.Len(t, found, 1, term)
		assert.Equal(t, "a_c%", found[0].Username)
	}
}

func TestWriteOutsideTxSurvivesRollback(t *testing.T) {
	s, customer, _, _ := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.WithTx(ctx, func(tx repository.Store) error {
			if err := tx.Principals().Delete(ctx, customer.ID); err != nil {
				return err
			}
			close(started)
			<-release
			return boom
		})
	}()
	<-started

	written := make(chan error, 1)
	go func() {
		written <- s.Principals().Create(ctx, &domain.Principal{ID: "c-2", Username: "carol", Email: "carol@example.com", Role: domain.RoleCustomer})
	}()

	select {
	case <-written:
		t.Fatal("write completed while a transaction was open")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-txDone, boom)
	require.NoError(t, <-written)

	_, err := s.Principals().GetByID(ctx, "c-2")
	require.NoError(t, err)
	_, err = s.Principals().GetByID(ctx, customer.ID)
	require.NoError(t, err)
}
