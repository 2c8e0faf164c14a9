package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type harness struct {
	store       *memory.Store
	codec       *auth.TokenCodec
	credentials *auth.CredentialStore
	auth        *AuthService
	depts       *DepartmentService
	tickets     *TicketService
	admin       *AdminService
	comments    *CommentService
	events      *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	store := memory.NewStore()

	codec, err := auth.NewTokenCodec(config.LegacySigningKey)
	require.NoError(t, err)
	credentials := auth.NewCredentialStore(store.Principals(), nil, logger)

	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	for _, et := range []events.EventType{
		events.EventTicketCreated, events.EventTicketAssigned, events.EventTicketStatusChanged,
		events.EventTicketPriorityChanged, events.EventTicketDeleted, events.EventCommentAdded,
	} {
		dispatcher.Subscribe(et, rec.handle)
	}

	h := &harness{
		store:       store,
		codec:       codec,
		credentials: credentials,
		auth:        NewAuthService(store, credentials, codec, config.AuthConfig{BcryptCost: 4}, logger),
		depts:       NewDepartmentService(store, logger),
		tickets:     NewTicketService(TicketDependencies{Store: store, Dispatcher: dispatcher, Logger: logger}),
		admin:       NewAdminService(store, credentials, logger),
		comments:    NewCommentService(store, dispatcher, logger),
		events:      rec,
	}
	h.tickets.now = func() time.Time { return fixedNow }

	_, err = h.depts.Seed(ctx, domain.DefaultDepartments)
	require.NoError(t, err)
	return h
}

func (h *harness) customer(t *testing.T, username string) *domain.Principal {
	t.Helper()
	p, err := h.auth.Signup(context.Background(), domain.RoleCustomer, SignupProfile{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw-" + username,
	})
	require.NoError(t, err)
	return p
}

func (h *harness) agent(t *testing.T, username, department string) *domain.Principal {
	t.Helper()
	p, err := h.auth.Signup(context.Background(), domain.RoleAgent, SignupProfile{
		Username:       username,
		Email:          username + "@example.com",
		Password:       "pw-" + username,
		DepartmentName: department,
	})
	require.NoError(t, err)
	return p
}

func (h *harness) adminPrincipal(t *testing.T) *domain.Principal {
	t.Helper()
	_, err := h.auth.EnsureAdmin(context.Background(), config.AuthConfig{
		AdminUsername: "admin", AdminPassword: "admin", AdminEmail: "admin@test.com",
	})
	require.NoError(t, err)
	p, err := h.store.Principals().GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	return p
}

func (h *harness) ticket(t *testing.T, customer *domain.Principal, title, department string) *domain.Ticket {
	t.Helper()
	ticket, err := h.tickets.Create(context.Background(), customer, TicketCreateInput{
		Title:          title,
		Description:    "details",
		Priority:       "HIGH",
		DepartmentName: department,
	})
	require.NoError(t, err)
	return ticket
}
