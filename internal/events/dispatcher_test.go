package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var calls []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	actor := ActorOf(&domain.Principal{ID: "c-1", Username: "alice", Role: domain.RoleCustomer})
	err := d.Publish(context.Background(), New(EventTicketCreated, "t-1", actor, time.Now(), nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestNewStampsEvent(t *testing.T) {
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ev := New(EventTicketAssigned, "t-9", Actor{Username: "bob"}, at, TicketAssignedPayload{AgentID: "a-1"})

	require.NotEmpty(t, ev.ID)
	assert.Equal(t, at, ev.Timestamp)
	assert.Equal(t, "t-9", ev.TicketID)
	assert.Equal(t, "bob", ev.Actor.Username)
}
