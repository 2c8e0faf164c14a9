package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestValidateReportsFields(t *testing.T) {
	err := Validate(SignupRequest{Username: "alice", Email: "not-an-email"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	details := apperrors.ToDomainError(err).Details
	assert.Equal(t, "email", details["Email"])
	assert.Equal(t, "required", details["Password"])
	assert.NotContains(t, details, "Username")

	assert.NoError(t, Validate(CreateTicketRequest{Title: "x", DepartmentName: "Technical", Priority: "high"}))
	assert.ErrorIs(t, Validate(CreateTicketRequest{Title: "x", DepartmentName: "Technical", Priority: "urgent"}), apperrors.ErrValidation)
}

func TestAgentRegisterRequestValidatesEmbedded(t *testing.T) {
	err := Validate(AgentRegisterRequest{SignupRequest: SignupRequest{Username: "bob", Email: "bob@example.com", Password: "pass"}})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "DepartmentName")
}

func TestNewTicketResponse(t *testing.T) {
	agentID, agentName := "a-1", "bob"
	ticket := &domain.Ticket{
		ID:             "t-1",
		Title:          "VPN",
		CreatedDate:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Priority:       domain.TicketPriorityHigh,
		Status:         domain.TicketStatusInProgress,
		CustomerID:     "c-1",
		CustomerName:   "alice",
		AgentID:        &agentID,
		AgentName:      &agentName,
		DepartmentName: "Technical",
	}
	got := NewTicketResponse(ticket)
	assert.Equal(t, "2026-03-14", got.CreatedDate)
	assert.Equal(t, "bob", *got.AgentName)
	assert.Equal(t, "Technical", got.DepartmentName)

	assert.NotNil(t, NewTicketResponses(nil))
}

func TestNewPrincipalResponseOmitsHash(t *testing.T) {
	got := NewPrincipalResponse(&domain.Principal{ID: "p-1", Username: "alice", PasswordHash: "secret", Role: domain.RoleCustomer})
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, domain.RoleCustomer, got.Role)
}
