package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestPolicyAuthorize(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	admin := &domain.Principal{Username: "root", Role: domain.RoleAdmin}
	agent := &domain.Principal{Username: "bob", Role: domain.RoleAgent}
	customer := &domain.Principal{Username: "alice", Role: domain.RoleCustomer}

	cases := []struct {
		name      string
		principal *domain.Principal
		path      string
		want      error
	}{
		{"public without principal", nil, "/api/auth/login", nil},
		{"admin route anonymous", nil, "/api/admin/agents", apperrors.ErrUnauthorized},
		{"admin route admin", admin, "/api/admin/agents", nil},
		{"admin route customer", customer, "/api/admin/agents", apperrors.ErrForbidden},
		{"customer route customer", customer, "/api/customer/ticket/1", nil},
		{"customer route agent", agent, "/api/customer/ticket/1", apperrors.ErrForbidden},
		{"agent route agent", agent, "/api/agent/assigned/tickets", nil},
		{"agent route admin", admin, "/api/agent/tickets", apperrors.ErrForbidden},
		{"comments any role", customer, "/api/comments/t-1", nil},
		{"comments agent", agent, "/api/comments/t-1", nil},
		{"comments anonymous", nil, "/api/comments/t-1", apperrors.ErrUnauthorized},
		{"bare prefix", admin, "/api/admin", nil},
		{"prefix lookalike", customer, "/api/administrator/x", nil},
		{"other route any role", agent, "/api/profile", nil},
		{"other route anonymous", nil, "/api/profile", apperrors.ErrUnauthorized},
		{"upper-case admin route customer", customer, "/API/ADMIN/register", apperrors.ErrForbidden},
		{"mixed-case agent route customer", customer, "/api/Agent/departments", apperrors.ErrForbidden},
		{"mixed-case public route", nil, "/api/Auth/login", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Authorize(tc.principal, tc.path)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
