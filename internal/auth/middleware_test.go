package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

// newGateApp echoes the attached principal's username, or "anonymous".
func newGateApp(t *testing.T) (*fiber.App, *TokenCodec) {
	t.Helper()
	store := memory.NewStore()
	seedPrincipal(t, store, "alice", domain.RoleCustomer)

	codec, err := NewTokenCodec(config.LegacySigningKey)
	require.NoError(t, err)
	gate := NewGate(codec, NewCredentialStore(store.Principals(), nil, zap.NewNop()), zap.NewNop())

	app := fiber.New()
	app.Use(gate.Handle)
	app.Get("/*", func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendString("anonymous")
		}
		fromCtx, ok := FromContext(c.UserContext())
		if !ok || fromCtx != principal {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(principal.Username)
	})
	return app, codec
}

func gateRequest(t *testing.T, app *fiber.App, path, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestGateAttachesPrincipal(t *testing.T) {
	app, codec := newGateApp(t)
	token, _, err := codec.Issue("alice", time.Now())
	require.NoError(t, err)

	status, body := gateRequest(t, app, "/api/customer/tickets", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body)
}

func TestGateFailsOpen(t *testing.T) {
	app, codec := newGateApp(t)
	expired, _, err := codec.Issue("alice", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	unknown, _, err := codec.Issue("mallory", time.Now())
	require.NoError(t, err)

	cases := map[string]string{
		"missing header":  "",
		"basic scheme":    "Basic YWxpY2U6cHc=",
		"lowercase":       "bearer x.y.z",
		"garbage token":   "Bearer not-a-token",
		"expired token":   "Bearer " + expired,
		"unknown subject": "Bearer " + unknown,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := gateRequest(t, app, "/api/customer/tickets", header)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "anonymous", body)
		})
	}
}

func TestGateSkipsPublicPrefix(t *testing.T) {
	app, codec := newGateApp(t)
	token, _, err := codec.Issue("alice", time.Now())
	require.NoError(t, err)

	_, body := gateRequest(t, app, "/api/auth/login", "Bearer "+token)
	assert.Equal(t, "anonymous", body)
}
