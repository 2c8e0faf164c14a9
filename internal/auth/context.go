package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const principalKey = "auth_principal"

type principalCtxKey struct{}

// WithPrincipal returns a context carrying principal.
func WithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*domain.Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey{}).(*domain.Principal)
	return principal, ok && principal != nil
}

// PrincipalFromContext retrieves the principal attached to the request.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok && principal != nil
}

func attachPrincipal(c *fiber.Ctx, principal *domain.Principal) {
	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(c.UserContext(), principal))
}
