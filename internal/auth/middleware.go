package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PublicPrefix is never inspected by the gate or the policy.
const PublicPrefix = "/api/auth/"

const bearerPrefix = "Bearer "

// Gate establishes the request principal from a bearer token. It fails open:
// a missing, malformed or invalid token leaves the request unauthenticated and
// rejection is left to the Policy.
type Gate struct {
	tokens      *TokenCodec
	credentials *CredentialStore
	logger      *zap.Logger
}

// NewGate constructs the middleware.
func NewGate(tokens *TokenCodec, credentials *CredentialStore, logger *zap.Logger) *Gate {
	return &Gate{tokens: tokens, credentials: credentials, logger: logger}
}

// Handle never returns an error of its own and never writes a response.
func (g *Gate) Handle(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), PublicPrefix) {
		return c.Next()
	}

	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return c.Next()
	}

	username, err := g.tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		g.logger.Debug("bearer token rejected", zap.String("path", c.Path()), zap.Error(err))
		return c.Next()
	}

	if _, ok := PrincipalFromContext(c); ok {
		return c.Next()
	}

	principal, err := g.credentials.FindByLoginIdentifier(c.UserContext(), username)
	if err != nil {
		g.logger.Debug("token subject not resolvable", zap.String("username", username), zap.Error(err))
		return c.Next()
	}

	attachPrincipal(c, principal)
	return c.Next()
}
