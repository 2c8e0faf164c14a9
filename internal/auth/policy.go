package auth

import (
	"fmt"
	"strings"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const anyRole = "*"

const policyModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (p.sub == "*" || r.sub == p.sub) && keyMatch(r.obj, p.obj)
`

// scopedPrefixes are the route prefixes with a role requirement. Paths outside
// them only need an authenticated principal.
var scopedPrefixes = []struct {
	prefix string
	role   string
}{
	{"/api/admin/", string(domain.RoleAdmin)},
	{"/api/customer/", string(domain.RoleCustomer)},
	{"/api/agent/", string(domain.RoleAgent)},
	{"/api/comments/", anyRole},
}

// Policy maps principal roles to the route prefixes they may reach.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy loads the static role table into a casbin enforcer.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("auth: policy model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("auth: policy enforcer: %w", err)
	}
	for _, scope := range scopedPrefixes {
		if _, err := enforcer.AddPolicy(scope.role, scope.prefix+"*"); err != nil {
			return nil, fmt.Errorf("auth: add policy %s: %w", scope.prefix, err)
		}
	}
	return &Policy{enforcer: enforcer}, nil
}

// Authorize decides whether principal may reach path. A nil principal is
// Unauthorized on every non-public path; a role outside the prefix's
// requirement is Forbidden.
func (p *Policy) Authorize(principal *domain.Principal, path string) error {
	// Routes may be registered case-insensitively; match on the folded path.
	path = strings.ToLower(path)
	if strings.HasPrefix(path, PublicPrefix) {
		return nil
	}
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	obj := path
	if !strings.HasSuffix(obj, "/") {
		obj += "/"
	}
	if !isScoped(obj) {
		return nil
	}

	allowed, err := p.enforcer.Enforce(string(principal.Role), obj)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !allowed {
		return apperrors.NewForbidden(fmt.Sprintf("role %s may not access %s", principal.Role, path))
	}
	return nil
}

// Handle is the fiber middleware form of Authorize. It must run after the Gate.
func (p *Policy) Handle(c *fiber.Ctx) error {
	principal, _ := PrincipalFromContext(c)
	if err := p.Authorize(principal, c.Path()); err != nil {
		return err
	}
	return c.Next()
}

func isScoped(obj string) bool {
	for _, scope := range scopedPrefixes {
		if strings.HasPrefix(obj, scope.prefix) {
			return true
		}
	}
	return false
}
