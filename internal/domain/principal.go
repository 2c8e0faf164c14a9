package domain

import "time"

// Role enumerates the fixed principal roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleAgent    Role = "AGENT"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// Principal is an account able to authenticate: admin, agent or customer.
// DepartmentID is only set for agents.
type Principal struct {
	ID             string
	Username       string
	Email          string
	FullName       string
	PhoneNumber    string
	PasswordHash   string
	Role           Role
	DepartmentID   *string
	DepartmentName *string
	CreatedAt      time.Time
}

// IsAgentOf reports whether the principal is an agent belonging to departmentID.
func (p *Principal) IsAgentOf(departmentID string) bool {
	return p != nil && p.Role == RoleAgent && p.DepartmentID != nil && *p.DepartmentID == departmentID
}
