package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SignupRequest payload for customer signup.
type SignupRequest struct {
	Username    string `json:"userName" validate:"required,max=64"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=4"`
	FullName    string `json:"fullName" validate:"max=128"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
}

// AgentRegisterRequest payload for admin-driven agent registration.
type AgentRegisterRequest struct {
	SignupRequest
	DepartmentName string `json:"departmentName" validate:"required"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	JWT       string      `json:"jwt"`
	UserID    string      `json:"userId"`
	UserRole  domain.Role `json:"userRole"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// PrincipalResponse is the public view of a principal. The secret hash is
// never exposed.
type PrincipalResponse struct {
	ID             string      `json:"id"`
	Username       string      `json:"userName"`
	Email          string      `json:"email"`
	FullName       string      `json:"fullName,omitempty"`
	PhoneNumber    string      `json:"phoneNumber,omitempty"`
	Role           domain.Role `json:"userRole"`
	DepartmentName *string     `json:"departmentName,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// NewLoginResponse maps a login outcome.
func NewLoginResponse(token string, expiresAt time.Time, principal *domain.Principal) LoginResponse {
	return LoginResponse{JWT: token, UserID: principal.ID, UserRole: principal.Role, ExpiresAt: expiresAt}
}

// NewPrincipalResponse maps a principal.
func NewPrincipalResponse(p *domain.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:             p.ID,
		Username:       p.Username,
		Email:          p.Email,
		FullName:       p.FullName,
		PhoneNumber:    p.PhoneNumber,
		Role:           p.Role,
		DepartmentName: p.DepartmentName,
		CreatedAt:      p.CreatedAt,
	}
}

// NewPrincipalResponses maps a slice, never returning nil.
func NewPrincipalResponses(items []domain.Principal) []PrincipalResponse {
	out := make([]PrincipalResponse, 0, len(items))
	for i := range items {
		out = append(out, NewPrincipalResponse(&items[i]))
	}
	return out
}
