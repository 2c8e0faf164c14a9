package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// SignupProfile carries the registration fields. DepartmentName is only read
// for agents.
type SignupProfile struct {
	Username       string
	Email          string
	Password       string
	FullName       string
	PhoneNumber    string
	DepartmentName string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal *domain.Principal
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	store       repository.Store
	credentials *auth.CredentialStore
	tokens      *auth.TokenCodec
	bcryptCost  int
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(store repository.Store, credentials *auth.CredentialStore, tokens *auth.TokenCodec, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:       store,
		credentials: credentials,
		tokens:      tokens,
		bcryptCost:  cfg.BcryptCost,
		logger:      logger,
		now:         time.Now,
	}
}

// Login verifies the identifier and secret and issues a token. An unknown
// identifier and a wrong secret fail identically with BadCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, secret string) (*LoginResult, error) {
	principal, err := s.credentials.FindByLoginIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Info("login rejected", zap.String("username", identifier))
			return nil, apperrors.ErrBadCredentials
		}
		return nil, err
	}
	if !s.credentials.VerifySecret(secret, principal.PasswordHash) {
		s.logger.Info("login rejected", zap.String("username", identifier))
		return nil, apperrors.ErrBadCredentials
	}

	token, expiresAt, err := s.tokens.Issue(principal.Username, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("login succeeded", zap.String("username", principal.Username), zap.String("role", string(principal.Role)))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Principal: principal}, nil
}

// Signup registers a principal with role. It fails with DuplicateIdentifier
// when the username or email is taken and, for agents, with
// DepartmentNotFound when the department name does not resolve.
func (s *AuthService) Signup(ctx context.Context, role domain.Role, profile SignupProfile) (*domain.Principal, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	profile.Username = strings.TrimSpace(profile.Username)
	profile.Email = strings.TrimSpace(profile.Email)
	if profile.Username == "" || profile.Email == "" || profile.Password == "" {
		return nil, apperrors.NewValidationError("username, email and password are required", nil)
	}

	principals := s.store.Principals()
	if _, err := principals.GetByUsername(ctx, profile.Username); err == nil {
		return nil, apperrors.ErrDuplicateIdentifier.WithDetails(map[string]any{"field": "username"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := principals.GetByEmail(ctx, profile.Email); err == nil {
		return nil, apperrors.ErrDuplicateIdentifier.WithDetails(map[string]any{"field": "email"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	principal := &domain.Principal{
		ID:          uuid.NewString(),
		Username:    profile.Username,
		Email:       profile.Email,
		FullName:    profile.FullName,
		PhoneNumber: profile.PhoneNumber,
		Role:        role,
	}

	if role == domain.RoleAgent {
		dept, err := s.store.Departments().GetByName(ctx, strings.TrimSpace(profile.DepartmentName))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.ErrDepartmentNotFound.WithDetails(map[string]any{"department": profile.DepartmentName})
			}
			return nil, err
		}
		principal.DepartmentID = &dept.ID
		principal.DepartmentName = &dept.Name
	}

	hash, err := auth.HashPassword(profile.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	principal.PasswordHash = hash

	if err := principals.Create(ctx, principal); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateIdentifier
		}
		return nil, err
	}

	s.logger.Info("principal registered", zap.String("username", principal.Username), zap.String("role", string(role)))
	return principal, nil
}

// RegisterAgent signs up an AGENT on behalf of admin.
func (s *AuthService) RegisterAgent(ctx context.Context, admin *domain.Principal, profile SignupProfile) (*domain.Principal, error) {
	if err := requireRole(admin, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Signup(ctx, domain.RoleAgent, profile)
}

// EnsureAdmin creates the bootstrap administrator when no ADMIN exists yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AuthConfig) (bool, error) {
	exists, err := s.store.Principals().ExistsWithRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	_, err = s.Signup(ctx, domain.RoleAdmin, SignupProfile{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		FullName: "Administrator",
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
