package auth

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// PrincipalCache is a read-through cache keyed by login identifier.
type PrincipalCache interface {
	Get(ctx context.Context, username string) (*domain.Principal, error)
	Set(ctx context.Context, principal *domain.Principal) error
	Delete(ctx context.Context, username string) error
}

// CredentialStore looks up principals by login identifier and checks secrets.
type CredentialStore struct {
	principals repository.PrincipalRepository
	cache      PrincipalCache
	logger     *zap.Logger
	loads      singleflight.Group
	// evictions counts Evict calls. A load that overlaps one must not
	// leave its result in the cache.
	evictions atomic.Uint64
}

// NewCredentialStore builds a store over the principal repository. cache may be nil.
func NewCredentialStore(principals repository.PrincipalRepository, cache PrincipalCache, logger *zap.Logger) *CredentialStore {
	return &CredentialStore{principals: principals, cache: cache, logger: logger}
}

// FindByLoginIdentifier returns the principal whose login identifier equals id
// exactly. Cache failures are logged and fall through to the repository.
func (s *CredentialStore) FindByLoginIdentifier(ctx context.Context, id string) (*domain.Principal, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("principal cache read failed", zap.String("username", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	// Concurrent misses for one identifier share a single repository read.
	v, err, _ := s.loads.Do(id, func() (interface{}, error) {
		generation := s.evictions.Load()
		principal, err := s.principals.GetByUsername(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.fill(ctx, principal, generation)
		}
		return principal, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("principal", map[string]any{"username": id})
		}
		return nil, err
	}

	principal := *v.(*domain.Principal)
	return &principal, nil
}

// fill caches principal unless an eviction happened since generation. An
// eviction racing the write itself is undone by deleting the entry again.
func (s *CredentialStore) fill(ctx context.Context, principal *domain.Principal, generation uint64) {
	if s.evictions.Load() != generation {
		return
	}
	if err := s.cache.Set(ctx, principal); err != nil {
		s.logger.Warn("principal cache write failed", zap.String("username", principal.Username), zap.Error(err))
		return
	}
	if s.evictions.Load() != generation {
		if err := s.cache.Delete(ctx, principal.Username); err != nil {
			s.logger.Warn("principal cache evict failed", zap.String("username", principal.Username), zap.Error(err))
		}
	}
}

// VerifySecret compares plain against the stored bcrypt hash.
func (s *CredentialStore) VerifySecret(plain, storedHash string) bool {
	return VerifySecret(plain, storedHash)
}

// Evict drops a cached principal after it is deleted. Loads already in
// flight for username are not cached.
func (s *CredentialStore) Evict(ctx context.Context, username string) {
	s.evictions.Add(1)
	s.loads.Forget(username)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, username); err != nil {
		s.logger.Warn("principal cache evict failed", zap.String("username", username), zap.Error(err))
	}
}
