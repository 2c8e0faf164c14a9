package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const principalKeyPrefix = "principal:"

// RedisPrincipalCache keeps re-hydrated principals keyed by login identifier
// so the request gate can skip the store on hot paths.
type RedisPrincipalCache struct {
	client *redis.Client
	ttl    time.Duration
}

type cachedPrincipal struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	FullName       string      `json:"fullName"`
	PhoneNumber    string      `json:"phoneNumber"`
	PasswordHash   string      `json:"passwordHash"`
	Role           domain.Role `json:"role"`
	DepartmentID   *string     `json:"departmentId,omitempty"`
	DepartmentName *string     `json:"departmentName,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// NewRedisPrincipalCache returns nil when the client is unset or ttl is zero.
func NewRedisPrincipalCache(r *Redis, ttl time.Duration) *RedisPrincipalCache {
	if !r.Enabled() || ttl <= 0 {
		return nil
	}
	return &RedisPrincipalCache{client: r.Client, ttl: ttl}
}

// Get returns the cached principal, or nil with no error on a miss.
func (c *RedisPrincipalCache) Get(ctx context.Context, username string) (*domain.Principal, error) {
	raw, err := c.client.Get(ctx, principalKeyPrefix+username).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached cachedPrincipal
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, err
	}
	return &domain.Principal{
		ID:             cached.ID,
		Username:       cached.Username,
		Email:          cached.Email,
		FullName:       cached.FullName,
		PhoneNumber:    cached.PhoneNumber,
		PasswordHash:   cached.PasswordHash,
		Role:           cached.Role,
		DepartmentID:   cached.DepartmentID,
		DepartmentName: cached.DepartmentName,
		CreatedAt:      cached.CreatedAt,
	}, nil
}

// Set stores principal under its login identifier for the configured TTL.
func (c *RedisPrincipalCache) Set(ctx context.Context, principal *domain.Principal) error {
	payload, err := json.Marshal(cachedPrincipal{
		ID:             principal.ID,
		Username:       principal.Username,
		Email:          principal.Email,
		FullName:       principal.FullName,
		PhoneNumber:    principal.PhoneNumber,
		PasswordHash:   principal.PasswordHash,
		Role:           principal.Role,
		DepartmentID:   principal.DepartmentID,
		DepartmentName: principal.DepartmentName,
		CreatedAt:      principal.CreatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, principalKeyPrefix+principal.Username, payload, c.ttl).Err()
}

// Delete evicts the entry for username.
func (c *RedisPrincipalCache) Delete(ctx context.Context, username string) error {
	return c.client.Del(ctx, principalKeyPrefix+username).Err()
}
