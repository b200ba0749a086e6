package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/metrics"
	"github.com/dtroode/bookworm-server/internal/model"
)

// CredentialStore owns user credentials. It is the only component that turns
// plaintext passwords into stored hashes.
type CredentialStore struct {
	users   model.UserStore
	hasher  model.PasswordHasher
	cache   *expirable.LRU[string, model.PublicUser]
	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

// CredentialOption configures a CredentialStore.
type CredentialOption func(*CredentialStore)

// WithIdentityCache caches resolved callers by id for ttl. A zero ttl or size
// leaves the cache disabled.
func WithIdentityCache(size int, ttl time.Duration) CredentialOption {
	return func(s *CredentialStore) {
		if size <= 0 || ttl <= 0 {
			return
		}
		s.cache = expirable.NewLRU[string, model.PublicUser](size, nil, ttl)
	}
}

// WithMetrics records identity cache hits and misses.
func WithMetrics(m *metrics.Metrics) CredentialOption {
	return func(s *CredentialStore) {
		s.metrics = m
	}
}

// WithNow overrides the clock used for timestamps.
func WithNow(now func() time.Time) CredentialOption {
	return func(s *CredentialStore) {
		s.now = now
	}
}

func NewCredentialStore(users model.UserStore, hasher model.PasswordHasher, logger *logger.Logger, opts ...CredentialOption) *CredentialStore {
	s := &CredentialStore{
		users:  users,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindByEmail returns the full user record including the password hash.
// It is meant for authentication only.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID resolves a caller to its public projection.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (model.PublicUser, error) {
	if s.cache != nil {
		if user, ok := s.cache.Get(id); ok {
			s.metrics.IdentityCacheLookup(true)
			return user, nil
		}
		s.metrics.IdentityCacheLookup(false)
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}

	public := user.Public()
	if s.cache != nil {
		s.cache.Add(id, public)
	}
	return public, nil
}

func (s *CredentialStore) findUser(ctx context.Context, id string) (model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to find user by id: %w", err)
	}
	return user, nil
}

// CreateUser hashes the password and persists a new user. A taken email is
// reported as model.ErrDuplicate by the underlying store.
func (s *CredentialStore) CreateUser(ctx context.Context, params model.NewUser) (model.PublicUser, error) {
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		ProfileImage: params.ProfileImage,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return model.PublicUser{}, err
		}
		return model.PublicUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Debug("Credential store: user created",
		"user_id", user.ID)

	return user.Public(), nil
}

// ChangePassword rehashes and stores a new password and drops any cached
// identity for the user.
func (s *CredentialStore) ChangePassword(ctx context.Context, id string, plaintext string) error {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, id, hash, s.now().UTC()); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	if s.cache != nil {
		s.cache.Remove(id)
	}
	return nil
}
