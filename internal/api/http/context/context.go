// Package context carries the authenticated caller through request contexts.
package context

import (
	"context"

	"github.com/dtroode/bookworm-server/internal/model"
)

type userKey struct{}

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the caller resolved by the access guard.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetUserToContext(ctx context.Context, user model.PublicUser) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUserFromContext returns the caller, or false when the request was not
// authenticated.
func (m *Manager) GetUserFromContext(ctx context.Context) (model.PublicUser, bool) {
	user, ok := ctx.Value(userKey{}).(model.PublicUser)
	if !ok || user.ID == "" {
		return model.PublicUser{}, false
	}
	return user, true
}
