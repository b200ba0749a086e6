// Package mocks provides testify mocks for the model interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/bookworm-server/internal/model"
)

var _ model.UserStore = (*UserStore)(nil)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

// NewUserStore creates a UserStore whose expectations are asserted on cleanup.
func NewUserStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserStore {
	m := &UserStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	ret := _m.Called(ctx, email)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByID(ctx context.Context, id string) (model.User, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	ret := _m.Called(ctx, user)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) UpdatePassword(ctx context.Context, id string, passwordHash string, updatedAt time.Time) error {
	ret := _m.Called(ctx, id, passwordHash, updatedAt)
	return ret.Error(0)
}
