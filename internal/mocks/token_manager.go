package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/bookworm-server/internal/model"
)

var (
	_ model.TokenManager   = (*TokenManager)(nil)
	_ model.PasswordHasher = (*PasswordHasher)(nil)
)

// TokenManager is a mock of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (_m *TokenManager) Issue(userID string) (string, error) {
	ret := _m.Called(userID)
	return ret.String(0), ret.Error(1)
}

func (_m *TokenManager) Verify(token string) (string, error) {
	ret := _m.Called(token)
	return ret.String(0), ret.Error(1)
}

// PasswordHasher is a mock of model.PasswordHasher.
type PasswordHasher struct {
	mock.Mock
}

func (_m *PasswordHasher) Hash(plaintext string) (string, error) {
	ret := _m.Called(plaintext)
	return ret.String(0), ret.Error(1)
}

func (_m *PasswordHasher) Verify(plaintext, hash string) (bool, error) {
	ret := _m.Called(plaintext, hash)
	return ret.Bool(0), ret.Error(1)
}
