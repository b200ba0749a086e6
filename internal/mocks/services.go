package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/bookworm-server/internal/model"
)

// AuthService is a mock of handler.AuthService.
type AuthService struct {
	mock.Mock
}

func (_m *AuthService) Register(ctx context.Context, username, email, password string) (model.AuthResult, error) {
	ret := _m.Called(ctx, username, email, password)
	return ret.Get(0).(model.AuthResult), ret.Error(1)
}

func (_m *AuthService) Login(ctx context.Context, email, password string) (model.AuthResult, error) {
	ret := _m.Called(ctx, email, password)
	return ret.Get(0).(model.AuthResult), ret.Error(1)
}

func (_m *AuthService) ChangePassword(ctx context.Context, callerID, current, next string) error {
	ret := _m.Called(ctx, callerID, current, next)
	return ret.Error(0)
}

// BookService is a mock of handler.BookService.
type BookService struct {
	mock.Mock
}

func (_m *BookService) Create(ctx context.Context, params model.CreateBookParams) (model.Book, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.Book), ret.Error(1)
}

func (_m *BookService) List(ctx context.Context, page, limit int) (model.BookPage, error) {
	ret := _m.Called(ctx, page, limit)
	return ret.Get(0).(model.BookPage), ret.Error(1)
}

func (_m *BookService) ListByUser(ctx context.Context, userID string) ([]model.Book, error) {
	ret := _m.Called(ctx, userID)
	books, _ := ret.Get(0).([]model.Book)
	return books, ret.Error(1)
}

func (_m *BookService) Delete(ctx context.Context, callerID, bookID string) error {
	ret := _m.Called(ctx, callerID, bookID)
	return ret.Error(0)
}

// IdentityResolver is a mock of middleware.IdentityResolver.
type IdentityResolver struct {
	mock.Mock
}

func (_m *IdentityResolver) FindByID(ctx context.Context, id string) (model.PublicUser, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.PublicUser), ret.Error(1)
}
