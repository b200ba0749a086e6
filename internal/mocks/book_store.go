package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/bookworm-server/internal/model"
)

var _ model.BookStore = (*BookStore)(nil)

// BookStore is a mock of model.BookStore.
type BookStore struct {
	mock.Mock
}

func (_m *BookStore) Create(ctx context.Context, book model.Book) (model.Book, error) {
	ret := _m.Called(ctx, book)
	return ret.Get(0).(model.Book), ret.Error(1)
}

func (_m *BookStore) GetByID(ctx context.Context, id string) (model.Book, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.Book), ret.Error(1)
}

func (_m *BookStore) List(ctx context.Context, offset, limit int) ([]model.Book, error) {
	ret := _m.Called(ctx, offset, limit)
	books, _ := ret.Get(0).([]model.Book)
	return books, ret.Error(1)
}

func (_m *BookStore) Count(ctx context.Context) (int, error) {
	ret := _m.Called(ctx)
	return ret.Int(0), ret.Error(1)
}

func (_m *BookStore) ListByUser(ctx context.Context, userID string) ([]model.Book, error) {
	ret := _m.Called(ctx, userID)
	books, _ := ret.Get(0).([]model.Book)
	return books, ret.Error(1)
}

func (_m *BookStore) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}
