package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/bookworm-server/internal/model"
)

var _ model.Storage = (*Storage)(nil)

// Storage is a mock of model.Storage. Upload drains the reader so that tests
// can assert on the uploaded size.
type Storage struct {
	mock.Mock
}

func (_m *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, _ = io.Copy(io.Discard, reader)
	ret := _m.Called(ctx, key, size, contentType)
	return ret.Error(0)
}

func (_m *Storage) Delete(ctx context.Context, key string) error {
	ret := _m.Called(ctx, key)
	return ret.Error(0)
}

func (_m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	ret := _m.Called(ctx, key)
	return ret.Bool(0), ret.Error(1)
}

func (_m *Storage) URL(key string) string {
	ret := _m.Called(key)
	return ret.String(0)
}
