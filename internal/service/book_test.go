package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/bookworm-server/internal/apierrors"
	"github.com/dtroode/bookworm-server/internal/mocks"
	"github.com/dtroode/bookworm-server/internal/model"
	"github.com/dtroode/bookworm-server/internal/repository/memory"
	"github.com/dtroode/bookworm-server/internal/testutil"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
}

func seedOwner(t *testing.T, db *memory.DB, name string) model.User {
	t.Helper()
	u, err := db.Users().Create(context.Background(), model.User{
		ID:       uuid.NewString(),
		Username: name,
		Email:    name + "@x.io",
	})
	require.NoError(t, err)
	return u
}

func TestBook_Create(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	owner := seedOwner(t, db, "alice")
	storage := &mocks.Storage{}

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("books/.png") && key[len(key)-4:] == ".png"
	}), int64(len(pngHeader)), "image/png").Return(nil).Once()
	storage.On("URL", mock.Anything).Return("http://cdn/bookworm-images/books/x.png")

	s := NewBook(db.Books(), storage, testutil.MakeNoopLogger())
	book, err := s.Create(ctx, model.CreateBookParams{
		UserID:  owner.ID,
		Title:   "Dune",
		Author:  "Frank Herbert",
		Caption: "spice",
		Image:   pngDataURI(),
		Rating:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, book.UserID)
	assert.Equal(t, "http://cdn/bookworm-images/books/x.png", book.Image)
	assert.Contains(t, book.ImageKey, book.ID)
	storage.AssertExpectations(t)
}

func TestBook_Create_Validation(t *testing.T) {
	valid := model.CreateBookParams{UserID: "u", Title: "t", Caption: "c", Image: pngDataURI(), Rating: 3}

	tests := []struct {
		name    string
		mutate  func(p *model.CreateBookParams)
		wantMsg string
	}{
		{name: "missing title", mutate: func(p *model.CreateBookParams) { p.Title = "" }, wantMsg: "Please enter all required fields"},
		{name: "missing caption", mutate: func(p *model.CreateBookParams) { p.Caption = "" }, wantMsg: "Please enter all required fields"},
		{name: "missing image", mutate: func(p *model.CreateBookParams) { p.Image = "" }, wantMsg: "Please enter all required fields"},
		{name: "missing rating", mutate: func(p *model.CreateBookParams) { p.Rating = 0 }, wantMsg: "Please enter all required fields"},
		{name: "rating too high", mutate: func(p *model.CreateBookParams) { p.Rating = 6 }, wantMsg: "Rating must be between 1 and 5"},
		{name: "rating negative", mutate: func(p *model.CreateBookParams) { p.Rating = -1 }, wantMsg: "Rating must be between 1 and 5"},
		{name: "not base64", mutate: func(p *model.CreateBookParams) { p.Image = "%%%" }, wantMsg: "Invalid image"},
		{name: "not an image", mutate: func(p *model.CreateBookParams) {
			p.Image = base64.StdEncoding.EncodeToString([]byte("plain text"))
		}, wantMsg: "Invalid image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			s := NewBook(memory.New().Books(), &mocks.Storage{}, testutil.MakeNoopLogger())
			_, err := s.Create(context.Background(), p)
			apiErr, ok := apierrors.As(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, 400, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestBook_Create_StoreFailureRemovesImage(t *testing.T) {
	books := &mocks.BookStore{}
	storage := &mocks.Storage{}

	storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/png").Return(nil)
	storage.On("URL", mock.Anything).Return("http://cdn/x")
	storage.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()
	books.On("Create", mock.Anything, mock.Anything).Return(model.Book{}, errors.New("db down"))

	s := NewBook(books, storage, testutil.MakeNoopLogger())
	_, err := s.Create(context.Background(), model.CreateBookParams{UserID: "u", Title: "t", Caption: "c", Image: pngDataURI(), Rating: 3})
	require.Error(t, err)
	_, isAPI := apierrors.As(err)
	assert.False(t, isAPI)
	storage.AssertExpectations(t)
}

func TestBook_List(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	owner := seedOwner(t, db, "alice")

	base := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		_, err := db.Books().Create(ctx, model.Book{
			ID:        fmt.Sprintf("b%02d", i),
			UserID:    owner.ID,
			Rating:    4,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	s := NewBook(db.Books(), &mocks.Storage{}, testutil.MakeNoopLogger())

	page, err := s.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, page.CurrentPage)
	assert.Len(t, page.Books, DefaultLimit)
	assert.Equal(t, 12, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "b11", page.Books[0].ID)
	require.NotNil(t, page.Books[0].Owner)
	assert.Equal(t, "alice", page.Books[0].Owner.Username)

	page, err = s.List(ctx, 3, 5)
	require.NoError(t, err)
	assert.Len(t, page.Books, 2)

	page, err = s.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Books, 2)
}

func TestBook_ListByUser_Empty(t *testing.T) {
	s := NewBook(memory.New().Books(), &mocks.Storage{}, testutil.MakeNoopLogger())
	books, err := s.ListByUser(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestBook_Delete(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	owner := seedOwner(t, db, "alice")
	other := seedOwner(t, db, "mallory")

	_, err := db.Books().Create(ctx, model.Book{ID: "b1", UserID: owner.ID, ImageKey: "books/b1.png", Rating: 3})
	require.NoError(t, err)

	storage := &mocks.Storage{}
	storage.On("Exists", mock.Anything, "books/b1.png").Return(true, nil).Once()
	storage.On("Delete", mock.Anything, "books/b1.png").Return(errors.New("storage down")).Once()
	s := NewBook(db.Books(), storage, testutil.MakeNoopLogger())

	err = s.Delete(ctx, other.ID, "b1")
	assert.True(t, apierrors.HasCode(err, apierrors.CodeForbidden))

	err = s.Delete(ctx, owner.ID, "missing")
	assert.True(t, apierrors.HasCode(err, apierrors.CodeBookNotFound))

	require.NoError(t, s.Delete(ctx, owner.ID, "b1"))
	_, err = db.Books().GetByID(ctx, "b1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	storage.AssertExpectations(t)
}

func TestBook_DeleteSkipsMissingImage(t *testing.T) {
	tests := []struct {
		name      string
		exists    bool
		existsErr error
	}{
		{name: "image already removed", exists: false},
		{name: "storage cannot stat image", existsErr: errors.New("timeout")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := memory.New()
			owner := seedOwner(t, db, "alice")
			_, err := db.Books().Create(ctx, model.Book{ID: "b1", UserID: owner.ID, ImageKey: "books/b1.png", Rating: 4})
			require.NoError(t, err)

			storage := &mocks.Storage{}
			storage.On("Exists", mock.Anything, "books/b1.png").Return(tt.exists, tt.existsErr).Once()
			s := NewBook(db.Books(), storage, testutil.MakeNoopLogger())

			require.NoError(t, s.Delete(ctx, owner.ID, "b1"))
			storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			storage.AssertExpectations(t)
		})
	}
}

func TestDecodeImage(t *testing.T) {
	data, ct, err := decodeImage(pngDataURI())
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, pngHeader, data)

	_, ct, err = decodeImage(base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, _, err = decodeImage("data:image/png,rawbytes")
	assert.Error(t, err)
}
