package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/bookworm-server/internal/apierrors"
	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5

	maxImageBytes = 10 << 20
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Book struct {
	books   model.BookStore
	storage model.Storage
	logger  *logger.Logger
	now     func() time.Time
}

func NewBook(books model.BookStore, storage model.Storage, logger *logger.Logger) *Book {
	return &Book{
		books:   books,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Create uploads the book image and stores the book for the caller.
func (s *Book) Create(ctx context.Context, params model.CreateBookParams) (model.Book, error) {
	if params.Title == "" || params.Caption == "" || params.Image == "" || params.Rating == 0 {
		return model.Book{}, apierrors.NewErrInvalidInput("Please enter all required fields")
	}
	if params.Rating < 1 || params.Rating > 5 {
		return model.Book{}, apierrors.NewErrInvalidInput("Rating must be between 1 and 5")
	}

	data, contentType, err := decodeImage(params.Image)
	if err != nil {
		return model.Book{}, apierrors.NewErrInvalidInput("Invalid image")
	}

	id := uuid.NewString()
	key := "books/" + id + imageExtensions[contentType]
	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		s.logger.Error("Book service: failed to upload image",
			"key", key,
			"error", err.Error())
		return model.Book{}, fmt.Errorf("failed to upload image: %w", err)
	}

	now := s.now().UTC()
	book, err := s.books.Create(ctx, model.Book{
		ID:        id,
		UserID:    params.UserID,
		Title:     params.Title,
		Author:    params.Author,
		Caption:   params.Caption,
		Image:     s.storage.URL(key),
		ImageKey:  key,
		Rating:    params.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.removeImage(ctx, key)
		if errors.Is(err, model.ErrNotFound) {
			return model.Book{}, apierrors.NewErrUnauthorized(err)
		}
		return model.Book{}, fmt.Errorf("failed to create book: %w", err)
	}

	s.logger.Info("Book service: book created",
		"book_id", book.ID,
		"user_id", book.UserID)

	return book, nil
}

// List returns one page of the global feed, newest first.
func (s *Book) List(ctx context.Context, page, limit int) (model.BookPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	books, err := s.books.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return model.BookPage{}, err
	}
	total, err := s.books.Count(ctx)
	if err != nil {
		return model.BookPage{}, err
	}

	return model.BookPage{
		Books:       books,
		CurrentPage: page,
		TotalCount:  total,
		TotalPages:  (total + limit - 1) / limit,
	}, nil
}

func (s *Book) ListByUser(ctx context.Context, userID string) ([]model.Book, error) {
	books, err := s.books.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// Delete removes a book owned by callerID. Image removal failures are
// logged and do not fail the request.
func (s *Book) Delete(ctx context.Context, callerID, bookID string) error {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierrors.NewErrBookNotFound()
		}
		return err
	}

	if err := Authorize(book.UserID, callerID); err != nil {
		s.logger.Info("Book service: delete forbidden",
			"book_id", bookID,
			"user_id", callerID)
		return err
	}

	if book.ImageKey != "" {
		s.removeStoredImage(ctx, book.ImageKey)
	}

	if err := s.books.Delete(ctx, bookID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierrors.NewErrBookNotFound()
		}
		return err
	}

	s.logger.Info("Book service: book deleted",
		"book_id", bookID,
		"user_id", callerID)
	return nil
}

// removeStoredImage deletes the image only when storage still holds it.
func (s *Book) removeStoredImage(ctx context.Context, key string) {
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		s.logger.Warn("Book service: failed to stat image",
			"key", key,
			"error", err.Error())
		return
	}
	if !exists {
		s.logger.Debug("Book service: image already gone", "key", key)
		return
	}
	s.removeImage(ctx, key)
}

func (s *Book) removeImage(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Book service: failed to delete image",
			"key", key,
			"error", err.Error())
	}
}

// decodeImage accepts a data URI or bare base64 payload and returns the bytes
// with their sniffed content type.
func decodeImage(image string) ([]byte, string, error) {
	payload := image
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, "", errors.New("unsupported data uri")
		}
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		return nil, "", errors.New("image size out of range")
	}

	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", fmt.Errorf("unsupported image type %q", contentType)
	}
	return data, contentType, nil
}
