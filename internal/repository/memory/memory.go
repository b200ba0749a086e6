// Package memory implements in-memory stores for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dtroode/bookworm-server/internal/model"
)

// DB implements an in-memory database. The mutex makes the email uniqueness
// check and the insert a single atomic step.
type DB struct {
	mu      sync.RWMutex
	users   map[string]model.User
	byEmail map[string]string
	books   map[string]model.Book
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		users:   make(map[string]model.User),
		byEmail: make(map[string]string),
		books:   make(map[string]model.Book),
	}
}

// Ping reports whether the database can serve requests.
func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Users returns the user store view of the database.
func (db *DB) Users() *UserRepository {
	return &UserRepository{db: db}
}

// Books returns the book store view of the database.
func (db *DB) Books() *BookRepository {
	return &BookRepository{db: db}
}

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository stores users in memory.
type UserRepository struct {
	db *DB
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.byEmail[email]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return r.db.users[id], nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, taken := r.db.byEmail[user.Email]; taken {
		return model.User{}, model.ErrDuplicate
	}
	if _, taken := r.db.users[user.ID]; taken {
		return model.User{}, model.ErrDuplicate
	}

	r.db.users[user.ID] = user
	r.db.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, updatedAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return model.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = updatedAt
	r.db.users[id] = user
	return nil
}

var _ model.BookStore = (*BookRepository)(nil)

// BookRepository stores books in memory.
type BookRepository struct {
	db *DB
}

func (r *BookRepository) Create(ctx context.Context, book model.Book) (model.Book, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[book.UserID]; !ok {
		return model.Book{}, model.ErrNotFound
	}
	if _, taken := r.db.books[book.ID]; taken {
		return model.Book{}, model.ErrDuplicate
	}
	r.db.books[book.ID] = book
	return book, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (model.Book, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	book, ok := r.db.books[id]
	if !ok {
		return model.Book{}, model.ErrNotFound
	}
	return book, nil
}

// List returns books newest first with their owners populated.
func (r *BookRepository) List(ctx context.Context, offset, limit int) ([]model.Book, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	books := r.sortedLocked(func(model.Book) bool { return true })
	if offset >= len(books) {
		return []model.Book{}, nil
	}
	end := offset + limit
	if end > len(books) {
		end = len(books)
	}

	page := make([]model.Book, 0, end-offset)
	for _, b := range books[offset:end] {
		if owner, ok := r.db.users[b.UserID]; ok {
			b.Owner = &model.BookOwner{ID: owner.ID, Username: owner.Username, ProfileImage: owner.ProfileImage}
		}
		page = append(page, b)
	}
	return page, nil
}

func (r *BookRepository) Count(ctx context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return len(r.db.books), nil
}

func (r *BookRepository) ListByUser(ctx context.Context, userID string) ([]model.Book, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.sortedLocked(func(b model.Book) bool { return b.UserID == userID }), nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.books[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.db.books, id)
	return nil
}

func (r *BookRepository) sortedLocked(keep func(model.Book) bool) []model.Book {
	books := make([]model.Book, 0, len(r.db.books))
	for _, b := range r.db.books {
		if keep(b) {
			books = append(books, b)
		}
	}
	sort.Slice(books, func(i, j int) bool {
		if books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].ID > books[j].ID
		}
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books
}
