package model

import (
	"context"
	"time"
)

// BookStore defines persistence operations for books.
type BookStore interface {
	Create(ctx context.Context, book Book) (Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	List(ctx context.Context, offset, limit int) ([]Book, error)
	Count(ctx context.Context) (int, error)
	ListByUser(ctx context.Context, userID string) ([]Book, error)
	Delete(ctx context.Context, id string) error
}

// Book is a logged book entry owned by a single user.
type Book struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Caption   string     `json:"caption"`
	Image     string     `json:"image"`
	ImageKey  string     `json:"-"`
	Rating    int        `json:"rating"`
	Owner     *BookOwner `json:"user,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// BookOwner is the owner projection embedded into listed books.
type BookOwner struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// CreateBookParams contains parameters to create a book.
type CreateBookParams struct {
	UserID  string
	Title   string
	Author  string
	Caption string
	Image   string
	Rating  int
}

// BookPage is a page of the global book feed.
type BookPage struct {
	Books       []Book `json:"books"`
	CurrentPage int    `json:"currentPage"`
	TotalCount  int    `json:"totalCount"`
	TotalPages  int    `json:"totalPages"`
}
