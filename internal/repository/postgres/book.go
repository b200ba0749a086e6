package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/bookworm-server/internal/model"
)

var _ model.BookStore = (*BookRepository)(nil)

const bookColumns = `b.id, b.user_id, b.title, b.author, b.caption, b.image, b.image_key, b.rating, b.created_at, b.updated_at`

type BookRepository struct {
	db DBTX
}

func NewBookRepository(db DBTX) *BookRepository {
	return &BookRepository{
		db: db,
	}
}

func (r *BookRepository) Create(ctx context.Context, book model.Book) (model.Book, error) {
	query := `INSERT INTO books AS b (id, user_id, title, author, caption, image, image_key, rating, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + bookColumns

	saved, err := scanBook(r.db.QueryRow(ctx, query,
		book.ID, book.UserID, book.Title, book.Author, book.Caption, book.Image, book.ImageKey,
		book.Rating, book.CreatedAt, book.UpdatedAt,
	))
	if err != nil {
		if err = mapError(err); errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrDuplicate) {
			return model.Book{}, err
		}
		return model.Book{}, fmt.Errorf("failed to create book: %w", err)
	}

	return saved, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.id = $1`

	book, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err = mapError(err); errors.Is(err, model.ErrNotFound) {
			return model.Book{}, err
		}
		return model.Book{}, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// List returns a page of books newest first, each with its owner populated.
func (r *BookRepository) List(ctx context.Context, offset, limit int) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + `, u.id, u.username, u.profile_image
			  FROM books b JOIN users u ON u.id = b.user_id
			  ORDER BY b.created_at DESC, b.id DESC
			  OFFSET $1 LIMIT $2`

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0, limit)
	for rows.Next() {
		var (
			book  model.Book
			owner model.BookOwner
		)
		err := rows.Scan(
			&book.ID, &book.UserID, &book.Title, &book.Author, &book.Caption, &book.Image, &book.ImageKey,
			&book.Rating, &book.CreatedAt, &book.UpdatedAt,
			&owner.ID, &owner.Username, &owner.ProfileImage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		book.Owner = &owner
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return total, nil
}

func (r *BookRepository) ListByUser(ctx context.Context, userID string) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.user_id = $1 ORDER BY b.created_at DESC, b.id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		if err = mapError(err); errors.Is(err, model.ErrNotFound) {
			return []model.Book{}, nil
		}
		return nil, fmt.Errorf("failed to list user books: %w", err)
	}

	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		if err = mapError(err); errors.Is(err, model.ErrNotFound) {
			return []model.Book{}, nil
		}
		return nil, fmt.Errorf("failed to scan user books: %w", err)
	}
	if books == nil {
		books = []model.Book{}
	}

	return books, nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		if err = mapError(err); errors.Is(err, model.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanBook(row rowScanner) (model.Book, error) {
	var book model.Book
	err := row.Scan(
		&book.ID, &book.UserID, &book.Title, &book.Author, &book.Caption, &book.Image, &book.ImageKey,
		&book.Rating, &book.CreatedAt, &book.UpdatedAt,
	)
	return book, err
}
