package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dtroode/bookworm-server/internal/model"
)

var _ model.BookStore = (*BookRepository)(nil)

type bookDocument struct {
	ID        string          `bson:"_id"`
	UserID    string          `bson:"user_id"`
	Title     string          `bson:"title"`
	Author    string          `bson:"author"`
	Caption   string          `bson:"caption"`
	Image     string          `bson:"image"`
	ImageKey  string          `bson:"image_key"`
	Rating    int             `bson:"rating"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
	Owner     []ownerDocument `bson:"owner,omitempty"`
}

type ownerDocument struct {
	ID           string `bson:"_id"`
	Username     string `bson:"username"`
	ProfileImage string `bson:"profile_image"`
}

func toBookDocument(b model.Book) bookDocument {
	return bookDocument{
		ID:        b.ID,
		UserID:    b.UserID,
		Title:     b.Title,
		Author:    b.Author,
		Caption:   b.Caption,
		Image:     b.Image,
		ImageKey:  b.ImageKey,
		Rating:    b.Rating,
		CreatedAt: b.CreatedAt.UTC(),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
}

func (d bookDocument) model() model.Book {
	b := model.Book{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		Author:    d.Author,
		Caption:   d.Caption,
		Image:     d.Image,
		ImageKey:  d.ImageKey,
		Rating:    d.Rating,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if len(d.Owner) > 0 {
		o := d.Owner[0]
		b.Owner = &model.BookOwner{ID: o.ID, Username: o.Username, ProfileImage: o.ProfileImage}
	}
	return b
}

type BookRepository struct {
	books *mongo.Collection
	users *mongo.Collection
}

func NewBookRepository(conn *Connection) *BookRepository {
	return &BookRepository{
		books: conn.db.Collection(booksCollection),
		users: conn.db.Collection(usersCollection),
	}
}

func (r *BookRepository) Create(ctx context.Context, book model.Book) (model.Book, error) {
	err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: book.UserID}}).Err()
	if err != nil {
		if err = mapError(err); errors.Is(err, model.ErrNotFound) {
			return model.Book{}, err
		}
		return model.Book{}, fmt.Errorf("failed to check book owner: %w", err)
	}

	doc := toBookDocument(book)
	if _, err := r.books.InsertOne(ctx, doc); err != nil {
		if err = mapError(err); errors.Is(err, model.ErrDuplicate) {
			return model.Book{}, err
		}
		return model.Book{}, fmt.Errorf("failed to create book: %w", err)
	}
	return doc.model(), nil
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (model.Book, error) {
	var doc bookDocument
	if err := r.books.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if err = mapError(err); errors.Is(err, model.ErrNotFound) {
			return model.Book{}, err
		}
		return model.Book{}, fmt.Errorf("failed to get book: %w", err)
	}
	return doc.model(), nil
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// List returns a page of books newest first with owners joined from users.
func (r *BookRepository) List(ctx context.Context, offset, limit int) ([]model.Book, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$skip", Value: int64(offset)}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "owner.email", Value: 0},
			{Key: "owner.password_hash", Value: 0},
		}}},
	}

	cur, err := r.books.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return decodeBooks(ctx, cur)
}

func (r *BookRepository) Count(ctx context.Context) (int, error) {
	n, err := r.books.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return int(n), nil
}

func (r *BookRepository) ListByUser(ctx context.Context, userID string) ([]model.Book, error) {
	cur, err := r.books.Find(ctx, bson.D{{Key: "user_id", Value: userID}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to list user books: %w", err)
	}
	return decodeBooks(ctx, cur)
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	res, err := r.books.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func decodeBooks(ctx context.Context, cur *mongo.Cursor) ([]model.Book, error) {
	var docs []bookDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	books := make([]model.Book, 0, len(docs))
	for _, d := range docs {
		books = append(books, d.model())
	}
	return books, nil
}
