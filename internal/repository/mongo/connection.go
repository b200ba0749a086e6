// Package mongo implements user and book stores on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/dtroode/bookworm-server/internal/model"
)

const (
	usersCollection = "users"
	booksCollection = "books"
)

type Connection struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewConnection connects, pings the primary and ensures indexes exist.
func NewConnection(ctx context.Context, uri, database string) (*Connection, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	conn := &Connection{client: client, db: client.Database(database)}
	if err := conn.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return conn, nil
}

func (c *Connection) ensureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = c.db.Collection(booksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create books indexes: %w", err)
	}
	return nil
}

func (c *Connection) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func mapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return model.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return model.ErrDuplicate
	}
	return err
}
