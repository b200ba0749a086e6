package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dtroode/bookworm-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	ProfileImage string    `bson:"profile_image"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDocument(u model.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d userDocument) model() model.User {
	return model.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		ProfileImage: d.ProfileImage,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{coll: conn.db.Collection(usersCollection)}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, "email")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}}, "id")
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D, by string) (model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err = mapError(err); errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by %s: %w", by, err)
	}
	return doc.model(), nil
}

// Create relies on the unique email index to reject concurrent duplicates.
func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	doc := toUserDocument(user)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if err = mapError(err); errors.Is(err, model.ErrDuplicate) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return doc.model(), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, updatedAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "password_hash", Value: passwordHash},
			{Key: "updated_at", Value: updatedAt.UTC()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
