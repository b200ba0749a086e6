package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dtroode/bookworm-server/internal/model"
)

func TestBookDocument_OwnerFromLookup(t *testing.T) {
	now := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: "b1"},
		{Key: "user_id", Value: "u1"},
		{Key: "title", Value: "Dune"},
		{Key: "rating", Value: 4},
		{Key: "created_at", Value: now},
		{Key: "owner", Value: bson.A{bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "username", Value: "alice"},
			{Key: "profile_image", Value: "img"},
		}}},
	})
	require.NoError(t, err)

	var doc bookDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	book := doc.model()
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, 4, book.Rating)
	assert.True(t, now.Equal(book.CreatedAt))
	require.NotNil(t, book.Owner)
	assert.Equal(t, model.BookOwner{ID: "u1", Username: "alice", ProfileImage: "img"}, *book.Owner)
}

func TestBookDocument_NoOwner(t *testing.T) {
	book := toBookDocument(model.Book{ID: "b1", UserID: "u1"}).model()
	assert.Nil(t, book.Owner)
}

func TestUserDocument_PasswordHashStaysServerSide(t *testing.T) {
	u := model.User{ID: "u1", Email: "a@example.com", PasswordHash: "h"}
	doc := toUserDocument(u)
	assert.Equal(t, "h", doc.PasswordHash)
	assert.Equal(t, "u1", doc.model().ID)
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(mongo.ErrNoDocuments), model.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapError(dup), model.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
}
