package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"quill/internal/models"
)

type record struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Tags []string           `bson:"tags"`
}

func insertRecord(t *testing.T, col Collection, name string, tags ...string) primitive.ObjectID {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	id, err := col.InsertOne(context.Background(), record{Name: name, Tags: tags})
	require.NoError(t, err)
	return id
}

func TestMemoryCollection_InsertAndFindOne(t *testing.T) {
	col := NewMemoryCollection()
	ctx := context.Background()

	id := insertRecord(t, col, "alpha", "x")

	var got record
	require.NoError(t, col.FindOne(ctx, bson.M{"_id": id}, &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, []string{"x"}, got.Tags)

	err := col.FindOne(ctx, bson.M{"_id": primitive.NewObjectID()}, &got)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestMemoryCollection_FindPreservesInsertionOrder(t *testing.T) {
	col := NewMemoryCollection()
	ctx := context.Background()

	insertRecord(t, col, "first")
	insertRecord(t, col, "second")
	insertRecord(t, col, "third")

	var got []record
	require.NoError(t, col.Find(ctx, bson.M{}, &got))
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)
	assert.Equal(t, "third", got[2].Name)
}

func TestMemoryCollection_FindOneAndDelete(t *testing.T) {
	col := NewMemoryCollection()
	ctx := context.Background()

	id := insertRecord(t, col, "gone")

	var deleted record
	require.NoError(t, col.FindOneAndDelete(ctx, bson.M{"_id": id}, &deleted))
	assert.Equal(t, "gone", deleted.Name)

	var got record
	err := col.FindOne(ctx, bson.M{"_id": id}, &got)
	assert.ErrorIs(t, err, ErrNoDocuments)

	err = col.FindOneAndDelete(ctx, bson.M{"_id": id}, &deleted)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestMemoryCollection_FailNext(t *testing.T) {
	col := NewMemoryCollection()
	ctx := context.Background()

	boom := errors.New("storage down")
	col.FailNext = boom

	_, err := col.InsertOne(ctx, record{Name: "x"})
	assert.ErrorIs(t, err, boom)

	// The failure is consumed; the next call succeeds.
	insertRecord(t, col, "y")
}

func TestApplySetUpdate_AddIsSetSemantics(t *testing.T) {
	col := NewMemoryCollection()
	ctx := context.Background()

	id := insertRecord(t, col, "post")

	var got record
	require.NoError(t, ApplySetUpdate(ctx, col, id, SetAdd, "tags", "u1", &got))
	require.NoError(t, ApplySetUpdate(ctx, col, id, SetAdd, "tags", "u1", &got))
	require.NoError(t, ApplySetUpdate(ctx, col, id, SetAdd, "tags", "u2", &got))

	assert.Equal(t, []string{"u1", "u2"}, got.Tags)
}

func TestApplySetUpdate_RemoveIsIdempotent(t *testing.T) {
	col := NewMemoryCollection()
	ctx := context.Background()

	id := insertRecord(t, col, "post", "u1", "u2")

	var got record
	require.NoError(t, ApplySetUpdate(ctx, col, id, SetRemove, "tags", "u1", &got))
	assert.Equal(t, []string{"u2"}, got.Tags)

	// removing an absent element is not an error
	require.NoError(t, ApplySetUpdate(ctx, col, id, SetRemove, "tags", "u1", &got))
	assert.Equal(t, []string{"u2"}, got.Tags)
}

func TestApplySetUpdate_MissingDocument(t *testing.T) {
	col := NewMemoryCollection()

	var got record
	err := ApplySetUpdate(context.Background(), col, primitive.NewObjectID(), SetAdd, "tags", "u1", &got)
	require.Error(t, err)
	assert.Equal(t, models.CodeUpdateFailed, models.ErrorCode(err))
}

func TestPullFromAll(t *testing.T) {
	col := NewMemoryCollection()
	ctx := context.Background()

	a := insertRecord(t, col, "a", "u1", "u2")
	b := insertRecord(t, col, "b", "u1")
	c := insertRecord(t, col, "c", "u3")

	require.NoError(t, PullFromAll(ctx, col, "tags", "u1"))

	var got record
	require.NoError(t, col.FindOne(ctx, bson.M{"_id": a}, &got))
	assert.Equal(t, []string{"u2"}, got.Tags)
	require.NoError(t, col.FindOne(ctx, bson.M{"_id": b}, &got))
	assert.Empty(t, got.Tags)
	require.NoError(t, col.FindOne(ctx, bson.M{"_id": c}, &got))
	assert.Equal(t, []string{"u3"}, got.Tags)
}

func TestPullFromAll_SurfacesFailure(t *testing.T) {
	col := NewMemoryCollection()
	insertRecord(t, col, "a", "u1")

	col.FailNext = errors.New("storage down")
	err := PullFromAll(context.Background(), col, "tags", "u1")
	require.Error(t, err)
	assert.Equal(t, models.CodeUpdateFailed, models.ErrorCode(err))
}
