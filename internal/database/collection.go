package database

import (
	"context"
	"errors"
	"fmt"

	"quill/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoDocuments is returned by lookups that match nothing.
var ErrNoDocuments = errors.New("no documents in result")

// Collection is the storage boundary the repositories depend on. The store
// guarantees per-document atomicity for each call; it does not provide
// multi-document transactions, so cascades commit step by step.
type Collection interface {
	// InsertOne stores document and returns its generated id.
	InsertOne(ctx context.Context, document any) (primitive.ObjectID, error)
	// Find decodes every document matching filter into results, which must be
	// a pointer to a slice.
	Find(ctx context.Context, filter bson.M, results any) error
	// FindOne decodes the first document matching filter into result, or
	// returns ErrNoDocuments.
	FindOne(ctx context.Context, filter bson.M, result any) error
	// FindOneAndUpdate applies update to the first matching document and
	// decodes the post-mutation document into result, or returns
	// ErrNoDocuments when nothing matched.
	FindOneAndUpdate(ctx context.Context, filter, update bson.M, result any) error
	// FindOneAndDelete removes the first matching document and decodes the
	// removed document into result, or returns ErrNoDocuments.
	FindOneAndDelete(ctx context.Context, filter bson.M, result any) error
	// UpdateMany applies update to every document matching filter and returns
	// the number of modified documents.
	UpdateMany(ctx context.Context, filter, update bson.M) (int64, error)
}

// mongoCollection adapts a driver collection to the Collection boundary.
type mongoCollection struct {
	col *mongo.Collection
}

func (m *mongoCollection) InsertOne(ctx context.Context, document any) (primitive.ObjectID, error) {
	res, err := m.col.InsertOne(ctx, document)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

func (m *mongoCollection) Find(ctx context.Context, filter bson.M, results any) error {
	cur, err := m.col.Find(ctx, filter)
	if err != nil {
		return err
	}
	return cur.All(ctx, results)
}

func (m *mongoCollection) FindOne(ctx context.Context, filter bson.M, result any) error {
	err := m.col.FindOne(ctx, filter).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocuments
	}
	return err
}

func (m *mongoCollection) FindOneAndUpdate(ctx context.Context, filter, update bson.M, result any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocuments
	}
	return err
}

func (m *mongoCollection) FindOneAndDelete(ctx context.Context, filter bson.M, result any) error {
	err := m.col.FindOneAndDelete(ctx, filter).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocuments
	}
	return err
}

func (m *mongoCollection) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	res, err := m.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetOp selects the direction of a set-array mutation.
type SetOp string

const (
	// SetAdd inserts the value with set semantics (no duplicates).
	SetAdd SetOp = "add"
	// SetRemove deletes all occurrences of the value.
	SetRemove SetOp = "remove"
)

// ApplySetUpdate mutates the named set-array field of the document with the
// given id and decodes the post-mutation document into result. It fails with
// UPDATE_FAILED when no document matched, e.g. when a concurrent deletion
// raced the update.
func ApplySetUpdate(ctx context.Context, col Collection, id primitive.ObjectID, op SetOp, field string, value any, result any) error {
	var update bson.M
	switch op {
	case SetAdd:
		update = bson.M{"$addToSet": bson.M{field: value}}
	case SetRemove:
		update = bson.M{"$pull": bson.M{field: value}}
	default:
		return models.NewTypeError(fmt.Sprintf("invalid set operation %q", op))
	}

	err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, result)
	if errors.Is(err, ErrNoDocuments) {
		return models.NewUpdateFailedError(
			fmt.Sprintf("could not %s %v in %s of document %s", op, value, field, id.Hex()), nil)
	}
	if err != nil {
		return models.NewUpdateFailedError(
			fmt.Sprintf("could not %s %v in %s of document %s", op, value, field, id.Hex()), err)
	}
	return nil
}

// PullFromAll removes value from the named set-array field across every
// document in the collection. The call is awaited and its failure surfaced;
// a cascade must not silently leave stale references behind.
func PullFromAll(ctx context.Context, col Collection, field string, value any) error {
	if _, err := col.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{field: value}}); err != nil {
		return models.NewUpdateFailedError(
			fmt.Sprintf("could not pull %v from %s across collection", value, field), err)
	}
	return nil
}
