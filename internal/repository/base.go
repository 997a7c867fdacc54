// Package repository provides data access layer implementations for the
// application. The repositories own the referential-integrity rules of the
// document store: every create/delete keeps the denormalized back-reference
// arrays on sibling documents consistent, because the store itself will not.
package repository

import (
	"context"
	"errors"
	"fmt"

	"quill/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"quill/internal/models"
)

// Repositories bundles the three repositories over one shared database
// handle. They are wired together here because cross-entity cascades make
// them mutually dependent (deleting a user reaches into posts and comments).
type Repositories struct {
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
}

// New wires the repositories over db.
func New(db *database.Database) *Repositories {
	users := &userRepository{db: db}
	posts := &postRepository{db: db, users: users}
	comments := &commentRepository{db: db, users: users, posts: posts}
	users.posts = posts
	users.comments = comments
	posts.comments = comments
	return &Repositories{Users: users, Posts: posts, Comments: comments}
}

// detachRef pulls value from the named set-array field of one document.
// A missing document is treated as already detached, which keeps delete
// cascades idempotent and re-runnable; any other failure is surfaced.
func detachRef(ctx context.Context, col database.Collection, id primitive.ObjectID, field, value string) error {
	var doc bson.M
	err := col.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$pull": bson.M{field: value}}, &doc)
	if errors.Is(err, database.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return models.NewUpdateFailedError(
			fmt.Sprintf("could not remove %s from %s of document %s", value, field, id.Hex()), err)
	}
	return nil
}
