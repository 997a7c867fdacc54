package repository

import (
	"context"
	"errors"
	"fmt"

	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	// Create inserts a comment referencing an existing post and user, then
	// pushes the comment id into both the author's and the post's comments
	// sets. Both pushes must succeed or the create fails.
	Create(ctx context.Context, postID, userID, text string) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	GetAll(ctx context.Context) ([]models.Comment, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Comment, error)
	// GetByPostID resolves the post's comments set. A post that no longer
	// exists lists as an empty sequence, since removal deletes its comments.
	GetByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	// Remove deletes the comment document and strips its id from the
	// author's and the parent post's comments sets.
	Remove(ctx context.Context, id string) (*models.Comment, error)
	// RemoveByUserID and RemoveByPostID are fetch-then-remove-each loops;
	// like the post bulk removal they are not atomic.
	RemoveByUserID(ctx context.Context, userID string) error
	RemoveByPostID(ctx context.Context, postID string) error
}

// commentRepository implements CommentRepository
type commentRepository struct {
	db    *database.Database
	users UserRepository
	posts PostRepository
}

func (r *commentRepository) Create(ctx context.Context, postID, userID, text string) (*models.Comment, error) {
	trimmed := validation.TrimStrings([]any{postID, userID, text})
	postID = trimmed[0].(string)
	userID = trimmed[1].(string)
	text = trimmed[2].(string)

	if err := validation.RequireAll(postID, userID, text); err != nil {
		return nil, err
	}
	if err := validation.RequireNonEmptyString(text, "text"); err != nil {
		return nil, err
	}

	post, err := r.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		PostID:    post.HexID(),
		UserID:    author.HexID(),
		Text:      text,
		Timestamp: validation.Timestamp(),
	}

	oid, err := r.db.Comments.InsertOne(ctx, comment)
	if err != nil {
		return nil, models.NewInsertFailedError("comment", err)
	}

	created, err := r.GetByID(ctx, oid.Hex())
	if err != nil {
		return nil, err
	}

	var updatedAuthor models.User
	if err := database.ApplySetUpdate(ctx, r.db.Users, author.ID, database.SetAdd, "comments", created.HexID(), &updatedAuthor); err != nil {
		return nil, err
	}
	var updatedPost models.Post
	if err := database.ApplySetUpdate(ctx, r.db.Posts, post.ID, database.SetAdd, "comments", created.HexID(), &updatedPost); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := validation.RequireObjectID(id)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := r.db.Comments.FindOne(ctx, bson.M{"_id": oid}, &comment); err != nil {
		if errors.Is(err, database.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) GetAll(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.Comments.Find(ctx, bson.M{}, &comments); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) GetByUserID(ctx context.Context, userID string) ([]models.Comment, error) {
	author, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, author.Comments)
}

func (r *commentRepository) GetByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	post, err := r.posts.GetByID(ctx, postID)
	if err != nil {
		if models.ErrorCode(err) != models.CodeNotFound {
			return nil, err
		}
		// A removed post lists as an empty sequence, not a lookup failure.
		// The direct query also surfaces any comment left dangling by an
		// interrupted cascade.
		id, idErr := validation.RequireID(postID)
		if idErr != nil {
			return nil, idErr
		}
		comments := []models.Comment{}
		if err := r.db.Comments.Find(ctx, bson.M{"postId": id}, &comments); err != nil {
			return nil, models.NewInternalError(err)
		}
		return comments, nil
	}
	return r.resolve(ctx, post.Comments)
}

// resolve looks up each id of a comments back-reference set.
func (r *commentRepository) resolve(ctx context.Context, ids []string) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		comment, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, nil
}

func (r *commentRepository) Remove(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	id = comment.HexID()

	var deleted models.Comment
	if err := r.db.Comments.FindOneAndDelete(ctx, bson.M{"_id": comment.ID}, &deleted); err != nil {
		return nil, models.NewUpdateFailedError(fmt.Sprintf("could not delete comment %s", id), err)
	}

	authorOID, err := validation.RequireObjectID(deleted.UserID)
	if err != nil {
		return nil, err
	}
	postOID, err := validation.RequireObjectID(deleted.PostID)
	if err != nil {
		return nil, err
	}
	if err := detachRef(ctx, r.db.Users, authorOID, "comments", id); err != nil {
		return nil, err
	}
	if err := detachRef(ctx, r.db.Posts, postOID, "comments", id); err != nil {
		return nil, err
	}

	deleted.Deleted = true
	return &deleted, nil
}

func (r *commentRepository) RemoveByUserID(ctx context.Context, userID string) error {
	comments, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for i := range comments {
		if _, err := r.Remove(ctx, comments[i].HexID()); err != nil {
			return err
		}
	}
	return nil
}

func (r *commentRepository) RemoveByPostID(ctx context.Context, postID string) error {
	comments, err := r.GetByPostID(ctx, postID)
	if err != nil {
		return err
	}
	for i := range comments {
		if _, err := r.Remove(ctx, comments[i].HexID()); err != nil {
			return err
		}
	}
	return nil
}
