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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// Create inserts a post owned by userID and pushes the new post id into
	// the owner's posts set. imageURL may be empty. If the back-reference
	// push fails the create fails, even though the post document itself was
	// already persisted.
	Create(ctx context.Context, userID, content, imageURL string) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetAll(ctx context.Context) ([]models.Post, error)
	// GetByUserID reads the owner's posts id set and resolves each entry.
	GetByUserID(ctx context.Context, userID string) ([]models.Post, error)
	// Remove deletes the post's comments, the post document, and the owner's
	// back-reference, in that order.
	Remove(ctx context.Context, id string) (*models.Post, error)
	// RemoveByUserID removes each of the user's posts in turn. The loop is
	// not atomic: a failure partway leaves earlier posts deleted and later
	// ones intact, and is reported, not retried.
	RemoveByUserID(ctx context.Context, userID string) error

	// AddLike and AddDislike are independent set-adds. The repository does
	// not force a user out of the opposing set; calling both without an
	// intervening removal leaves the user in both. Callers wanting mutual
	// exclusion use SetReaction.
	AddLike(ctx context.Context, postID, userID string) (*models.Post, error)
	AddDislike(ctx context.Context, postID, userID string) (*models.Post, error)
	// RemoveLike and RemoveDislike are idempotent; removing an absent
	// element is not an error.
	RemoveLike(ctx context.Context, postID, userID string) (*models.Post, error)
	RemoveDislike(ctx context.Context, postID, userID string) (*models.Post, error)
	// SetReaction drives the per-(post,user) reaction state machine: it
	// removes the opposing reaction before applying the new one, so the two
	// sets stay mutually exclusive for callers that only mutate through it.
	SetReaction(ctx context.Context, postID, userID string, state models.ReactionState) (*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db       *database.Database
	users    UserRepository
	comments CommentRepository
}

func (r *postRepository) Create(ctx context.Context, userID, content, imageURL string) (*models.Post, error) {
	trimmed := validation.TrimStrings([]any{userID, content, imageURL})
	userID = trimmed[0].(string)
	content = trimmed[1].(string)
	imageURL = trimmed[2].(string)

	if err := validation.RequireAll(userID, content); err != nil {
		return nil, err
	}
	if err := validation.RequireNonEmptyString(content, "content"); err != nil {
		return nil, err
	}

	owner, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		UserID:    owner.HexID(),
		Content:   content,
		ImageURL:  imageURL,
		Timestamp: validation.Timestamp(),
		Comments:  []string{},
		Likes:     []string{},
		Dislikes:  []string{},
	}

	oid, err := r.db.Posts.InsertOne(ctx, post)
	if err != nil {
		return nil, models.NewInsertFailedError("post", err)
	}

	created, err := r.GetByID(ctx, oid.Hex())
	if err != nil {
		return nil, err
	}

	// Back-reference push. If this fails the post document is already
	// persisted without an owner reference; the error is surfaced so the
	// caller never mistakes the inconsistent state for success.
	var updatedOwner models.User
	if err := database.ApplySetUpdate(ctx, r.db.Users, owner.ID, database.SetAdd, "posts", created.HexID(), &updatedOwner); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := validation.RequireObjectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := r.db.Posts.FindOne(ctx, bson.M{"_id": oid}, &post); err != nil {
		if errors.Is(err, database.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetAll(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Posts.Find(ctx, bson.M{}, &posts); err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID string) ([]models.Post, error) {
	owner, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(owner.Posts))
	for _, postID := range owner.Posts {
		post, err := r.GetByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (r *postRepository) Remove(ctx context.Context, id string) (*models.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	id = post.HexID()

	if err := r.comments.RemoveByPostID(ctx, id); err != nil {
		return nil, err
	}

	var deleted models.Post
	if err := r.db.Posts.FindOneAndDelete(ctx, bson.M{"_id": post.ID}, &deleted); err != nil {
		return nil, models.NewUpdateFailedError(fmt.Sprintf("could not delete post %s", id), err)
	}

	ownerOID, err := validation.RequireObjectID(deleted.UserID)
	if err != nil {
		return nil, err
	}
	if err := detachRef(ctx, r.db.Users, ownerOID, "posts", id); err != nil {
		return nil, err
	}

	deleted.Deleted = true
	return &deleted, nil
}

func (r *postRepository) RemoveByUserID(ctx context.Context, userID string) error {
	posts, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for i := range posts {
		if _, err := r.Remove(ctx, posts[i].HexID()); err != nil {
			return err
		}
	}
	return nil
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.updateReactionSet(ctx, postID, userID, database.SetAdd, "likes")
}

func (r *postRepository) AddDislike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.updateReactionSet(ctx, postID, userID, database.SetAdd, "dislikes")
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.updateReactionSet(ctx, postID, userID, database.SetRemove, "likes")
}

func (r *postRepository) RemoveDislike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.updateReactionSet(ctx, postID, userID, database.SetRemove, "dislikes")
}

func (r *postRepository) updateReactionSet(ctx context.Context, postID, userID string, op database.SetOp, field string) (*models.Post, error) {
	post, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	userID, err = validation.RequireID(userID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireExistingUsers(ctx, r.users, userID); err != nil {
		return nil, err
	}

	var updated models.Post
	if err := database.ApplySetUpdate(ctx, r.db.Posts, post.ID, op, field, userID, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *postRepository) SetReaction(ctx context.Context, postID, userID string, state models.ReactionState) (*models.Post, error) {
	if !state.Valid() {
		return nil, models.NewTypeError(fmt.Sprintf("invalid reaction state %q", state))
	}

	switch state {
	case models.ReactionLiked:
		if _, err := r.RemoveDislike(ctx, postID, userID); err != nil {
			return nil, err
		}
		return r.AddLike(ctx, postID, userID)
	case models.ReactionDisliked:
		if _, err := r.RemoveLike(ctx, postID, userID); err != nil {
			return nil, err
		}
		return r.AddDislike(ctx, postID, userID)
	default:
		if _, err := r.RemoveLike(ctx, postID, userID); err != nil {
			return nil, err
		}
		return r.RemoveDislike(ctx, postID, userID)
	}
}
