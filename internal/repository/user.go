package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed; the original system hashed with 10 salt rounds.
const bcryptCost = 10

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, firstName, lastName, email, username string, age int, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	// Remove cascades: the user's posts (and their comments), the user's
	// authored comments, every follower/following edge and like/dislike
	// membership, then the user document itself. Any step's failure aborts
	// the rest of the cascade.
	Remove(ctx context.Context, id string) (*models.User, error)
	// AddFollower records that user followingID follows user followerID:
	// followerID joins followingID's following set and followingID joins
	// followerID's followers set. Both edges must apply or the operation
	// fails; a self-edge is rejected.
	AddFollower(ctx context.Context, followingID, followerID string) error
	RemoveFollower(ctx context.Context, followingID, followerID string) error
	HashPassword(password string) (string, error)
	// VerifyPassword checks credentials and returns the matching user. The
	// stored hash never leaves the repository except as the opaque Password
	// field, which is not serialized.
	VerifyPassword(ctx context.Context, username, password string) (*models.User, error)
}

// userRepository implements UserRepository
type userRepository struct {
	db       *database.Database
	posts    PostRepository
	comments CommentRepository
}

func (r *userRepository) Create(ctx context.Context, firstName, lastName, email, username string, age int, password string) (*models.User, error) {
	trimmed := validation.TrimStrings([]any{firstName, lastName, email, username, password})
	firstName = trimmed[0].(string)
	lastName = trimmed[1].(string)
	email = strings.ToLower(trimmed[2].(string))
	username = trimmed[3].(string)
	password = trimmed[4].(string)

	if err := validation.RequireAll(firstName, lastName, email, username, age, password); err != nil {
		return nil, err
	}
	if err := validation.RequireName(firstName, "firstName"); err != nil {
		return nil, err
	}
	if err := validation.RequireName(lastName, "lastName"); err != nil {
		return nil, err
	}
	if err := validation.RequireEmail(email, "email"); err != nil {
		return nil, err
	}
	if err := validation.RequireNumber(age, "age"); err != nil {
		return nil, err
	}
	if err := validation.RequireAge(age); err != nil {
		return nil, err
	}

	// Uniqueness is also enforced by the storage indexes; these lookups let
	// the caller see a typed duplicate error instead of a raw index failure.
	var existing models.User
	err := r.db.Users.FindOne(ctx, bson.M{"username": username}, &existing)
	if err == nil {
		return nil, models.NewDuplicateUsernameError(username)
	}
	if !errors.Is(err, database.ErrNoDocuments) {
		return nil, models.NewInternalError(err)
	}
	err = r.db.Users.FindOne(ctx, bson.M{"email": email}, &existing)
	if err == nil {
		return nil, models.NewDuplicateEmailError(email)
	}
	if !errors.Is(err, database.ErrNoDocuments) {
		return nil, models.NewInternalError(err)
	}

	hashed, err := r.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Username:  username,
		Age:       age,
		Password:  hashed,
		Posts:     []string{},
		Comments:  []string{},
		Followers: []string{},
		Following: []string{},
	}

	oid, err := r.db.Users.InsertOne(ctx, user)
	if err != nil {
		return nil, models.NewInsertFailedError("user", err)
	}
	return r.GetByID(ctx, oid.Hex())
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := validation.RequireObjectID(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := r.db.Users.FindOne(ctx, bson.M{"_id": oid}, &user); err != nil {
		if errors.Is(err, database.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validation.RequireNonEmptyString(username, "username"); err != nil {
		return nil, err
	}

	var user models.User
	if err := r.db.Users.FindOne(ctx, bson.M{"username": username}, &user); err != nil {
		if errors.Is(err, database.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.RequireEmail(email, "email"); err != nil {
		return nil, err
	}

	var user models.User
	if err := r.db.Users.FindOne(ctx, bson.M{"email": email}, &user); err != nil {
		if errors.Is(err, database.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.Users.Find(ctx, bson.M{}, &users); err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Remove(ctx context.Context, id string) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	id = user.HexID()

	// Content cascade. Posts first: deleting them also deletes their
	// comments, pulling comment ids out of this user's comments set, so the
	// authored-comments pass that follows only sees comments on other
	// users' posts.
	if err := r.posts.RemoveByUserID(ctx, id); err != nil {
		return nil, err
	}
	if err := r.comments.RemoveByUserID(ctx, id); err != nil {
		return nil, err
	}

	// Edge cascade: strip this user from every follower/following set and
	// every like/dislike set. Awaited; a failure here aborts the deletion.
	for _, pull := range []struct {
		col   database.Collection
		field string
	}{
		{r.db.Users, "followers"},
		{r.db.Users, "following"},
		{r.db.Posts, "likes"},
		{r.db.Posts, "dislikes"},
	} {
		if err := database.PullFromAll(ctx, pull.col, pull.field, id); err != nil {
			return nil, err
		}
	}

	var deleted models.User
	if err := r.db.Users.FindOneAndDelete(ctx, bson.M{"_id": user.ID}, &deleted); err != nil {
		return nil, models.NewUpdateFailedError(fmt.Sprintf("could not delete user %s", id), err)
	}
	deleted.Deleted = true
	return &deleted, nil
}

func (r *userRepository) AddFollower(ctx context.Context, followingID, followerID string) error {
	return r.updateEdge(ctx, followingID, followerID, database.SetAdd)
}

func (r *userRepository) RemoveFollower(ctx context.Context, followingID, followerID string) error {
	return r.updateEdge(ctx, followingID, followerID, database.SetRemove)
}

// updateEdge applies or removes a follow edge on both endpoints. Edges are
// only ever stored as mutual pairs; a partial application is an
// inconsistency, so either update failing fails the whole operation.
func (r *userRepository) updateEdge(ctx context.Context, followingID, followerID string, op database.SetOp) error {
	followingID, err := validation.RequireID(followingID)
	if err != nil {
		return err
	}
	followerID, err = validation.RequireID(followerID)
	if err != nil {
		return err
	}
	if followingID == followerID {
		return models.NewSelfFollowError(followingID)
	}

	following, err := r.GetByID(ctx, followingID)
	if err != nil {
		return err
	}
	follower, err := r.GetByID(ctx, followerID)
	if err != nil {
		return err
	}

	var updated models.User
	if err := database.ApplySetUpdate(ctx, r.db.Users, following.ID, op, "following", followerID, &updated); err != nil {
		return err
	}
	if err := database.ApplySetUpdate(ctx, r.db.Users, follower.ID, op, "followers", followingID, &updated); err != nil {
		return err
	}
	return nil
}

func (r *userRepository) HashPassword(password string) (string, error) {
	if err := validation.RequireNonEmptyString(password, "password"); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}
	return user, nil
}
