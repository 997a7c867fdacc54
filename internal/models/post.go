package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a piece of content owned by exactly one user. UserID is
// immutable after creation. Likes and Dislikes are independent sets of user
// ids; the repository does not force a user out of one set when it adds them
// to the other. SetReaction exists for callers that want exclusivity.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	Content   string             `bson:"content" json:"content"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Timestamp string             `bson:"timestamp" json:"timestamp"`
	Comments  []string           `bson:"comments" json:"comments"`
	Likes     []string           `bson:"likes" json:"likes"`
	Dislikes  []string           `bson:"dislikes" json:"dislikes"`
	// Deleted is not persisted; set on the record returned by a remove operation.
	Deleted bool `bson:"-" json:"deleted,omitempty"`
}

// HexID returns the string form of the post's document id.
func (p *Post) HexID() string {
	return p.ID.Hex()
}

// ReactionState is a user's reaction to a post.
type ReactionState string

const (
	// ReactionNeutral means the user has no reaction on the post.
	ReactionNeutral ReactionState = "neutral"
	// ReactionLiked means the user likes the post.
	ReactionLiked ReactionState = "liked"
	// ReactionDisliked means the user dislikes the post.
	ReactionDisliked ReactionState = "disliked"
)

// Valid reports whether s is one of the known reaction states.
func (s ReactionState) Valid() bool {
	switch s {
	case ReactionNeutral, ReactionLiked, ReactionDisliked:
		return true
	}
	return false
}
