package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a user's comment on a post. The author may differ from
// the post owner. Its id is back-referenced from both the parent post's and
// the author's comments sets.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    string             `bson:"postId" json:"postId"`
	UserID    string             `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	Timestamp string             `bson:"timestamp" json:"timestamp"`
	// Deleted is not persisted; set on the record returned by a remove operation.
	Deleted bool `bson:"-" json:"deleted,omitempty"`
}

// HexID returns the string form of the comment's document id.
func (c *Comment) HexID() string {
	return c.ID.Hex()
}
