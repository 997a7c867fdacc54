// Package models contains data structures for the application's domain models.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered user. The relationship arrays hold the string
// forms of document ids; they are maintained as back-references by the
// repositories and must only ever contain ids of live documents.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Username  string             `bson:"username" json:"username"`
	Age       int                `bson:"age" json:"age"`
	Password  string             `bson:"password" json:"-"`
	Posts     []string           `bson:"posts" json:"posts"`
	Comments  []string           `bson:"comments" json:"comments"`
	Followers []string           `bson:"followers" json:"followers"`
	Following []string           `bson:"following" json:"following"`
	// Deleted is not persisted; set on the record returned by a remove operation.
	Deleted bool `bson:"-" json:"deleted,omitempty"`
}

// HexID returns the string form of the user's document id.
func (u *User) HexID() string {
	return u.ID.Hex()
}
