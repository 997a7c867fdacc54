// Package database handles the document-store connection and exposes the
// narrow collection boundary the repositories are written against.
package database

import (
	"context"
	"fmt"
	"time"

	"quill/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database bundles the three collections of the application. Repositories
// never open their own storage handles; they share this one.
type Database struct {
	Users    Collection
	Posts    Collection
	Comments Collection
}

// Connect opens a client, verifies the connection, ensures the unique
// indexes, and returns the database along with a disconnect function.
func Connect(ctx context.Context, cfg *config.Config) (*Database, func(context.Context) error, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(pingCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	if err := ensureIndexes(pingCtx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	d := &Database{
		Users:    &mongoCollection{col: db.Collection("users")},
		Posts:    &mongoCollection{col: db.Collection("posts")},
		Comments: &mongoCollection{col: db.Collection("comments")},
	}
	return d, client.Disconnect, nil
}

// ensureIndexes creates the storage-level uniqueness constraints so username
// and email collisions are rejected even under concurrent registration.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}
