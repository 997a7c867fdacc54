package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"quill/internal/database"
	"quill/internal/models"
)

// newTestRepos wires the repositories over a fresh in-memory database. The
// raw database handle is returned too, so tests can reach past the
// repositories to inject failures or inspect documents.
func newTestRepos(t *testing.T) (*Repositories, *database.Database) {
	t.Helper()
	db := database.NewMemoryDatabase()
	return New(db), db
}

var userSeq int

func createTestUser(t *testing.T, repos *Repositories, username string) *models.User {
	t.Helper()
	userSeq++
	user, err := repos.Users.Create(context.Background(),
		"Test", "User",
		fmt.Sprintf("%s%d@example.com", username, userSeq),
		username, 30, "password123")
	require.NoError(t, err)
	return user
}

func createTestPost(t *testing.T, repos *Repositories, userID, content string) *models.Post {
	t.Helper()
	post, err := repos.Posts.Create(context.Background(), userID, content, "")
	require.NoError(t, err)
	return post
}

func createTestComment(t *testing.T, repos *Repositories, postID, userID, text string) *models.Comment {
	t.Helper()
	comment, err := repos.Comments.Create(context.Background(), postID, userID, text)
	require.NoError(t, err)
	return comment
}

func memory(col database.Collection) *database.MemoryCollection {
	return col.(*database.MemoryCollection)
}
