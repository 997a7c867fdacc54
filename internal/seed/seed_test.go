package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/database"
	"quill/internal/repository"
)

func TestSeederRun(t *testing.T) {
	repos := repository.New(database.NewMemoryDatabase())
	s := NewSeeder(repos)
	ctx := context.Background()

	opts := Options{
		Users:           5,
		PostsPerUser:    2,
		CommentsPerPost: 1,
		FollowDensity:   0.5,
		ReactionDensity: 0.5,
	}
	require.NoError(t, s.Run(ctx, opts))

	users, err := repos.Users.GetAll(ctx)
	require.NoError(t, err)
	// random usernames can occasionally collide and get skipped
	assert.NotEmpty(t, users)
	assert.LessOrEqual(t, len(users), opts.Users)

	posts, err := repos.Posts.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, len(users)*opts.PostsPerUser)

	comments, err := repos.Comments.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, comments, len(posts)*opts.CommentsPerPost)

	// generated credentials work
	_, err = repos.Users.VerifyPassword(ctx, users[0].Username, SeedPassword)
	assert.NoError(t, err)

	// back-references line up with the documents
	for _, p := range posts {
		owner, err := repos.Users.GetByID(ctx, p.UserID)
		require.NoError(t, err)
		assert.Contains(t, owner.Posts, p.HexID())
	}
}

func TestSeedFollowMeshIsMutual(t *testing.T) {
	repos := repository.New(database.NewMemoryDatabase())
	s := NewSeeder(repos)
	ctx := context.Background()

	users, err := s.SeedUsers(ctx, 4)
	require.NoError(t, err)
	require.NoError(t, s.SeedFollowMesh(ctx, users, 1))

	refreshed, err := repos.Users.GetAll(ctx)
	require.NoError(t, err)
	for _, u := range refreshed {
		assert.Len(t, u.Following, len(refreshed)-1)
		assert.Len(t, u.Followers, len(refreshed)-1)
	}
}
