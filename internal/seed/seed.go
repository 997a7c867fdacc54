// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"quill/internal/models"
	"quill/internal/repository"
)

// SeedPassword is the password shared by every generated user.
const SeedPassword = "password123"

// Options controls the shape of the generated data set.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// FollowDensity is the chance, per ordered user pair, that a follow
	// edge is created. 0 disables the mesh, 1 connects everyone.
	FollowDensity float64
	// ReactionDensity is the per user/post chance of a like or dislike.
	ReactionDensity float64
}

// DefaultOptions returns a small but well-connected data set.
func DefaultOptions() Options {
	return Options{
		Users:           20,
		PostsPerUser:    3,
		CommentsPerPost: 2,
		FollowDensity:   0.15,
		ReactionDensity: 0.25,
	}
}

// Seeder generates users, posts, comments, follow edges and reactions
// through the repository layer so every document carries consistent
// back-references.
type Seeder struct {
	repos *repository.Repositories
	rng   *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided repositories.
func NewSeeder(repos *repository.Repositories) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		repos: repos,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes the full seeding pipeline.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	users, err := s.SeedUsers(ctx, opts.Users)
	if err != nil {
		return err
	}
	if err := s.SeedFollowMesh(ctx, users, opts.FollowDensity); err != nil {
		return err
	}
	posts, err := s.SeedPosts(ctx, users, opts.PostsPerUser)
	if err != nil {
		return err
	}
	if err := s.SeedComments(ctx, users, posts, opts.CommentsPerPost); err != nil {
		return err
	}
	if err := s.SeedReactions(ctx, users, posts, opts.ReactionDensity); err != nil {
		return err
	}
	return nil
}

// SeedUsers creates n users with generated identities. Every user gets
// SeedPassword as their password.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
		user, err := s.repos.Users.Create(ctx,
			gofakeit.FirstName(),
			gofakeit.LastName(),
			gofakeit.Email(),
			username,
			gofakeit.Number(18, 80),
			SeedPassword,
		)
		if err != nil {
			// Duplicate usernames and emails can happen with random
			// generation. Skip and keep going.
			if code := models.ErrorCode(err); code == models.CodeDuplicateUsername || code == models.CodeDuplicateEmail {
				slog.Warn("seed: skipping duplicate user", "username", username)
				continue
			}
			return nil, fmt.Errorf("seed users: %w", err)
		}
		users = append(users, *user)
	}
	slog.Info("seeded users", "count", len(users))
	return users, nil
}

// SeedFollowMesh creates follow edges between random user pairs.
func (s *Seeder) SeedFollowMesh(ctx context.Context, users []models.User, density float64) error {
	edges := 0
	for i := range users {
		for j := range users {
			if i == j || s.rng.Float64() >= density {
				continue
			}
			err := s.repos.Users.AddFollower(ctx, users[i].HexID(), users[j].HexID())
			if err != nil {
				return fmt.Errorf("seed follow mesh: %w", err)
			}
			edges++
		}
	}
	slog.Info("seeded follow edges", "count", edges)
	return nil
}

// SeedPosts creates perUser posts for every user.
func (s *Seeder) SeedPosts(ctx context.Context, users []models.User, perUser int) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(users)*perUser)
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			imageURL := ""
			if s.rng.Float64() < 0.4 {
				imageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
			}
			post, err := s.repos.Posts.Create(ctx, u.HexID(), gofakeit.Paragraph(1, 3, 8, "\n"), imageURL)
			if err != nil {
				return nil, fmt.Errorf("seed posts: %w", err)
			}
			posts = append(posts, *post)
		}
	}
	slog.Info("seeded posts", "count", len(posts))
	return posts, nil
}

// SeedComments adds perPost comments from random users to every post.
func (s *Seeder) SeedComments(ctx context.Context, users []models.User, posts []models.Post, perPost int) error {
	if len(users) == 0 {
		return nil
	}
	total := 0
	for _, p := range posts {
		for i := 0; i < perPost; i++ {
			author := users[s.rng.Intn(len(users))]
			_, err := s.repos.Comments.Create(ctx, p.HexID(), author.HexID(), gofakeit.Sentence(12))
			if err != nil {
				return fmt.Errorf("seed comments: %w", err)
			}
			total++
		}
	}
	slog.Info("seeded comments", "count", total)
	return nil
}

// SeedReactions sprinkles likes and dislikes across the posts. A user
// reacts to a given post at most once, like or dislike, never both.
func (s *Seeder) SeedReactions(ctx context.Context, users []models.User, posts []models.Post, density float64) error {
	likes, dislikes := 0, 0
	for _, p := range posts {
		for _, u := range users {
			if s.rng.Float64() >= density {
				continue
			}
			if s.rng.Float64() < 0.8 {
				if _, err := s.repos.Posts.AddLike(ctx, p.HexID(), u.HexID()); err != nil {
					return fmt.Errorf("seed reactions: %w", err)
				}
				likes++
			} else {
				if _, err := s.repos.Posts.AddDislike(ctx, p.HexID(), u.HexID()); err != nil {
					return fmt.Errorf("seed reactions: %w", err)
				}
				dislikes++
			}
		}
	}
	slog.Info("seeded reactions", "likes", likes, "dislikes", dislikes)
	return nil
}
