package server

import (
	"github.com/gofiber/fiber/v2"

	"quill/internal/cache"
	"quill/internal/models"
)

// ListPosts handles GET /api/posts with a cache-aside on the feed.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	var posts []models.Post
	err := cache.CacheAside(c.UserContext(), cache.AllPostsKey(), &posts, cache.FeedTTL, func() error {
		found, err := s.repos.Posts.GetAll(c.UserContext())
		if err != nil {
			return err
		}
		posts = found
		return nil
	})
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts. The owner is the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content  string `json:"content"`
		ImageURL string `json:"imageUrl"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.repos.Posts.Create(c.UserContext(), currentUserID(c), req.Content, req.ImageURL)
	if err != nil {
		return repoError(c, err)
	}

	cache.InvalidateFeed(c.UserContext())
	cache.InvalidateUser(c.UserContext(), post.UserID)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.repos.Posts.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/posts/user/:userId
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.repos.Posts.GetByUserID(c.UserContext(), c.Params("userId"))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(posts)
}

// DeletePost handles DELETE /api/posts/:id. Only the owner may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id := c.Params("id")

	post, err := s.repos.Posts.GetByID(c.UserContext(), id)
	if err != nil {
		return repoError(c, err)
	}
	if post.UserID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own posts"))
	}

	deleted, err := s.repos.Posts.Remove(c.UserContext(), id)
	if err != nil {
		return repoError(c, err)
	}

	cache.InvalidateFeed(c.UserContext())
	cache.InvalidateUser(c.UserContext(), deleted.UserID)
	return c.JSON(deleted)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.react(c, func(postID, userID string) (*models.Post, error) {
		return s.repos.Posts.AddLike(c.UserContext(), postID, userID)
	})
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.react(c, func(postID, userID string) (*models.Post, error) {
		return s.repos.Posts.RemoveLike(c.UserContext(), postID, userID)
	})
}

// DislikePost handles POST /api/posts/:id/dislike
func (s *Server) DislikePost(c *fiber.Ctx) error {
	return s.react(c, func(postID, userID string) (*models.Post, error) {
		return s.repos.Posts.AddDislike(c.UserContext(), postID, userID)
	})
}

// UndislikePost handles DELETE /api/posts/:id/dislike
func (s *Server) UndislikePost(c *fiber.Ctx) error {
	return s.react(c, func(postID, userID string) (*models.Post, error) {
		return s.repos.Posts.RemoveDislike(c.UserContext(), postID, userID)
	})
}

// SetPostReaction handles PUT /api/posts/:id/reaction. Unlike the raw
// like/dislike routes, this drives the exclusive reaction state machine.
func (s *Server) SetPostReaction(c *fiber.Ctx) error {
	var req struct {
		State models.ReactionState `json:"state"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.repos.Posts.SetReaction(c.UserContext(), c.Params("id"), currentUserID(c), req.State)
	if err != nil {
		return repoError(c, err)
	}

	cache.InvalidateFeed(c.UserContext())
	return c.JSON(post)
}

func (s *Server) react(c *fiber.Ctx, op func(postID, userID string) (*models.Post, error)) error {
	post, err := op(c.Params("id"), currentUserID(c))
	if err != nil {
		return repoError(c, err)
	}

	cache.InvalidateFeed(c.UserContext())
	return c.JSON(post)
}
