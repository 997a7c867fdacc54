package server

import (
	"github.com/gofiber/fiber/v2"

	"quill/internal/cache"
	"quill/internal/models"
)

// ListUsers handles GET /api/users
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.repos.Users.GetAll(c.UserContext())
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var user models.User
	err := cache.CacheAside(c.UserContext(), cache.UserKey(id), &user, cache.UserTTL, func() error {
		found, err := s.repos.Users.GetByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		user = *found
		return nil
	})
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id. Users may only delete their own
// account; the delete cascades through posts, comments, and edges.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if id != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own account"))
	}

	deleted, err := s.repos.Users.Remove(c.UserContext(), id)
	if err != nil {
		return repoError(c, err)
	}

	cache.InvalidateUser(c.UserContext(), id)
	cache.InvalidateFeed(c.UserContext())
	return c.JSON(deleted)
}

// FollowUser handles POST /api/users/:id/follow. The authenticated user
// starts following the target user.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	target := c.Params("id")
	follower := currentUserID(c)

	if err := s.repos.Users.AddFollower(c.UserContext(), follower, target); err != nil {
		return repoError(c, err)
	}

	cache.InvalidateUser(c.UserContext(), target)
	cache.InvalidateUser(c.UserContext(), follower)
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser handles DELETE /api/users/:id/follow.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	target := c.Params("id")
	follower := currentUserID(c)

	if err := s.repos.Users.RemoveFollower(c.UserContext(), follower, target); err != nil {
		return repoError(c, err)
	}

	cache.InvalidateUser(c.UserContext(), target)
	cache.InvalidateUser(c.UserContext(), follower)
	return c.SendStatus(fiber.StatusNoContent)
}
