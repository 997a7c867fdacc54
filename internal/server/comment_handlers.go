package server

import (
	"github.com/gofiber/fiber/v2"

	"quill/internal/cache"
	"quill/internal/models"
)

// ListComments handles GET /api/comments
func (s *Server) ListComments(c *fiber.Ctx) error {
	comments, err := s.repos.Comments.GetAll(c.UserContext())
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/comments. The author is the
// authenticated user.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		PostID string `json:"postId"`
		Text   string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.repos.Comments.Create(c.UserContext(), req.PostID, currentUserID(c), req.Text)
	if err != nil {
		return repoError(c, err)
	}

	cache.InvalidateFeed(c.UserContext())
	cache.InvalidateUser(c.UserContext(), comment.UserID)
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	comment, err := s.repos.Comments.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(comment)
}

// GetUserComments handles GET /api/comments/user/:userId
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	comments, err := s.repos.Comments.GetByUserID(c.UserContext(), c.Params("userId"))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(comments)
}

// GetPostComments handles GET /api/comments/post/:postId
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	comments, err := s.repos.Comments.GetByPostID(c.UserContext(), c.Params("postId"))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/comments/:id. Only the author may
// delete.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id := c.Params("id")

	comment, err := s.repos.Comments.GetByID(c.UserContext(), id)
	if err != nil {
		return repoError(c, err)
	}
	if comment.UserID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own comments"))
	}

	deleted, err := s.repos.Comments.Remove(c.UserContext(), id)
	if err != nil {
		return repoError(c, err)
	}

	cache.InvalidateFeed(c.UserContext())
	cache.InvalidateUser(c.UserContext(), deleted.UserID)
	return c.JSON(deleted)
}
