package server

import (
	"time"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 72 * time.Hour

// repoError maps a repository error onto the HTTP response.
func repoError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// currentUserID returns the authenticated user's id set by AuthRequired.
func currentUserID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userID").(string)
	return uid
}

// generateToken signs a JWT whose subject is the user's document id.
func (s *Server) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.HexID(),
		"username": user.Username,
		"exp":      time.Now().Add(tokenLifetime).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
