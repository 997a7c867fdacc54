// Package server contains the HTTP handlers for the application's API
// endpoints. The handlers are thin glue: they parse plain values, call the
// repositories, and map typed errors to status codes.
package server

import (
	"context"
	"fmt"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config *config.Config
	db     *database.Database
	redis  *redis.Client
	repos  *repository.Repositories
}

// NewServer creates a server instance, connecting the database and cache.
// The returned shutdown function disconnects the database client.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, func(context.Context) error, error) {
	db, disconnect, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	srv := NewServerWithDeps(cfg, db, cache.GetClient())
	return srv, disconnect, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with the in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *database.Database, redisClient *redis.Client) *Server {
	middleware.InitMiddleware(cfg)
	return &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		repos:  repository.New(db),
	}
}

// SetupMiddleware wires the cross-cutting middleware stack.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	prom := fiberprometheus.New("quill-api")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}

// SetupRoutes registers every API route.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(s.redis, 10, time.Minute))
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)

	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Get("/:id", s.GetUser)
	users.Delete("/:id", middleware.AuthRequired, s.DeleteUser)
	users.Post("/:id/follow", middleware.AuthRequired, s.FollowUser)
	users.Delete("/:id/follow", middleware.AuthRequired, s.UnfollowUser)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", middleware.AuthRequired, s.CreatePost)
	posts.Get("/user/:userId", s.GetUserPosts)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", middleware.AuthRequired, s.DeletePost)
	posts.Post("/:id/like", middleware.AuthRequired, s.LikePost)
	posts.Delete("/:id/like", middleware.AuthRequired, s.UnlikePost)
	posts.Post("/:id/dislike", middleware.AuthRequired, s.DislikePost)
	posts.Delete("/:id/dislike", middleware.AuthRequired, s.UndislikePost)
	posts.Put("/:id/reaction", middleware.AuthRequired, s.SetPostReaction)

	comments := api.Group("/comments")
	comments.Get("/", s.ListComments)
	comments.Post("/", middleware.AuthRequired, s.CreateComment)
	comments.Get("/user/:userId", s.GetUserComments)
	comments.Get("/post/:postId", s.GetPostComments)
	comments.Get("/:id", s.GetComment)
	comments.Delete("/:id", middleware.AuthRequired, s.DeleteComment)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
	})
}
