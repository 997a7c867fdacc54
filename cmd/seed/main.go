// Command main runs the database seeder for Quill.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/repository"
	"quill/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 3, "Posts to create per user")
	commentsPerPost := flag.Int("comments", 2, "Comments to create per post")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts each, %d comments per post\n",
		*numUsers, *postsPerUser, *commentsPerPost)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, disconnect, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := disconnect(context.Background()); err != nil {
			log.Printf("Database disconnect error: %v", err)
		}
	}()

	opts := seed.DefaultOptions()
	opts.Users = *numUsers
	opts.PostsPerUser = *postsPerUser
	opts.CommentsPerPost = *commentsPerPost

	s := seed.NewSeeder(repository.New(db))
	if err := s.Run(ctx, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Printf("All test users have the password: %s", seed.SeedPassword)
}
