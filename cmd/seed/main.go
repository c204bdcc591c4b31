// Command seed fills the database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"foodfeed/internal/config"
	"foodfeed/internal/database"
	"foodfeed/internal/middleware"
	"foodfeed/internal/seed"
	"foodfeed/internal/server"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated content")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Configure(cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	images, err := server.NewImageStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open image store: %v", err)
	}

	s := seed.NewSeeder(db, images, *randSeed)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx, seed.Options{
		Users:              *numUsers,
		Posts:              *numPosts,
		MaxCommentsPerPost: *maxComments,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts and %d comments", sum.Users, sum.Posts, sum.Comments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
