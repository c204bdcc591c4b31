// Package main provides account maintenance utilities for foodfeed.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"foodfeed/internal/config"
	"foodfeed/internal/database"
	"foodfeed/internal/middleware"
	"foodfeed/internal/models"
	"foodfeed/internal/repository"
	"foodfeed/internal/server"
	"foodfeed/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin list-users               - List all users")
	fmt.Println("  go run ./cmd/admin delete-user <username>   - Delete a user with their posts, comments and images")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	middleware.Configure(cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store := repository.NewStore(db)
	ctx := context.Background()

	switch os.Args[1] {
	case "list-users":
		listUsers(ctx, store)

	case "delete-user":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		images, err := server.NewImageStore(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to open image store: %v", err)
		}
		deleteUser(ctx, service.NewAuthService(store, images), store, os.Args[2])

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func listUsers(ctx context.Context, store repository.Store) {
	const batch = 100
	total := 0
	for offset := 0; ; offset += batch {
		users, err := store.Users().List(ctx, batch, offset)
		if err != nil {
			log.Fatalf("Failed to fetch users: %v", err)
		}
		for _, u := range users {
			fmt.Printf("ID: %d | Username: %s | Email: %s | Joined: %s\n",
				u.ID, u.Username, u.Email, u.CreatedAt.Format("2006-01-02"))
		}
		total += len(users)
		if len(users) < batch {
			break
		}
	}
	if total == 0 {
		fmt.Println("No users found")
	}
}

func deleteUser(ctx context.Context, auth *service.AuthService, store repository.Store, username string) {
	user, err := store.Users().GetByUsername(ctx, username)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			fmt.Printf("User %s not found\n", username)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}

	res, err := auth.DeleteAccount(ctx, user.ID)
	if err != nil {
		log.Fatalf("Failed to delete user: %v", err)
	}
	fmt.Printf("Deleted %s (ID: %d): %d posts, %d images destroyed\n",
		user.Username, user.ID, res.Posts, res.ImagesDestroyed)
}
