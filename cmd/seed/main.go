// Command seed fills the database with demo users, groups and posts
// for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/yatube/yatube-backend/internal/auth"
	"github.com/yatube/yatube-backend/internal/config"
	"github.com/yatube/yatube-backend/internal/log"
	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
	_ "github.com/yatube/yatube-backend/internal/storage/memory"
	_ "github.com/yatube/yatube-backend/internal/storage/postgres"
)

const demoPassword = "changeme-demo"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to open storage", "error", err)
	}
	defer db.Close()

	if err := seed(ctx, db); err != nil {
		logger.Fatalw("Seeding failed", "error", err)
	}
	logger.Infow("Seeding complete", "password", demoPassword)
}

func seed(ctx context.Context, db storage.Storage) error {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	users := make(map[string]*models.User)
	for _, username := range []string{"leo", "anna", "fedor"} {
		user := &models.User{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: hash,
		}
		if err := db.Users().Create(ctx, user); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				existing, err := db.Users().GetByUsername(ctx, username)
				if err != nil {
					return err
				}
				users[username] = existing
				continue
			}
			return err
		}
		users[username] = user
	}

	groups := make(map[string]*models.Group)
	for _, g := range []struct{ title, slug, desc string }{
		{"Travel notes", "travel", "Places worth the trip"},
		{"Literature", "literature", "On books old and new"},
		{"Cooking", "cooking", "Recipes and kitchen failures"},
	} {
		group := &models.Group{Title: g.title, Slug: g.slug, Description: g.desc}
		if err := db.Groups().Create(ctx, group); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				existing, err := db.Groups().GetBySlug(ctx, g.slug)
				if err != nil {
					return err
				}
				groups[g.slug] = existing
				continue
			}
			return err
		}
		groups[g.slug] = group
	}

	posts := []struct {
		author string
		slug   string
		text   string
	}{
		{"leo", "literature", "Happy families are all alike; every unhappy family is unhappy in its own way."},
		{"leo", "travel", "The road from Moscow south is longer than any map admits."},
		{"anna", "cooking", "A borscht that takes less than three hours is a soup pretending."},
		{"anna", "", "Some days the best post is no post at all. This is not one of them."},
		{"fedor", "literature", "To go wrong in one's own way is better than to go right in someone else's."},
	}
	for _, p := range posts {
		post := &models.Post{Text: p.text, AuthorID: users[p.author].ID}
		if p.slug != "" {
			id := groups[p.slug].ID
			post.GroupID = &id
		}
		if err := db.Posts().Create(ctx, post); err != nil {
			return err
		}
	}

	if err := db.Follows().Create(ctx, users["anna"].ID, users["leo"].ID); err != nil {
		return err
	}
	return db.Follows().Create(ctx, users["fedor"].ID, users["leo"].ID)
}
