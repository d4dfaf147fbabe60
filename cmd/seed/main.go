package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"vip-content-platform/internal/config"
	"vip-content-platform/internal/infra/db/postgres"
	"vip-content-platform/internal/infra/logging"
	"vip-content-platform/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepo(pool)
	activityRepo := postgres.NewActivityLogRepo(pool)
	postRepo := postgres.NewPostRepo(pool)
	userUC := usecase.NewUserUseCase(userRepo, activityRepo, logger)
	feedUC := usecase.NewFeedUseCase(postRepo, userRepo, nil, logger)

	// If users already exist, do nothing.
	count, err := userUC.Count(ctx)
	if err != nil {
		log.Fatalf("count users: %v", err)
	}
	if count > 0 {
		fmt.Printf("%d users already present. No changes.\n", count)
		return
	}

	seedUsers := []struct {
		Username string
		Email    string
		Support  bool
	}{
		{"alice", "alice@example.test", false},
		{"bob", "bob@example.test", false},
		{"support", "support@example.test", true},
	}
	for _, s := range seedUsers {
		u, err := userUC.Register(ctx, "", s.Username, s.Email)
		if err != nil {
			log.Fatalf("seed user %s: %v", s.Username, err)
		}
		if s.Support {
			u.IsSupport = true
			if err := userRepo.Save(ctx, nil, u); err != nil {
				log.Fatalf("flag support user %s: %v", s.Username, err)
			}
		}
		fmt.Printf("seeded user %s (%s)\n", u.Username, u.ID)
	}

	// A couple of feed posts so the listing endpoints have content.
	author, err := userUC.Register(ctx, "", "studio", "studio@example.test")
	if err != nil {
		log.Fatalf("seed author: %v", err)
	}
	if _, err := feedUC.CreatePost(ctx, author.ID, "Welcome", "First public post.", false, nil); err != nil {
		log.Fatalf("seed post: %v", err)
	}
	if _, err := feedUC.CreatePost(ctx, author.ID, "Members only", "VIP exclusive.", true, nil); err != nil {
		log.Fatalf("seed vip post: %v", err)
	}
	fmt.Println("seed complete")
}
