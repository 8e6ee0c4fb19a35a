//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/member-sync/internal/auth"
	"github.com/hugh/member-sync/internal/database"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/pkg/config"
	"github.com/hugh/member-sync/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, nil)

	creds := auth.Credentials{
		Email:    envOr("SEED_EMAIL", "member@example.com"),
		Password: envOr("SEED_PASSWORD", "member123"),
	}

	ctx := context.Background()
	session, err := authService.SignUp(ctx, creds)
	if errors.Is(err, auth.ErrUserExists) {
		fmt.Printf("User already exists: %s\n", creds.Email)
		session, err = authService.SignIn(ctx, creds)
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	// Optional database record; leave SEED_TEL and SEED_TOPIC unset to test
	// the spreadsheet fallback.
	fields := member.Fields{
		Tel:   os.Getenv("SEED_TEL"),
		Topic: os.Getenv("SEED_TOPIC"),
	}
	if !fields.IsEmpty() {
		store := member.NewGormStore(db)
		if err := store.UpdateMember(ctx, session.User.ID, session.User.Email, fields); err != nil {
			log.Fatalf("failed to seed member record: %v", err)
		}
		fmt.Println("Member record stored")
	}

	fmt.Printf("Email: %s\n", session.User.Email)
	fmt.Printf("Token: %s\n", session.Token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
