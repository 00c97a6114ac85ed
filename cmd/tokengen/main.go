// Command tokengen prints a bearer token for a user stored in the SQLite database.
//
//	DB_PATH=auction.db JWT_SECRET=... tokengen -user <user-id>
package main

import (
	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/repository/sqlite"
	"auction-marketplace/utils"
	"context"
	"errors"
	"flag"
	"fmt"

	"code.cloudfoundry.org/clock"
)

func main() {
	userID := flag.String("user", "", "id of the user to issue a token for")
	flag.Parse()

	token, err := run(*userID)
	if err != nil {
		utils.Fatal("Failed to issue token", map[string]any{"user_id": *userID, "error": err.Error()})
	}
	fmt.Println(token)
}

func run(userID string) (string, error) {
	if !utils.IsValidID(userID) {
		return "", errors.New("a valid -user id is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load configuration: %w", err)
	}
	if cfg.DBPath == "" {
		return "", errors.New("DB_PATH must point at the server database")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return "", fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	defer store.Close()

	user, err := store.GetUser(context.Background(), userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	return auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL(), clock.NewClock()).GenerateToken(user)
}
