package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/notification"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/repository/sqlite"
	social "auction-marketplace/internal/socialService"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/stretchr/testify/require"
)

func TestOpenRepository(t *testing.T) {
	t.Parallel()

	repo, closeRepo, err := openRepository(config.Config{})
	require.NoError(t, err)
	require.IsType(t, &repository.MemoryRepo{}, repo)
	closeRepo()

	repo, closeRepo, err = openRepository(config.Config{DBPath: filepath.Join(t.TempDir(), "auction.db")})
	require.NoError(t, err)
	require.IsType(t, &sqlite.Store{}, repo)
	closeRepo()

	_, _, err = openRepository(config.Config{DBPath: filepath.Join(t.TempDir(), "missing", "auction.db")})
	require.Error(t, err)
}

func TestNewMailer_LogsWithoutSMTPHost(t *testing.T) {
	t.Parallel()

	mailer, err := newMailer(config.Config{})
	require.NoError(t, err)
	require.IsType(t, notification.LogMailer{}, mailer)
}

func TestBootstrapAdmin_PromotesExistingUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	socialSvc := social.NewSocialService(repo)
	tokens := auth.NewTokenManager("bootstrap-secret", time.Hour, fakeclock.NewFakeClock(time.Now()))

	user, err := socialSvc.CreateUser(ctx, social.CreateUserInput{Username: "ops", Email: "ops@x.com"})
	require.NoError(t, err)
	require.False(t, user.IsAdmin())

	cfg := config.Config{AdminUsername: "ops", AdminEmail: "ops@x.com"}
	require.NoError(t, bootstrapAdmin(cfg, socialSvc, tokens))

	stored, err := repo.GetUser(ctx, user.UserID)
	require.NoError(t, err)
	require.True(t, stored.IsAdmin())
}
