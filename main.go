package main

import (
	auction "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/auth"
	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/notification"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/repository/sqlite"
	"auction-marketplace/internal/server"
	social "auction-marketplace/internal/socialService"
	"auction-marketplace/utils"
	"context"
	"fmt"

	"code.cloudfoundry.org/clock"
)

func main() {
	if err := run(); err != nil {
		utils.Fatal("Auction server stopped", map[string]any{"error": err.Error()})
	}
}

// run owns every resource it opens, so deferred cleanup finishes before main exits
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	mailer, err := newMailer(cfg)
	if err != nil {
		return err
	}

	clk := clock.NewClock()

	auctionSvc := auction.NewAuctionService(repo, clk, cfg.AuctionDuration())
	biddingSvc := bidding.NewBiddingService(repo, auctionSvc, clk)
	socialSvc := social.NewSocialService(repo)
	notifier := notification.NewService(repo, notification.NewDispatcher(mailer, cfg.MailWorkers, cfg.MailTimeout))
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL(), clk)

	if cfg.AdminEmail != "" {
		if err := bootstrapAdmin(cfg, socialSvc, tokens); err != nil {
			return err
		}
	}

	router := server.SetupRouter(server.Services{
		Auctions: auctionSvc,
		Bidding:  biddingSvc,
		Notifier: notifier,
		Social:   socialSvc,
		Tokens:   tokens,
		Users:    repo,
	})

	utils.Info("Starting auction server", map[string]any{
		"addr":             cfg.Addr(),
		"auction_duration": cfg.AuctionDuration().String(),
		"persistent":       cfg.DBPath != "",
	})
	if err := router.Run(cfg.Addr()); err != nil {
		return fmt.Errorf("serve %s: %w", cfg.Addr(), err)
	}
	return nil
}

// openRepository returns the SQLite store when DB_PATH is set, the in-memory repo otherwise
func openRepository(cfg config.Config) (repository.AuctionDB, func(), error) {
	if cfg.DBPath == "" {
		return repository.NewMemoryRepo(), func() {}, nil
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			utils.Error("Failed to close database", map[string]any{"error": err.Error()})
		}
	}, nil
}

// newMailer falls back to logging messages when no SMTP host is configured
func newMailer(cfg config.Config) (notification.Mailer, error) {
	if cfg.SMTP.Host == "" {
		utils.Warn("SMTP_HOST not set, result emails will only be logged", nil)
		return notification.LogMailer{}, nil
	}

	mailer, err := notification.NewSMTPMailer(notification.SMTPSettings{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.FromName,
		FromEmail: cfg.FromEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("configure mailer for %s: %w", cfg.SMTP.Host, err)
	}
	return mailer, nil
}

// bootstrapAdmin makes sure ADMIN_EMAIL exists as an admin user. An in-memory
// repo cannot be reached by the tokengen command, so a token is logged instead.
func bootstrapAdmin(cfg config.Config, socialSvc *social.SocialService, tokens *auth.TokenManager) error {
	admin, created, err := socialSvc.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail)
	if err != nil {
		return fmt.Errorf("bootstrap admin %s: %w", cfg.AdminEmail, err)
	}

	fields := map[string]any{"user_id": admin.UserID, "email": admin.Email, "created": created}
	if cfg.DBPath == "" {
		token, err := tokens.GenerateToken(admin)
		if err != nil {
			return fmt.Errorf("issue admin token: %w", err)
		}
		fields["token"] = token
	}
	utils.Info("Admin user ready", fields)
	return nil
}
