package auction

import (
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"code.cloudfoundry.org/clock"
)

const (
	maxNameLength        = 50
	maxDescriptionLength = 500
)

// CreateItemInput carries the caller-supplied fields of a new item
type CreateItemInput struct {
	Name           string
	Description    string
	StartingAmount float64
	ImageURL       string
}

// UpdateItemInput carries optional field changes; nil means unchanged
type UpdateItemInput struct {
	Name        *string
	Description *string
	ImageURL    *string
	Amount      *float64
}

func (in UpdateItemInput) changesOwnerFields() bool {
	return in.Name != nil || in.Description != nil || in.ImageURL != nil
}

func (in UpdateItemInput) isEmpty() bool {
	return !in.changesOwnerFields() && in.Amount == nil
}

// AuctionService owns an item's sale window and settlement state
type AuctionService struct {
	repo     repository.AuctionDB
	clock    clock.Clock
	duration time.Duration
}

// NewAuctionService creates a new AuctionService. duration is applied to every item at creation.
func NewAuctionService(repo repository.AuctionDB, clk clock.Clock, duration time.Duration) *AuctionService {
	return &AuctionService{
		repo:     repo,
		clock:    clk,
		duration: duration,
	}
}

// CreateItem validates and stores a new item owned by creator
func (s *AuctionService) CreateItem(ctx context.Context, in CreateItemInput, creator models.User) (models.AuctionItem, error) {
	if creator.UserID == "" {
		return models.AuctionItem{}, fmt.Errorf("service: %w - missing creator", biddingerrors.ErrInvalidItem)
	}
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if err := validateName(name); err != nil {
		return models.AuctionItem{}, err
	}
	if err := validateDescription(description); err != nil {
		return models.AuctionItem{}, err
	}
	if in.StartingAmount <= 0 {
		return models.AuctionItem{}, fmt.Errorf("service: %w - starting amount must be positive", biddingerrors.ErrInvalidItem)
	}

	now := s.clock.Now().UTC()
	item := models.AuctionItem{
		ItemID:         utils.GenerateID(),
		Name:           name,
		Description:    description,
		ImageURL:       strings.TrimSpace(in.ImageURL),
		StartTime:      now,
		EndTime:        now.Add(s.duration),
		StartingAmount: in.StartingAmount,
		UserID:         creator.UserID,
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return models.AuctionItem{}, fmt.Errorf("service: failed to create item %q: %w", name, err)
	}
	return item, nil
}

// GetItem returns a single item
func (s *AuctionService) GetItem(ctx context.Context, itemID string) (models.AuctionItem, error) {
	if itemID == "" {
		return models.AuctionItem{}, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidItem)
	}
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return models.AuctionItem{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}
	return item, nil
}

// ListItems returns every item
func (s *AuctionService) ListItems(ctx context.Context) ([]models.AuctionItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list items: %w", err)
	}
	return items, nil
}

// UpdateItem applies in to the item on behalf of actor.
// Changing Amount requires an admin; changing any other field requires the creator.
// StartTime and EndTime are never modified.
func (s *AuctionService) UpdateItem(ctx context.Context, itemID string, in UpdateItemInput, actor models.User) (models.AuctionItem, error) {
	if in.isEmpty() {
		return models.AuctionItem{}, fmt.Errorf("service: %w - nothing to update", biddingerrors.ErrInvalidItem)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return models.AuctionItem{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}

	if in.Amount != nil && !actor.IsAdmin() {
		return models.AuctionItem{}, fmt.Errorf("service: %w - only admin can update the amount", biddingerrors.ErrNotAuthorized)
	}
	if in.changesOwnerFields() && item.UserID != actor.UserID {
		return models.AuctionItem{}, fmt.Errorf("service: %w - user %s does not own item %s", biddingerrors.ErrNotAuthorized, actor.UserID, itemID)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return models.AuctionItem{}, err
		}
		item.Name = name
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if err := validateDescription(description); err != nil {
			return models.AuctionItem{}, err
		}
		item.Description = description
	}
	if in.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Amount != nil {
		if *in.Amount < 0 {
			return models.AuctionItem{}, fmt.Errorf("service: %w - amount cannot be negative", biddingerrors.ErrInvalidItem)
		}
		amount := *in.Amount
		item.Amount = &amount
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return models.AuctionItem{}, fmt.Errorf("service: failed to update item %s: %w", itemID, err)
	}
	return item, nil
}

// Settle writes the resolved winner onto the item. Re-settling overwrites.
func (s *AuctionService) Settle(ctx context.Context, itemID, winnerUserID, winningBidID string) (models.AuctionItem, error) {
	if winnerUserID == "" || winningBidID == "" {
		return models.AuctionItem{}, fmt.Errorf("service: %w - missing winner or winning bid", biddingerrors.ErrInvalidItem)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return models.AuctionItem{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}

	if err := s.repo.SettleItem(ctx, itemID, winnerUserID, winningBidID); err != nil {
		return models.AuctionItem{}, fmt.Errorf("service: failed to settle item %s: %w", itemID, err)
	}
	item.Winner = winnerUserID
	item.WinnerBid = winningBidID
	return item, nil
}

// DeleteItem removes an item on behalf of its creator. Bids are not removed.
func (s *AuctionService) DeleteItem(ctx context.Context, itemID string, actor models.User) error {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}
	if item.UserID != actor.UserID {
		return fmt.Errorf("service: %w - user %s does not own item %s", biddingerrors.ErrNotAuthorized, actor.UserID, itemID)
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("service: failed to delete item %s: %w", itemID, err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("service: %w - please add a name", biddingerrors.ErrInvalidItem)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("service: %w - name cannot be more than %d characters", biddingerrors.ErrInvalidItem, maxNameLength)
	}
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return fmt.Errorf("service: %w - please add a description", biddingerrors.ErrInvalidItem)
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return fmt.Errorf("service: %w - description cannot be more than %d characters", biddingerrors.ErrInvalidItem, maxDescriptionLength)
	}
	return nil
}
