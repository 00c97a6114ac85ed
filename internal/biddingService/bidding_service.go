package bidding

import (
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
	"context"
	"fmt"

	"code.cloudfoundry.org/clock"
)

// Settler records a resolved winner on an item
type Settler interface {
	Settle(ctx context.Context, itemID, winnerUserID, winningBidID string) (models.AuctionItem, error)
}

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo    repository.AuctionDB
	settler Settler
	clock   clock.Clock
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, settler Settler, clk clock.Clock) *BiddingService {
	return &BiddingService{
		repo:    repo,
		settler: settler,
		clock:   clk,
	}
}

// PlaceBid validates and records a user's bid for an item
func (s *BiddingService) PlaceBid(ctx context.Context, itemID, userID string, amount float64) (models.Bid, error) {
	if itemID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing itemID", biddingerrors.ErrInvalidBid)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}

	bid, err := AcceptBid(&item, userID, amount, s.clock.Now().UTC())
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: bid rejected for item %s: %w", itemID, err)
	}
	bid.BidID = utils.GenerateID()

	if err := s.repo.RecordBidForItem(ctx, bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for item %s by user %s: %w", itemID, userID, err)
	}

	return bid, nil
}

// GetBidsForItem returns all bids for a specific item in ledger order
func (s *BiddingService) GetBidsForItem(ctx context.Context, itemID string) ([]models.Bid, error) {
	if itemID == "" {
		return nil, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for item %s: %w", itemID, err)
	}

	return bids, nil
}

// GetBid returns a single bid
func (s *BiddingService) GetBid(ctx context.Context, bidID string) (models.Bid, error) {
	if bidID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty bid ID", biddingerrors.ErrInvalidBid)
	}

	bid, err := s.repo.GetBid(ctx, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get bid %s: %w", bidID, err)
	}
	return bid, nil
}

// UpdateBid changes the amount of a bid owned by userID.
// The new amount goes through the acceptance policy again; CreatedAt is kept.
func (s *BiddingService) UpdateBid(ctx context.Context, bidID, userID string, amount float64) (models.Bid, error) {
	bid, err := s.ownedBid(ctx, bidID, userID)
	if err != nil {
		return models.Bid{}, err
	}

	item, err := s.repo.GetItem(ctx, bid.ItemID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get item %s: %w", bid.ItemID, err)
	}
	if _, err := AcceptBid(&item, userID, amount, s.clock.Now().UTC()); err != nil {
		return models.Bid{}, fmt.Errorf("service: bid update rejected for item %s: %w", bid.ItemID, err)
	}

	bid.Amount = amount
	if err := s.repo.UpdateBid(ctx, bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to update bid %s: %w", bidID, err)
	}
	return bid, nil
}

// DeleteBid removes a bid owned by userID
func (s *BiddingService) DeleteBid(ctx context.Context, bidID, userID string) error {
	if _, err := s.ownedBid(ctx, bidID, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteBid(ctx, bidID); err != nil {
		return fmt.Errorf("service: failed to delete bid %s: %w", bidID, err)
	}
	return nil
}

func (s *BiddingService) ownedBid(ctx context.Context, bidID, userID string) (models.Bid, error) {
	bid, err := s.GetBid(ctx, bidID)
	if err != nil {
		return models.Bid{}, err
	}
	if bid.UserID != userID {
		return models.Bid{}, fmt.Errorf("service: %w - bid %s belongs to another user", biddingerrors.ErrNotAuthorized, bidID)
	}
	return bid, nil
}

// DetermineWinner resolves the item's ledger and settles the winner on the item
func (s *BiddingService) DetermineWinner(ctx context.Context, itemID string) (models.Bid, error) {
	if itemID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}

	bids, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get bids for item %s: %w", itemID, err)
	}

	winner, err := ResolveWinner(bids)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to resolve winner for item %s: %w", itemID, err)
	}

	if _, err := s.settler.Settle(ctx, itemID, winner.UserID, winner.BidID); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to settle item %s: %w", itemID, err)
	}

	for _, bid := range bids {
		if bid.BidID == winner.BidID {
			return bid, nil
		}
	}
	return models.Bid{}, fmt.Errorf("service: winning bid %s missing from ledger", winner.BidID)
}

// GetItemsByUser returns all items a user has placed bids on
func (s *BiddingService) GetItemsByUser(ctx context.Context, userID string) ([]models.AuctionItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidBid)
	}

	items, err := s.repo.GetItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get items for user %s: %w", userID, err)
	}

	return items, nil
}
