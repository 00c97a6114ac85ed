package bidding

import (
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Winner is the outcome of resolving an item's ledger
type Winner struct {
	UserID string  `json:"user_id"`
	BidID  string  `json:"bid_id"`
	Amount float64 `json:"amount"`
}

// toDecimal converts without rounding; sub-cent differences still count
func toDecimal(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount)
}

// AcceptBid applies the acceptance policy to a bid of amount by bidderID at now.
// The returned bid carries no ID and has not been persisted.
func AcceptBid(item *models.AuctionItem, bidderID string, amount float64, now time.Time) (models.Bid, error) {
	if item == nil {
		return models.Bid{}, fmt.Errorf("policy: %w", biddingerrors.ErrItemNotFound)
	}
	if bidderID == "" {
		return models.Bid{}, fmt.Errorf("policy: %w - missing bidder", biddingerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.Bid{}, fmt.Errorf("policy: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	if !now.Before(item.EndTime) {
		return models.Bid{}, fmt.Errorf("policy: %w - item %s closed at %s", biddingerrors.ErrAuctionClosed, item.ItemID, item.EndTime.Format(time.RFC3339))
	}
	if toDecimal(amount).LessThan(toDecimal(item.StartingAmount)) {
		return models.Bid{}, fmt.Errorf("policy: %w - minimum bid is %s", biddingerrors.ErrBidTooLow, toDecimal(item.StartingAmount))
	}

	return models.Bid{
		ItemID:    item.ItemID,
		UserID:    bidderID,
		Amount:    amount,
		CreatedAt: now,
	}, nil
}

// ResolveWinner picks the highest bid in ledger order. On equal amounts the
// earliest bid keeps the win.
func ResolveWinner(bids []models.Bid) (Winner, error) {
	if len(bids) == 0 {
		return Winner{}, biddingerrors.ErrNoBids
	}

	best := bids[0]
	bestAmount := toDecimal(best.Amount)
	for _, bid := range bids[1:] {
		amount := toDecimal(bid.Amount)
		if amount.GreaterThan(bestAmount) {
			best = bid
			bestAmount = amount
		}
	}

	return Winner{UserID: best.UserID, BidID: best.BidID, Amount: best.Amount}, nil
}
