package bidding

import (
	"auction-marketplace/internal/biddingerrors"
	model "auction-marketplace/internal/models"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	openAt  = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	closeAt = openAt.Add(time.Hour)
)

func openItem() model.AuctionItem {
	return model.AuctionItem{
		ItemID:         "item1",
		Name:           "Vase",
		Description:    "Ming vase",
		StartTime:      openAt,
		EndTime:        closeAt,
		StartingAmount: 100,
		UserID:         "owner",
	}
}

// Tests AcceptBid
func TestAcceptBid(t *testing.T) {
	t.Parallel()

	item := openItem()

	tests := []struct {
		name          string
		item          *model.AuctionItem
		bidderID      string
		amount        float64
		now           time.Time
		expectedError error
	}{
		{name: "at_starting_amount", item: &item, bidderID: "u1", amount: 100, now: openAt},
		{name: "above_starting_amount", item: &item, bidderID: "u1", amount: 150.25, now: openAt.Add(30 * time.Minute)},
		{name: "no_upper_bound", item: &item, bidderID: "u1", amount: math.MaxFloat64 / 2, now: openAt},
		{name: "just_before_close", item: &item, bidderID: "u1", amount: 100, now: closeAt.Add(-time.Nanosecond)},
		{name: "sub_cent_below_floor", item: &item, bidderID: "u1", amount: 99.995, now: openAt, expectedError: biddingerrors.ErrBidTooLow},
		{name: "sub_cent_above_floor", item: &item, bidderID: "u1", amount: 100.001, now: openAt},
		{name: "nil_item", item: nil, bidderID: "u1", amount: 100, now: openAt, expectedError: biddingerrors.ErrItemNotFound},
		{name: "at_close", item: &item, bidderID: "u1", amount: 100, now: closeAt, expectedError: biddingerrors.ErrAuctionClosed},
		{name: "after_close", item: &item, bidderID: "u1", amount: 1000, now: closeAt.Add(time.Minute), expectedError: biddingerrors.ErrAuctionClosed},
		{name: "below_starting_amount", item: &item, bidderID: "u1", amount: 99.99, now: openAt, expectedError: biddingerrors.ErrBidTooLow},
		{name: "empty_bidder", item: &item, bidderID: "", amount: 100, now: openAt, expectedError: biddingerrors.ErrInvalidBid},
		{name: "zero_amount", item: &item, bidderID: "u1", amount: 0, now: openAt, expectedError: biddingerrors.ErrInvalidBid},
		{name: "negative_amount", item: &item, bidderID: "u1", amount: -5, now: openAt, expectedError: biddingerrors.ErrInvalidBid},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			bid, err := AcceptBid(tc.item, tc.bidderID, tc.amount, tc.now)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Empty(t, bid.BidID)
			require.Equal(t, "item1", bid.ItemID)
			require.Equal(t, tc.bidderID, bid.UserID)
			require.Equal(t, tc.amount, bid.Amount)
			require.Equal(t, tc.now, bid.CreatedAt)
		})
	}
}

// Closed takes precedence over too low
func TestAcceptBid_ClosedBeforeTooLow(t *testing.T) {
	t.Parallel()

	item := openItem()
	_, err := AcceptBid(&item, "u1", 1, closeAt)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionClosed)
}

// Tests ResolveWinner
func TestResolveWinner(t *testing.T) {
	t.Parallel()

	bid := func(id, user string, amount float64) model.Bid {
		return model.Bid{BidID: id, ItemID: "item1", UserID: user, Amount: amount}
	}

	tests := []struct {
		name          string
		bids          []model.Bid
		expected      Winner
		expectedError error
	}{
		{
			name:          "no_bids",
			bids:          nil,
			expectedError: biddingerrors.ErrNoBids,
		},
		{
			name:     "single_bid",
			bids:     []model.Bid{bid("b1", "u1", 100)},
			expected: Winner{UserID: "u1", BidID: "b1", Amount: 100},
		},
		{
			name:     "first_max_wins_tie",
			bids:     []model.Bid{bid("b1", "u1", 10), bid("b2", "u2", 30), bid("b3", "u3", 30), bid("b4", "u4", 5)},
			expected: Winner{UserID: "u2", BidID: "b2", Amount: 30},
		},
		{
			name:     "highest_last",
			bids:     []model.Bid{bid("b1", "u1", 100), bid("b2", "u2", 100.5), bid("b3", "u1", 101)},
			expected: Winner{UserID: "u1", BidID: "b3", Amount: 101},
		},
		{
			name:     "sub_cent_higher_bid_wins",
			bids:     []model.Bid{bid("b1", "u1", 30.001), bid("b2", "u2", 30.004)},
			expected: Winner{UserID: "u2", BidID: "b2", Amount: 30.004},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			winner, err := ResolveWinner(tc.bids)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, winner)
		})
	}
}

// The winner's amount is never exceeded by any bid in the ledger
func TestResolveWinner_IsMaximum(t *testing.T) {
	t.Parallel()

	amounts := []float64{120, 340.5, 99, 340.5, 12, 341, 7}
	bids := make([]model.Bid, 0, len(amounts))
	for i, amount := range amounts {
		bids = append(bids, model.Bid{BidID: string(rune('a' + i)), UserID: "u", Amount: amount})
	}

	winner, err := ResolveWinner(bids)
	require.NoError(t, err)
	for _, b := range bids {
		require.LessOrEqual(t, b.Amount, winner.Amount)
	}
	require.Equal(t, "f", winner.BidID)
}
