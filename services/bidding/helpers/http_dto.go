package helpers

import (
	"time"

	model "auction-marketplace/internal/models"
)

// Request/Response DTOs
type CreateItemRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description" binding:"required"`
	StartingAmount float64 `json:"startingAmount" binding:"required,gt=0"`
	ImageURL       string  `json:"image"`
}

// UpdateItemRequest fields are optional; omitted fields are left unchanged
type UpdateItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image"`
	Amount      *float64 `json:"amount"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"bidAmount" binding:"required"`
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	ItemID    string  `json:"item_id"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
}

// NewBidResponse formats a bid for the wire
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		ItemID:    bid.ItemID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewBidResponses formats a ledger; an empty ledger becomes an empty list
func NewBidResponses(bids []model.Bid) []BidResponse {
	resp := make([]BidResponse, 0, len(bids))
	for _, bid := range bids {
		resp = append(resp, NewBidResponse(bid))
	}
	return resp
}
