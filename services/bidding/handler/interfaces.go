package handler

//go:generate mockgen -source=interfaces.go -destination=mock_services.go -package=handler

import (
	"context"

	auction "auction-marketplace/internal/auctionService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/notification"
	social "auction-marketplace/internal/socialService"
)

type AuctionServiceInterface interface {
	CreateItem(ctx context.Context, in auction.CreateItemInput, creator model.User) (model.AuctionItem, error)
	GetItem(ctx context.Context, itemID string) (model.AuctionItem, error)
	ListItems(ctx context.Context) ([]model.AuctionItem, error)
	UpdateItem(ctx context.Context, itemID string, in auction.UpdateItemInput, actor model.User) (model.AuctionItem, error)
	DeleteItem(ctx context.Context, itemID string, actor model.User) error
}

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, itemID, userID string, amount float64) (model.Bid, error)
	GetBidsForItem(ctx context.Context, itemID string) ([]model.Bid, error)
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	UpdateBid(ctx context.Context, bidID, userID string, amount float64) (model.Bid, error)
	DeleteBid(ctx context.Context, bidID, userID string) error
	DetermineWinner(ctx context.Context, itemID string) (model.Bid, error)
	GetItemsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error)
}

type ResultNotifier interface {
	SendResults(ctx context.Context, itemID string) (notification.DispatchResult, error)
}

type SocialServiceInterface interface {
	CreateUser(ctx context.Context, in social.CreateUserInput) (model.User, error)
	GetUser(ctx context.Context, userID string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	Follow(ctx context.Context, followerID, targetID string) (model.User, error)
	Unfollow(ctx context.Context, followerID, targetID string) (model.User, error)
	RemoveFollower(ctx context.Context, userID, followerID string) (model.User, error)
}
