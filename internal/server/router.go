package server

import (
	"auction-marketplace/internal/auth"
	model "auction-marketplace/internal/models"
	handler "auction-marketplace/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// Services groups everything the router dispatches to
type Services struct {
	Auctions handler.AuctionServiceInterface
	Bidding  handler.BiddingServiceInterface
	Notifier handler.ResultNotifier
	Social   handler.SocialServiceInterface
	Tokens   *auth.TokenManager
	Users    auth.UserLookup
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(s Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(s.Auctions)
	biddingHandler := handler.NewBiddingHandler(s.Bidding, s.Notifier)
	userHandler := handler.NewUserHandler(s.Social)

	protect := auth.Protect(s.Tokens, s.Users)
	adminOnly := auth.Authorize(model.RoleAdmin)

	items := router.Group("/auctionitems")
	{
		items.GET("", auctionHandler.ListItemsHandler)
		items.GET("/:id", auctionHandler.GetItemHandler)
		items.GET("/:id/bids", biddingHandler.GetBidsByItemHandler)

		items.POST("", protect, auctionHandler.CreateItemHandler)
		items.PUT("/:id", protect, auctionHandler.UpdateItemHandler)
		items.DELETE("/:id", protect, auctionHandler.DeleteItemHandler)
		items.POST("/:id/bids", protect, biddingHandler.PlaceBidHandler)

		items.GET("/:id/winner", protect, adminOnly, biddingHandler.GetWinnerHandler)
		items.GET("/:id/sendEmail", protect, adminOnly, biddingHandler.SendEmailHandler)
	}

	bids := router.Group("/bids")
	{
		bids.GET("/:id", biddingHandler.GetBidHandler)
		bids.PUT("/:id", protect, biddingHandler.UpdateBidHandler)
		bids.DELETE("/:id", protect, biddingHandler.DeleteBidHandler)
	}

	users := router.Group("/users", protect)
	{
		users.GET("/followUser/:id", userHandler.FollowUserHandler)
		users.GET("/unFollowUser/:id", userHandler.UnfollowUserHandler)
		users.GET("/removeFollower/:id", userHandler.RemoveFollowerHandler)
		users.GET("/:id/items", biddingHandler.GetItemsByUserHandler)

		users.POST("", adminOnly, userHandler.CreateUserHandler)
		users.GET("", adminOnly, userHandler.ListUsersHandler)
		users.GET("/:id", adminOnly, userHandler.GetUserHandler)
	}

	return router
}
