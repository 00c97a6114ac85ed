package handler

import (
	"net/http"

	model "auction-marketplace/internal/models"
	"auction-marketplace/services/bidding/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type BiddingHandler struct {
	service  BiddingServiceInterface
	notifier ResultNotifier
}

func NewBiddingHandler(service BiddingServiceInterface, notifier ResultNotifier) *BiddingHandler {
	return &BiddingHandler{service: service, notifier: notifier}
}

// PlaceBidHandler handles POST /auctionitems/:id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	user, ok := helpers.RequireUser(c, "PlaceBidHandler")
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	itemID := c.Param("id")
	bid, err := h.service.PlaceBid(c.Request.Context(), itemID, user.UserID, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"item_id": itemID,
			"user_id": user.UserID,
			"amount":  req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":  bid.BidID,
		"item_id": bid.ItemID,
		"user_id": user.UserID,
		"amount":  bid.Amount,
	})
}

// GetBidsByItemHandler handles GET /auctionitems/:id/bids
func (h *BiddingHandler) GetBidsByItemHandler(c *gin.Context) {
	itemID := c.Param("id")
	bids, err := h.service.GetBidsForItem(c.Request.Context(), itemID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidsByItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByItemHandler", "bids retrieved successfully", map[string]any{
		"item_id": itemID,
		"count":   len(bids),
	})
}

// GetBidHandler handles GET /bids/:id
func (h *BiddingHandler) GetBidHandler(c *gin.Context) {
	bidID := c.Param("id")
	bid, err := h.service.GetBid(c.Request.Context(), bidID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidHandler", err, map[string]any{"bid_id": bidID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid retrieved successfully")
}

// UpdateBidHandler handles PUT /bids/:id
func (h *BiddingHandler) UpdateBidHandler(c *gin.Context) {
	user, ok := helpers.RequireUser(c, "UpdateBidHandler")
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateBidHandler", err)
		return
	}

	bidID := c.Param("id")
	bid, err := h.service.UpdateBid(c.Request.Context(), bidID, user.UserID, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateBidHandler", err, map[string]any{"bid_id": bidID, "user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid updated successfully")
	helpers.LogSuccess("UpdateBidHandler", "bid updated successfully", map[string]any{
		"bid_id": bidID,
		"amount": bid.Amount,
	})
}

// DeleteBidHandler handles DELETE /bids/:id
func (h *BiddingHandler) DeleteBidHandler(c *gin.Context) {
	user, ok := helpers.RequireUser(c, "DeleteBidHandler")
	if !ok {
		return
	}

	bidID := c.Param("id")
	if err := h.service.DeleteBid(c.Request.Context(), bidID, user.UserID); err != nil {
		helpers.HandleServiceError(c, "DeleteBidHandler", err, map[string]any{"bid_id": bidID, "user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"bid_id": bidID}, "bid deleted successfully")
	helpers.LogSuccess("DeleteBidHandler", "bid deleted successfully", map[string]any{"bid_id": bidID})
}

// GetWinnerHandler handles GET /auctionitems/:id/winner
func (h *BiddingHandler) GetWinnerHandler(c *gin.Context) {
	itemID := c.Param("id")
	bid, err := h.service.DetermineWinner(c.Request.Context(), itemID)
	if err != nil {
		helpers.HandleServiceError(c, "GetWinnerHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "winner determined successfully")
	helpers.LogSuccess("GetWinnerHandler", "winner determined successfully", map[string]any{
		"bid_id":  bid.BidID,
		"item_id": itemID,
		"user_id": bid.UserID,
		"amount":  bid.Amount,
	})
}

// SendEmailHandler handles GET /auctionitems/:id/sendEmail.
// Individual mail failures do not change the response.
func (h *BiddingHandler) SendEmailHandler(c *gin.Context) {
	itemID := c.Param("id")
	result, err := h.notifier.SendResults(c.Request.Context(), itemID)
	if err != nil {
		helpers.HandleServiceError(c, "SendEmailHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, result, "emails sent")
	helpers.LogSuccess("SendEmailHandler", "emails sent", map[string]any{
		"item_id":   itemID,
		"attempted": result.Attempted,
		"failed":    result.Failed,
	})
}

// GetItemsByUserHandler handles GET /users/:id/items
func (h *BiddingHandler) GetItemsByUserHandler(c *gin.Context) {
	userID := c.Param("id")
	items, err := h.service.GetItemsByUser(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetItemsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	if items == nil {
		items = []model.AuctionItem{}
	}

	utils.JSONResponse(c, http.StatusOK, items, "items retrieved successfully")
	helpers.LogSuccess("GetItemsByUserHandler", "items retrieved successfully", map[string]any{
		"user_id":     userID,
		"items_count": len(items),
	})
}
