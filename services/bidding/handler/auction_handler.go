package handler

import (
	"net/http"

	auction "auction-marketplace/internal/auctionService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/bidding/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateItemHandler handles POST /auctionitems
func (h *AuctionHandler) CreateItemHandler(c *gin.Context) {
	user, ok := helpers.RequireUser(c, "CreateItemHandler")
	if !ok {
		return
	}

	var req helpers.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateItemHandler", err)
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), auction.CreateItemInput{
		Name:           req.Name,
		Description:    req.Description,
		StartingAmount: req.StartingAmount,
		ImageURL:       req.ImageURL,
	}, user)
	if err != nil {
		helpers.HandleServiceError(c, "CreateItemHandler", err, map[string]any{"user_id": user.UserID, "name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, item, "auction item created successfully")
	helpers.LogSuccess("CreateItemHandler", "auction item created successfully", map[string]any{
		"item_id":  item.ItemID,
		"user_id":  user.UserID,
		"end_time": item.EndTime,
	})
}

// ListItemsHandler handles GET /auctionitems
func (h *AuctionHandler) ListItemsHandler(c *gin.Context) {
	items, err := h.service.ListItems(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ListItemsHandler", err, nil)
		return
	}

	if items == nil {
		items = []model.AuctionItem{}
	}

	utils.JSONResponse(c, http.StatusOK, items, "auction items retrieved successfully")
	helpers.LogSuccess("ListItemsHandler", "auction items retrieved successfully", map[string]any{"count": len(items)})
}

// GetItemHandler handles GET /auctionitems/:id
func (h *AuctionHandler) GetItemHandler(c *gin.Context) {
	itemID := c.Param("id")
	item, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		helpers.HandleServiceError(c, "GetItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "auction item retrieved successfully")
}

// UpdateItemHandler handles PUT /auctionitems/:id
func (h *AuctionHandler) UpdateItemHandler(c *gin.Context) {
	user, ok := helpers.RequireUser(c, "UpdateItemHandler")
	if !ok {
		return
	}

	var req helpers.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateItemHandler", err)
		return
	}

	itemID := c.Param("id")
	item, err := h.service.UpdateItem(c.Request.Context(), itemID, auction.UpdateItemInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Amount:      req.Amount,
	}, user)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateItemHandler", err, map[string]any{"item_id": itemID, "user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "auction item updated successfully")
	helpers.LogSuccess("UpdateItemHandler", "auction item updated successfully", map[string]any{
		"item_id": itemID,
		"user_id": user.UserID,
	})
}

// DeleteItemHandler handles DELETE /auctionitems/:id
func (h *AuctionHandler) DeleteItemHandler(c *gin.Context) {
	user, ok := helpers.RequireUser(c, "DeleteItemHandler")
	if !ok {
		return
	}

	itemID := c.Param("id")
	if err := h.service.DeleteItem(c.Request.Context(), itemID, user); err != nil {
		helpers.HandleServiceError(c, "DeleteItemHandler", err, map[string]any{"item_id": itemID, "user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"item_id": itemID}, "auction item deleted successfully")
	helpers.LogSuccess("DeleteItemHandler", "auction item deleted successfully", map[string]any{
		"item_id": itemID,
		"user_id": user.UserID,
	})
}
