package handler

import (
	"context"
	"net/http"

	model "auction-marketplace/internal/models"
	social "auction-marketplace/internal/socialService"
	"auction-marketplace/services/bidding/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service SocialServiceInterface
}

func NewUserHandler(service SocialServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUserHandler handles POST /users
func (h *UserHandler) CreateUserHandler(c *gin.Context) {
	var req helpers.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateUserHandler", err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), social.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateUserHandler", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user, "user created successfully")
	helpers.LogSuccess("CreateUserHandler", "user created successfully", map[string]any{
		"user_id": user.UserID,
		"role":    user.Role,
	})
}

// ListUsersHandler handles GET /users
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ListUsersHandler", err, nil)
		return
	}

	if users == nil {
		users = []model.User{}
	}

	utils.JSONResponse(c, http.StatusOK, users, "users retrieved successfully")
}

// GetUserHandler handles GET /users/:id
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	userID := c.Param("id")
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "user retrieved successfully")
}

// FollowUserHandler handles GET /users/followUser/:id
func (h *UserHandler) FollowUserHandler(c *gin.Context) {
	h.updateGraph(c, "FollowUserHandler", "user followed successfully", h.service.Follow)
}

// UnfollowUserHandler handles GET /users/unFollowUser/:id
func (h *UserHandler) UnfollowUserHandler(c *gin.Context) {
	h.updateGraph(c, "UnfollowUserHandler", "user unfollowed successfully", h.service.Unfollow)
}

// RemoveFollowerHandler handles GET /users/removeFollower/:id
func (h *UserHandler) RemoveFollowerHandler(c *gin.Context) {
	h.updateGraph(c, "RemoveFollowerHandler", "follower removed successfully", h.service.RemoveFollower)
}

type graphUpdate func(ctx context.Context, me, other string) (model.User, error)

// updateGraph runs op with the authenticated user and the :id path user
func (h *UserHandler) updateGraph(c *gin.Context, handlerName, message string, op graphUpdate) {
	me, ok := helpers.RequireUser(c, handlerName)
	if !ok {
		return
	}

	otherID := c.Param("id")
	user, err := op(c.Request.Context(), me.UserID, otherID)
	if err != nil {
		helpers.HandleServiceError(c, handlerName, err, map[string]any{"user_id": me.UserID, "other_id": otherID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, message)
	helpers.LogSuccess(handlerName, message, map[string]any{
		"user_id":  me.UserID,
		"other_id": otherID,
	})
}
