package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/biddingerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("%w: invalid request payload: %v", biddingerrors.ErrValidation, err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, biddingerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, biddingerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, biddingerrors.ErrDuplicateName):
		return http.StatusBadRequest, "item name already exists"
	case errors.Is(err, biddingerrors.ErrDuplicateEmail):
		return http.StatusBadRequest, "email already registered"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrInvalidItem):
		return http.StatusBadRequest, "invalid item details"
	case errors.Is(err, biddingerrors.ErrInvalidUser):
		return http.StatusBadRequest, "invalid user details"
	case errors.Is(err, biddingerrors.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, biddingerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction closed"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for item"
	case errors.Is(err, biddingerrors.ErrPendingResolution):
		return http.StatusNotFound, "winner not determined yet"
	case errors.Is(err, biddingerrors.ErrSelfFollow):
		return http.StatusBadRequest, "you cannot follow yourself"
	case errors.Is(err, biddingerrors.ErrAlreadyFollowing):
		return http.StatusConflict, "user already followed"
	case errors.Is(err, biddingerrors.ErrUnauthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, biddingerrors.ErrUnauthorized):
		return http.StatusForbidden, "not authorized"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleServiceError responds with the mapped status and logs the failure.
// Client errors are logged at warn level, server errors at error level.
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	logFields := map[string]any{"handler": handlerName, "error": err.Error()}
	for k, v := range fields {
		logFields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+message, logFields)
		return
	}
	utils.Warn(handlerName+": "+message, logFields)
}

// RequireUser returns the authenticated user or responds 401
func RequireUser(c *gin.Context, handlerName string) (model.User, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		HandleServiceError(c, handlerName, biddingerrors.ErrUnauthenticated, nil)
		return model.User{}, false
	}
	return user, true
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
