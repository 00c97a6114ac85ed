package auth

import (
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// UserLookup loads the stored user a token refers to
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
}

// Protect rejects requests without a valid bearer token and stores the
// token's user in the gin context.
func Protect(tokens *TokenManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.AbortWithError(c, http.StatusUnauthorized,
				fmt.Errorf("%w: missing token", biddingerrors.ErrUnauthenticated), "Not authorized, no token")
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.AbortWithError(c, http.StatusUnauthorized,
				fmt.Errorf("%w: invalid token format", biddingerrors.ErrUnauthenticated), "Not authorized, invalid token format")
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			utils.Warn("Rejected bearer token", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			utils.AbortWithError(c, http.StatusUnauthorized, err, "Not authorized, token failed")
			return
		}

		user, err := users.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, biddingerrors.ErrNotFound) {
				utils.AbortWithError(c, http.StatusUnauthorized,
					fmt.Errorf("%w: unknown user", biddingerrors.ErrInvalidToken), "Not authorized, user not found")
				return
			}
			utils.Error("Failed to load token user", map[string]any{
				"user_id": claims.UserID,
				"error":   err.Error(),
			})
			utils.AbortWithError(c, http.StatusInternalServerError, err, "Failed to authenticate")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// Authorize allows the request through only when the authenticated user
// holds one of roles. It must run after Protect.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized,
				fmt.Errorf("%w: no user in request", biddingerrors.ErrUnauthenticated), "Not authorized")
			return
		}

		for _, role := range roles {
			if strings.EqualFold(user.Role, role) {
				c.Next()
				return
			}
		}

		utils.AbortWithError(c, http.StatusForbidden,
			fmt.Errorf("%w: role %s not allowed", biddingerrors.ErrNotAuthorized, user.Role),
			fmt.Sprintf("User role %s is not authorized to access this route", user.Role))
	}
}

// CurrentUser returns the user stored by Protect
func CurrentUser(c *gin.Context) (models.User, bool) {
	raw, exists := c.Get(userContextKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := raw.(models.User)
	return user, ok
}

// SetCurrentUser stores user on the request as Protect would
func SetCurrentUser(c *gin.Context, user models.User) {
	c.Set(userContextKey, user)
}
