package utils

import (
	"auction-marketplace/internal/biddingerrors"

	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response tagged with the error's kind
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, errorBody(status, err, message))
}

// AbortWithError stops the handler chain and sends a structured error response
func AbortWithError(c *gin.Context, status int, err error, message string) {
	c.AbortWithStatusJSON(status, errorBody(status, err, message))
}

func errorBody(status int, err error, message string) gin.H {
	return gin.H{
		"status":  status,
		"message": message,
		"kind":    biddingerrors.Kind(err),
		"error":   err.Error(),
	}
}
