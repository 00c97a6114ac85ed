package server

import (
	"auction-marketplace/internal/auth"
	"auction-marketplace/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware tags each request with an id and logs it with
// timing once the handlers have run. 5xx responses log at error, 4xx at warn.
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = utils.GenerateID()
	}
	c.Header(requestIDHeader, requestID)

	c.Next()

	status := c.Writer.Status()
	fields := map[string]any{
		"request_id": requestID,
		"method":     c.Request.Method,
		"path":       c.FullPath(),
		"status":     status,
		"client_ip":  c.ClientIP(),
		"latency":    time.Since(start).String(),
	}
	if user, ok := auth.CurrentUser(c); ok {
		fields["user_id"] = user.UserID
	}

	switch {
	case status >= http.StatusInternalServerError:
		utils.Error("HTTP Request", fields)
	case status >= http.StatusBadRequest:
		utils.Warn("HTTP Request", fields)
	default:
		utils.Info("HTTP Request", fields)
	}
}
