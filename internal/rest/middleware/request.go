package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ledgerline/ledgerline/internal/types"
)

// RequestID attaches a request id and the acting user to the request
// context so services and logs can correlate a user action.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("x-request-id")
		if requestID == "" {
			requestID = types.GenerateUUID()
		}

		ctx := types.SetRequestID(c.Request.Context(), requestID)
		if userID := c.GetHeader("x-user-id"); userID != "" {
			ctx = types.SetUserID(ctx, userID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Header("x-request-id", requestID)
		c.Next()
	}
}
