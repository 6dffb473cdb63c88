package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/infrastructure/logger"
)

// ActorHeader names the operator acting through the API. Authentication
// happens in front of this service; the header is trusted as given.
const ActorHeader = "X-Actor"

// Actor stores the caller's name in the request context, where job
// approvals and sync log entries pick it up.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader(ActorHeader)); actor != "" {
			if len(actor) > 100 {
				actor = actor[:100]
			}
			c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}
