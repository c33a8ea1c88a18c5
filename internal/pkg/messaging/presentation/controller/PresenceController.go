package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PresenceController serves the latest roster snapshot over REST, for
// clients that want presence without holding a websocket open.
type PresenceController struct {
	broadcaster *PresenceBroadcaster
}

func NewPresenceController(broadcaster *PresenceBroadcaster) *PresenceController {
	return &PresenceController{broadcaster: broadcaster}
}

func (h *PresenceController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		payload, err := h.broadcaster.Snapshot(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "presence unavailable"})
			return
		}
		c.Data(http.StatusOK, "application/json", payload)
	}
}
