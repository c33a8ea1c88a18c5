package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	queueport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/queue/port"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/task"
)

// SendMessageController handles the REST send endpoint: the message is
// queued for background delivery instead of being written inline, and the
// worker drives the same delivery path as a live msg_send frame.
type SendMessageController struct {
	Q queueport.Client
}

func NewSendMessageController(client queueport.Client) *SendMessageController {
	return &SendMessageController{Q: client}
}

type sendMessageRequest struct {
	SenderID int64  `json:"sender_id" binding:"required"`
	ToUserID int64  `json:"to_user_id" binding:"required"`
	Body     string `json:"body" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payload := task.DeliverMessageTaskPayload{
			SenderID: req.SenderID,
			ToUserID: req.ToUserID,
			Body:     req.Body,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode task payload"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		opts := queueport.EnqueueOption{Queue: "messaging", MaxRetry: 20}
		id, err := h.Q.Enqueue(ctx, queueport.Task{Type: task.DeliverMessageTaskType, Payload: b}, opts)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue message"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":     "queued",
			"task_id":    id,
			"sender_id":  req.SenderID,
			"to_user_id": req.ToUserID,
		})
	}
}
