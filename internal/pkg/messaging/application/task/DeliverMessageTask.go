package task

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	qport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/queue/port"
	"github.com/angelromerodev/chat-project-sci/internal/logging"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/usecase"
)

// DeliverMessageTaskType is the queue task name for delivering a
// REST-submitted direct message.
const DeliverMessageTaskType = "messaging:deliver"

// DeliverMessageTaskPayload is the JSON payload transported via the
// queue, kept decoupled from domain types.
type DeliverMessageTaskPayload struct {
	SenderID int64  `json:"senderId"`
	ToUserID int64  `json:"toUserId"`
	Body     string `json:"body"`
}

// Deliverer runs the full send path: validate, persist, push to the
// recipient's live connections. Implemented by the delivery dispatcher.
type Deliverer interface {
	Deliver(ctx context.Context, senderID, toUserID int64, body string) error
}

// RegisterDeliverMessageTask binds the delivery handler to the worker
// server. Store failures are returned so the adapter retries; validation
// failures are terminal and only logged, since re-running them cannot
// succeed.
func RegisterDeliverMessageTask(srv qport.Server, d Deliverer, log logging.Logger) {
	srv.Register(DeliverMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p DeliverMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			log.Error(ctx, "deliver task: malformed payload", "err", err)
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		err := d.Deliver(ctx, p.SenderID, p.ToUserID, p.Body)
		if err == nil {
			return nil
		}
		if errors.Is(err, usecase.ErrPersistence) {
			return err
		}
		log.Warn(ctx, "deliver task: rejected", "senderId", p.SenderID, "toUserId", p.ToUserID, "err", err)
		return nil
	})
}
