package controller

import (
	"context"
	"encoding/json"

	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/realtime"
	"github.com/angelromerodev/chat-project-sci/internal/logging"
	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/usecase"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
)

// DeliveryDispatcher is the delivery router shared by the websocket path
// and the background worker path. It accepts messages for delivery,
// pushes them to the recipient's live connections, and drives the
// delivery-receipt protocol back to the sender.
type DeliveryDispatcher struct {
	registry *realtime.Registry
	sendUC   *usecase.SendMessageUseCase
	ackUC    *usecase.AckDeliveryUseCase
	log      logging.Logger
}

func NewDeliveryDispatcher(store repository.MessageStore, registry *realtime.Registry, log logging.Logger) *DeliveryDispatcher {
	return &DeliveryDispatcher{
		registry: registry,
		sendUC:   usecase.NewSendMessageUseCase(store),
		ackUC:    usecase.NewAckDeliveryUseCase(store),
		log:      log,
	}
}

// Accept validates and persists an outgoing message. Both the block check
// and the insert complete here, before any live push happens.
func (d *DeliveryDispatcher) Accept(ctx context.Context, in usecase.SendMessageInput) (messaging.Message, error) {
	return d.sendUC.Execute(ctx, in)
}

// PushNew fans the persisted message out to every live connection of the
// recipient. When the recipient is offline nothing is pushed; the message
// stays undelivered in the store and surfaces through backlog replay on
// their next connect.
func (d *DeliveryDispatcher) PushNew(msg messaging.Message, toUserID int64) int {
	payload, err := json.Marshal(newMsgNewFrame(msg))
	if err != nil {
		d.log.Error(context.Background(), "encode msg_new", "msgId", msg.ID, "err", err)
		return 0
	}
	return d.registry.FanOut(toUserID, payload)
}

// AckDelivered records the delivery receipt for (msgID, userID) and, if
// the message's sender is online, relays msg_delivered to all of their
// connections. The relay is fire-and-forget: a sender who is offline at
// ack time never receives it.
func (d *DeliveryDispatcher) AckDelivered(ctx context.Context, userID, msgID int64) error {
	senderID, err := d.ackUC.Execute(ctx, usecase.AckDeliveryInput{UserID: userID, MessageID: msgID})
	if err != nil {
		return err
	}

	payload, err := json.Marshal(msgDeliveredFrame{Type: frameMsgDelivered, MsgID: msgID, ByUserID: userID})
	if err != nil {
		d.log.Error(ctx, "encode msg_delivered", "msgId", msgID, "err", err)
		return nil
	}
	d.registry.FanOut(senderID, payload)
	return nil
}

// Deliver runs the full send path for messages submitted outside a
// websocket session (the background worker). The sender has no live
// connection to ack on, so the msg_sent frame is skipped.
func (d *DeliveryDispatcher) Deliver(ctx context.Context, senderID, toUserID int64, body string) error {
	msg, err := d.Accept(ctx, usecase.SendMessageInput{SenderID: senderID, ToUserID: toUserID, Body: body})
	if err != nil {
		return err
	}
	d.PushNew(msg, toUserID)
	return nil
}
