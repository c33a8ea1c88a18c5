package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	authport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/auth/port"
	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/realtime"
	"github.com/angelromerodev/chat-project-sci/internal/logging"
	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/usecase"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
)

const (
	defaultReadTimeout = 60 * time.Second
	inflightTimeout    = 5 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when the web
		// client's origin set is settled.
		return true
	},
}

// SocketController owns the websocket endpoint: handshake, per-connection
// frame loop, backlog replay and presence transitions. Each connection is
// served by one goroutine reading frames sequentially, so a client's own
// messages are never reordered; cross-connection coordination happens
// only through the session registry and the store.
type SocketController struct {
	registry    *realtime.Registry
	verifier    authport.Verifier
	dispatcher  *DeliveryDispatcher
	broadcaster *PresenceBroadcaster
	replayUC    *usecase.ReplayBacklogUseCase
	log         logging.Logger
}

func NewSocketController(store repository.MessageStore, registry *realtime.Registry, verifier authport.Verifier, dispatcher *DeliveryDispatcher, broadcaster *PresenceBroadcaster, log logging.Logger) *SocketController {
	return &SocketController{
		registry:    registry,
		verifier:    verifier,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		replayUC:    usecase.NewReplayBacklogUseCase(store),
		log:         log,
	}
}

// Handle upgrades the HTTP request and serves frames until the client
// disconnects.
func (ctl *SocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}
		conn := realtime.NewConnection(ws)
		conn.Start()
		ctl.serve(c.Request.Context(), conn, ws)
	}
}

func (ctl *SocketController) serve(ctx context.Context, conn *realtime.Connection, ws *websocket.Conn) {
	defer conn.Close(websocket.CloseNormalClosure, "session closed")

	ws.SetReadLimit(1 << 20)
	_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
	})

	identity, ok := ctl.handshake(conn, ws)
	if !ok {
		return
	}

	// Backlog is computed before the connection becomes visible to
	// senders. A message persisted in this window is deferred as if the
	// user were still offline and surfaces on the next connect, which is
	// preferable to replaying it twice.
	backlog, err := ctl.replayBacklog(ctx, identity.UserID)
	if err != nil {
		ctl.log.Error(ctx, "backlog replay", "userId", identity.UserID, "err", err)
		ctl.replyError(conn, codeInternal)
	}

	// hello_ok and the backlog frames are enqueued before the connection
	// is registered. Live fan-out cannot see the connection until
	// registration and the send channel is FIFO, so no message sent
	// during the reconnect can overtake the replay.
	ctl.reply(conn, helloOKFrame{Type: frameHelloOK, UserID: identity.UserID, Username: identity.Username})
	for _, msg := range backlog {
		ctl.reply(conn, newMsgNewFrame(msg))
	}

	ctl.registry.Register(identity.UserID, conn)
	defer func() {
		// The deferred pair runs after the frame loop has returned, so a
		// send still being persisted for this user can finish before the
		// user is observed offline.
		ctl.registry.Unregister(identity.UserID, conn)
		ctl.broadcaster.Broadcast(context.Background())
		ctl.log.Info(ctx, "client disconnected", "userId", identity.UserID, "connId", conn.ID)
	}()

	ctl.broadcaster.Broadcast(ctx)
	ctl.log.Info(ctx, "client connected", "userId", identity.UserID, "connId", conn.ID, "backlog", len(backlog))

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			ctl.replyError(conn, codeInvalidJSON)
			continue
		}

		switch frame.Type {
		case frameMsgSend:
			ctl.handleSend(ctx, conn, identity, frame)
		case frameMsgDelivered:
			ctl.handleDelivered(ctx, conn, identity, frame)
		case frameHello:
			// Handshake already happened on this connection.
			ctl.replyError(conn, codeBadRequest)
		default:
			ctl.replyError(conn, codeUnknownType)
		}
	}
}

// handshake reads frames until a valid hello arrives. Any frame other
// than hello on an unauthenticated connection is fatal: the client gets
// an unauthorized error and the transport is closed with a
// policy-violation code. Unparseable payloads are recoverable and leave
// the connection waiting for a proper hello.
func (ctl *SocketController) handshake(conn *realtime.Connection, ws *websocket.Conn) (realtime.Identity, bool) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return realtime.Identity{}, false
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			ctl.replyError(conn, codeInvalidJSON)
			continue
		}

		if frame.Type != frameHello {
			ctl.replyError(conn, codeUnauthorized)
			conn.Close(websocket.ClosePolicyViolation, "handshake required")
			return realtime.Identity{}, false
		}

		id, err := ctl.verifier.Verify(frame.Token)
		if err != nil {
			ctl.replyError(conn, codeUnauthorized)
			conn.Close(websocket.ClosePolicyViolation, "handshake failed")
			return realtime.Identity{}, false
		}

		conn.Bind(id.UserID, id.Username)
		return realtime.Identity{UserID: id.UserID, Username: id.Username}, true
	}
}

func (ctl *SocketController) replayBacklog(ctx context.Context, userID int64) ([]messaging.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, inflightTimeout)
	defer cancel()
	return ctl.replayUC.Execute(ctx, userID)
}

func (ctl *SocketController) handleSend(ctx context.Context, conn *realtime.Connection, identity realtime.Identity, frame inboundFrame) {
	opCtx, cancel := context.WithTimeout(ctx, inflightTimeout)
	defer cancel()

	msg, err := ctl.dispatcher.Accept(opCtx, usecase.SendMessageInput{
		SenderID: identity.UserID,
		ToUserID: frame.ToUserID,
		Body:     frame.Body,
	})
	if err != nil {
		ctl.handleUseCaseError(ctx, conn, err)
		return
	}

	// msg_sent means accepted for delivery, not delivered; the delivery
	// confirmation only arrives once the recipient acks.
	ctl.reply(conn, msgSentFrame{Type: frameMsgSent, MsgID: msg.ID, ConversationID: msg.ConversationID})
	ctl.dispatcher.PushNew(msg, frame.ToUserID)
}

func (ctl *SocketController) handleDelivered(ctx context.Context, conn *realtime.Connection, identity realtime.Identity, frame inboundFrame) {
	opCtx, cancel := context.WithTimeout(ctx, inflightTimeout)
	defer cancel()

	if err := ctl.dispatcher.AckDelivered(opCtx, identity.UserID, frame.MsgID); err != nil {
		ctl.handleUseCaseError(ctx, conn, err)
	}
}

func (ctl *SocketController) handleUseCaseError(ctx context.Context, conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, messaging.ErrBlocked):
		ctl.replyError(conn, codeBlocked)
	case errors.Is(err, messaging.ErrEmptyBody),
		errors.Is(err, messaging.ErrRecipientNotFound),
		errors.Is(err, messaging.ErrBadMessageID),
		errors.Is(err, messaging.ErrMessageNotFound):
		ctl.replyError(conn, codeBadRequest)
	case errors.Is(err, usecase.ErrPersistence):
		ctl.log.Error(ctx, "persistence failure", "err", err)
		ctl.replyError(conn, codeInternal)
	default:
		ctl.replyError(conn, codeBadRequest)
	}
}

func (ctl *SocketController) reply(conn *realtime.Connection, frame any) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *SocketController) replyError(conn *realtime.Connection, code string) {
	ctl.reply(conn, errorFrame{Type: frameError, Error: code})
}
