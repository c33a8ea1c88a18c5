package controller

import (
	"time"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
)

// Wire protocol frame kinds. Every frame is one JSON object discriminated
// by "type".
const (
	frameHello        = "hello"
	frameHelloOK      = "hello_ok"
	frameUsers        = "users"
	frameMsgSend      = "msg_send"
	frameMsgSent      = "msg_sent"
	frameMsgNew       = "msg_new"
	frameMsgDelivered = "msg_delivered"
	frameError        = "error"
)

// Wire error codes, per the service error taxonomy.
const (
	codeUnauthorized = "unauthorized"
	codeBadRequest   = "bad_request"
	codeBlocked      = "blocked"
	codeUnknownType  = "unknown_type"
	codeInvalidJSON  = "invalid_json"
	codeInternal     = "internal_error"
)

// inboundFrame is the superset of all client-to-server payloads.
type inboundFrame struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	ToUserID int64  `json:"toUserId,omitempty"`
	Body     string `json:"body,omitempty"`
	MsgID    int64  `json:"msgId,omitempty"`
}

type helloOKFrame struct {
	Type     string `json:"type"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type userEntry struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Online   bool   `json:"online"`
}

type usersFrame struct {
	Type  string      `json:"type"`
	Users []userEntry `json:"users"`
}

type msgSentFrame struct {
	Type           string `json:"type"`
	MsgID          int64  `json:"msgId"`
	ConversationID int64  `json:"conversationId"`
}

type msgNewFrame struct {
	Type           string    `json:"type"`
	MsgID          int64     `json:"msgId"`
	ConversationID int64     `json:"conversationId"`
	FromUserID     int64     `json:"fromUserId"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}

type msgDeliveredFrame struct {
	Type     string `json:"type"`
	MsgID    int64  `json:"msgId"`
	ByUserID int64  `json:"byUserId"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newMsgNewFrame(m messaging.Message) msgNewFrame {
	return msgNewFrame{
		Type:           frameMsgNew,
		MsgID:          m.ID,
		ConversationID: m.ConversationID,
		FromUserID:     m.SenderID,
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
	}
}
