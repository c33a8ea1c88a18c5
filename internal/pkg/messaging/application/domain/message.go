package messaging

import (
	"strings"
	"time"
)

// Message is an immutable entry in a conversation's append-only log.
// The id is assigned by the store at insert time and is the single source
// of truth for ordering within a conversation.
type Message struct {
	ID             int64     `db:"id"`
	ConversationID int64     `db:"conversation_id"`
	SenderID       int64     `db:"sender_id"`
	Body           string    `db:"body"`
	CreatedAt      time.Time `db:"created_at"`
}

// Draft is a message before persistence assigns its identity.
type Draft struct {
	SenderID    int64
	RecipientID int64
	Body        string
}

// NewDraft validates and normalizes an outgoing message. The body is
// trimmed; a draft whose body is empty after trimming is rejected.
func NewDraft(senderID, recipientID int64, body string) (Draft, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Draft{}, ErrEmptyBody
	}
	return Draft{SenderID: senderID, RecipientID: recipientID, Body: body}, nil
}
