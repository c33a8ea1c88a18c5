package repository

import (
	"context"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
)

// MessageStore defines the durable-store operations the messaging core
// requires. Implementations must be safe for concurrent use; every
// operation is a single statement except GetOrCreateDM, which must be
// idempotent under concurrent calls for the same pair.
type MessageStore interface {
	// InsertMessage appends a message to the conversation log and returns
	// it with the store-assigned id and creation time.
	InsertMessage(ctx context.Context, conversationID, senderID int64, body string) (messaging.Message, error)

	// GetOrCreateDM resolves the DM conversation for the unordered pair
	// (userA, userB), creating it on first contact. Concurrent first-time
	// calls for the same pair must converge on a single conversation id.
	GetOrCreateDM(ctx context.Context, userA, userB int64) (int64, error)

	// UpsertDeliveryReceipt marks (messageID, userID) delivered now.
	// Idempotent: a later call for the same pair neither errors nor moves
	// the original timestamp.
	UpsertDeliveryReceipt(ctx context.Context, messageID, userID int64) error

	// ListUndelivered returns up to limit messages addressed to userID
	// with no delivery receipt yet, oldest first.
	ListUndelivered(ctx context.Context, userID int64, limit int) ([]messaging.Message, error)

	// IsBlocked reports whether blockerID has blocked blockedID.
	IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error)

	// ListActiveUsers returns every active user, ordered by username.
	ListActiveUsers(ctx context.Context) ([]messaging.User, error)

	// GetMessage fetches one message by id; messaging.ErrMessageNotFound
	// when no such row exists.
	GetMessage(ctx context.Context, id int64) (messaging.Message, error)

	// GetActiveUser fetches one active user by id;
	// messaging.ErrRecipientNotFound when absent or inactive.
	GetActiveUser(ctx context.Context, id int64) (messaging.User, error)

	// ListMessages pages through a conversation's log, oldest first.
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]messaging.Message, error)
}
