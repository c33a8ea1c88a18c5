package usecase

import (
	"context"
	"errors"
	"fmt"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
)

// SendMessageInput carries the data needed to accept a message for
// delivery.
type SendMessageInput struct {
	SenderID int64
	ToUserID int64
	Body     string
}

// SendMessageUseCase validates and persists an outgoing direct message:
// recipient must resolve to an active user, the trimmed body must be
// non-empty, the recipient must not have blocked the sender. The DM
// conversation is resolved (or created) for the unordered pair, then the
// message is appended and comes back with its store-assigned id.
//
// The block check and the persistence step are separate statements; both
// complete before the caller pushes anything to live connections.
type SendMessageUseCase struct {
	Store repository.MessageStore
}

func NewSendMessageUseCase(store repository.MessageStore) *SendMessageUseCase {
	return &SendMessageUseCase{Store: store}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (messaging.Message, error) {
	draft, err := messaging.NewDraft(in.SenderID, in.ToUserID, in.Body)
	if err != nil {
		return messaging.Message{}, err
	}

	if _, err := uc.Store.GetActiveUser(ctx, draft.RecipientID); err != nil {
		if errors.Is(err, messaging.ErrRecipientNotFound) {
			return messaging.Message{}, err
		}
		return messaging.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	blocked, err := uc.Store.IsBlocked(ctx, draft.RecipientID, draft.SenderID)
	if err != nil {
		return messaging.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if blocked {
		return messaging.Message{}, messaging.ErrBlocked
	}

	conversationID, err := uc.Store.GetOrCreateDM(ctx, draft.SenderID, draft.RecipientID)
	if err != nil {
		return messaging.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msg, err := uc.Store.InsertMessage(ctx, conversationID, draft.SenderID, draft.Body)
	if err != nil {
		return messaging.Message{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msg, nil
}
