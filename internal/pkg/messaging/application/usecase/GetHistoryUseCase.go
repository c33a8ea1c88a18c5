package usecase

import (
	"context"
	"fmt"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
)

// GetHistoryInput pages through one conversation's log.
type GetHistoryInput struct {
	ConversationID int64
	Limit          int
	Offset         int
}

// GetHistoryUseCase fetches messages of a conversation, oldest first.
type GetHistoryUseCase struct {
	Store repository.MessageStore
}

func NewGetHistoryUseCase(store repository.MessageStore) *GetHistoryUseCase {
	return &GetHistoryUseCase{Store: store}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]messaging.Message, error) {
	if in.ConversationID <= 0 {
		return nil, fmt.Errorf("conversationId is required")
	}
	msgs, err := uc.Store.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
