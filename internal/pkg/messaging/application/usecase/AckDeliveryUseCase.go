package usecase

import (
	"context"
	"errors"
	"fmt"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
)

// AckDeliveryInput names the message the current user confirms receiving.
type AckDeliveryInput struct {
	UserID    int64
	MessageID int64
}

// AckDeliveryUseCase records a delivery receipt for (message, user) and
// returns the message's sender so the caller can relay the confirmation.
// The receipt write is idempotent: acking the same message twice neither
// errors nor moves the original timestamp.
type AckDeliveryUseCase struct {
	Store repository.MessageStore
}

func NewAckDeliveryUseCase(store repository.MessageStore) *AckDeliveryUseCase {
	return &AckDeliveryUseCase{Store: store}
}

func (uc *AckDeliveryUseCase) Execute(ctx context.Context, in AckDeliveryInput) (senderID int64, err error) {
	if in.MessageID <= 0 {
		return 0, messaging.ErrBadMessageID
	}

	msg, err := uc.Store.GetMessage(ctx, in.MessageID)
	if err != nil {
		if errors.Is(err, messaging.ErrMessageNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Store.UpsertDeliveryReceipt(ctx, in.MessageID, in.UserID); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msg.SenderID, nil
}
