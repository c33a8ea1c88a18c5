package usecase

import (
	"context"
	"fmt"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
)

// BacklogLimit bounds one reconnect replay. Backlogs beyond the bound are
// not delivered in that pass; there is no continuation across reconnects.
const BacklogLimit = 500

// ReplayBacklogUseCase computes the messages still undelivered to a user,
// oldest first, for replay right after a successful handshake.
type ReplayBacklogUseCase struct {
	Store repository.MessageStore
}

func NewReplayBacklogUseCase(store repository.MessageStore) *ReplayBacklogUseCase {
	return &ReplayBacklogUseCase{Store: store}
}

func (uc *ReplayBacklogUseCase) Execute(ctx context.Context, userID int64) ([]messaging.Message, error) {
	msgs, err := uc.Store.ListUndelivered(ctx, userID, BacklogLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
