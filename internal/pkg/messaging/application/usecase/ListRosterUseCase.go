package usecase

import (
	"context"
	"fmt"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
)

// Presence answers online/offline queries; satisfied by the realtime
// session registry.
type Presence interface {
	IsOnline(userID int64) bool
}

// RosterEntry is one user in the presence snapshot.
type RosterEntry struct {
	messaging.User
	Online bool
}

// ListRosterUseCase builds the full presence roster: every active user,
// username ascending, flagged with their current online state. The whole
// snapshot is what gets broadcast; there is no diff protocol.
type ListRosterUseCase struct {
	Store    repository.MessageStore
	Presence Presence
}

func NewListRosterUseCase(store repository.MessageStore, presence Presence) *ListRosterUseCase {
	return &ListRosterUseCase{Store: store, Presence: presence}
}

func (uc *ListRosterUseCase) Execute(ctx context.Context) ([]RosterEntry, error) {
	users, err := uc.Store.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	roster := make([]RosterEntry, 0, len(users))
	for _, u := range users {
		roster = append(roster, RosterEntry{User: u, Online: uc.Presence.IsOnline(u.ID)})
	}
	return roster, nil
}
