package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/usecase"
)

func TestReplayBacklog(t *testing.T) {
	ctx := context.Background()

	t.Run("returns undelivered messages oldest first", func(t *testing.T) {
		store := newFakeStore()
		store.addUser(messaging.User{ID: 2, Username: "bob", Active: true})
		send := usecase.NewSendMessageUseCase(store)

		var sent []messaging.Message
		for i := 0; i < 3; i++ {
			m, err := send.Execute(ctx, usecase.SendMessageInput{
				SenderID: 1, ToUserID: 2, Body: fmt.Sprintf("msg %d", i),
			})
			require.NoError(t, err)
			sent = append(sent, m)
		}

		// The middle message was acked on a previous session.
		require.NoError(t, store.UpsertDeliveryReceipt(ctx, sent[1].ID, 2))

		got, err := usecase.NewReplayBacklogUseCase(store).Execute(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, sent[0].ID, got[0].ID)
		assert.Equal(t, sent[2].ID, got[1].ID)
	})

	t.Run("own messages are never part of the backlog", func(t *testing.T) {
		store := newFakeStore()
		store.addUser(messaging.User{ID: 2, Username: "bob", Active: true})
		_, err := usecase.NewSendMessageUseCase(store).
			Execute(ctx, usecase.SendMessageInput{SenderID: 1, ToUserID: 2, Body: "out"})
		require.NoError(t, err)

		got, err := usecase.NewReplayBacklogUseCase(store).Execute(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty backlog for a fresh user", func(t *testing.T) {
		got, err := usecase.NewReplayBacklogUseCase(newFakeStore()).Execute(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
