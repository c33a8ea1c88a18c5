package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/queue/port"
	"github.com/angelromerodev/chat-project-sci/internal/logging"
	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/usecase"
)

type captureServer struct {
	handlers map[string]qport.Handler
}

func (s *captureServer) Register(taskType string, h qport.Handler) {
	if s.handlers == nil {
		s.handlers = make(map[string]qport.Handler)
	}
	s.handlers[taskType] = h
}

func (s *captureServer) Run(context.Context) error  { return nil }
func (s *captureServer) Stop(context.Context) error { return nil }

type deliverFunc func(ctx context.Context, senderID, toUserID int64, body string) error

func (f deliverFunc) Deliver(ctx context.Context, senderID, toUserID int64, body string) error {
	return f(ctx, senderID, toUserID, body)
}

func registered(t *testing.T, d Deliverer) qport.Handler {
	t.Helper()
	srv := &captureServer{}
	RegisterDeliverMessageTask(srv, d, logging.NewJSONLogger())
	h, ok := srv.handlers[DeliverMessageTaskType]
	require.True(t, ok, "handler must be registered under %q", DeliverMessageTaskType)
	return h
}

func payload(t *testing.T, senderID, toUserID int64, body string) []byte {
	t.Helper()
	b, err := json.Marshal(DeliverMessageTaskPayload{SenderID: senderID, ToUserID: toUserID, Body: body})
	require.NoError(t, err)
	return b
}

func TestDeliverMessageTask(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes payload and delivers", func(t *testing.T) {
		var gotSender, gotTo int64
		var gotBody string
		h := registered(t, deliverFunc(func(_ context.Context, senderID, toUserID int64, body string) error {
			gotSender, gotTo, gotBody = senderID, toUserID, body
			return nil
		}))

		err := h(ctx, qport.Task{Type: DeliverMessageTaskType, Payload: payload(t, 1, 2, "hi")})
		require.NoError(t, err)
		assert.Equal(t, int64(1), gotSender)
		assert.Equal(t, int64(2), gotTo)
		assert.Equal(t, "hi", gotBody)
	})

	t.Run("malformed payload is terminal", func(t *testing.T) {
		called := false
		h := registered(t, deliverFunc(func(context.Context, int64, int64, string) error {
			called = true
			return nil
		}))

		err := h(ctx, qport.Task{Type: DeliverMessageTaskType, Payload: []byte("{broken")})
		assert.NoError(t, err, "a payload that cannot decode must not retry")
		assert.False(t, called)
	})

	t.Run("validation failure is terminal", func(t *testing.T) {
		h := registered(t, deliverFunc(func(context.Context, int64, int64, string) error {
			return messaging.ErrBlocked
		}))

		err := h(ctx, qport.Task{Type: DeliverMessageTaskType, Payload: payload(t, 1, 2, "hi")})
		assert.NoError(t, err, "re-running a rejected send cannot succeed")
	})

	t.Run("persistence failure retries", func(t *testing.T) {
		h := registered(t, deliverFunc(func(context.Context, int64, int64, string) error {
			return fmt.Errorf("%w: %v", usecase.ErrPersistence, errors.New("db down"))
		}))

		err := h(ctx, qport.Task{Type: DeliverMessageTaskType, Payload: payload(t, 1, 2, "hi")})
		assert.ErrorIs(t, err, usecase.ErrPersistence)
	})
}
