package controller

import (
	"context"
	"encoding/json"
	"time"

	cacheport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/cache/port"
	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/realtime"
	"github.com/angelromerodev/chat-project-sci/internal/logging"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/usecase"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
)

const (
	rosterCacheKey = "presence:roster"
	rosterCacheTTL = time.Minute
)

// PresenceBroadcaster recomputes the full presence roster on every
// online/offline transition and pushes the snapshot to every connected
// client. Full snapshots instead of diffs: presence is small and
// infrequent, and a snapshot self-heals any missed update.
//
// The latest snapshot is also mirrored into the cache so the REST
// presence endpoint can serve it without touching the store.
type PresenceBroadcaster struct {
	registry *realtime.Registry
	rosterUC *usecase.ListRosterUseCase
	cache    cacheport.Cache // optional; nil disables the mirror
	log      logging.Logger
}

func NewPresenceBroadcaster(store repository.MessageStore, registry *realtime.Registry, cache cacheport.Cache, log logging.Logger) *PresenceBroadcaster {
	return &PresenceBroadcaster{
		registry: registry,
		rosterUC: usecase.NewListRosterUseCase(store, registry),
		cache:    cache,
		log:      log,
	}
}

// Broadcast pushes the current roster to all live connections.
func (b *PresenceBroadcaster) Broadcast(ctx context.Context) {
	payload, err := b.compute(ctx)
	if err != nil {
		b.log.Error(ctx, "presence roster", "err", err)
		return
	}
	b.registry.BroadcastAll(payload)
	b.mirror(ctx, payload)
}

// Snapshot returns the latest roster frame as JSON, serving the cache
// mirror first and falling back to a fresh computation.
func (b *PresenceBroadcaster) Snapshot(ctx context.Context) ([]byte, error) {
	if b.cache != nil {
		if cached, err := b.cache.Get(ctx, rosterCacheKey); err == nil {
			return []byte(cached), nil
		}
	}
	payload, err := b.compute(ctx)
	if err != nil {
		return nil, err
	}
	b.mirror(ctx, payload)
	return payload, nil
}

func (b *PresenceBroadcaster) compute(ctx context.Context) ([]byte, error) {
	roster, err := b.rosterUC.Execute(ctx)
	if err != nil {
		return nil, err
	}
	frame := usersFrame{Type: frameUsers, Users: make([]userEntry, 0, len(roster))}
	for _, entry := range roster {
		frame.Users = append(frame.Users, userEntry{
			ID:       entry.ID,
			Username: entry.Username,
			Email:    entry.Email,
			Online:   entry.Online,
		})
	}
	return json.Marshal(frame)
}

// mirror is best-effort; a cache outage never blocks a broadcast.
func (b *PresenceBroadcaster) mirror(ctx context.Context, payload []byte) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Set(ctx, rosterCacheKey, string(payload), rosterCacheTTL); err != nil {
		b.log.Warn(ctx, "presence cache mirror", "err", err)
	}
}
