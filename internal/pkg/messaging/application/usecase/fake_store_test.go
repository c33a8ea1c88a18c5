package usecase_test

import (
	"context"
	"sync"
	"time"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
)

// fakeStore is an in-memory MessageStore for use case tests. It mirrors
// the durable store's contract closely enough to exercise validation,
// idempotence and ordering without a database.
type fakeStore struct {
	mu sync.Mutex

	users         map[int64]messaging.User
	blocks        map[[2]int64]bool // [blocker, blocked]
	conversations map[[2]int64]int64
	messages      []messaging.Message
	receipts      map[[2]int64]*receiptRow // [messageID, userID]

	nextConversationID int64
	nextMessageID      int64

	failWith error // when set, every store call returns this error
}

// receiptRow mirrors the receipts table: delivered_at and read_at are
// independently nullable.
type receiptRow struct {
	deliveredAt *time.Time
	readAt      *time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[int64]messaging.User),
		blocks:        make(map[[2]int64]bool),
		conversations: make(map[[2]int64]int64),
		receipts:      make(map[[2]int64]*receiptRow),
	}
}

func (f *fakeStore) addUser(u messaging.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *fakeStore) block(blocker, blocked int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks[[2]int64{blocker, blocked}] = true
}

func (f *fakeStore) InsertMessage(_ context.Context, conversationID, senderID int64, body string) (messaging.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return messaging.Message{}, f.failWith
	}
	f.nextMessageID++
	msg := messaging.Message{
		ID:             f.nextMessageID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeStore) GetOrCreateDM(_ context.Context, userA, userB int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	low, high := messaging.PairKey(userA, userB)
	key := [2]int64{low, high}
	if id, ok := f.conversations[key]; ok {
		return id, nil
	}
	f.nextConversationID++
	f.conversations[key] = f.nextConversationID
	return f.nextConversationID, nil
}

func (f *fakeStore) UpsertDeliveryReceipt(_ context.Context, messageID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	key := [2]int64{messageID, userID}
	row := f.receipts[key]
	if row == nil {
		row = &receiptRow{}
		f.receipts[key] = row
	}
	if row.deliveredAt == nil {
		now := time.Now().UTC()
		row.deliveredAt = &now
	}
	return nil
}

// markRead seeds a receipt row holding only read state, as a read path
// would leave it before any delivery ack arrives.
func (f *fakeStore) markRead(messageID, userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	f.receipts[[2]int64{messageID, userID}] = &receiptRow{readAt: &now}
}

func (f *fakeStore) ListUndelivered(_ context.Context, userID int64, limit int) ([]messaging.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []messaging.Message
	for _, m := range f.messages {
		if len(out) == limit {
			break
		}
		conv := f.conversationByID(m.ConversationID)
		if conv == nil || m.SenderID == userID {
			continue
		}
		if conv[0] != userID && conv[1] != userID {
			continue
		}
		if row := f.receipts[[2]int64{m.ID, userID}]; row != nil && row.deliveredAt != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) conversationByID(id int64) *[2]int64 {
	for pair, cid := range f.conversations {
		if cid == id {
			p := pair
			return &p
		}
	}
	return nil
}

func (f *fakeStore) IsBlocked(_ context.Context, blockerID, blockedID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	return f.blocks[[2]int64{blockerID, blockedID}], nil
}

func (f *fakeStore) ListActiveUsers(_ context.Context) ([]messaging.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []messaging.User
	for _, u := range f.users {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMessage(_ context.Context, id int64) (messaging.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return messaging.Message{}, f.failWith
	}
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return messaging.Message{}, messaging.ErrMessageNotFound
}

func (f *fakeStore) GetActiveUser(_ context.Context, id int64) (messaging.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return messaging.User{}, f.failWith
	}
	u, ok := f.users[id]
	if !ok || !u.Active {
		return messaging.User{}, messaging.ErrRecipientNotFound
	}
	return u, nil
}

func (f *fakeStore) ListMessages(_ context.Context, conversationID int64, limit, offset int) ([]messaging.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var all []messaging.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			all = append(all, m)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
