package messaging

import "time"

// Conversation is a direct thread between exactly two users, identified
// by the unordered pair of their ids. At most one row exists per pair.
type Conversation struct {
	ID        int64     `db:"id"`
	UserLow   int64     `db:"user_low"`
	UserHigh  int64     `db:"user_high"`
	CreatedAt time.Time `db:"created_at"`
}

// PairKey normalizes two user ids into the canonical (low, high) order
// used to key DM conversations. PairKey(a, b) == PairKey(b, a).
func PairKey(a, b int64) (low, high int64) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Peer returns the other participant of a DM conversation.
func (c Conversation) Peer(userID int64) int64 {
	if c.UserLow == userID {
		return c.UserHigh
	}
	return c.UserLow
}
