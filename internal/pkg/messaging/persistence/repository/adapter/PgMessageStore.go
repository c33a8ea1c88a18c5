package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/application/domain"
)

// PgMessageStore implements the MessageStore port on top of a pgx pool.
type PgMessageStore struct {
	pool *pgxpool.Pool
}

func NewPgMessageStore(pool *pgxpool.Pool) *PgMessageStore {
	return &PgMessageStore{pool: pool}
}

func (r *PgMessageStore) InsertMessage(ctx context.Context, conversationID, senderID int64, body string) (messaging.Message, error) {
	if r == nil || r.pool == nil {
		return messaging.Message{}, errors.New("PgMessageStore: nil pool")
	}
	m := messaging.Message{ConversationID: conversationID, SenderID: senderID, Body: body}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, conversationID, senderID, body).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return messaging.Message{}, err
	}
	return m, nil
}

// GetOrCreateDM keys the conversation by the normalized (low, high) pair.
// The create step is INSERT ... ON CONFLICT DO NOTHING; when a concurrent
// first-contact send wins the race, the winning row is re-read instead of
// surfacing the duplicate-key outcome as an error.
func (r *PgMessageStore) GetOrCreateDM(ctx context.Context, userA, userB int64) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageStore: nil pool")
	}
	low, high := messaging.PairKey(userA, userB)

	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM conversations WHERE user_low = $1 AND user_high = $2`,
		low, high,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO conversations (user_low, user_high)
		VALUES ($1, $2)
		ON CONFLICT (user_low, user_high) DO NOTHING
		RETURNING id
	`, low, high).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// Lost the race: another task inserted the pair between our two
	// statements. Read the winner.
	err = r.pool.QueryRow(ctx,
		`SELECT id FROM conversations WHERE user_low = $1 AND user_high = $2`,
		low, high,
	).Scan(&id)
	return id, err
}

func (r *PgMessageStore) UpsertDeliveryReceipt(ctx context.Context, messageID, userID int64) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageStore: nil pool")
	}
	// The conflict clause keeps the first delivered_at; a repeat ack is a
	// no-op rather than an error, and a pre-existing row that only holds
	// read state still gets its delivered_at filled in.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO receipts (message_id, user_id, delivered_at)
		VALUES ($1, $2, now())
		ON CONFLICT (message_id, user_id)
		DO UPDATE SET delivered_at = COALESCE(receipts.delivered_at, now())
	`, messageID, userID)
	return err
}

func (r *PgMessageStore) ListUndelivered(ctx context.Context, userID int64, limit int) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageStore: nil pool")
	}
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.body, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.user_low = $1 OR c.user_high = $1)
		  AND m.sender_id <> $1
		  AND NOT EXISTS (
		        SELECT 1 FROM receipts r
		        WHERE r.message_id = m.id AND r.user_id = $1 AND r.delivered_at IS NOT NULL
		  )
		ORDER BY m.id ASC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *PgMessageStore) IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgMessageStore: nil pool")
	}
	var blocked bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blocks WHERE blocker_id = $1 AND blocked_id = $2)`,
		blockerID, blockedID,
	).Scan(&blocked)
	return blocked, err
}

func (r *PgMessageStore) ListActiveUsers(ctx context.Context) ([]messaging.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageStore: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, email, active
		FROM users
		WHERE active
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []messaging.User
	for rows.Next() {
		var u messaging.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Active); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgMessageStore) GetMessage(ctx context.Context, id int64) (messaging.Message, error) {
	if r == nil || r.pool == nil {
		return messaging.Message{}, errors.New("PgMessageStore: nil pool")
	}
	var m messaging.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE id = $1
	`, id).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return messaging.Message{}, messaging.ErrMessageNotFound
	}
	if err != nil {
		return messaging.Message{}, err
	}
	return m, nil
}

func (r *PgMessageStore) GetActiveUser(ctx context.Context, id int64) (messaging.User, error) {
	if r == nil || r.pool == nil {
		return messaging.User{}, errors.New("PgMessageStore: nil pool")
	}
	var u messaging.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, active
		FROM users
		WHERE id = $1 AND active
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return messaging.User{}, messaging.ErrRecipientNotFound
	}
	if err != nil {
		return messaging.User{}, err
	}
	return u, nil
}

func (r *PgMessageStore) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageStore: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]messaging.Message, error) {
	var msgs []messaging.Message
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
