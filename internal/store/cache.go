package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driftchat/driftchat/internal/chat"
)

// SaveChannel upserts a channel into the cache.
func (s *Store) SaveChannel(ch chat.Channel, name string) error {
	if ch.IsZero() {
		return fmt.Errorf("saving channel: empty handle")
	}
	_, err := s.sql.Exec(`
		INSERT INTO channels (cid, type, id, name, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(cid) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`, ch.CID(), ch.Type, ch.ID, name)
	if err != nil {
		return fmt.Errorf("saving channel %s: %w", ch.CID(), err)
	}
	return nil
}

// Channels returns all cached channels ordered by identifier.
func (s *Store) Channels() ([]chat.Channel, error) {
	rows, err := s.sql.Query("SELECT type, id FROM channels ORDER BY cid")
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	defer rows.Close()

	var channels []chat.Channel
	for rows.Next() {
		var ch chat.Channel
		if err := rows.Scan(&ch.Type, &ch.ID); err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// SaveMessage caches a message. Messages without an ID get one assigned.
// Saving the same ID twice refreshes the cached copy.
func (s *Store) SaveMessage(msg *chat.Message) error {
	if msg == nil {
		return fmt.Errorf("saving message: nil message")
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	sentAt := msg.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	_, err := s.sql.Exec(`
		INSERT INTO messages (id, cid, sender, body, sent_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, sent_at = excluded.sent_at
	`, msg.ID, msg.CID, msg.Sender, msg.Text, sentAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving message %s: %w", msg.ID, err)
	}
	return nil
}

// MessagesFor returns up to limit cached messages for a channel, oldest
// first. A limit <= 0 returns everything.
func (s *Store) MessagesFor(cid string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.sql.Query(`
		SELECT id, cid, sender, body, sent_at FROM messages
		WHERE cid = ? ORDER BY sent_at LIMIT ?
	`, cid, limit)
	if err != nil {
		return nil, fmt.Errorf("loading messages for %s: %w", cid, err)
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		var sentAt string
		if err := rows.Scan(&m.ID, &m.CID, &m.Sender, &m.Text, &sentAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, sentAt); err == nil {
			m.SentAt = ts
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
