package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftchat/driftchat/internal/chat"
	"github.com/driftchat/driftchat/internal/logging"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	log := logging.New(nil, "silent")
	s, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// --- Open/migration tests ---

func TestOpen_InMemory(t *testing.T) {
	s := testStore(t)
	assert.NotNil(t, s)
	assert.NotNil(t, s.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	s := testStore(t)

	var count int
	err := s.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	s := testStore(t)

	err := s.migrate()
	require.NoError(t, err)

	var count int
	err = s.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	s := testStore(t)

	for _, table := range []string{"channels", "messages"} {
		var name string
		err := s.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestClose_Idempotent(t *testing.T) {
	log := logging.New(nil, "silent")
	s, err := Open(":memory:", log)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestSetLogger(t *testing.T) {
	s := testStore(t)

	s.SetLogger(logging.New(nil, "silent"))
	s.SetLogger(nil) // must be ignored, not panic
	assert.NotNil(t, s.logger())
}

// --- Channel cache tests ---

func TestSaveChannel_AndList(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.SaveChannel(chat.Channel{Type: "messaging", ID: "general"}, "General"))
	require.NoError(t, s.SaveChannel(chat.Channel{Type: "team", ID: "dev"}, "Dev"))

	channels, err := s.Channels()
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "messaging:general", channels[0].CID())
	assert.Equal(t, "team:dev", channels[1].CID())
}

func TestSaveChannel_Upsert(t *testing.T) {
	s := testStore(t)

	ch := chat.Channel{Type: "messaging", ID: "general"}
	require.NoError(t, s.SaveChannel(ch, "General"))
	require.NoError(t, s.SaveChannel(ch, "Renamed"))

	channels, err := s.Channels()
	require.NoError(t, err)
	assert.Len(t, channels, 1)
}

func TestSaveChannel_Empty(t *testing.T) {
	s := testStore(t)
	require.Error(t, s.SaveChannel(chat.Channel{}, ""))
}

// --- Message cache tests ---

func TestSaveMessage_AssignsID(t *testing.T) {
	s := testStore(t)

	msg := &chat.Message{CID: "messaging:general", Sender: "alice", Text: "hi"}
	require.NoError(t, s.SaveMessage(msg))
	assert.NotEmpty(t, msg.ID)
}

func TestSaveMessage_Nil(t *testing.T) {
	s := testStore(t)
	require.Error(t, s.SaveMessage(nil))
}

func TestMessagesFor_OrderAndLimit(t *testing.T) {
	s := testStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, s.SaveMessage(&chat.Message{
			CID:    "messaging:general",
			Sender: "alice",
			Text:   text,
			SentAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.SaveMessage(&chat.Message{CID: "team:dev", Text: "elsewhere", SentAt: base}))

	msgs, err := s.MessagesFor("messaging:general", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "third", msgs[2].Text)
	assert.Equal(t, base, msgs[0].SentAt)

	limited, err := s.MessagesFor("messaging:general", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMessagesFor_EmptyChannel(t *testing.T) {
	s := testStore(t)

	msgs, err := s.MessagesFor("messaging:nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSaveMessage_RefreshSameID(t *testing.T) {
	s := testStore(t)

	msg := &chat.Message{ID: "m1", CID: "messaging:general", Text: "draft", SentAt: time.Now()}
	require.NoError(t, s.SaveMessage(msg))
	msg.Text = "final"
	require.NoError(t, s.SaveMessage(msg))

	msgs, err := s.MessagesFor("messaging:general", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "final", msgs[0].Text)
}
