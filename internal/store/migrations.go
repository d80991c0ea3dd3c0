package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create channels and messages cache",
		SQL: `
			CREATE TABLE channels (
				cid         TEXT PRIMARY KEY,
				type        TEXT NOT NULL,
				id          TEXT NOT NULL,
				name        TEXT NOT NULL DEFAULT '',
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE messages (
				id          TEXT PRIMARY KEY,
				cid         TEXT NOT NULL,
				sender      TEXT NOT NULL DEFAULT '',
				body        TEXT NOT NULL,
				sent_at     TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_messages_cid ON messages (cid, sent_at);
		`,
	},
}
