package chat

import "time"

// Channel is an opaque handle for a chat channel. The zero value means no
// channel is selected.
type Channel struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// CID returns the composite channel identifier ("type:id"), or "" for the
// zero value.
func (c Channel) CID() string {
	if c == (Channel{}) {
		return ""
	}
	return c.Type + ":" + c.ID
}

// IsZero reports whether no channel is set.
func (c Channel) IsZero() bool {
	return c == Channel{}
}

// Message is a single chat message as carried on the wire and in the
// offline cache.
type Message struct {
	ID     string    `json:"id"`
	CID    string    `json:"cid"`
	Sender string    `json:"sender,omitempty"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}
