package bridge

import (
	"github.com/driftchat/driftchat/internal/chat"
	"github.com/driftchat/driftchat/internal/logging"
)

// Connectivity is the tri-state online flag. Before the first reachability
// result or client event arrives it is Unknown.
type Connectivity int

const (
	Unknown Connectivity = iota
	Online
	Offline
)

// String returns the string representation of a Connectivity value.
func (c Connectivity) String() string {
	switch c {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// Known reports whether a definite state has been observed.
func (c Connectivity) Known() bool {
	return c != Unknown
}

func fromBool(online bool) Connectivity {
	if online {
		return Online
	}
	return Offline
}

// Snapshot is the read-only state projection handed to consumers. It is a
// pure function of the bridge state: every mutation produces a fresh one.
type Snapshot struct {
	// Client is the wrapped chat client, for direct calls.
	Client Client

	// Channel is the active channel; the zero value means none selected.
	Channel chat.Channel

	// SetActiveChannel requests a channel switch on the owning bridge.
	SetActiveChannel func(chat.Channel)

	// Connectivity is the last observed online state.
	Connectivity Connectivity

	// Recovering is true while the connection is down and a recovery
	// attempt is in flight.
	Recovering bool

	// Storage is the attached offline store, nil unless OfflineMode.
	Storage OfflineStore

	// Logger is the bridge's logger, shared with descendants.
	Logger *logging.Logger

	// OfflineMode reports whether an offline store is attached.
	OfflineMode bool
}

// Snapshot returns a fresh projection of the current state.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Bridge) snapshotLocked() Snapshot {
	return Snapshot{
		Client:           b.client,
		Channel:          b.channel,
		SetActiveChannel: b.SetActiveChannel,
		Connectivity:     b.connectivity,
		Recovering:       b.recovering,
		Storage:          b.storage,
		Logger:           b.log,
		OfflineMode:      b.storage != nil,
	}
}
