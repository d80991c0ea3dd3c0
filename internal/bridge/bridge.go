// Package bridge connects a chat client, a network reachability monitor,
// and an optional offline store, and republishes the derived connection
// state to downstream consumers.
//
// The bridge owns a small piece of state (connectivity, recovery flag,
// active channel) and nothing else: socket handling, reconnection backoff,
// and persistence live in the collaborators it observes.
package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/driftchat/driftchat/internal/chat"
	"github.com/driftchat/driftchat/internal/logging"
)

var (
	// ErrNilClient is returned by New when no client is supplied.
	ErrNilClient = errors.New("bridge: client is required")

	// ErrInvalidStorage is returned by New when the supplied storage
	// object does not satisfy the OfflineStore capability.
	ErrInvalidStorage = errors.New("bridge: storage does not implement the offline store capability")
)

// Client is the surface the bridge consumes from a chat client.
// *chat.Client satisfies it.
type Client interface {
	// Subscribe registers fn for events of type t and returns an
	// individually cancelable handle.
	Subscribe(t chat.EventType, fn func(chat.Event)) *chat.Subscription

	// OpenConnection runs the client's full session (re)establishment.
	OpenConnection(ctx context.Context) error

	// SetOnlineStatus sends a lightweight presence notification, as
	// opposed to a full (re)establishment.
	SetOnlineStatus(ctx context.Context, online bool) error
}

// Monitor is the reachability surface the bridge consumes. *netmon.Prober
// satisfies it.
type Monitor interface {
	Reachable(ctx context.Context) bool
	Notify(fn func(online bool)) (cancel func())
}

// OfflineStore is the capability a pluggable offline storage object must
// satisfy to be accepted by the bridge.
type OfflineStore interface {
	SetLogger(*logging.Logger)
	Close() error
}

// DiagnosticFunc receives lifecycle diagnostics: a category, an event name,
// and a payload. Observational only; implementations must not assume they
// affect control flow, because they never do.
type DiagnosticFunc func(category, event string, fields map[string]any)

// Option configures a Bridge at construction.
type Option func(*options)

type options struct {
	storage    any
	hasStorage bool
	log        *logging.Logger
	diag       DiagnosticFunc
}

// WithOfflineStorage attaches an offline storage object. The value must
// satisfy OfflineStore; anything else fails construction with
// ErrInvalidStorage.
func WithOfflineStorage(v any) Option {
	return func(o *options) {
		o.storage = v
		o.hasStorage = true
	}
}

// WithLogger sets the bridge logger, which is also bound into the offline
// store when one is attached.
func WithLogger(log *logging.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithDiagnostics installs a diagnostic callback invoked at lifecycle
// transitions and on every published snapshot.
func WithDiagnostics(fn DiagnosticFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.diag = fn
		}
	}
}

// Bridge mediates between the client/monitor/storage triad and downstream
// consumers. Construct with New, activate with Mount, release with Close.
type Bridge struct {
	client  Client
	storage OfflineStore
	log     *logging.Logger
	diag    DiagnosticFunc

	// runCtx is canceled at Close; async work started by the bridge
	// checks it before and after running.
	runCtx    context.Context
	cancelRun context.CancelFunc

	mu             sync.Mutex
	closed         bool
	connectivity   Connectivity
	recovering     bool
	startedOffline bool
	channel        chat.Channel
	subs           []*chat.Subscription
	cancelNet      func()
	nextWatcher    int
	watchers       map[int]func(Snapshot)
}

// New constructs a bridge around client and registers its connectivity
// observers. Call Mount afterwards to seed reachability and begin
// forwarding reachability changes.
func New(client Client, opts ...Option) (*Bridge, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	o := options{
		log:  logging.Nop(),
		diag: func(string, string, map[string]any) {},
	}
	for _, opt := range opts {
		opt(&o)
	}

	var storage OfflineStore
	if o.hasStorage {
		s, ok := o.storage.(OfflineStore)
		if !ok {
			return nil, ErrInvalidStorage
		}
		storage = s
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	b := &Bridge{
		client:    client,
		storage:   storage,
		log:       o.log.Sub("bridge"),
		diag:      o.diag,
		runCtx:    runCtx,
		cancelRun: cancelRun,
		watchers:  make(map[int]func(Snapshot)),
	}

	b.subs = append(b.subs,
		client.Subscribe(chat.EventConnectionChanged, b.onConnectionChanged),
		client.Subscribe(chat.EventConnectionEstablished, b.onConnectionUp),
		client.Subscribe(chat.EventConnectionRecovered, b.onConnectionUp),
	)

	if b.storage != nil {
		b.storage.SetLogger(o.log)
	}

	b.diag("lifecycle", "constructed", map[string]any{"offlineMode": b.storage != nil})
	return b, nil
}

// Mount seeds connection state from the monitor's current reachability,
// notifies the client of the initial status, and subscribes to reachability
// changes. Call once after New; a no-op once the bridge is closed.
func (b *Bridge) Mount(ctx context.Context, mon Monitor) {
	reachable := mon.Reachable(ctx)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.connectivity = fromBool(reachable)
	b.startedOffline = !reachable
	b.mu.Unlock()

	if err := b.client.SetOnlineStatus(ctx, reachable); err != nil {
		b.log.Debug().Err(err).Msg("initial status notification failed")
	}

	cancel := mon.Notify(b.onReachabilityChanged)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return
	}
	b.cancelNet = cancel
	snap, watchers := b.stateLocked()
	b.mu.Unlock()

	b.diag("lifecycle", "mounted", map[string]any{
		"reachable":      reachable,
		"startedOffline": !reachable,
	})
	b.publish(snap, watchers)
}

// SetActiveChannel replaces the active channel wholesale and republishes
// the snapshot. No-op once the bridge is closed. Channel validity is the
// caller's responsibility.
func (b *Bridge) SetActiveChannel(ch chat.Channel) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.channel = ch
	snap, watchers := b.stateLocked()
	b.mu.Unlock()

	b.diag("channel", "active.changed", map[string]any{"cid": ch.CID()})
	b.publish(snap, watchers)
}

// Watch registers fn to receive a fresh Snapshot after every state change.
// The returned cancel func releases exactly this registration. fn runs
// synchronously on the mutation path; keep it fast.
func (b *Bridge) Watch(fn func(Snapshot)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextWatcher++
	id := b.nextWatcher
	b.watchers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.watchers, id)
	}
}

// Close tears the bridge down: the closed flag is set first so late
// callbacks are dropped, then each subscription handle and the reachability
// registration are released, then the offline store is closed if one is
// attached. Safe to call more than once.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	cancelNet := b.cancelNet
	b.cancelNet = nil
	b.watchers = make(map[int]func(Snapshot))
	b.mu.Unlock()

	b.cancelRun()
	for _, sub := range subs {
		sub.Cancel()
	}
	if cancelNet != nil {
		cancelNet()
	}

	var err error
	if b.storage != nil {
		err = b.storage.Close()
	}

	b.diag("lifecycle", "closed", map[string]any{"offlineMode": b.storage != nil})
	return err
}

// onConnectionChanged tracks transport-level connectivity flips reported by
// the client. Going offline marks a recovery attempt as in flight.
func (b *Bridge) onConnectionChanged(ev chat.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.connectivity = fromBool(ev.Online)
	b.recovering = !ev.Online
	snap, watchers := b.stateLocked()
	b.mu.Unlock()

	b.diag("connection", string(ev.Type), map[string]any{"online": ev.Online})
	b.publish(snap, watchers)
}

// onConnectionUp handles both "established" and "recovered": the session is
// up and any recovery attempt is over.
func (b *Bridge) onConnectionUp(ev chat.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.connectivity = Online
	b.recovering = false
	snap, watchers := b.stateLocked()
	b.mu.Unlock()

	b.diag("connection", string(ev.Type), map[string]any{"online": true})
	b.publish(snap, watchers)
}

// onReachabilityChanged forwards reachability flips to the client. A session
// that started offline gets one full re-establishment on its first
// offline→online transition; every other flip is a plain status
// notification.
func (b *Bridge) onReachabilityChanged(online bool) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	reconnect := online && b.startedOffline
	if reconnect {
		// the full re-establishment path runs at most once per session
		b.startedOffline = false
	}
	b.mu.Unlock()

	b.diag("network", "reachability.changed", map[string]any{
		"online":    online,
		"reconnect": reconnect,
	})

	if reconnect {
		go func() {
			if b.runCtx.Err() != nil {
				return
			}
			if err := b.client.OpenConnection(b.runCtx); err != nil {
				b.log.Warn().Err(err).Msg("connection re-establishment failed")
			}
		}()
		return
	}

	if err := b.client.SetOnlineStatus(b.runCtx, online); err != nil {
		b.log.Debug().Err(err).Bool("online", online).Msg("status notification failed")
	}
}

func (b *Bridge) stateLocked() (Snapshot, []func(Snapshot)) {
	watchers := make([]func(Snapshot), 0, len(b.watchers))
	for _, fn := range b.watchers {
		watchers = append(watchers, fn)
	}
	return b.snapshotLocked(), watchers
}

func (b *Bridge) publish(snap Snapshot, watchers []func(Snapshot)) {
	b.diag("publish", "snapshot", map[string]any{
		"connectivity": snap.Connectivity.String(),
		"recovering":   snap.Recovering,
		"cid":          snap.Channel.CID(),
	})
	for _, fn := range watchers {
		fn(snap)
	}
}
