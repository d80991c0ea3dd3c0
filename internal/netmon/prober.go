// Package netmon reports network reachability: a one-shot query plus change
// notifications, backed by a periodic TCP dial probe.
package netmon

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/driftchat/driftchat/internal/logging"
)

// Monitor is the reachability surface consumed by the connection bridge.
type Monitor interface {
	// Reachable reports current network reachability.
	Reachable(ctx context.Context) bool

	// Notify registers fn for reachability changes. The returned cancel
	// func releases exactly this registration.
	Notify(fn func(online bool)) (cancel func())
}

// ProberConfig controls the dial probe.
type ProberConfig struct {
	// Addr is the host:port dialed to verify reachability.
	Addr string

	// Interval between background probes. Default 5s.
	Interval time.Duration

	// Timeout for a single probe dial. Default 2s.
	Timeout time.Duration
}

// Prober verifies reachability by dialing a TCP address. Start launches a
// background loop that probes on an interval and notifies listeners when
// the result flips.
type Prober struct {
	cfg ProberConfig
	log *logging.Logger

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(bool)
	last      bool
	seeded    bool
	started   bool
	stopped   bool
	stop      chan struct{}
}

// NewProber creates a prober for the given config.
func NewProber(cfg ProberConfig, log *logging.Logger) *Prober {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Prober{
		cfg:       cfg,
		log:       log.Sub("netmon"),
		listeners: make(map[int]func(bool)),
		stop:      make(chan struct{}),
	}
}

// Reachable dials the probe address once and reports whether it succeeded.
func (p *Prober) Reachable(ctx context.Context) bool {
	d := net.Dialer{Timeout: p.cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.cfg.Addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Notify registers fn for reachability flips observed by the background
// loop. The returned cancel func releases the registration.
func (p *Prober) Notify(fn func(online bool)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.listeners[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// Start launches the background probe loop. Calling Start twice is a no-op.
func (p *Prober) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	go p.loop()
}

// Stop halts the background loop. Idempotent.
func (p *Prober) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stop)
}

func (p *Prober) loop() {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.probe()
		}
	}
}

func (p *Prober) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	online := p.Reachable(ctx)
	cancel()

	p.mu.Lock()
	flipped := p.seeded && online != p.last
	p.seeded = true
	p.last = online
	var fns []func(bool)
	if flipped {
		fns = make([]func(bool), 0, len(p.listeners))
		for _, fn := range p.listeners {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()

	if !flipped {
		return
	}
	p.log.Debug().Bool("online", online).Msg("reachability changed")
	for _, fn := range fns {
		fn(online)
	}
}
