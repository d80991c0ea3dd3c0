package netmon

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftchat/driftchat/internal/logging"
)

func testListener(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestReachable_Up(t *testing.T) {
	l := testListener(t)

	p := NewProber(ProberConfig{Addr: l.Addr().String()}, logging.New(nil, "silent"))
	assert.True(t, p.Reachable(context.Background()))
}

func TestReachable_Down(t *testing.T) {
	l := testListener(t)
	addr := l.Addr().String()
	l.Close()

	p := NewProber(ProberConfig{Addr: addr, Timeout: 200 * time.Millisecond}, logging.New(nil, "silent"))
	assert.False(t, p.Reachable(context.Background()))
}

func TestNotify_FlipDetection(t *testing.T) {
	l := testListener(t)
	addr := l.Addr().String()

	p := NewProber(ProberConfig{
		Addr:     addr,
		Interval: 20 * time.Millisecond,
		Timeout:  200 * time.Millisecond,
	}, logging.New(nil, "silent"))

	var flips atomic.Int64
	var lastState atomic.Bool
	p.Notify(func(online bool) {
		flips.Add(1)
		lastState.Store(online)
	})

	p.Start()
	t.Cleanup(p.Stop)

	// baseline is recorded silently; steady state must not notify
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), flips.Load())

	l.Close()
	require.Eventually(t, func() bool { return flips.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, lastState.Load())
}

func TestNotify_CancelReleasesOnlyOneListener(t *testing.T) {
	p := NewProber(ProberConfig{Addr: "127.0.0.1:1"}, logging.New(nil, "silent"))

	var a, b int
	cancelA := p.Notify(func(bool) { a++ })
	p.Notify(func(bool) { b++ })

	cancelA()

	// drive a flip by hand: seed online, then probe against a dead address
	p.mu.Lock()
	p.seeded = true
	p.last = true
	p.mu.Unlock()
	p.probe()

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestStartStop_Idempotent(t *testing.T) {
	l := testListener(t)
	p := NewProber(ProberConfig{Addr: l.Addr().String(), Interval: 10 * time.Millisecond}, logging.New(nil, "silent"))

	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
}

func TestDefaults(t *testing.T) {
	p := NewProber(ProberConfig{Addr: "example.com:443"}, nil)
	assert.Equal(t, 5*time.Second, p.cfg.Interval)
	assert.Equal(t, 2*time.Second, p.cfg.Timeout)
}
