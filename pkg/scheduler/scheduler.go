// Package scheduler decides when simulation ticks fire. The engine hands it a
// tick function on start and cancels it on stop.
package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the wall-clock cadence between ticks
const DefaultInterval = 3 * time.Second

// Scheduler drives a tick function
type Scheduler interface {
	// Start begins firing fn. Calling Start while running replaces nothing and
	// returns false.
	Start(fn func()) bool
	// Stop cancels the pending firing. It is safe to call when stopped.
	Stop()
	// Running reports whether a tick function is scheduled
	Running() bool
	// Interval is the nominal time between firings
	Interval() time.Duration
}

// Ticker fires on a wall-clock ticker. A firing that arrives while the
// previous tick is still executing is dropped.
type Ticker struct {
	interval time.Duration

	mutex   sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	busy    atomic.Bool
	dropped atomic.Uint64
}

// NewTicker creates a wall-clock scheduler; a non-positive interval means
// DefaultInterval
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval}
}

// Start launches a fresh timer goroutine
func (t *Ticker) Start(fn func()) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.done != nil {
		return false
	}

	done := make(chan struct{})
	t.done = done
	t.wg.Add(1)
	go t.loop(fn, done)
	return true
}

func (t *Ticker) loop(fn func(), done chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !t.busy.CompareAndSwap(false, true) {
				t.dropped.Add(1)
				continue
			}
			go func() {
				defer t.busy.Store(false)
				select {
				case <-done:
				default:
					fn()
				}
			}()
		}
	}
}

// Stop cancels the timer and waits for the timer goroutine to exit. A tick
// already executing finishes on its own.
func (t *Ticker) Stop() {
	t.mutex.Lock()
	done := t.done
	t.done = nil
	t.mutex.Unlock()

	if done == nil {
		return
	}
	close(done)
	t.wg.Wait()
}

// Running reports whether the timer is active
func (t *Ticker) Running() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.done != nil
}

// Interval returns the cadence
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Dropped returns how many firings were skipped because a tick was in flight
func (t *Ticker) Dropped() uint64 {
	return t.dropped.Load()
}

// Manual never fires on its own; callers fire ticks with Fire. It lets tests
// drive the engine without waiting on real time.
type Manual struct {
	interval time.Duration

	mutex sync.Mutex
	fn    func()
}

// NewManual creates a manual scheduler reporting the given nominal interval
func NewManual(interval time.Duration) *Manual {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Manual{interval: interval}
}

// Start records fn as the tick function
func (m *Manual) Start(fn func()) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.fn != nil {
		return false
	}
	m.fn = fn
	return true
}

// Stop forgets the tick function
func (m *Manual) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fn = nil
}

// Running reports whether a tick function is recorded
func (m *Manual) Running() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.fn != nil
}

// Interval returns the nominal cadence
func (m *Manual) Interval() time.Duration {
	return m.interval
}

// Fire runs the tick function n times and reports how many ran. Nothing
// runs while stopped.
func (m *Manual) Fire(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		m.mutex.Lock()
		fn := m.fn
		m.mutex.Unlock()
		if fn == nil {
			return fired
		}
		fn()
		fired++
	}
	return fired
}
