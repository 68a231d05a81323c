// Package clock abstracts wall-clock time and periodic scheduling so the
// telemetry timers can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Cancel stops a scheduled task. After Cancel returns the task's callback
// is not running and will not run again. Calling it more than once is a no-op.
type Cancel func()

// Scheduler runs callbacks periodically.
type Scheduler interface {
	Every(d time.Duration, fn func(now time.Time)) Cancel
}

// Real is the production clock and scheduler backed by time.Ticker.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Every starts a ticker goroutine calling fn every d.
// Cancel must not be called from inside fn.
func (Real) Every(d time.Duration, fn func(now time.Time)) Cancel {
	t := time.NewTicker(d)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-t.C:
				// a tick and a stop may be ready together; stop wins
				select {
				case <-stop:
					return
				default:
				}
				fn(now)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
		})
	}
}

// Group collects cancellation handles and releases them together.
type Group struct {
	mu      sync.Mutex
	cancels []Cancel
	closed  bool
}

// Add registers c. If the group is already closed, c is cancelled
// immediately and Add returns false.
func (g *Group) Add(c Cancel) bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		c()
		return false
	}
	g.cancels = append(g.cancels, c)
	g.mu.Unlock()
	return true
}

// Close cancels every registered task in reverse registration order.
func (g *Group) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	cancels := g.cancels
	g.cancels = nil
	g.mu.Unlock()

	for i := len(cancels) - 1; i >= 0; i-- {
		cancels[i]()
	}
}

// Closed reports whether Close has been called.
func (g *Group) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
