package clock

import (
	"sync"
	"time"
)

// Manual is a Clock and Scheduler whose time only moves when Advance is called.
// Due callbacks run synchronously inside Advance, in time order; ties run in
// registration order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	tasks  []*manualTask
	nextID int
}

type manualTask struct {
	id        int
	every     time.Duration
	next      time.Time
	fn        func(time.Time)
	cancelled bool
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every registers fn to fire each time d elapses on the manual clock.
func (m *Manual) Every(d time.Duration, fn func(now time.Time)) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	task := &manualTask{id: m.nextID, every: d, next: m.now.Add(d), fn: fn}
	m.tasks = append(m.tasks, task)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		task.cancelled = true
		for i, t := range m.tasks {
			if t == task {
				m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
				break
			}
		}
	}
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		task := m.earliestDue(target)
		if task == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = task.next
		task.next = task.next.Add(task.every)
		now, fn := m.now, task.fn
		m.mu.Unlock()

		fn(now)
	}
}

func (m *Manual) earliestDue(target time.Time) *manualTask {
	var best *manualTask
	for _, t := range m.tasks {
		if t.cancelled || t.every <= 0 || t.next.After(target) {
			continue
		}
		if best == nil || t.next.Before(best.next) || (t.next.Equal(best.next) && t.id < best.id) {
			best = t
		}
	}
	return best
}

// Pending returns the number of live scheduled tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
