// Package notify holds the single-slot notification queue.
package notify

import (
	"sync"
	"time"

	"github.com/example/storefront-core/internal/domain"
	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// WallClock schedules on real timers.
func WallClock() Scheduler { return wallClock{} }

// Queue shows at most one notification. Every Notify arms its own clear,
// and a clear empties the slot whatever it holds at that moment, so an
// earlier timer can cut a later message short. Last call wins.
type Queue struct {
	mu       sync.Mutex
	current  *domain.Notification
	ttl      time.Duration
	sched    Scheduler
	pending  map[uint64]Timer
	seq      uint64
	closed   bool
	onExpire func()
}

// New builds a queue. onExpire, if set, runs after a timer clears the slot
// and never while the queue lock is held.
func New(ttl time.Duration, sched Scheduler, onExpire func()) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sched == nil {
		sched = WallClock()
	}
	return &Queue{ttl: ttl, sched: sched, pending: make(map[uint64]Timer), onExpire: onExpire}
}

// Notify replaces the visible notification and schedules its clearance.
func (q *Queue) Notify(message string, severity domain.Severity) domain.Notification {
	if severity == "" {
		severity = domain.SeveritySuccess
	}
	n := domain.Notification{ID: uuid.NewString(), Message: message, Severity: severity}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = &n
	if q.closed {
		return n
	}
	q.seq++
	id := q.seq
	q.pending[id] = q.sched.AfterFunc(q.ttl, func() { q.expire(id) })
	return n
}

func (q *Queue) expire(id uint64) {
	q.mu.Lock()
	delete(q.pending, id)
	q.current = nil
	q.mu.Unlock()
	if q.onExpire != nil {
		q.onExpire()
	}
}

// Current returns the visible notification, if any.
func (q *Queue) Current() (domain.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return domain.Notification{}, false
	}
	return *q.current, true
}

// Close stops pending timers. The visible notification stays until replaced.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for id, t := range q.pending {
		t.Stop()
		delete(q.pending, id)
	}
}
