package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// timerEntry is one armed registration in a timerRegistry.
type timerEntry struct {
	backendID string
	callerID  string
	fireAt    time.Time
	title     string
	body      string
	data      map[string]string
	timer     *time.Timer // nil when the registry does not arm timers
}

// timerRegistry tracks scheduled registrations, optionally arming an
// in-process one-shot timer per entry. Shared by the managed and native
// backends; the preview backend uses it unarmed (bookkeeping only, the
// scheduler's sweep performs delivery).
type timerRegistry struct {
	mu      sync.Mutex
	entries map[string]*timerEntry // keyed by backend notification id
	byCall  map[string]string      // caller id -> backend notification id
	arm     bool
	deliver func(title, body string, data map[string]string) // required when arm
}

func newTimerRegistry(arm bool, deliver func(title, body string, data map[string]string)) *timerRegistry {
	return &timerRegistry{
		entries: make(map[string]*timerEntry),
		byCall:  make(map[string]string),
		arm:     arm,
		deliver: deliver,
	}
}

// schedule registers a notification under callerID, replacing any prior
// registration with the same caller id, and returns the new backend id.
func (r *timerRegistry) schedule(callerID string, fireAt time.Time, title, body string, data map[string]string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byCall[callerID]; ok {
		r.removeLocked(prev)
	}

	e := &timerEntry{
		backendID: uuid.NewString(),
		callerID:  callerID,
		fireAt:    fireAt,
		title:     title,
		body:      body,
		data:      data,
	}
	if r.arm {
		e.timer = time.AfterFunc(time.Until(fireAt), func() {
			r.fire(e.backendID)
		})
	}
	r.entries[e.backendID] = e
	r.byCall[callerID] = e.backendID
	return e.backendID
}

// fire delivers an armed entry and drops it from the registry.
func (r *timerRegistry) fire(backendID string) {
	r.mu.Lock()
	e, ok := r.entries[backendID]
	if ok {
		delete(r.entries, backendID)
		delete(r.byCall, e.callerID)
	}
	r.mu.Unlock()

	if ok && r.deliver != nil {
		r.deliver(e.title, e.body, e.data)
	}
}

// cancel stops and removes a registration. Unknown ids are a no-op.
func (r *timerRegistry) cancel(backendID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(backendID)
}

func (r *timerRegistry) removeLocked(backendID string) {
	e, ok := r.entries[backendID]
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(r.entries, backendID)
	delete(r.byCall, e.callerID)
}

func (r *timerRegistry) cancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.entries {
		r.removeLocked(id)
	}
}

func (r *timerRegistry) pending() []Pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Pending, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Pending{
			ID:     e.backendID,
			FireAt: e.fireAt,
			Title:  e.title,
			Body:   e.body,
		})
	}
	return out
}

// backgroundWorker runs a registered periodic task until stopped.
type backgroundWorker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startBackgroundWorker(ctx context.Context, interval time.Duration, task func(context.Context)) *backgroundWorker {
	ctx, cancel := context.WithCancel(ctx)
	w := &backgroundWorker{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				task(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
	return w
}

func (w *backgroundWorker) stop() {
	w.cancel()
	<-w.done
}
