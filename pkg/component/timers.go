package component

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timers holds the two kinds of timers a component's interaction layer owns:
// named deferred timers, which keep their original deadline when re-armed, and
// debounced timers, which restart on every call. Callbacks receive the instance
// owning the timer when it fires, which may be a successor of the instance that
// armed it.
type Timers struct {
	mu        sync.Mutex
	owner     *Component
	deferred  map[string]*Timer
	debounced map[string]*Timer
}

// Timer is one pending callback.
type Timer struct {
	Name    string
	Started time.Time
	Delay   time.Duration

	home      atomic.Pointer[Timers]
	timer     *time.Timer
	fn        func(*Component)
	debounced bool
}

// Deadline is when the timer fires.
func (t *Timer) Deadline() time.Time {
	return t.Started.Add(t.Delay)
}

func newTimers(owner *Component) *Timers {
	return &Timers{
		owner:     owner,
		deferred:  make(map[string]*Timer),
		debounced: make(map[string]*Timer),
	}
}

// Defer arms the named timer. When it is already pending only the callback is
// replaced; the original start time and deadline are kept.
func (ts *Timers) Defer(name string, delay time.Duration, fn func(*Component)) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.deferred[name]; ok {
		t.fn = fn
		return
	}
	ts.deferred[name] = ts.arm(name, delay, fn, false)
}

// Debounce restarts the timer registered under key.
func (ts *Timers) Debounce(key string, delay time.Duration, fn func(*Component)) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.debounced[key]; ok {
		t.timer.Stop()
	}
	ts.debounced[key] = ts.arm(key, delay, fn, true)
}

// Remaining returns the time left on the named deferred timer.
func (ts *Timers) Remaining(name string) (time.Duration, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t, ok := ts.deferred[name]
	if !ok {
		return 0, false
	}
	return time.Until(t.Deadline()), true
}

// Pending returns the number of armed timers of both kinds.
func (ts *Timers) Pending() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.deferred) + len(ts.debounced)
}

// Stop cancels every pending timer.
func (ts *Timers) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for name, t := range ts.deferred {
		t.timer.Stop()
		delete(ts.deferred, name)
	}
	for key, t := range ts.debounced {
		t.timer.Stop()
		delete(ts.debounced, key)
	}
}

// handOver moves every pending timer to next, whose owner fires them from now on.
func (ts *Timers) handOver(next *Timers) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	next.mu.Lock()
	defer next.mu.Unlock()
	for name, t := range ts.deferred {
		t.home.Store(next)
		next.deferred[name] = t
		delete(ts.deferred, name)
	}
	for key, t := range ts.debounced {
		if prev, ok := next.debounced[key]; ok {
			prev.timer.Stop()
		}
		t.home.Store(next)
		next.debounced[key] = t
		delete(ts.debounced, key)
	}
}

func (ts *Timers) arm(name string, delay time.Duration, fn func(*Component), debounced bool) *Timer {
	t := &Timer{Name: name, Started: time.Now(), Delay: delay, fn: fn, debounced: debounced}
	t.home.Store(ts)
	t.timer = time.AfterFunc(delay, t.fire)
	return t
}

func (t *Timer) fire() {
	for {
		ts := t.home.Load()
		ts.mu.Lock()
		if t.home.Load() != ts {
			ts.mu.Unlock()
			continue
		}
		m := ts.deferred
		if t.debounced {
			m = ts.debounced
		}
		if m[t.Name] != t {
			ts.mu.Unlock()
			return
		}
		delete(m, t.Name)
		owner, fn := ts.owner, t.fn
		ts.mu.Unlock()
		fn(owner)
		return
	}
}
