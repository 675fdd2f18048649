// Package replica provides single-writer replicated values with asynchronous
// observers. The authoritative side holds the Authority token and is the only
// writer; every other participant watches. Deliveries to one watcher are FIFO
// per value, and a watcher always observes the latest state eventually.
// Ordering between two independent values is not guaranteed: consumers must
// tolerate either one arriving first.
package replica

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAuthority is returned when a non-authoritative caller attempts a
// write. Callers log it as a warning and drop the write; nothing retries.
var ErrNotAuthority = errors.New("replica: caller is not the authority")

// Authority is the write token for a set of replicated values. Only the
// holder of the exact token a value was created with may write to it.
type Authority struct {
	label string
}

// NewAuthority creates a write token. The label only appears in diagnostics.
func NewAuthority(label string) *Authority {
	return &Authority{label: label}
}

// Label returns the diagnostic label.
func (a *Authority) Label() string {
	if a == nil {
		return "<none>"
	}
	return a.label
}

// mailbox is an unbounded FIFO between a writer and one watcher goroutine.
// The writer never blocks; the pump drains into the watcher's channel.
type mailbox[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []T
	closed bool
}

func newMailbox[T any]() *mailbox[T] {
	m := &mailbox[T]{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *mailbox[T]) push(v T) {
	m.mu.Lock()
	if !m.closed {
		m.buf = append(m.buf, v)
	}
	m.mu.Unlock()
	m.cond.Signal()
}

func (m *mailbox[T]) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

// pump moves mail into out until the context ends or the mailbox closes.
func (m *mailbox[T]) pump(ctx context.Context, out chan<- T, unregister func()) {
	defer close(out)
	defer unregister()
	for {
		m.mu.Lock()
		for len(m.buf) == 0 && !m.closed {
			m.cond.Wait()
		}
		if m.closed {
			m.mu.Unlock()
			return
		}
		v := m.buf[0]
		m.buf = m.buf[1:]
		m.mu.Unlock()

		select {
		case out <- v:
		case <-ctx.Done():
			m.close()
			return
		}
	}
}

// Var is a single-writer replicated value.
type Var[T any] struct {
	owner *Authority

	mu       sync.Mutex
	val      T
	set      bool
	nextSub  int
	watchers map[int]*mailbox[T]
}

// NewVar creates a Var writable only by owner.
func NewVar[T any](owner *Authority) *Var[T] {
	return &Var[T]{owner: owner, watchers: make(map[int]*mailbox[T])}
}

// Set writes a new value and queues it for every watcher. A caller that does
// not hold the owning token gets ErrNotAuthority and the value is untouched.
func (v *Var[T]) Set(auth *Authority, val T) error {
	if auth == nil || auth != v.owner {
		return ErrNotAuthority
	}
	v.mu.Lock()
	v.val = val
	v.set = true
	for _, m := range v.watchers {
		m.push(val)
	}
	v.mu.Unlock()
	return nil
}

// Get returns the current value and whether one has been set.
func (v *Var[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.val, v.set
}

// Watch subscribes to the value. If a value is already set it is delivered
// first (the check-on-startup path), then every subsequent write (the
// react-to-change path), so one idempotent consumer covers both. The channel
// closes when ctx ends.
func (v *Var[T]) Watch(ctx context.Context) <-chan T {
	out := make(chan T)
	m := newMailbox[T]()

	v.mu.Lock()
	if v.set {
		m.push(v.val)
	}
	id := v.nextSub
	v.nextSub++
	v.watchers[id] = m
	v.mu.Unlock()

	unregister := func() {
		v.mu.Lock()
		delete(v.watchers, id)
		v.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		m.close()
	}()
	go m.pump(ctx, out, unregister)

	return out
}

// List is a single-writer append-only replicated list.
type List[T any] struct {
	owner *Authority

	mu       sync.Mutex
	items    []T
	nextSub  int
	watchers map[int]*mailbox[T]
}

// NewList creates a List writable only by owner.
func NewList[T any](owner *Authority) *List[T] {
	return &List[T]{owner: owner, watchers: make(map[int]*mailbox[T])}
}

// Append adds one element and queues it for every watcher. Non-authoritative
// callers get ErrNotAuthority.
func (l *List[T]) Append(auth *Authority, val T) error {
	if auth == nil || auth != l.owner {
		return ErrNotAuthority
	}
	l.mu.Lock()
	l.items = append(l.items, val)
	for _, m := range l.watchers {
		m.push(val)
	}
	l.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current elements.
func (l *List[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the current element count.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Watch subscribes to the list. Existing elements are replayed in order, then
// appends follow as they happen; a late subscriber converges on the same
// sequence an early one saw. The channel closes when ctx ends.
func (l *List[T]) Watch(ctx context.Context) <-chan T {
	out := make(chan T)
	m := newMailbox[T]()

	l.mu.Lock()
	for _, it := range l.items {
		m.push(it)
	}
	id := l.nextSub
	l.nextSub++
	l.watchers[id] = m
	l.mu.Unlock()

	unregister := func() {
		l.mu.Lock()
		delete(l.watchers, id)
		l.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		m.close()
	}()
	go m.pump(ctx, out, unregister)

	return out
}
