package optimistic

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/evaldesk/evaldesk/pkg/notify"
)

// ErrClosed is returned when Apply is invoked on a closed mutator, or when an
// in-flight operation completed after the owner went away.
var ErrClosed = errors.New("optimistic: mutator closed")

// Operation produces the authoritative snapshot for a mutation.
type Operation[T any] func(ctx context.Context) (T, error)

// ErrorCallback receives the operation error together with the snapshot the
// mutator rolled back to.
type ErrorCallback[T any] func(err error, restored T)

// Mutator holds the confirmed snapshot of one entity and applies mutations
// optimistically: the local transform is visible immediately, the operation's
// result replaces it on success, and failure restores the last confirmed
// snapshot. At most one operation is in flight per mutator; a concurrent
// Apply joins the in-flight call instead of starting a second one.
type Mutator[T any] struct {
	mu          sync.Mutex
	confirmed   T
	provisional T
	closed      bool
	inflight    *flight[T]

	notifier   notify.Notifier
	onError    ErrorCallback[T]
	successMsg string
	failureMsg string
}

// flight is the result holder for one operation. Joiners keep a reference to
// the flight they joined, so a later Apply can never overwrite what they
// observe: result and err are written once, before done is closed.
type flight[T any] struct {
	done   chan struct{}
	result T
	err    error
}

type Option[T any] func(*Mutator[T])

func WithNotifier[T any](n notify.Notifier) Option[T] {
	return func(m *Mutator[T]) { m.notifier = n }
}

func WithMessages[T any](success, failure string) Option[T] {
	return func(m *Mutator[T]) {
		m.successMsg = success
		m.failureMsg = failure
	}
}

func OnError[T any](cb ErrorCallback[T]) Option[T] {
	return func(m *Mutator[T]) { m.onError = cb }
}

func New[T any](initial T, opts ...Option[T]) *Mutator[T] {
	m := &Mutator[T]{
		confirmed:  initial,
		successMsg: "saved",
		failureMsg: "save failed",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns the provisional value while an operation is pending,
// otherwise the confirmed one.
func (m *Mutator[T]) Snapshot() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inflight != nil {
		return m.provisional
	}
	return m.confirmed
}

func (m *Mutator[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight != nil
}

// Apply runs update against the confirmed snapshot, exposes the result as the
// provisional snapshot, then awaits op. Success commits op's value; failure
// rolls back to the pre-invocation snapshot. Failure is terminal for the
// invocation: there is no retry, the caller must Apply again.
func (m *Mutator[T]) Apply(ctx context.Context, update func(T) T, op Operation[T]) (T, error) {
	m.mu.Lock()
	if m.closed {
		confirmed := m.confirmed
		m.mu.Unlock()
		return confirmed, ErrClosed
	}
	if m.inflight != nil {
		// Join the in-flight operation; its update wins, ours is dropped.
		f := m.inflight
		m.mu.Unlock()
		<-f.done
		return f.result, f.err
	}

	f := &flight[T]{done: make(chan struct{})}
	m.inflight = f
	m.provisional = update(m.confirmed)
	m.mu.Unlock()

	value, err := op(ctx)

	m.mu.Lock()
	if m.closed {
		// Owner went away while the operation ran: discard the result so we
		// never publish state nobody owns.
		m.inflight = nil
		f.result = m.confirmed
		f.err = ErrClosed
		close(f.done)
		m.mu.Unlock()
		return f.result, ErrClosed
	}

	var notifier = m.notifier
	var onError = m.onError
	var msg string
	var kind notify.Kind

	if err != nil {
		m.inflight = nil
		f.result = m.confirmed
		f.err = err
		msg, kind = m.failureMsg, notify.KindError
	} else {
		m.confirmed = value
		m.inflight = nil
		f.result = value
		f.err = nil
		msg, kind = m.successMsg, notify.KindSuccess
	}
	result, resultErr := f.result, f.err
	close(f.done)
	m.mu.Unlock()

	if notifier != nil {
		notifier.Notify(msg, kind)
	}
	if resultErr != nil && onError != nil {
		onError(resultErr, result)
	}
	return result, resultErr
}

// Close marks the owner gone. A result arriving afterwards is discarded.
func (m *Mutator[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
