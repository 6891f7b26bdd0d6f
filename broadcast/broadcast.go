// Package broadcast implements a bounded, lossy, multi-producer multi-consumer
// channel.
//
// Every published value is written into a shared ring of fixed capacity and
// each Receiver keeps its own cursor into that ring. Senders never wait for
// slow receivers: once the ring wraps, the oldest values are overwritten and a
// receiver that had not read them yet observes a lag (KindLagged or
// *LaggedError) carrying the number of skipped values, after which it resumes
// at the oldest value still retained.
//
// The channel closes when the last Sender handle is closed. Receivers drain
// whatever is still retained for them before observing the close.
package broadcast

import (
	"sync"

	"github.com/ambitiousfew/rxstream/log"
)

// Waker is notified once after it was registered on an empty receiver and a
// value was sent or the channel closed.
type Waker interface {
	Wake()
}

// Cloner is implemented by values that must be duplicated for each receiver
// instead of being shared by assignment.
type Cloner[T any] interface {
	Clone() T
}

// Option configures a channel created by New.
type Option[T any] func(*shared[T])

// WithClone sets the function used to duplicate each value handed to a
// receiver. It takes precedence over a Cloner implementation on T.
func WithClone[T any](fn func(T) T) Option[T] {
	return func(s *shared[T]) {
		s.clone = fn
	}
}

// WithLogger sets the logger used for lag and close diagnostics.
func WithLogger[T any](logger log.Logger) Option[T] {
	return func(s *shared[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type slot[T any] struct {
	seq   uint64
	value T
}

// shared is the ring and bookkeeping every handle of one channel points at.
type shared[T any] struct {
	mu       sync.Mutex
	buffer   []slot[T]
	capacity uint64
	// tail is the sequence number the next Send will be written at.
	tail      uint64
	senders   int
	receivers int
	closed    bool
	nextID    uint64

	// waiters holds at most one waker per receiver id.
	waiters map[uint64]Waker
	// notify is closed and replaced on every send and on close.
	notify chan struct{}

	clone  func(T) T
	logger log.Logger
}

// New creates a channel retaining up to capacity values and returns its first
// sender and receiver. Further receivers come from Sender.Subscribe or
// Receiver.Resubscribe, further senders from Sender.Clone.
func New[T any](capacity int, opts ...Option[T]) (*Sender[T], *Receiver[T], error) {
	if capacity < 1 {
		return nil, nil, ErrInvalidCapacity
	}

	s := &shared[T]{
		buffer:   make([]slot[T], capacity),
		capacity: uint64(capacity),
		senders:  1,
		waiters:  make(map[uint64]Waker),
		notify:   make(chan struct{}),
		logger:   log.Noop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	tx := &Sender[T]{shared: s}
	rx := s.subscribe()
	return tx, rx, nil
}

func (s *shared[T]) subscribe() *Receiver[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.receivers++
	return &Receiver[T]{shared: s, id: id, next: s.tail}
}

// wakeLocked takes every registered waker and rotates the notify channel.
// The caller must fire the returned wakers and close the returned channel
// after unlocking.
func (s *shared[T]) wakeLocked() ([]Waker, chan struct{}) {
	var wakers []Waker
	if len(s.waiters) > 0 {
		wakers = make([]Waker, 0, len(s.waiters))
		for id, w := range s.waiters {
			wakers = append(wakers, w)
			delete(s.waiters, id)
		}
	}

	notify := s.notify
	s.notify = make(chan struct{})
	return wakers, notify
}

func wakeAll(wakers []Waker, notify chan struct{}) {
	close(notify)
	for _, w := range wakers {
		w.Wake()
	}
}

// duplicate applies the configured clone function, or Cloner, to v.
func (s *shared[T]) duplicate(v T) T {
	if s.clone != nil {
		return s.clone(v)
	}
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
