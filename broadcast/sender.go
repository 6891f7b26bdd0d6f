package broadcast

import (
	"sync/atomic"

	"github.com/ambitiousfew/rxstream/log"
)

// Sender publishes values to every receiver of a channel.
// A Sender is safe for concurrent use; Clone hands out independent handles.
type Sender[T any] struct {
	shared *shared[T]
	closed atomic.Bool
}

// Send writes v into the ring and wakes waiting receivers. It never blocks on
// receivers: when the ring is full the oldest value is overwritten.
// It returns the number of receivers the value was made visible to.
func (tx *Sender[T]) Send(v T) (int, error) {
	if tx.closed.Load() {
		return 0, ErrClosed
	}

	s := tx.shared
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}

	if s.receivers == 0 {
		s.mu.Unlock()
		return 0, ErrNoReceivers
	}

	s.buffer[s.tail%s.capacity] = slot[T]{seq: s.tail, value: v}
	s.tail++
	receivers := s.receivers
	wakers, notify := s.wakeLocked()
	s.mu.Unlock()

	wakeAll(wakers, notify)
	return receivers, nil
}

// Subscribe creates a receiver that observes values sent after this call.
func (tx *Sender[T]) Subscribe() *Receiver[T] {
	return tx.shared.subscribe()
}

// Clone returns another handle keeping the channel open. Cloning a closed
// handle, or any handle of a closed channel, returns a closed handle.
func (tx *Sender[T]) Clone() *Sender[T] {
	clone := &Sender[T]{shared: tx.shared}

	s := tx.shared
	s.mu.Lock()
	defer s.mu.Unlock()

	// tx may have been closed, possibly as the last handle, since it was checked.
	if tx.closed.Load() || s.closed {
		clone.closed.Store(true)
		return clone
	}

	s.senders++
	return clone
}

// ReceiverCount reports how many receivers are currently subscribed.
func (tx *Sender[T]) ReceiverCount() int {
	s := tx.shared
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receivers
}

// Close releases this handle. Closing the last open handle closes the channel:
// receivers drain what is still retained and then report KindClosed.
func (tx *Sender[T]) Close() error {
	if tx.closed.Swap(true) {
		return ErrClosed
	}

	s := tx.shared
	s.mu.Lock()
	s.senders--
	if s.senders > 0 {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	wakers, notify := s.wakeLocked()
	tail := s.tail
	s.mu.Unlock()

	s.logger.Log(log.LevelDebug, "broadcast channel closed", log.Uint64("sent", tail))
	wakeAll(wakers, notify)
	return nil
}
