package broadcast

import (
	"context"
	"sync/atomic"

	"github.com/ambitiousfew/rxstream/log"
)

// Receiver is one consumer's cursor into a channel.
// Receiving must not happen from more than one goroutine at a time. Close is
// safe to call from any goroutine.
type Receiver[T any] struct {
	shared *shared[T]
	id     uint64
	// next is the sequence number of the next value this receiver expects.
	next   uint64
	// written under shared.mu, read without it on the fast paths.
	closed atomic.Bool
}

// TryRecv makes one non-blocking receive attempt.
func (rx *Receiver[T]) TryRecv() Outcome[T] {
	out, _ := rx.poll(nil)
	return out
}

// PollRecv behaves like TryRecv, and when the outcome is KindEmpty it also
// registers w to be woken by the next Send or by the channel closing. The
// check and the registration happen under the channel lock so no wake-up can
// be missed in between. A receiver holds one waker at a time; registering
// again replaces the previous one. A nil w registers nothing.
func (rx *Receiver[T]) PollRecv(w Waker) Outcome[T] {
	out, _ := rx.poll(w)
	return out
}

// Recv blocks until a value is available, the receiver lagged, the channel
// closed, or ctx is done. Lag is reported as *LaggedError and the following
// call resumes at the oldest retained value.
func (rx *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	for {
		out, notify := rx.poll(nil)
		switch out.kind {
		case KindItem:
			return out.value, nil
		case KindLagged:
			return zero, &LaggedError{Skipped: out.skipped}
		case KindClosed:
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-notify:
		}
	}
}

func (rx *Receiver[T]) poll(w Waker) (Outcome[T], <-chan struct{}) {
	if rx.closed.Load() {
		return closedOutcome[T](), nil
	}

	s := rx.shared
	s.mu.Lock()
	if rx.closed.Load() {
		s.mu.Unlock()
		return closedOutcome[T](), nil
	}

	out := rx.recvLocked()
	switch {
	case out.kind == KindEmpty && w != nil:
		s.waiters[rx.id] = w
	case out.kind != KindEmpty:
		delete(s.waiters, rx.id)
	}
	notify := s.notify
	s.mu.Unlock()

	switch out.kind {
	case KindItem:
		out.value = s.duplicate(out.value)
	case KindLagged:
		s.logger.Log(log.LevelDebug, "broadcast receiver lagged",
			log.Uint64("receiver", rx.id),
			log.Uint64("skipped", out.skipped),
			log.Uint64("resume_at", rx.next))
	}

	return out, notify
}

// recvLocked classifies the slot at the cursor. Values are read before the
// closed flag so a closed channel still drains.
func (rx *Receiver[T]) recvLocked() Outcome[T] {
	s := rx.shared
	if rx.next < s.tail {
		sl := s.buffer[rx.next%s.capacity]
		if sl.seq != rx.next {
			// overwritten, so tail > next+capacity and oldest > next
			oldest := s.tail - s.capacity
			skipped := oldest - rx.next
			rx.next = oldest
			return laggedOutcome[T](skipped)
		}

		rx.next++
		return itemOutcome(sl.value)
	}

	if s.closed {
		return closedOutcome[T]()
	}
	return emptyOutcome[T]()
}

// Len reports how many sent values this receiver has not consumed yet,
// including any that were already evicted.
func (rx *Receiver[T]) Len() int {
	if rx.closed.Load() {
		return 0
	}

	s := rx.shared
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.tail - rx.next)
}

// Resubscribe creates a new receiver on the same channel positioned at the
// next value to be sent. Values pending for rx are not carried over.
func (rx *Receiver[T]) Resubscribe() *Receiver[T] {
	return rx.shared.subscribe()
}

// Close releases the receiver. Later receive attempts report KindClosed.
// Close may be called from another goroutine than the one receiving: a waker
// registered by PollRecv is fired and a blocked Recv returns ErrClosed.
func (rx *Receiver[T]) Close() error {
	s := rx.shared
	s.mu.Lock()
	if rx.closed.Swap(true) {
		s.mu.Unlock()
		return ErrClosed
	}

	s.receivers--
	w := s.waiters[rx.id]
	delete(s.waiters, rx.id)

	// Recv waits on notify, rotating it wakes every blocked Recv to re-poll.
	notify := s.notify
	s.notify = make(chan struct{})
	s.mu.Unlock()

	close(notify)
	if w != nil {
		w.Wake()
	}
	return nil
}
