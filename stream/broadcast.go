package stream

import (
	"errors"

	"github.com/ambitiousfew/rxstream/broadcast"
)

// BroadcastStream exposes a broadcast.Receiver as a Stream of Results.
//
// Each PollNext makes exactly one non-blocking receive attempt:
//
//	item      -> Ready(Ok(v))
//	empty     -> Pending, the waker is registered with the receiver
//	closed    -> Done
//	lagged(n) -> Ready(Lagged(n)), the next poll resumes at the oldest retained value
//
// The stream owns its receiver. Values are duplicated per receiver by the
// channel (see broadcast.Cloner and broadcast.WithClone), so T may be shared
// with other goroutines only if its clones are. Polls must not overlap.
type BroadcastStream[T any] struct {
	rx *broadcast.Receiver[T]
}

// NewBroadcast takes ownership of rx.
//
// Every stream on a channel receives its own copy of each value: the channel's
// WithClone function, else T's Clone method when T implements
// broadcast.Cloner[T], else a plain assignment. A T that holds pointers, maps,
// slices or channels and has neither is shared between streams, so it must be
// safe for concurrent use or treated as read-only by every consumer.
func NewBroadcast[T any](rx *broadcast.Receiver[T]) *BroadcastStream[T] {
	return &BroadcastStream[T]{rx: rx}
}

// PollNext implements Stream. A nil w registers nothing and leaves re-polling
// to the caller.
func (s *BroadcastStream[T]) PollNext(w Waker) Poll[Result[T]] {
	out := s.rx.PollRecv(w)
	switch out.Kind() {
	case broadcast.KindItem:
		v, _ := out.Item()
		return Ready(Ok(v))
	case broadcast.KindEmpty:
		return Pending[Result[T]]()
	case broadcast.KindClosed:
		return Done[Result[T]]()
	case broadcast.KindLagged:
		skipped, _ := out.Lagged()
		return Ready(Lagged[T](skipped))
	default:
		panic("stream: unknown broadcast outcome " + out.Kind().String())
	}
}

// Close releases the receiver. Later polls report Done and a poller blocked on
// its waker is woken. Close may run concurrently with PollNext. Closing twice
// is a no-op.
func (s *BroadcastStream[T]) Close() error {
	err := s.rx.Close()
	if errors.Is(err, broadcast.ErrClosed) {
		return nil
	}
	return err
}

// String identifies the type only; the cursor is not part of any contract.
func (s *BroadcastStream[T]) String() string {
	return "BroadcastStream"
}

func (s *BroadcastStream[T]) GoString() string {
	return "BroadcastStream{}"
}
