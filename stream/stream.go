// Package stream is a pull-based, poll-driven sequence contract and the
// adapter that exposes a broadcast.Receiver through it.
//
// A Stream is stepped with PollNext. Each step returns one of three states:
// Ready with a value, Pending when nothing is available yet, or Done once the
// stream will never produce again. A Pending stream that was handed a Waker
// calls Wake when polling again may make progress.
//
// Next, All and Collect drive a Stream from ordinary blocking Go code.
package stream

// Stream produces values one poll at a time.
// Implementations are not required to be safe for concurrent polling.
type Stream[T any] interface {
	PollNext(w Waker) Poll[T]
}

// Waker is told when a Pending stream should be polled again.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to a Waker.
type WakerFunc func()

func (f WakerFunc) Wake() {
	f()
}

// Func adapts a poll function to a Stream.
type Func[T any] func(w Waker) Poll[T]

func (f Func[T]) PollNext(w Waker) Poll[T] {
	return f(w)
}
