package stream

import (
	"context"
	"errors"
	"iter"
)

// chanWaker coalesces wake-ups into a single pending signal.
type chanWaker chan struct{}

func newChanWaker() chanWaker {
	return make(chanWaker, 1)
}

func (w chanWaker) Wake() {
	select {
	case w <- struct{}{}:
	default:
	}
}

// Next polls s until it is Ready or Done, sleeping between Pending polls
// until s wakes it or ctx is done. It returns ErrDone once s is finished.
func Next[T any](ctx context.Context, s Stream[T]) (T, error) {
	return next(ctx, s, newChanWaker())
}

func next[T any](ctx context.Context, s Stream[T], w chanWaker) (T, error) {
	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		p := s.PollNext(w)
		switch p.state {
		case StateReady:
			return p.value, nil
		case StateDone:
			return zero, ErrDone
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-w:
		}
	}
}

// All returns an iterator over s. Iteration ends when s is Done or the
// consumer stops early. If ctx ends first the final pair carries ctx's error.
func All[T any](ctx context.Context, s Stream[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		w := newChanWaker()
		for {
			v, err := next(ctx, s, w)
			if errors.Is(err, ErrDone) {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Collect gathers values from s until it is Done or limit values were read.
// A limit of zero or less means no limit. On ctx expiry the values read so far
// are returned together with ctx's error.
func Collect[T any](ctx context.Context, s Stream[T], limit int) ([]T, error) {
	var out []T
	for v, err := range All(ctx, s) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
