package stream

import "strconv"

// LaggedError is yielded by a BroadcastStream when its receiver fell behind
// and Skipped values were dropped. It does not end the stream.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return "stream lagged, " + strconv.FormatUint(e.Skipped, 10) + " values skipped"
}

// Result is either a received value or a lag notification.
type Result[T any] struct {
	value T
	lag   *LaggedError
}

// Ok wraps a received value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Lagged wraps a lag notification for skipped values.
func Lagged[T any](skipped uint64) Result[T] {
	return Result[T]{lag: &LaggedError{Skipped: skipped}}
}

// Value returns the value, or the zero value and a *LaggedError.
func (r Result[T]) Value() (T, error) {
	if r.lag != nil {
		var zero T
		return zero, r.lag
	}
	return r.value, nil
}

// Err returns the *LaggedError, or nil for a value.
func (r Result[T]) Err() error {
	if r.lag == nil {
		return nil
	}
	return r.lag
}

func (r Result[T]) IsLagged() bool {
	return r.lag != nil
}

// Skipped is the lag count, zero for a value.
func (r Result[T]) Skipped() uint64 {
	if r.lag == nil {
		return 0
	}
	return r.lag.Skipped
}
