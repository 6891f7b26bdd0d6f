package broadcast

import "strconv"

// Error is a constant error returned by the broadcast package.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrInvalidCapacity is returned by New when capacity is less than one.
	ErrInvalidCapacity = Error("broadcast capacity must be at least 1")
	// ErrClosed is returned once every sender has closed, or when the handle
	// used was already closed.
	ErrClosed = Error("broadcast channel closed")
	// ErrEmpty reports that no value is available yet on an open channel.
	ErrEmpty = Error("broadcast channel empty")
	// ErrNoReceivers is returned by Send when nobody is subscribed.
	// The value is not retained.
	ErrNoReceivers = Error("broadcast channel has no receivers")
)

// LaggedError reports that a receiver fell behind the ring and Skipped values
// were evicted before it could read them. The receiver has already been moved
// to the oldest retained value.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return "broadcast receiver lagged, " + strconv.FormatUint(e.Skipped, 10) + " values skipped"
}
