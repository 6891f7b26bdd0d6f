package stream

// Error is a constant error returned by the stream drivers.
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrDone is returned by Next once the stream is finished.
const ErrDone = Error("stream done")
