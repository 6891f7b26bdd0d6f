package stream

// PollState is the outcome class of a single PollNext call.
type PollState uint8

const (
	// StatePending no value yet, poll again later.
	StatePending PollState = iota
	// StateReady a value was produced.
	StateReady
	// StateDone the stream is finished, every later poll is Done too.
	StateDone
)

func (s PollState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Poll is the result of PollNext.
type Poll[T any] struct {
	state PollState
	value T
}

func Ready[T any](v T) Poll[T] {
	return Poll[T]{state: StateReady, value: v}
}

func Pending[T any]() Poll[T] {
	return Poll[T]{state: StatePending}
}

func Done[T any]() Poll[T] {
	return Poll[T]{state: StateDone}
}

func (p Poll[T]) State() PollState {
	return p.state
}

func (p Poll[T]) IsPending() bool {
	return p.state == StatePending
}

func (p Poll[T]) IsReady() bool {
	return p.state == StateReady
}

func (p Poll[T]) IsDone() bool {
	return p.state == StateDone
}

// Value returns the produced value and true when the poll is Ready.
func (p Poll[T]) Value() (T, bool) {
	if p.state != StateReady {
		var zero T
		return zero, false
	}
	return p.value, true
}
