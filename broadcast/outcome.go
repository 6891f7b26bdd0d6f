package broadcast

// Kind identifies which of the four receive outcomes an Outcome holds.
type Kind uint8

const (
	// KindEmpty nothing is available right now and the channel is open.
	KindEmpty Kind = iota
	// KindItem a value was received and the cursor moved past it.
	KindItem
	// KindClosed nothing is available and no sender remains.
	KindClosed
	// KindLagged values were evicted before this receiver read them.
	KindLagged
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindItem:
		return "item"
	case KindClosed:
		return "closed"
	case KindLagged:
		return "lagged"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single non-blocking receive attempt.
// Exactly one of the four kinds is set; switch on Kind to handle them all.
type Outcome[T any] struct {
	kind    Kind
	value   T
	skipped uint64
}

func itemOutcome[T any](v T) Outcome[T] {
	return Outcome[T]{kind: KindItem, value: v}
}

func emptyOutcome[T any]() Outcome[T] {
	return Outcome[T]{kind: KindEmpty}
}

func closedOutcome[T any]() Outcome[T] {
	return Outcome[T]{kind: KindClosed}
}

func laggedOutcome[T any](skipped uint64) Outcome[T] {
	return Outcome[T]{kind: KindLagged, skipped: skipped}
}

func (o Outcome[T]) Kind() Kind {
	return o.kind
}

// Item returns the received value and true when Kind is KindItem.
func (o Outcome[T]) Item() (T, bool) {
	if o.kind != KindItem {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Lagged returns the number of skipped values and true when Kind is KindLagged.
func (o Outcome[T]) Lagged() (uint64, bool) {
	if o.kind != KindLagged {
		return 0, false
	}
	return o.skipped, true
}

func (o Outcome[T]) IsEmpty() bool {
	return o.kind == KindEmpty
}

func (o Outcome[T]) IsClosed() bool {
	return o.kind == KindClosed
}

// Err maps the outcome onto the package errors: nil for an item, ErrEmpty,
// ErrClosed, or a *LaggedError.
func (o Outcome[T]) Err() error {
	switch o.kind {
	case KindItem:
		return nil
	case KindEmpty:
		return ErrEmpty
	case KindClosed:
		return ErrClosed
	case KindLagged:
		return &LaggedError{Skipped: o.skipped}
	default:
		return Error("broadcast outcome kind " + o.kind.String())
	}
}
