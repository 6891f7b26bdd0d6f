package intracom

import (
	"sync/atomic"

	"github.com/ambitiousfew/rxstream/broadcast"
	"github.com/ambitiousfew/rxstream/log"
	"github.com/ambitiousfew/rxstream/stream"
)

// Subscription is one consumer group's stream of a topic.
// It implements stream.Stream and, like any stream, must not be polled from
// more than one goroutine at a time.
type Subscription[T any] struct {
	topic    *topic[T]
	consumer string
	stream   *stream.BroadcastStream[T]
	closed   atomic.Bool
	lagged   atomic.Uint64
}

func newSubscription[T any](t *topic[T], consumer string, rx *broadcast.Receiver[T]) *Subscription[T] {
	return &Subscription[T]{
		topic:    t,
		consumer: consumer,
		stream:   stream.NewBroadcast(rx),
	}
}

// PollNext implements stream.Stream.
func (s *Subscription[T]) PollNext(w stream.Waker) stream.Poll[stream.Result[T]] {
	p := s.stream.PollNext(w)
	if res, ok := p.Value(); ok && res.IsLagged() {
		total := s.lagged.Add(res.Skipped())
		s.topic.logger.Log(log.LevelWarning, "subscriber lagging",
			log.String("topic", s.topic.name),
			log.String("consumer", s.consumer),
			log.Uint64("skipped", res.Skipped()),
			log.Uint64("skipped_total", total))
	}
	return p
}

func (s *Subscription[T]) Topic() string {
	return s.topic.name
}

func (s *Subscription[T]) ConsumerGroup() string {
	return s.consumer
}

// Lagged is the total number of values this subscription has missed.
func (s *Subscription[T]) Lagged() uint64 {
	return s.lagged.Load()
}

// Close unsubscribes and releases the underlying receiver.
func (s *Subscription[T]) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.topic.remove(s)
	s.topic.logger.Log(log.LevelDebug, "unsubscribed", log.String("topic", s.topic.name), log.String("consumer", s.consumer))
	return s.stream.Close()
}

func (s *Subscription[T]) String() string {
	return "Subscription(" + s.topic.name + "<-" + s.consumer + ")"
}
