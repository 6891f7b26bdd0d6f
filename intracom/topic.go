package intracom

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ambitiousfew/rxstream/broadcast"
	"github.com/ambitiousfew/rxstream/log"
)

// DefaultTopicCapacity is used when TopicConfig.Capacity is not set.
const DefaultTopicCapacity = 64

// Topic is a named broadcast channel. Every consumer group gets its own
// cursor, so a slow group lags without holding back the others.
type Topic[T any] interface {
	Name() string
	// Publish sends msg to every current subscriber and returns how many
	// there were. Publishing with no subscribers is not an error, the
	// message is simply not retained.
	Publish(msg T) (int, error)
	Subscribe(conf SubscriberConfig) (*Subscription[T], error)
	Unsubscribe(consumer string) error
	// Subscribers lists consumer groups in sorted order.
	Subscribers() []string
	Close() error
}

type TopicConfig struct {
	Name        string // unique name for the topic
	Capacity    int    // values retained per topic before slow subscribers lag
	ErrIfExists bool   // return error if topic already exists
}

type SubscriberConfig struct {
	ConsumerGroup string // unique per topic, generated when empty
	ErrIfExists   bool   // return error if the consumer group already exists
}

type topic[T any] struct {
	name        string
	tx          *broadcast.Sender[T]
	subscribers map[string]*Subscription[T]
	closed      atomic.Bool
	mu          sync.RWMutex
	logger      log.Logger
}

func newTopic[T any](conf TopicConfig, logger log.Logger) (*topic[T], error) {
	capacity := conf.Capacity
	if capacity <= 0 {
		capacity = DefaultTopicCapacity
	}

	tx, rx, err := broadcast.New[T](capacity, broadcast.WithLogger[T](logger))
	if err != nil {
		return nil, err
	}
	// the topic only publishes, subscribers come from Subscribe.
	_ = rx.Close()

	return &topic[T]{
		name:        conf.Name,
		tx:          tx,
		subscribers: make(map[string]*Subscription[T]),
		logger:      logger,
	}, nil
}

func (t *topic[T]) Name() string {
	return t.name
}

func (t *topic[T]) Publish(msg T) (int, error) {
	if t.closed.Load() {
		return 0, ErrTopic{Topic: t.name, Action: ActionPublishing, Err: ErrTopicClosed}
	}

	n, err := t.tx.Send(msg)
	switch {
	case errors.Is(err, broadcast.ErrNoReceivers):
		return 0, nil
	case errors.Is(err, broadcast.ErrClosed):
		return 0, ErrTopic{Topic: t.name, Action: ActionPublishing, Err: ErrTopicClosed}
	case err != nil:
		return 0, ErrTopic{Topic: t.name, Action: ActionPublishing, Err: err}
	}
	return n, nil
}

func (t *topic[T]) Subscribe(conf SubscriberConfig) (*Subscription[T], error) {
	if t.closed.Load() {
		return nil, ErrSubscribe{Topic: t.name, Consumer: conf.ConsumerGroup, Action: ActionCreatingSubscription, Err: ErrTopicClosed}
	}

	consumer := conf.ConsumerGroup
	if consumer == "" {
		consumer = uuid.NewString()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if sub, exists := t.subscribers[consumer]; exists {
		if conf.ErrIfExists {
			return sub, ErrSubscribe{Topic: t.name, Consumer: consumer, Action: ActionCreatingSubscription, Err: ErrConsumerAlreadyExists}
		}
		return sub, nil
	}

	sub := newSubscription(t, consumer, t.tx.Subscribe())
	t.subscribers[consumer] = sub
	t.logger.Log(log.LevelDebug, "subscribed", log.String("topic", t.name), log.String("consumer", consumer))
	return sub, nil
}

func (t *topic[T]) Unsubscribe(consumer string) error {
	t.mu.RLock()
	sub, exists := t.subscribers[consumer]
	t.mu.RUnlock()

	if !exists {
		if t.closed.Load() {
			return ErrSubscribe{Topic: t.name, Consumer: consumer, Action: ActionRemovingSubscription, Err: ErrTopicClosed}
		}
		return ErrSubscribe{Topic: t.name, Consumer: consumer, Action: ActionRemovingSubscription, Err: ErrConsumerNotFound}
	}

	return sub.Close()
}

// remove drops sub from the registry if it is still the registered
// subscription for its consumer group.
func (t *topic[T]) remove(sub *Subscription[T]) {
	t.mu.Lock()
	if current, ok := t.subscribers[sub.consumer]; ok && current == sub {
		delete(t.subscribers, sub.consumer)
	}
	t.mu.Unlock()
}

func (t *topic[T]) Subscribers() []string {
	t.mu.RLock()
	names := maps.Keys(t.subscribers)
	t.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Close stops publishing. Subscribers drain what is still retained for them
// and then see their stream end.
func (t *topic[T]) Close() error {
	if t.closed.Swap(true) {
		return ErrTopic{Topic: t.name, Action: ActionClosingTopic, Err: ErrTopicClosed}
	}

	t.mu.Lock()
	maps.Clear(t.subscribers)
	t.mu.Unlock()

	return t.tx.Close()
}
