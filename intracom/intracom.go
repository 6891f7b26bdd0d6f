// Package intracom is a registry of named, typed broadcast topics.
//
// Publishers never block on subscribers. Each consumer group reads its topic
// through a Subscription, a stream.Stream that reports lag when the group
// falls further behind than the topic's capacity.
package intracom

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ambitiousfew/rxstream/log"
)

type Option func(*Intracom)

// WithLogger sets the logger used by the registry and its topics.
func WithLogger(logger log.Logger) Option {
	return func(ic *Intracom) {
		if logger != nil {
			ic.logger = logger
		}
	}
}

// topicCloser is the type-erased view of a topic the registry needs.
type topicCloser interface {
	Name() string
	Close() error
}

// Intracom acts as a registry for all topics.
type Intracom struct {
	name   string
	topics map[string]topicCloser
	mu     sync.RWMutex

	logger log.Logger
	closed atomic.Bool
}

// New creates a new instance of Intracom with the given name.
func New(name string, opts ...Option) *Intracom {
	ic := &Intracom{
		name:   name,
		topics: make(map[string]topicCloser),
		logger: log.Noop(),
	}

	for _, opt := range opts {
		opt(ic)
	}

	ic.logger = ic.logger.With(log.String("intracom", name))
	return ic
}

func (ic *Intracom) Name() string {
	return ic.name
}

// CreateTopic creates a new topic with the given configuration.
// If the topic already exists it is returned, along with an error when
// conf.ErrIfExists is set. A topic registered with another value type is an error.
func CreateTopic[T any](ic *Intracom, conf TopicConfig) (Topic[T], error) {
	if ic == nil {
		return nil, ErrTopic{Topic: conf.Name, Action: ActionCreatingTopic, Err: ErrInvalidIntracomNil}
	}

	if conf.Name == "" {
		return nil, ErrTopic{Topic: conf.Name, Action: ActionCreatingTopic, Err: ErrInvalidTopicName}
	}

	if ic.closed.Load() {
		return nil, ErrTopic{Topic: conf.Name, Action: ActionCreatingTopic, Err: ErrIntracomClosed}
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	// Close may have started since the check above, it closes only topics
	// already in the map once it holds the lock.
	if ic.closed.Load() {
		return nil, ErrTopic{Topic: conf.Name, Action: ActionCreatingTopic, Err: ErrIntracomClosed}
	}

	if existing, ok := ic.topics[conf.Name]; ok {
		t, ok := existing.(Topic[T])
		if !ok {
			return nil, ErrTopic{Topic: conf.Name, Action: ActionCreatingTopic, Err: ErrInvalidTopicType}
		}

		if conf.ErrIfExists {
			return t, ErrTopic{Topic: conf.Name, Action: ActionCreatingTopic, Err: ErrTopicAlreadyExists}
		}
		return t, nil
	}

	t, err := newTopic[T](conf, ic.logger.With(log.String("topic", conf.Name)))
	if err != nil {
		return nil, ErrTopic{Topic: conf.Name, Action: ActionCreatingTopic, Err: err}
	}

	ic.topics[conf.Name] = t
	ic.logger.Log(log.LevelDebug, "topic created", log.String("topic", conf.Name), log.Int("capacity", conf.Capacity))
	return t, nil
}

// RemoveTopic closes the topic and removes it from the registry.
func RemoveTopic[T any](ic *Intracom, name string) error {
	if ic == nil {
		return ErrTopic{Topic: name, Action: ActionRemovingTopic, Err: ErrInvalidIntracomNil}
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	existing, ok := ic.topics[name]
	if !ok {
		return ErrTopic{Topic: name, Action: ActionRemovingTopic, Err: ErrTopicNotFound}
	}

	t, ok := existing.(Topic[T])
	if !ok {
		return ErrTopic{Topic: name, Action: ActionRemovingTopic, Err: ErrInvalidTopicType}
	}

	delete(ic.topics, name)
	return t.Close()
}

// LookupTopic returns an existing topic.
func LookupTopic[T any](ic *Intracom, name string) (Topic[T], error) {
	if ic == nil {
		return nil, ErrTopic{Topic: name, Action: ActionCreatingSubscription, Err: ErrInvalidIntracomNil}
	}

	ic.mu.RLock()
	existing, ok := ic.topics[name]
	ic.mu.RUnlock()

	if !ok {
		return nil, ErrTopic{Topic: name, Action: ActionCreatingSubscription, Err: ErrTopicNotFound}
	}

	t, ok := existing.(Topic[T])
	if !ok {
		return nil, ErrTopic{Topic: name, Action: ActionCreatingSubscription, Err: ErrInvalidTopicType}
	}
	return t, nil
}

// Topics lists the registered topic names in sorted order.
func Topics(ic *Intracom) []string {
	if ic == nil {
		return nil
	}

	ic.mu.RLock()
	names := maps.Keys(ic.topics)
	ic.mu.RUnlock()

	slices.Sort(names)
	return names
}

// CreateSubscription will (if set) wait a max timeout for a topic to exist and then proceed to subscribe to that topic.
// If the topic does not exist within the maxWait duration, an error is returned.
// If maxWait is 0, the function will wait indefinitely for the topic to exist.
// If the intracom is closed, an error is returned.
// If the context is canceled, a context error is returned.
func CreateSubscription[T any](ctx context.Context, ic *Intracom, topic string, maxWait time.Duration, conf SubscriberConfig) (*Subscription[T], error) {
	if ic == nil {
		return nil, ErrSubscribe{Topic: topic, Consumer: conf.ConsumerGroup, Action: ActionCreatingSubscription, Err: ErrInvalidIntracomNil}
	}

	t, err := LookupTopic[T](ic, topic)
	if err == nil {
		return t.Subscribe(conf)
	}

	if !errors.Is(err, ErrTopicNotFound) {
		return nil, err
	}

	// the topic doesn't exist yet, poll for it for maxWait duration.
	// maxTimeout stays nil if maxWait is 0 so it never fires.
	var maxTimeout <-chan time.Time
	if maxWait > 0 {
		timer := time.NewTimer(maxWait)
		defer timer.Stop()
		maxTimeout = timer.C
	}

	topicCheck := time.NewTicker(100 * time.Millisecond)
	defer topicCheck.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-maxTimeout:
			return nil, ErrSubscribe{Topic: topic, Consumer: conf.ConsumerGroup, Action: ActionCreatingSubscription, Err: ErrMaxTimeoutReached}
		case <-topicCheck.C:
			if ic.closed.Load() {
				return nil, ErrSubscribe{Topic: topic, Consumer: conf.ConsumerGroup, Action: ActionCreatingSubscription, Err: ErrIntracomClosed}
			}

			t, err := LookupTopic[T](ic, topic)
			if err == nil {
				return t.Subscribe(conf)
			}
			if !errors.Is(err, ErrTopicNotFound) {
				return nil, err
			}
		}
	}
}

// RemoveSubscription removes a consumer group from a topic.
// Normally whoever created the subscription should also be in-charge of removing it.
func RemoveSubscription[T any](ic *Intracom, topic string, consumer string) error {
	t, err := LookupTopic[T](ic, topic)
	if err != nil {
		return err
	}
	return t.Unsubscribe(consumer)
}

// Close closes every topic and empties the registry.
func Close(ic *Intracom) error {
	if ic == nil {
		return ErrIntracom{Action: ActionClosingIntracom, Err: ErrInvalidIntracomNil}
	}

	if ic.closed.Swap(true) {
		return ErrIntracom{Action: ActionClosingIntracom, Err: ErrIntracomClosed}
	}

	ic.mu.Lock()
	for name, t := range ic.topics {
		if err := t.Close(); err != nil {
			ic.logger.Log(log.LevelError, "error closing topic", log.String("topic", name), log.Error("error", err))
		}
	}
	ic.topics = make(map[string]topicCloser)
	ic.mu.Unlock()

	ic.logger.Log(log.LevelDebug, "intracom closed")
	return nil
}
