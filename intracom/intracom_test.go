package intracom

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ambitiousfew/rxstream/log"
	"github.com/ambitiousfew/rxstream/stream"
)

func TestIntracom_CreateTopic(t *testing.T) {
	ic := New("test-intracom")
	defer Close(ic)

	topic, err := CreateTopic[bool](ic, TopicConfig{Name: "a", ErrIfExists: true})
	if err != nil {
		t.Fatalf("error creating topic: %v", err)
	}

	again, err := CreateTopic[bool](ic, TopicConfig{Name: "a", ErrIfExists: true})
	if !errors.Is(err, ErrTopicAlreadyExists) {
		t.Fatalf("expected ErrTopicAlreadyExists, got %v", err)
	}
	if again != topic {
		t.Fatalf("expected the existing topic to be returned")
	}

	again, err = CreateTopic[bool](ic, TopicConfig{Name: "a"})
	if err != nil || again != topic {
		t.Fatalf("expected existing topic without error, got %v", err)
	}

	if _, err := CreateTopic[string](ic, TopicConfig{Name: "a"}); !errors.Is(err, ErrInvalidTopicType) {
		t.Fatalf("expected ErrInvalidTopicType, got %v", err)
	}

	if _, err := CreateTopic[string](ic, TopicConfig{}); !errors.Is(err, ErrInvalidTopicName) {
		t.Fatalf("expected ErrInvalidTopicName, got %v", err)
	}

	if _, err := CreateTopic[string](nil, TopicConfig{Name: "x"}); !errors.Is(err, ErrInvalidIntracomNil) {
		t.Fatalf("expected ErrInvalidIntracomNil, got %v", err)
	}
}

func TestIntracom_Topics(t *testing.T) {
	ic := New("test-intracom")
	defer Close(ic)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := CreateTopic[int](ic, TopicConfig{Name: name}); err != nil {
			t.Fatalf("error creating topic %s: %v", name, err)
		}
	}

	if got := Topics(ic); !slices.Equal(got, []string{"alpha", "mid", "zeta"}) {
		t.Fatalf("expected sorted topics, got %v", got)
	}

	if err := RemoveTopic[int](ic, "mid"); err != nil {
		t.Fatalf("error removing topic: %v", err)
	}

	if err := RemoveTopic[int](ic, "mid"); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}

	if err := RemoveTopic[string](ic, "alpha"); !errors.Is(err, ErrInvalidTopicType) {
		t.Fatalf("expected ErrInvalidTopicType, got %v", err)
	}

	if got := Topics(ic); !slices.Equal(got, []string{"alpha", "zeta"}) {
		t.Fatalf("expected [alpha zeta], got %v", got)
	}
}

func TestIntracom_CreateSubscriptionWaitsForTopic(t *testing.T) {
	ic := New("test-intracom")
	defer Close(ic)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		time.Sleep(150 * time.Millisecond)
		_, _ = CreateTopic[string](ic, TopicConfig{Name: "late", Capacity: 4})
	}()

	sub, err := CreateSubscription[string](ctx, ic, "late", time.Second, SubscriberConfig{ConsumerGroup: "waiter"})
	if err != nil {
		t.Fatalf("error creating subscription: %v", err)
	}

	topic, err := LookupTopic[string](ic, "late")
	if err != nil {
		t.Fatalf("error looking up topic: %v", err)
	}

	if _, err := topic.Publish("ping"); err != nil {
		t.Fatalf("error publishing: %v", err)
	}

	res, err := stream.Next[stream.Result[string]](ctx, sub)
	if err != nil {
		t.Fatalf("error receiving: %v", err)
	}
	if v, _ := res.Value(); v != "ping" {
		t.Fatalf("expected ping, got %q", v)
	}

	if err := RemoveSubscription[string](ic, "late", "waiter"); err != nil {
		t.Fatalf("error removing subscription: %v", err)
	}
}

func TestIntracom_CreateSubscriptionMaxTimeout(t *testing.T) {
	ic := New("test-intracom")
	defer Close(ic)

	_, err := CreateSubscription[string](context.Background(), ic, "never", 150*time.Millisecond, SubscriberConfig{})
	if !errors.Is(err, ErrMaxTimeoutReached) {
		t.Fatalf("expected ErrMaxTimeoutReached, got %v", err)
	}
}

func TestIntracom_CreateSubscriptionContextCancelled(t *testing.T) {
	ic := New("test-intracom")
	defer Close(ic)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := CreateSubscription[string](ctx, ic, "never", 0, SubscriberConfig{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestIntracom_Close(t *testing.T) {
	ic := New("test-intracom")

	topic, err := CreateTopic[int](ic, TopicConfig{Name: "a"})
	if err != nil {
		t.Fatalf("error creating topic: %v", err)
	}

	sub, err := topic.Subscribe(SubscriberConfig{ConsumerGroup: "g"})
	if err != nil {
		t.Fatalf("error subscribing: %v", err)
	}

	if err := Close(ic); err != nil {
		t.Fatalf("error closing intracom: %v", err)
	}

	if err := Close(ic); !errors.Is(err, ErrIntracomClosed) {
		t.Fatalf("expected ErrIntracomClosed, got %v", err)
	}

	if !sub.PollNext(nil).IsDone() {
		t.Fatalf("expected subscription to be done after intracom close")
	}

	if _, err := CreateTopic[int](ic, TopicConfig{Name: "b"}); !errors.Is(err, ErrIntracomClosed) {
		t.Fatalf("expected ErrIntracomClosed, got %v", err)
	}

	if len(Topics(ic)) != 0 {
		t.Fatalf("expected no topics after close, got %v", Topics(ic))
	}
}

func TestIntracom_LogsLaggingSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(log.LevelWarning, log.NewHandler(log.WithWriters(&buf, &buf)))

	ic := New("test-intracom", WithLogger(logger))
	defer Close(ic)

	topic, err := CreateTopic[int](ic, TopicConfig{Name: "a", Capacity: 1})
	if err != nil {
		t.Fatalf("error creating topic: %v", err)
	}

	sub, err := topic.Subscribe(SubscriberConfig{ConsumerGroup: "slow"})
	if err != nil {
		t.Fatalf("error subscribing: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, _ = topic.Publish(i)
	}
	sub.PollNext(nil)

	out := buf.String()
	for _, want := range []string{"subscriber lagging", "intracom=test-intracom", "topic=a", "consumer=slow", "skipped=2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got %q", want, out)
		}
	}
}

func TestIntracom_ConcurrentPublishers(t *testing.T) {
	ic := New("test-intracom")
	defer Close(ic)

	topic, err := CreateTopic[int](ic, TopicConfig{Name: "fan-in", Capacity: 1024})
	if err != nil {
		t.Fatalf("error creating topic: %v", err)
	}

	sub, err := topic.Subscribe(SubscriberConfig{ConsumerGroup: "all"})
	if err != nil {
		t.Fatalf("error subscribing: %v", err)
	}

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := topic.Publish(i); err != nil {
					t.Errorf("error publishing: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if err := topic.Close(); err != nil {
		t.Fatalf("error closing topic: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := stream.Collect[stream.Result[int]](ctx, sub, 0)
	if err != nil {
		t.Fatalf("error draining: %v", err)
	}
	if len(got) != 400 {
		t.Fatalf("expected 400 values, got %d", len(got))
	}
}

func TestIntracom_CreateTopicRacingClose(t *testing.T) {
	for i := 0; i < 100; i++ {
		ic := New("test-intracom")

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created []Topic[int]
		)

		for n := 0; n < 8; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				topic, err := CreateTopic[int](ic, TopicConfig{Name: "topic-" + strconv.Itoa(n)})
				if err != nil {
					if !errors.Is(err, ErrIntracomClosed) {
						t.Errorf("unexpected error creating topic: %v", err)
					}
					return
				}
				mu.Lock()
				created = append(created, topic)
				mu.Unlock()
			}(n)
		}

		if err := Close(ic); err != nil {
			t.Fatalf("error closing intracom: %v", err)
		}
		wg.Wait()

		// every topic handed out must have been closed by Close.
		for _, topic := range created {
			if _, err := topic.Publish(1); !errors.Is(err, ErrTopicClosed) {
				t.Fatalf("iteration %d: topic %s outlived Close, publish returned %v", i, topic.Name(), err)
			}
		}
	}
}
