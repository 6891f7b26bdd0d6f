package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ambitiousfew/rxstream/intracom"
	"github.com/ambitiousfew/rxstream/log"
	"github.com/ambitiousfew/rxstream/stream"
)

type demoOptions struct {
	capacity  int
	messages  int
	consumers int
	delay     time.Duration
}

// consumerStats is what one demo consumer saw.
type consumerStats struct {
	Name     string
	Delay    time.Duration
	Received int
	Lagged   uint64
}

func newDemoCmd(a *app) *cobra.Command {
	opts := demoOptions{}

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a producer against consumers of increasing slowness",
		Long: `Run a producer against consumers of increasing slowness.

Consumer N sleeps N times --delay after every message, so later consumers
fall behind the topic capacity and report lag. For every consumer the
received and lagged counts add up to --messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("capacity") {
				opts.capacity = a.settings.Capacity
			}

			stats, err := runDemo(cmd.Context(), a.logger, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range stats {
				fmt.Fprintf(out, "%s delay=%s received=%d lagged=%d\n", s.Name, s.Delay, s.Received, s.Lagged)
			}
			return nil
		},
	}

	demoCmd.Flags().IntVar(&opts.capacity, "capacity", 4, "topic capacity")
	demoCmd.Flags().IntVar(&opts.messages, "messages", 100, "messages to publish")
	demoCmd.Flags().IntVar(&opts.consumers, "consumers", 3, "number of consumers")
	demoCmd.Flags().DurationVar(&opts.delay, "delay", time.Millisecond, "per-message delay step between consumers")
	return demoCmd
}

func runDemo(ctx context.Context, logger log.Logger, opts demoOptions) ([]consumerStats, error) {
	switch {
	case opts.capacity <= 0:
		return nil, fmt.Errorf("capacity must be positive, got %d", opts.capacity)
	case opts.consumers <= 0:
		return nil, fmt.Errorf("consumers must be positive, got %d", opts.consumers)
	case opts.messages < 0:
		return nil, fmt.Errorf("messages cannot be negative, got %d", opts.messages)
	}

	ic := intracom.New("demo", intracom.WithLogger(logger))
	defer intracom.Close(ic)

	topic, err := intracom.CreateTopic[int](ic, intracom.TopicConfig{Name: "demo", Capacity: opts.capacity})
	if err != nil {
		return nil, err
	}

	stats := make([]consumerStats, opts.consumers)
	subs := make([]*intracom.Subscription[int], opts.consumers)
	for i := range subs {
		stats[i] = consumerStats{
			Name:  fmt.Sprintf("consumer-%d", i),
			Delay: time.Duration(i) * opts.delay,
		}

		sub, err := topic.Subscribe(intracom.SubscriberConfig{ConsumerGroup: stats[i].Name})
		if err != nil {
			return nil, err
		}
		subs[i] = sub
	}

	var wg sync.WaitGroup
	errs := make([]error, opts.consumers)
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub *intracom.Subscription[int]) {
			defer wg.Done()
			defer sub.Close()

			for res, err := range stream.All[stream.Result[int]](ctx, sub) {
				if err != nil {
					errs[i] = err
					return
				}
				if res.IsLagged() {
					stats[i].Lagged += res.Skipped()
					continue
				}
				stats[i].Received++
				if stats[i].Delay > 0 {
					time.Sleep(stats[i].Delay)
				}
			}
		}(i, sub)
	}

	for n := 0; n < opts.messages; n++ {
		if _, err := topic.Publish(n); err != nil {
			return nil, err
		}
	}

	// consumers drain what is retained and then see the end of the stream.
	if err := intracom.RemoveTopic[int](ic, "demo"); err != nil {
		return nil, err
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return stats, err
		}
	}

	for _, s := range stats {
		logger.Log(log.LevelInfo, "consumer finished",
			log.String("consumer", s.Name),
			log.Duration("delay", s.Delay),
			log.Int("received", s.Received),
			log.Uint64("lagged", s.Lagged))
	}
	return stats, nil
}
