package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ambitiousfew/rxstream/intracom"
	"github.com/ambitiousfew/rxstream/log"
	"github.com/ambitiousfew/rxstream/pkg/wsfanout"
)

type serveOptions struct {
	addr           string
	capacity       int
	writeTimeout   time.Duration
	allowAnyOrigin bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := serveOptions{}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve topics over HTTP and WebSocket",
		Long: `Serve topics over HTTP and WebSocket.

  GET    /topics          list topics
  GET    /topics/{name}   subscribe (websocket), ?group= picks the consumer group
  POST   /topics/{name}   publish the request body
  DELETE /topics/{name}   close a topic`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.settings.Addr = opts.addr
			}
			if cmd.Flags().Changed("capacity") {
				a.settings.Capacity = opts.capacity
			}
			return runServe(cmd.Context(), a, opts)
		},
	}

	defaults := defaultSettings()
	serveCmd.Flags().StringVar(&opts.addr, "addr", defaults.Addr, "listen address")
	serveCmd.Flags().IntVar(&opts.capacity, "capacity", defaults.Capacity, "capacity of topics created on demand")
	serveCmd.Flags().DurationVar(&opts.writeTimeout, "write-timeout", 10*time.Second, "timeout for each frame written to a subscriber")
	serveCmd.Flags().BoolVar(&opts.allowAnyOrigin, "allow-any-origin", false, "accept websocket upgrades from any origin")
	return serveCmd
}

func runServe(ctx context.Context, a *app, opts serveOptions) error {
	if a.settings.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", a.settings.Capacity)
	}

	logger := a.logger.With(log.String("component", "serve"))
	ic := intracom.New("rxstream", intracom.WithLogger(a.logger))

	fanoutOpts := []wsfanout.Option{
		wsfanout.WithLogger(logger),
		wsfanout.WithCapacity(a.settings.Capacity),
		wsfanout.WithWriteTimeout(opts.writeTimeout),
	}
	if opts.allowAnyOrigin {
		fanoutOpts = append(fanoutOpts, wsfanout.WithOriginCheck(func(*http.Request) bool { return true }))
	}

	lis, err := net.Listen("tcp", a.settings.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.settings.Addr, err)
	}

	srv := &http.Server{
		Handler:           wsfanout.New(ic, fanoutOpts...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	logger.Log(log.LevelNotice, "listening", log.String("addr", lis.Addr().String()), log.Int("capacity", a.settings.Capacity))

	select {
	case err := <-errCh:
		_ = intracom.Close(ic)
		return err
	case <-ctx.Done():
	}

	logger.Log(log.LevelNotice, "shutting down")

	// closing the topics ends every subscription with a close frame.
	if err := intracom.Close(ic); err != nil {
		logger.Log(log.LevelError, "error closing topics", log.Error("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
