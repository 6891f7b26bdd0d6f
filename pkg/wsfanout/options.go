package wsfanout

import (
	"net/http"
	"time"

	"github.com/ambitiousfew/rxstream/log"
)

type Option func(*Server)

// WithCapacity sets the capacity of topics the server creates on demand.
func WithCapacity(capacity int) Option {
	return func(s *Server) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

func WithLogger(logger log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOriginCheck replaces the upgrader's same-origin check.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithWriteTimeout bounds every frame written to a subscriber.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.writeTimeout = timeout
		}
	}
}

// WithMaxPublishBytes limits the size of a published body.
func WithMaxPublishBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPublishBytes = n
		}
	}
}
