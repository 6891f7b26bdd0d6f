// Package wsfanout serves intracom topics over WebSocket.
//
// Every connection gets its own consumer group on the topic, so a slow client
// lags on its own and is told how many messages it missed instead of slowing
// the publishers down.
package wsfanout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ambitiousfew/rxstream/intracom"
	"github.com/ambitiousfew/rxstream/log"
	"github.com/ambitiousfew/rxstream/stream"
)

const (
	defaultCapacity        = intracom.DefaultTopicCapacity
	defaultWriteTimeout    = 10 * time.Second
	defaultMaxPublishBytes = 1 << 20
)

// Server publishes to and streams intracom topics of strings.
//
//	GET    /topics          list topics
//	GET    /topics/{name}   websocket subscription, ?group= picks the consumer group
//	POST   /topics/{name}   publish the request body
//	DELETE /topics/{name}   close the topic, subscribers get a close frame
type Server struct {
	ic              *intracom.Intracom
	mux             *http.ServeMux
	upgrader        websocket.Upgrader
	capacity        int
	writeTimeout    time.Duration
	maxPublishBytes int64
	logger          log.Logger
}

func New(ic *intracom.Intracom, opts ...Option) *Server {
	s := &Server{
		ic:  ic,
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		capacity:        defaultCapacity,
		writeTimeout:    defaultWriteTimeout,
		maxPublishBytes: defaultMaxPublishBytes,
		logger:          log.Noop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /topics", s.handleList)
	s.mux.HandleFunc("GET /topics/{name}", s.handleSubscribe)
	s.mux.HandleFunc("POST /topics/{name}", s.handlePublish)
	s.mux.HandleFunc("DELETE /topics/{name}", s.handleRemove)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type publishResponse struct {
	Topic     string `json:"topic"`
	Receivers int    `json:"receivers"`
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	topics := intracom.Topics(s.ic)
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxPublishBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	topic, err := s.topic(name)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	n, err := topic.Publish(string(body))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, publishResponse{Topic: name, Receivers: n})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := intracom.RemoveTopic[string](s.ic, name); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	s.logger.Log(log.LevelInfo, "topic removed", log.String("topic", name))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	topic, err := s.topic(name)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	connID := uuid.NewString()
	group := r.URL.Query().Get("group")
	if group == "" {
		group = connID
	}

	// a subscription is polled by one connection only.
	sub, err := topic.Subscribe(intracom.SubscriberConfig{ConsumerGroup: group, ErrIfExists: true})
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer sub.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied to the client.
		s.logger.Log(log.LevelDebug, "websocket upgrade failed", log.String("topic", name), log.Error("error", err))
		return
	}
	defer conn.Close()

	logger := s.logger.With(log.String("topic", name), log.String("consumer", group), log.String("conn", connID))
	logger.Log(log.LevelInfo, "subscriber connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.readPump(ctx, cancel, conn)

	err = s.relay(ctx, conn, sub)
	switch {
	case err == nil:
		logger.Log(log.LevelInfo, "subscriber disconnected", log.Uint64("lagged", sub.Lagged()))
	case errors.Is(err, context.Canceled):
		logger.Log(log.LevelInfo, "subscriber went away", log.Uint64("lagged", sub.Lagged()))
	default:
		logger.Log(log.LevelError, "subscriber connection failed", log.Error("error", err))
	}
}

// relay writes the subscription to conn until the topic ends or ctx is done.
func (s *Server) relay(ctx context.Context, conn *websocket.Conn, sub stream.Stream[stream.Result[string]]) error {
	for {
		res, err := stream.Next(ctx, sub)
		if errors.Is(err, stream.ErrDone) {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "topic closed")
			return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeTimeout))
		}
		if err != nil {
			return err
		}

		kind, payload, err := frameFor(res)
		if err != nil {
			return err
		}

		if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return err
		}
		if err := conn.WriteMessage(kind, payload); err != nil {
			return err
		}
	}
}

// readPump discards client frames and cancels the relay once the client is gone.
// It also keeps ping and close control frames flowing.
func (s *Server) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	for ctx.Err() == nil {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) topic(name string) (intracom.Topic[string], error) {
	return intracom.CreateTopic[string](s.ic, intracom.TopicConfig{Name: name, Capacity: s.capacity})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, intracom.ErrTopicNotFound), errors.Is(err, intracom.ErrConsumerNotFound):
		return http.StatusNotFound
	case errors.Is(err, intracom.ErrInvalidTopicName):
		return http.StatusBadRequest
	case errors.Is(err, intracom.ErrConsumerAlreadyExists), errors.Is(err, intracom.ErrInvalidTopicType):
		return http.StatusConflict
	case errors.Is(err, intracom.ErrTopicClosed), errors.Is(err, intracom.ErrIntracomClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
