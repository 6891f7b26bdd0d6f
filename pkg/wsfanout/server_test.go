package wsfanout_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambitiousfew/rxstream/intracom"
	"github.com/ambitiousfew/rxstream/pkg/wsfanout"
)

func newServer(t *testing.T, opts ...wsfanout.Option) (*intracom.Intracom, *httptest.Server) {
	t.Helper()

	ic := intracom.New("wsfanout-test")
	srv := httptest.NewServer(wsfanout.New(ic, opts...))
	t.Cleanup(func() {
		srv.Close()
		_ = intracom.Close(ic)
	})
	return ic, srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func publish(t *testing.T, srv *httptest.Server, topic, body string) int {
	t.Helper()

	resp, err := http.Post(srv.URL+"/topics/"+topic, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Topic     string `json:"topic"`
		Receivers int    `json:"receivers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, topic, out.Topic)
	return out.Receivers
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	kind, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	return string(payload)
}

func TestServer_PublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	_, srv := newServer(t)
	assert.Equal(t, 0, publish(t, srv, "news", "nobody listens"))
}

func TestServer_FanOut(t *testing.T) {
	t.Parallel()

	_, srv := newServer(t)

	first := dial(t, srv, "/topics/news")
	second := dial(t, srv, "/topics/news")

	for _, msg := range []string{"one", "two", "three"} {
		assert.Equal(t, 2, publish(t, srv, "news", msg))
	}

	for _, conn := range []*websocket.Conn{first, second} {
		for _, want := range []string{"one", "two", "three"} {
			assert.Equal(t, want, readText(t, conn))
		}
	}
}

func TestServer_DuplicateGroupConflicts(t *testing.T) {
	t.Parallel()

	_, srv := newServer(t)
	dial(t, srv, "/topics/news?group=billing")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/topics/news?group=billing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_RemoveTopicClosesSubscribers(t *testing.T) {
	t.Parallel()

	_, srv := newServer(t)
	conn := dial(t, srv, "/topics/alerts")
	publish(t, srv, "alerts", "last")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/topics/alerts", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, "last", readText(t, conn))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "expected normal close, got %v", err)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListTopics(t *testing.T) {
	t.Parallel()

	_, srv := newServer(t)
	publish(t, srv, "b", "x")
	publish(t, srv, "a", "x")

	resp, err := http.Get(srv.URL + "/topics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var topics []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&topics))
	assert.Equal(t, []string{"a", "b"}, topics)
}

func TestServer_TopicTypeConflict(t *testing.T) {
	t.Parallel()

	ic, srv := newServer(t)
	_, err := intracom.CreateTopic[int](ic, intracom.TopicConfig{Name: "numbers"})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/topics/numbers", "text/plain", strings.NewReader("1"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_PublishTooLarge(t *testing.T) {
	t.Parallel()

	_, srv := newServer(t, wsfanout.WithMaxPublishBytes(4))

	resp, err := http.Post(srv.URL+"/topics/news", "text/plain", strings.NewReader("too large"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestServer_ClientDisconnectUnsubscribes(t *testing.T) {
	t.Parallel()

	ic, srv := newServer(t)
	conn := dial(t, srv, "/topics/news?group=reader")

	topic, err := intracom.LookupTopic[string](ic, "news")
	require.NoError(t, err)
	require.Equal(t, []string{"reader"}, topic.Subscribers())

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return len(topic.Subscribers()) == 0
	}, 5*time.Second, 10*time.Millisecond)
}
