package wsfanout

import (
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/ambitiousfew/rxstream/stream"
)

// Control is a JSON frame the server sends next to the plain text payloads.
type Control struct {
	Type    string `json:"type"`
	Skipped uint64 `json:"skipped,omitempty"`
}

const controlLagged = "lagged"

// frameFor maps one stream result to a websocket message.
func frameFor(res stream.Result[string]) (int, []byte, error) {
	if res.IsLagged() {
		b, err := json.Marshal(Control{Type: controlLagged, Skipped: res.Skipped()})
		return websocket.TextMessage, b, err
	}

	v, err := res.Value()
	return websocket.TextMessage, []byte(v), err
}
