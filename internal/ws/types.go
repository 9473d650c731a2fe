package ws

import "encoding/json"

const (
	// client - server
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgPing        = "ping"

	// server - client
	MsgReady      = "ready"
	MsgPong       = "pong"
	MsgSubscribed = "subscribed"
	MsgEvent      = "event"
	MsgError      = "error"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encode(typ string, payload any) ([]byte, error) {
	msg := Message{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}
