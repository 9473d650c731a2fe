package ws

import (
	"encoding/json"
	"sync"
	"time"

	"rpsls_wager/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 64
)

// Client is one websocket connection authenticated as a party.
type Client struct {
	Party string
	Conn  *websocket.Conn
	Send  chan []byte
	Hub   *Hub
	Done  chan struct{}

	closeOnce sync.Once
}

func NewClient(party string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		Party: party,
		Conn:  conn,
		Send:  make(chan []byte, sendBuffer),
		Hub:   hub,
		Done:  make(chan struct{}),
	}
}

// Run registers the client, optionally subscribes it to gameID and blocks
// until the connection drops.
func (c *Client) Run(gameID string) {
	c.Hub.Register(c)
	go c.writePump()

	if msg, err := encode(MsgReady, ReadyPayload{Party: c.Party}); err == nil {
		c.enqueue(msg)
	}
	if gameID != "" {
		c.subscribe(gameID)
	}

	c.readPump()
}

func (c *Client) readPump() {
	defer c.disconnect()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "party", c.Party, "error", err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("malformed message")
		return
	}

	switch msg.Type {
	case MsgPing:
		if out, err := encode(MsgPong, nil); err == nil {
			c.enqueue(out)
		}
	case MsgSubscribe, MsgUnsubscribe:
		var p SubscribePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.GameID == "" {
			c.sendError("game_id required")
			return
		}
		if msg.Type == MsgSubscribe {
			c.subscribe(p.GameID)
		} else {
			c.Hub.Unsubscribe(c, p.GameID)
			if out, err := encode(MsgSubscribed, SubscribedPayload{GameID: p.GameID}); err == nil {
				c.enqueue(out)
			}
		}
	default:
		c.sendError("unknown message type")
	}
}

func (c *Client) subscribe(gameID string) {
	c.Hub.Subscribe(c, gameID)
	if out, err := encode(MsgSubscribed, SubscribedPayload{GameID: gameID, Active: true}); err == nil {
		c.enqueue(out)
	}
}

func (c *Client) sendError(text string) {
	if out, err := encode(MsgError, ErrorPayload{Message: text}); err == nil {
		c.enqueue(out)
	}
}

// enqueue never blocks. A full buffer means the client is not reading and
// the frame is dropped.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.Done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	default:
		logger.Warn("ws send buffer full, dropping frame", "party", c.Party)
		return false
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-c.Done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "party", c.Party, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) disconnect() {
	c.closeOnce.Do(func() {
		c.Hub.Unregister(c)
		close(c.Done)
	})
}
