package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineClient(hub *Hub, party string) *Client {
	c := NewClient(party, nil, hub)
	hub.Register(c)
	return c
}

func drain(c *Client) []Message {
	var out []Message
	for {
		select {
		case raw := <-c.Send:
			var m Message
			if err := json.Unmarshal(raw, &m); err == nil {
				out = append(out, m)
			}
		default:
			return out
		}
	}
}

func TestHub_PublishRoutesToPartiesAndSubscribers(t *testing.T) {
	hub := NewHub()
	alice := offlineClient(hub, "alice")
	bob := offlineClient(hub, "bob")
	eve := offlineClient(hub, "eve")
	watcher := offlineClient(hub, "watcher")
	hub.Subscribe(watcher, "g1")
	// A subscribed party must still get the event only once.
	hub.Subscribe(alice, "g1")

	hub.Publish(domain.GameEvent{Type: domain.EventGameJoined, GameID: "g1", Parties: []string{"alice", "bob"}})

	assert.Len(t, drain(alice), 1)
	assert.Len(t, drain(bob), 1)
	assert.Len(t, drain(watcher), 1)
	assert.Empty(t, drain(eve))
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	watcher := offlineClient(hub, "watcher")
	hub.Subscribe(watcher, "g1")
	require.Equal(t, 1, hub.Clients())

	hub.Unsubscribe(watcher, "g1")
	hub.Publish(domain.GameEvent{Type: domain.EventGameSettled, GameID: "g1", Parties: []string{"alice", "bob"}})
	assert.Empty(t, drain(watcher))

	hub.Subscribe(watcher, "g1")
	hub.Unregister(watcher)
	hub.Unregister(watcher)
	assert.Equal(t, 0, hub.Clients())
	hub.Publish(domain.GameEvent{Type: domain.EventGameSettled, GameID: "g1"})
	assert.Empty(t, drain(watcher))
}

func TestHub_FullBufferDropsFrame(t *testing.T) {
	hub := NewHub()
	slow := offlineClient(hub, "slow")
	for i := 0; i < sendBuffer+5; i++ {
		hub.Publish(domain.GameEvent{Type: domain.EventTimeoutClaimable, GameID: "g", Parties: []string{"slow"}})
	}
	assert.Len(t, drain(slow), sendBuffer)
}

func TestHandleWS_DeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, service.InitJWT("ws-test-secret"))
	token, err := service.GenerateJWT("bob", time.Minute)
	require.NoError(t, err)

	hub := NewHub()
	r := gin.New()
	r.GET("/ws", HandleWS(hub, ""))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token + "&game=g7"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m Message
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}

	assert.Equal(t, MsgReady, read().Type)
	assert.Equal(t, MsgSubscribed, read().Type)

	hub.Publish(domain.GameEvent{Type: domain.EventGameCreated, GameID: "g7", Parties: []string{"alice", "bob"}})
	m := read()
	require.Equal(t, MsgEvent, m.Type)
	var ev domain.GameEvent
	require.NoError(t, json.Unmarshal(m.Payload, &ev))
	assert.Equal(t, domain.EventGameCreated, ev.Type)
	assert.Equal(t, "g7", ev.GameID)
	assert.Nil(t, ev.Parties)

	require.NoError(t, conn.WriteJSON(Message{Type: MsgPing}))
	assert.Equal(t, MsgPong, read().Type)

	require.NoError(t, conn.WriteJSON(Message{Type: "bogus"}))
	assert.Equal(t, MsgError, read().Type)
}

func TestHandleWS_RequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, service.InitJWT("ws-test-secret"))

	r := gin.New()
	r.GET("/ws", HandleWS(NewHub(), ""))

	for _, target := range []string{"/ws", "/ws?token=nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
		assert.Equal(t, 401, w.Code, target)
	}
}
