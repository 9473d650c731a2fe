package ws

import (
	"sync"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rpsls_ws_clients",
		Help: "Open websocket connections.",
	})
	eventsDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpsls_ws_events_total",
		Help: "Game events pushed to websocket clients, by type.",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(connectedClients, eventsDelivered)
}

type clientSet map[*Client]struct{}

// Hub fans game events out to connected parties. A client receives an event
// when its party takes part in the game or when it subscribed to the game.
type Hub struct {
	mu      sync.RWMutex
	byParty map[string]clientSet
	byGame  map[string]clientSet
	games   map[*Client]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		byParty: make(map[string]clientSet),
		byGame:  make(map[string]clientSet),
		games:   make(map[*Client]map[string]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.games[c]; ok {
		return
	}
	add(h.byParty, c.Party, c)
	h.games[c] = make(map[string]struct{})
	connectedClients.Inc()
	logger.Debug("ws client registered", "party", c.Party)
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.games[c]
	if !ok {
		return
	}
	for id := range subs {
		remove(h.byGame, id, c)
	}
	remove(h.byParty, c.Party, c)
	delete(h.games, c)
	connectedClients.Dec()
	logger.Debug("ws client unregistered", "party", c.Party)
}

func (h *Hub) Subscribe(c *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.games[c]
	if !ok {
		return
	}
	subs[gameID] = struct{}{}
	add(h.byGame, gameID, c)
}

func (h *Hub) Unsubscribe(c *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.games[c]; ok {
		delete(subs, gameID)
	}
	remove(h.byGame, gameID, c)
}

// Publish delivers ev to every interested client at most once.
func (h *Hub) Publish(ev domain.GameEvent) {
	msg, err := encode(MsgEvent, ev)
	if err != nil {
		logger.Error("ws encode event failed", "error", err, "game_id", ev.GameID)
		return
	}

	h.mu.RLock()
	targets := make(clientSet)
	for _, p := range ev.Parties {
		for c := range h.byParty[p] {
			targets[c] = struct{}{}
		}
	}
	for c := range h.byGame[ev.GameID] {
		targets[c] = struct{}{}
	}
	h.mu.RUnlock()

	for c := range targets {
		if c.enqueue(msg) {
			eventsDelivered.WithLabelValues(ev.Type).Inc()
		}
	}
}

// Clients returns the number of registered connections.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games)
}

func add(m map[string]clientSet, key string, c *Client) {
	set, ok := m[key]
	if !ok {
		set = make(clientSet)
		m[key] = set
	}
	set[c] = struct{}{}
}

func remove(m map[string]clientSet, key string, c *Client) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(m, key)
	}
}
