package domain

import "time"

// Game event types pushed to subscribers.
const (
	EventGameCreated      = "game_created"
	EventGameJoined       = "game_joined"
	EventGameSettled      = "game_settled"
	EventTimeoutClaimable = "timeout_claimable"
)

// GameEvent is what the host broadcasts after a game changes.
type GameEvent struct {
	Type     string                 `json:"type"`
	GameID   string                 `json:"game_id"`
	Phase    string                 `json:"phase"`
	Parties  []string               `json:"-"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Deadline time.Time              `json:"deadline"`
	At       time.Time              `json:"at"`
}
