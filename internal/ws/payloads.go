package ws

// client → server
type SubscribePayload struct {
	GameID string `json:"game_id"`
}

// server → client
type ReadyPayload struct {
	Party string `json:"party"`
}

type SubscribedPayload struct {
	GameID string `json:"game_id"`
	Active bool   `json:"active"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
