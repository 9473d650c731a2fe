package service

import (
	"time"

	"rpsls_wager/internal/game"
	"rpsls_wager/internal/store"
)

// GameView is the public projection of a stored game at a given instant.
// The first move stays hidden until a reveal settles the round.
type GameView struct {
	ID             string           `json:"id"`
	FirstMover     game.Party       `json:"first_mover"`
	SecondMover    game.Party       `json:"second_mover"`
	Commitment     game.Commitment  `json:"commitment"`
	Wager          int64            `json:"wager"`
	Stake          int64            `json:"stake"`
	Escrowed       int64            `json:"escrowed"`
	Phase          game.Phase       `json:"phase"`
	FirstMove      game.Move        `json:"first_move,omitempty"`
	SecondMove     game.Move        `json:"second_move"`
	LastActionAt   time.Time        `json:"last_action_at"`
	TimeoutSeconds int64            `json:"timeout_seconds"`
	Deadline       time.Time        `json:"deadline"`
	Claimable      bool             `json:"claimable"`
	Claimant       game.Party       `json:"claimant,omitempty"`
	Settlement     *game.Settlement `json:"settlement,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Parties returns both participants.
func (v *GameView) Parties() []string {
	return []string{string(v.FirstMover), string(v.SecondMover)}
}

func newView(g *store.Game, now time.Time) (*GameView, error) {
	inst, err := game.Restore(g.State)
	if err != nil {
		return nil, err
	}
	claimant, claimable := inst.Claimant(now)
	return &GameView{
		ID:             g.ID,
		FirstMover:     inst.FirstMover(),
		SecondMover:    inst.SecondMover(),
		Commitment:     inst.Commitment(),
		Wager:          inst.Wager(),
		Stake:          inst.Stake(),
		Escrowed:       g.Escrowed,
		Phase:          inst.Phase(),
		FirstMove:      inst.FirstMove(),
		SecondMove:     inst.SecondMove(),
		LastActionAt:   inst.LastActionAt(),
		TimeoutSeconds: int64(inst.TimeoutInterval() / time.Second),
		Deadline:       inst.Deadline(),
		Claimable:      claimable,
		Claimant:       claimant,
		Settlement:     inst.Settlement(),
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}, nil
}
