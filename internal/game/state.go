package game

import "time"

// State is the durable form of an Instance, as handed to the host's store.
type State struct {
	FirstMover   Party         `json:"first_mover"`
	SecondMover  Party         `json:"second_mover"`
	Commitment   Commitment    `json:"commitment"`
	Wager        int64         `json:"wager"`
	Stake        int64         `json:"stake"`
	FirstMove    Move          `json:"first_move"`
	SecondMove   Move          `json:"second_move"`
	LastActionAt time.Time     `json:"last_action_at"`
	Timeout      time.Duration `json:"timeout"`
	Settlement   *Settlement   `json:"settlement,omitempty"`
}

// State snapshots g.
func (g *Instance) State() State {
	return State{
		FirstMover:   g.firstMover,
		SecondMover:  g.secondMover,
		Commitment:   g.commitment,
		Wager:        g.wager,
		Stake:        g.stake,
		FirstMove:    g.firstMove,
		SecondMove:   g.secondMove,
		LastActionAt: g.lastAction,
		Timeout:      g.timeout,
		Settlement:   g.Settlement(),
	}
}

// Restore rebuilds an Instance from a stored State, rejecting snapshots no
// sequence of transitions could have produced.
func Restore(st State) (*Instance, error) {
	switch {
	case st.FirstMover == "" || st.SecondMover == "" || st.FirstMover == st.SecondMover:
		return nil, ErrCorruptState
	case st.Wager <= 0 || st.Wager > MaxStake || st.Timeout <= 0 || st.Commitment.IsZero():
		return nil, ErrCorruptState
	case st.Stake != 0 && st.Stake != st.Wager:
		return nil, ErrCorruptState
	case st.SecondMove != Null && !st.SecondMove.IsValidNonNull():
		return nil, ErrCorruptState
	case st.FirstMove != Null && !st.FirstMove.IsValidNonNull():
		return nil, ErrCorruptState
	case (st.Stake == 0) != (st.Settlement != nil):
		return nil, ErrCorruptState
	}

	g := &Instance{
		firstMover:  st.FirstMover,
		secondMover: st.SecondMover,
		commitment:  st.Commitment,
		wager:       st.Wager,
		stake:       st.Stake,
		firstMove:   st.FirstMove,
		secondMove:  st.SecondMove,
		lastAction:  st.LastActionAt,
		timeout:     st.Timeout,
	}
	if st.Settlement != nil {
		s := *st.Settlement
		g.settlement = &s
	}
	return g, nil
}

// Phase derives the phase of a stored State without restoring it.
func (st State) Phase() Phase {
	return phaseOf(st.Stake, st.SecondMove)
}
