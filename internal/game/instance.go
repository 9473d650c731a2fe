package game

import (
	"math"
	"time"
)

// DefaultTimeout is the interval after which a stalled counterpart can be
// claimed against.
const DefaultTimeout = 5 * time.Minute

// MaxStake is the largest stake whose pot (twice the stake) fits in an int64.
const MaxStake = math.MaxInt64 / 2

// Party identifies a player. The core only compares parties for equality.
type Party string

// Phase is derived from the instance fields, never stored.
type Phase uint8

const (
	AwaitingSecondMove Phase = iota
	AwaitingReveal
	Settled
)

func (p Phase) String() string {
	switch p {
	case AwaitingSecondMove:
		return "awaiting_second_move"
	case AwaitingReveal:
		return "awaiting_reveal"
	default:
		return "settled"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// InstructionKind is a settlement ledger operation.
type InstructionKind string

const (
	Escrow InstructionKind = "escrow"
	Payout InstructionKind = "payout"
	Refund InstructionKind = "refund"
)

// Instruction is a fund movement the host must execute atomically with the
// transition that produced it.
type Instruction struct {
	Kind   InstructionKind `json:"kind"`
	Party  Party           `json:"party"`
	Amount int64           `json:"amount"`
}

// SettlementPath records which transition disbursed the pot.
type SettlementPath string

const (
	PathReveal             SettlementPath = "reveal"
	PathSecondMoverTimeout SettlementPath = "second_mover_timeout"
	PathFirstMoverTimeout  SettlementPath = "first_mover_timeout"
)

// Settlement describes how a finished game was paid out.
type Settlement struct {
	Path    SettlementPath `json:"path"`
	Outcome Outcome        `json:"outcome"`
	Winner  Party          `json:"winner,omitempty"`
	At      time.Time      `json:"at"`
}

// Instance is one wagered round. It performs no locking: the host must
// serialize transitions on the same instance.
type Instance struct {
	firstMover  Party
	secondMover Party
	commitment  Commitment
	wager       int64
	stake       int64
	firstMove   Move
	secondMove  Move
	lastAction  time.Time
	timeout     time.Duration
	settlement  *Settlement
}

// Create opens a round for firstMover. A zero timeout selects DefaultTimeout.
// The returned instruction escrows the first mover's stake.
func Create(firstMover Party, c Commitment, stake int64, timeout time.Duration, secondMover Party, now time.Time) (*Instance, []Instruction, error) {
	if firstMover == "" || secondMover == "" {
		return nil, nil, ErrInvalidParty
	}
	if firstMover == secondMover {
		return nil, nil, ErrSameParty
	}
	if stake <= 0 || stake > MaxStake {
		return nil, nil, ErrInvalidStake
	}
	if c.IsZero() {
		return nil, nil, ErrInvalidCommit
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		return nil, nil, ErrInvalidTimeout
	}

	g := &Instance{
		firstMover:  firstMover,
		secondMover: secondMover,
		commitment:  c,
		wager:       stake,
		stake:       stake,
		lastAction:  now,
		timeout:     timeout,
	}
	return g, []Instruction{{Kind: Escrow, Party: firstMover, Amount: stake}}, nil
}

func (g *Instance) Phase() Phase {
	return phaseOf(g.stake, g.secondMove)
}

func phaseOf(stake int64, secondMove Move) Phase {
	switch {
	case stake == 0:
		return Settled
	case secondMove == Null:
		return AwaitingSecondMove
	default:
		return AwaitingReveal
	}
}

func (g *Instance) FirstMover() Party              { return g.firstMover }
func (g *Instance) SecondMover() Party             { return g.secondMover }
func (g *Instance) Commitment() Commitment         { return g.commitment }
func (g *Instance) Stake() int64                   { return g.stake }
func (g *Instance) Wager() int64                   { return g.wager }
func (g *Instance) SecondMove() Move               { return g.secondMove }
func (g *Instance) FirstMove() Move                { return g.firstMove }
func (g *Instance) LastActionAt() time.Time        { return g.lastAction }
func (g *Instance) TimeoutInterval() time.Duration { return g.timeout }

// Settlement is nil until the game is settled.
func (g *Instance) Settlement() *Settlement {
	if g.settlement == nil {
		return nil
	}
	s := *g.settlement
	return &s
}

// Escrowed is the amount currently held for this game.
func (g *Instance) Escrowed() int64 {
	switch g.Phase() {
	case AwaitingSecondMove:
		return g.stake
	case AwaitingReveal:
		return 2 * g.stake
	default:
		return 0
	}
}

// Deadline is the instant after which a timeout claim becomes possible.
func (g *Instance) Deadline() time.Time {
	return g.lastAction.Add(g.timeout)
}

// TimeoutElapsed reports whether strictly more than the timeout interval has
// passed since the last state-advancing call.
func (g *Instance) TimeoutElapsed(now time.Time) bool {
	return now.Sub(g.lastAction) > g.timeout
}

// Claimant returns the party entitled to a timeout claim at now, if any.
func (g *Instance) Claimant(now time.Time) (Party, bool) {
	if !g.TimeoutElapsed(now) {
		return "", false
	}
	switch g.Phase() {
	case AwaitingSecondMove:
		return g.firstMover, true
	case AwaitingReveal:
		return g.secondMover, true
	default:
		return "", false
	}
}

// Join records the second mover's move and escrows their matching stake.
func (g *Instance) Join(caller Party, m Move, paidStake int64, now time.Time) ([]Instruction, error) {
	if g.Phase() == Settled {
		return nil, ErrInvalidPhase
	}
	if caller != g.secondMover {
		return nil, ErrWrongParty
	}
	if g.secondMove != Null {
		return nil, ErrAlreadyPlayed
	}
	if paidStake != g.stake {
		return nil, ErrStakeMismatch
	}
	if !m.IsValidNonNull() {
		return nil, ErrInvalidMove
	}

	g.secondMove = m
	g.lastAction = now
	return []Instruction{{Kind: Escrow, Party: g.secondMover, Amount: g.stake}}, nil
}

// Reveal opens the first mover's commitment and settles the round.
func (g *Instance) Reveal(caller Party, m Move, s Secret, now time.Time) (Outcome, []Instruction, error) {
	if g.Phase() != AwaitingReveal {
		return Tie, nil, ErrInvalidPhase
	}
	if caller != g.firstMover {
		return Tie, nil, ErrWrongParty
	}
	if !m.IsValidNonNull() {
		return Tie, nil, ErrInvalidMove
	}
	if !Verify(m, s, g.commitment) {
		return Tie, nil, ErrCommitmentMismatch
	}

	outcome := Beats(m, g.secondMove)
	pot := 2 * g.stake
	var (
		instr  []Instruction
		winner Party
	)
	switch outcome {
	case FirstWins:
		winner = g.firstMover
		instr = []Instruction{{Kind: Payout, Party: g.firstMover, Amount: pot}}
	case SecondWins:
		winner = g.secondMover
		instr = []Instruction{{Kind: Payout, Party: g.secondMover, Amount: pot}}
	default:
		instr = []Instruction{
			{Kind: Refund, Party: g.firstMover, Amount: g.stake},
			{Kind: Refund, Party: g.secondMover, Amount: g.stake},
		}
	}

	g.firstMove = m
	g.settle(PathReveal, outcome, winner, now)
	return outcome, instr, nil
}

// SecondMoverTimeoutClaim pays the whole pot to the second mover when the
// first mover withheld their reveal past the deadline.
func (g *Instance) SecondMoverTimeoutClaim(caller Party, now time.Time) ([]Instruction, error) {
	if g.Phase() != AwaitingReveal {
		return nil, ErrInvalidPhase
	}
	if caller != g.secondMover {
		return nil, ErrWrongParty
	}
	if !g.TimeoutElapsed(now) {
		return nil, ErrTimeoutNotElapsed
	}

	instr := []Instruction{{Kind: Payout, Party: g.secondMover, Amount: 2 * g.stake}}
	g.settle(PathSecondMoverTimeout, SecondWins, g.secondMover, now)
	return instr, nil
}

// FirstMoverTimeoutClaim returns the first mover's own stake when nobody joined
// before the deadline.
func (g *Instance) FirstMoverTimeoutClaim(caller Party, now time.Time) ([]Instruction, error) {
	if g.Phase() != AwaitingSecondMove {
		return nil, ErrInvalidPhase
	}
	if caller != g.firstMover {
		return nil, ErrWrongParty
	}
	if !g.TimeoutElapsed(now) {
		return nil, ErrTimeoutNotElapsed
	}

	instr := []Instruction{{Kind: Refund, Party: g.firstMover, Amount: g.stake}}
	g.settle(PathFirstMoverTimeout, Tie, "", now)
	return instr, nil
}

func (g *Instance) settle(path SettlementPath, o Outcome, winner Party, now time.Time) {
	g.stake = 0
	g.settlement = &Settlement{Path: path, Outcome: o, Winner: winner, At: now}
}
