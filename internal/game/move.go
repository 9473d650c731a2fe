package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Move is one of the five gestures. The numeric values are part of the
// commitment preimage and must not change.
type Move uint8

const (
	Null Move = iota
	Rock
	Paper
	Scissors
	Spock
	Lizard
)

// Moves lists every playable move in code order.
var Moves = []Move{Rock, Paper, Scissors, Spock, Lizard}

var moveNames = [...]string{
	Null:     "null",
	Rock:     "rock",
	Paper:    "paper",
	Scissors: "scissors",
	Spock:    "spock",
	Lizard:   "lizard",
}

// dominance[m] holds the two moves m beats.
var dominance = [...][2]Move{
	Rock:     {Scissors, Lizard},
	Paper:    {Rock, Spock},
	Scissors: {Paper, Lizard},
	Spock:    {Rock, Scissors},
	Lizard:   {Paper, Spock},
}

// Outcome is the result of a round from the first mover's point of view.
type Outcome uint8

const (
	Tie Outcome = iota
	FirstWins
	SecondWins
)

func (o Outcome) String() string {
	switch o {
	case FirstWins:
		return "first_wins"
	case SecondWins:
		return "second_wins"
	default:
		return "tie"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "first_wins":
		*o = FirstWins
	case "second_wins":
		*o = SecondWins
	case "tie":
		*o = Tie
	default:
		return fmt.Errorf("game: unknown outcome %q", b)
	}
	return nil
}

// IsValidNonNull reports whether m is one of the five playable moves.
func (m Move) IsValidNonNull() bool {
	return m >= Rock && m <= Lizard
}

// Code returns the one-byte encoding used in the commitment preimage.
func (m Move) Code() uint8 {
	return uint8(m)
}

func (m Move) String() string {
	if int(m) < len(moveNames) {
		return moveNames[m]
	}
	return "move(" + strconv.Itoa(int(m)) + ")"
}

// Defeats returns the two moves m beats. It is empty for Null or out of range moves.
func (m Move) Defeats() []Move {
	if !m.IsValidNonNull() {
		return nil
	}
	d := dominance[m]
	return []Move{d[0], d[1]}
}

// Beats decides a round between a (first mover) and b (second mover).
// It panics if either move is Null or out of range; validate input with
// IsValidNonNull or MoveFromCode first.
func Beats(a, b Move) Outcome {
	if !a.IsValidNonNull() || !b.IsValidNonNull() {
		panic(fmt.Sprintf("game: Beats called with %v vs %v", a, b))
	}
	if a == b {
		return Tie
	}
	if d := dominance[a]; d[0] == b || d[1] == b {
		return FirstWins
	}
	return SecondWins
}

// MoveFromCode converts a wire code into a playable move.
func MoveFromCode(code uint8) (Move, error) {
	m := Move(code)
	if !m.IsValidNonNull() {
		return Null, ErrInvalidMove
	}
	return m, nil
}

// ParseMove accepts a move name (case-insensitive) or its numeric code 1..5.
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		return MoveFromCode(uint8(n))
	}
	for _, m := range Moves {
		if moveNames[m] == s {
			return m, nil
		}
	}
	return Null, ErrInvalidMove
}

func (m Move) MarshalText() ([]byte, error) {
	if m == Null {
		return []byte(moveNames[Null]), nil
	}
	if !m.IsValidNonNull() {
		return nil, ErrInvalidMove
	}
	return []byte(moveNames[m]), nil
}

func (m *Move) UnmarshalText(b []byte) error {
	if strings.EqualFold(string(b), moveNames[Null]) {
		*m = Null
		return nil
	}
	parsed, err := ParseMove(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
