// Package store defines the durable game store the host settles against.
package store

import (
	"context"
	"errors"
	"time"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/game"
)

var (
	ErrNotFound          = errors.New("game not found")
	ErrDuplicate         = errors.New("game already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	// ErrEscrowBounds means an instruction would push a game's escrow
	// above twice the wager or below zero.
	ErrEscrowBounds = errors.New("escrow out of bounds")
)

// Game is a stored instance keyed by its identifier.
type Game struct {
	ID        string
	State     game.State
	Escrowed  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MutateFunc advances a restored instance and returns the instructions to execute.
// Returning an error discards every change.
type MutateFunc func(g *game.Instance) ([]game.Instruction, error)

// Store persists games and executes their settlement instructions. Insert and
// Mutate are atomic: the game write and every instruction commit together or
// not at all, and Mutate calls on the same game are serialized.
type Store interface {
	Insert(ctx context.Context, id string, st game.State, instr []game.Instruction, now time.Time) (*Game, error)
	Get(ctx context.Context, id string) (*Game, error)
	Mutate(ctx context.Context, id string, now time.Time, fn MutateFunc) (*Game, []game.Instruction, error)
	// ListByParty returns the party's games, newest first.
	ListByParty(ctx context.Context, party game.Party, limit int) ([]*Game, error)
	// ListOpen returns unsettled games ordered by last action, oldest first,
	// so games past their deadline come before fresh ones.
	ListOpen(ctx context.Context, limit int) ([]*Game, error)
	Ledger(ctx context.Context, id string) ([]*domain.LedgerEntry, error)

	Balance(ctx context.Context, party game.Party) (int64, error)
	Deposit(ctx context.Context, party game.Party, amount int64) (int64, error)
}

// CheckEscrow validates that applying instr to a game currently holding
// escrowed keeps the escrow within [0, 2*wager]. It returns the final escrow.
func CheckEscrow(escrowed, wager int64, instr []game.Instruction) (int64, error) {
	for _, in := range instr {
		if in.Amount <= 0 {
			return 0, ErrInvalidAmount
		}
		switch in.Kind {
		case game.Escrow:
			escrowed += in.Amount
		case game.Payout, game.Refund:
			escrowed -= in.Amount
		default:
			return 0, ErrInvalidAmount
		}
		if escrowed < 0 || escrowed > 2*wager {
			return 0, ErrEscrowBounds
		}
	}
	return escrowed, nil
}
