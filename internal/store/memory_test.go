package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpsls_wager/internal/game"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func openGame(t *testing.T, s Store, id string, stake int64) game.Secret {
	t.Helper()
	secret, err := game.GenerateSecret()
	require.NoError(t, err)
	c, err := game.Commit(game.Rock, secret)
	require.NoError(t, err)
	inst, instr, err := game.Create("alice", c, stake, 0, "bob", now)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), id, inst.State(), instr, now)
	require.NoError(t, err)
	return secret
}

func TestMemoryInsertEscrowsFirstStake(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Deposit(ctx, "alice", 100)
	require.NoError(t, err)

	openGame(t, s, "g1", 40)

	bal, err := s.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(60), bal)

	g, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), g.Escrowed)

	entries, err := s.Ledger(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "escrow", entries[0].Kind)
}

func TestMemoryInsertInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	c, err := game.Commit(game.Rock, game.Secret{1})
	require.NoError(t, err)
	inst, instr, err := game.Create("alice", c, 10, 0, "bob", now)
	require.NoError(t, err)

	_, err = s.Insert(ctx, "g1", inst.State(), instr, now)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = s.Get(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryMutateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.Deposit(ctx, "alice", 10)
	openGame(t, s, "g1", 10)

	// bob has no funds: the join must not stick.
	_, _, err := s.Mutate(ctx, "g1", now, func(g *game.Instance) ([]game.Instruction, error) {
		return g.Join("bob", game.Paper, 10, now)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	g, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, game.Null, g.State.SecondMove)
	assert.Equal(t, game.AwaitingSecondMove, g.State.Phase())

	_, _, err = s.Mutate(ctx, "missing", now, func(g *game.Instance) ([]game.Instruction, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryConcurrentJoinSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.Deposit(ctx, "alice", 10)
	_, _ = s.Deposit(ctx, "bob", 1000)
	openGame(t, s, "g1", 10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		played    int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Mutate(ctx, "g1", now, func(g *game.Instance) ([]game.Instruction, error) {
				return g.Join("bob", game.Paper, 10, now)
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, game.ErrAlreadyPlayed) {
				played++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 19, played)
	bal, _ := s.Balance(ctx, "bob")
	assert.Equal(t, int64(990), bal)
	g, _ := s.Get(ctx, "g1")
	assert.Equal(t, int64(20), g.Escrowed)
}

func TestMemorySettlementDrawsEscrowToZero(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.Deposit(ctx, "alice", 10)
	_, _ = s.Deposit(ctx, "bob", 10)
	secret := openGame(t, s, "g1", 10)

	_, _, err := s.Mutate(ctx, "g1", now, func(g *game.Instance) ([]game.Instruction, error) {
		return g.Join("bob", game.Scissors, 10, now)
	})
	require.NoError(t, err)
	g, instr, err := s.Mutate(ctx, "g1", now, func(g *game.Instance) ([]game.Instruction, error) {
		_, instr, err := g.Reveal("alice", game.Rock, secret, now)
		return instr, err
	})
	require.NoError(t, err)
	require.Len(t, instr, 1)
	assert.Zero(t, g.Escrowed)
	assert.Equal(t, game.Settled, g.State.Phase())

	a, _ := s.Balance(ctx, "alice")
	b, _ := s.Balance(ctx, "bob")
	assert.Equal(t, int64(20), a)
	assert.Equal(t, int64(0), b)

	open, err := s.ListOpen(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, open)
	mine, err := s.ListByParty(ctx, "bob", 10)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCheckEscrow(t *testing.T) {
	_, err := CheckEscrow(0, 10, []game.Instruction{{Kind: game.Escrow, Party: "a", Amount: 21}})
	assert.ErrorIs(t, err, ErrEscrowBounds)
	_, err = CheckEscrow(10, 10, []game.Instruction{{Kind: game.Payout, Party: "a", Amount: 11}})
	assert.ErrorIs(t, err, ErrEscrowBounds)
	_, err = CheckEscrow(10, 10, []game.Instruction{{Kind: game.Refund, Party: "a", Amount: 0}})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	final, err := CheckEscrow(20, 10, []game.Instruction{
		{Kind: game.Refund, Party: "a", Amount: 10},
		{Kind: game.Refund, Party: "b", Amount: 10},
	})
	require.NoError(t, err)
	assert.Zero(t, final)
}

func TestMemoryDepositRejectsNonPositive(t *testing.T) {
	_, err := NewMemoryStore().Deposit(context.Background(), "alice", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMemoryListOpenLongestIdleFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Deposit(ctx, "alice", 100)
	require.NoError(t, err)

	insertAt := func(id string, at time.Time) {
		c, err := game.Commit(game.Paper, game.Secret{31: 7})
		require.NoError(t, err)
		inst, instr, err := game.Create("alice", c, 10, time.Minute, "bob", at)
		require.NoError(t, err)
		_, err = s.Insert(ctx, id, inst.State(), instr, at)
		require.NoError(t, err)
	}
	insertAt("stale", now.Add(-time.Hour))
	insertAt("fresh", now)

	open, err := s.ListOpen(ctx, 1)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "stale", open[0].ID)

	mine, err := s.ListByParty(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "fresh", mine[0].ID)
}
