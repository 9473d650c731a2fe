package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"rpsls_wager/internal/game"
	"rpsls_wager/internal/repository"
	"rpsls_wager/internal/service"
	"rpsls_wager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStore_FullRound(t *testing.T) {
	pool := connect(t)
	ctx := context.Background()
	first, second := parties()

	st := repository.NewGameStore(pool)
	audit := service.NewAuditService(repository.NewAuditRepository(pool))
	svc := service.NewGameService(st, audit, nil, service.DefaultLimits)
	now := time.Now().UTC().Truncate(time.Microsecond)
	svc.SetClock(func() time.Time { return now })

	for _, p := range []game.Party{first, second} {
		_, err := svc.Deposit(ctx, p, 100)
		require.NoError(t, err)
	}

	secret, err := game.GenerateSecret()
	require.NoError(t, err)
	c, err := game.Commit(game.Scissors, secret)
	require.NoError(t, err)

	view, err := svc.Create(ctx, first, service.CreateParams{SecondMover: second, Commitment: c, Stake: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(30), view.Escrowed)

	_, err = svc.Join(ctx, view.ID, second, game.Paper, 30)
	require.NoError(t, err)

	_, err = svc.Reveal(ctx, view.ID, first, game.Rock, secret)
	assert.ErrorIs(t, err, game.ErrCommitmentMismatch)

	res, err := svc.Reveal(ctx, view.ID, first, game.Scissors, secret)
	require.NoError(t, err)
	assert.Equal(t, game.FirstWins, res.Outcome)
	assert.Equal(t, game.Settled, res.Game.Phase)
	assert.Equal(t, int64(0), res.Game.Escrowed)

	bal, err := svc.Balance(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(130), bal)
	bal, err = svc.Balance(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, int64(70), bal)

	entries, err := svc.Ledger(ctx, view.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "payout", entries[2].Kind)

	logs, err := audit.GetGameAuditLogs(ctx, view.ID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 4)

	got, err := svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Scissors, got.FirstMove)
	assert.True(t, got.LastActionAt.Equal(now))
}

func TestGameStore_InsufficientFundsStoresNothing(t *testing.T) {
	pool := connect(t)
	ctx := context.Background()
	first, second := parties()
	st := repository.NewGameStore(pool)

	c, err := game.Commit(game.Rock, game.Secret{31: 1})
	require.NoError(t, err)
	inst, instr, err := game.Create(first, c, 10, 0, second, time.Now())
	require.NoError(t, err)

	_, err = st.Insert(ctx, "no-funds-"+string(first), inst.State(), instr, time.Now())
	assert.ErrorIs(t, err, store.ErrInsufficientFunds)

	_, err = st.Get(ctx, "no-funds-"+string(first))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGameStore_ConcurrentJoinSerialized(t *testing.T) {
	pool := connect(t)
	ctx := context.Background()
	first, second := parties()

	st := repository.NewGameStore(pool)
	svc := service.NewGameService(st, service.NewAuditService(repository.NewAuditRepository(pool)), nil, service.DefaultLimits)
	for _, p := range []game.Party{first, second} {
		_, err := svc.Deposit(ctx, p, 1000)
		require.NoError(t, err)
	}

	secret, err := game.GenerateSecret()
	require.NoError(t, err)
	c, err := game.Commit(game.Lizard, secret)
	require.NoError(t, err)
	view, err := svc.Create(ctx, first, service.CreateParams{SecondMover: second, Commitment: c, Stake: 10})
	require.NoError(t, err)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dupe int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Join(ctx, view.ID, second, game.Rock, 10)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, game.ErrAlreadyPlayed):
				dupe++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dupe)

	bal, err := svc.Balance(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, int64(990), bal)
}
