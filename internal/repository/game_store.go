package repository

import (
	"context"
	"time"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/game"
	"rpsls_wager/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameStore is the Postgres-backed store.Store. Each call runs in one
// transaction; Mutate holds the game row lock for its whole duration.
type GameStore struct {
	db       *pgxpool.Pool
	games    *GameRepository
	accounts *AccountRepository
	ledger   *LedgerRepository
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{
		db:       db,
		games:    NewGameRepository(db),
		accounts: NewAccountRepository(db),
		ledger:   NewLedgerRepository(db),
	}
}

var _ store.Store = (*GameStore)(nil)

func (s *GameStore) Insert(ctx context.Context, id string, st game.State, instr []game.Instruction, now time.Time) (*store.Game, error) {
	if _, err := store.CheckEscrow(0, st.Wager, instr); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.games.CreateWithTx(ctx, tx, id, st, now); err != nil {
		return nil, err
	}
	if err := s.execute(ctx, tx, id, instr, now); err != nil {
		return nil, err
	}
	g, err := s.games.LockWithTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GameStore) Get(ctx context.Context, id string) (*store.Game, error) {
	return s.games.GetByID(ctx, id)
}

func (s *GameStore) Mutate(ctx context.Context, id string, now time.Time, fn store.MutateFunc) (*store.Game, []game.Instruction, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := s.games.LockWithTx(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	inst, err := game.Restore(current.State)
	if err != nil {
		return nil, nil, err
	}
	instr, err := fn(inst)
	if err != nil {
		return nil, nil, err
	}

	escrowed, err := store.CheckEscrow(current.Escrowed, current.State.Wager, instr)
	if err != nil {
		return nil, nil, err
	}
	if err := s.execute(ctx, tx, id, instr, now); err != nil {
		return nil, nil, err
	}
	st := inst.State()
	if err := s.games.UpdateWithTx(ctx, tx, id, st, escrowed, now); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	current.State = st
	current.Escrowed = escrowed
	current.UpdatedAt = now
	return current, instr, nil
}

// execute applies settlement instructions against accounts and the game escrow.
func (s *GameStore) execute(ctx context.Context, tx pgx.Tx, id string, instr []game.Instruction, now time.Time) error {
	for _, in := range instr {
		party := string(in.Party)
		switch in.Kind {
		case game.Escrow:
			if _, err := s.accounts.DebitWithTx(ctx, tx, party, in.Amount); err != nil {
				return err
			}
			if err := s.games.AdjustEscrowWithTx(ctx, tx, id, in.Amount); err != nil {
				return err
			}
		case game.Payout, game.Refund:
			if err := s.games.AdjustEscrowWithTx(ctx, tx, id, -in.Amount); err != nil {
				return err
			}
			if _, err := s.accounts.CreditWithTx(ctx, tx, party, in.Amount); err != nil {
				return err
			}
		default:
			return store.ErrInvalidAmount
		}

		entry := &domain.LedgerEntry{GameID: id, Party: party, Kind: string(in.Kind), Amount: in.Amount, CreatedAt: now}
		if err := s.ledger.CreateWithTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *GameStore) ListByParty(ctx context.Context, party game.Party, limit int) ([]*store.Game, error) {
	return s.games.GetByParty(ctx, string(party), limit)
}

func (s *GameStore) ListOpen(ctx context.Context, limit int) ([]*store.Game, error) {
	return s.games.GetOpen(ctx, limit)
}

func (s *GameStore) Ledger(ctx context.Context, id string) ([]*domain.LedgerEntry, error) {
	if _, err := s.games.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.ledger.GetByGameID(ctx, id)
}

func (s *GameStore) Balance(ctx context.Context, party game.Party) (int64, error) {
	return s.accounts.GetBalance(ctx, string(party))
}

func (s *GameStore) Deposit(ctx context.Context, party game.Party, amount int64) (int64, error) {
	return s.accounts.Credit(ctx, string(party), amount)
}
