package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rpsls_wager/internal/game"
	"rpsls_wager/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const gameColumns = `id, first_mover, second_mover, commitment, wager, stake, first_move, second_move,
	last_action_at, timeout_ms, escrowed, settlement, created_at, updated_at`

type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

// CreateWithTx inserts a game with an empty escrow.
func (r *GameRepository) CreateWithTx(ctx context.Context, q querier, id string, st game.State, now time.Time) error {
	settlement, err := settlementJSON(st.Settlement)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx,
		`INSERT INTO games (id, first_mover, second_mover, commitment, wager, stake, first_move, second_move,
		                    last_action_at, timeout_ms, escrowed, settlement, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12, $12)`,
		id, string(st.FirstMover), string(st.SecondMover), st.Commitment[:], st.Wager, st.Stake,
		int16(st.FirstMove), int16(st.SecondMove), st.LastActionAt, st.Timeout.Milliseconds(), settlement, now,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.ErrDuplicate
	}
	return err
}

// GetByID loads a game without locking it.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*store.Game, error) {
	return scanGame(r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
}

// LockWithTx loads a game and holds its row lock until tx ends.
func (r *GameRepository) LockWithTx(ctx context.Context, tx pgx.Tx, id string) (*store.Game, error) {
	return scanGame(tx.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1 FOR UPDATE`, id))
}

// UpdateWithTx writes back the mutable game fields.
func (r *GameRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, id string, st game.State, escrowed int64, now time.Time) error {
	settlement, err := settlementJSON(st.Settlement)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`UPDATE games
		 SET stake = $2, first_move = $3, second_move = $4, last_action_at = $5,
		     escrowed = $6, settlement = $7, updated_at = $8
		 WHERE id = $1`,
		id, st.Stake, int16(st.FirstMove), int16(st.SecondMove), st.LastActionAt, escrowed, settlement, now,
	)
	return err
}

// AdjustEscrowWithTx moves the stored escrow by delta.
func (r *GameRepository) AdjustEscrowWithTx(ctx context.Context, tx pgx.Tx, id string, delta int64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE games SET escrowed = escrowed + $2
		 WHERE id = $1 AND escrowed + $2 >= 0 AND escrowed + $2 <= 2 * wager`,
		id, delta,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrEscrowBounds
	}
	return nil
}

func (r *GameRepository) GetByParty(ctx context.Context, party string, limit int) ([]*store.Game, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+gameColumns+`
		 FROM games
		 WHERE first_mover = $1 OR second_mover = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		party, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

// GetOpen returns unsettled games, oldest activity first.
func (r *GameRepository) GetOpen(ctx context.Context, limit int) ([]*store.Game, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+gameColumns+`
		 FROM games
		 WHERE stake > 0
		 ORDER BY last_action_at ASC, id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

func settlementJSON(s *game.Settlement) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func scanGame(row pgx.Row) (*store.Game, error) {
	var (
		g             store.Game
		first, second string
		commitment    []byte
		firstMove     int16
		secondMove    int16
		timeoutMS     int64
		settlementRaw []byte
	)
	err := row.Scan(&g.ID, &first, &second, &commitment, &g.State.Wager, &g.State.Stake, &firstMove, &secondMove,
		&g.State.LastActionAt, &timeoutMS, &g.Escrowed, &settlementRaw, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if len(commitment) != game.CommitmentLength {
		return nil, game.ErrCorruptState
	}

	g.State.FirstMover = game.Party(first)
	g.State.SecondMover = game.Party(second)
	copy(g.State.Commitment[:], commitment)
	g.State.FirstMove = game.Move(firstMove)
	g.State.SecondMove = game.Move(secondMove)
	g.State.Timeout = time.Duration(timeoutMS) * time.Millisecond
	if len(settlementRaw) > 0 {
		var s game.Settlement
		if err := json.Unmarshal(settlementRaw, &s); err != nil {
			return nil, err
		}
		g.State.Settlement = &s
	}
	return &g, nil
}

func scanGames(rows pgx.Rows) ([]*store.Game, error) {
	var res []*store.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}
