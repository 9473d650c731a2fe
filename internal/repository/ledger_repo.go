package repository

import (
	"context"

	"rpsls_wager/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CreateWithTx records an executed instruction inside an existing transaction.
func (r *LedgerRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	return tx.QueryRow(ctx,
		`INSERT INTO ledger_entries (game_id, party, kind, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		e.GameID, e.Party, e.Kind, e.Amount, e.CreatedAt,
	).Scan(&e.ID)
}

// GetByGameID returns a game's entries in execution order.
func (r *LedgerRepository) GetByGameID(ctx context.Context, gameID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, game_id, party, kind, amount, created_at
		 FROM ledger_entries
		 WHERE game_id = $1
		 ORDER BY id ASC`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.GameID, &e.Party, &e.Kind, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
