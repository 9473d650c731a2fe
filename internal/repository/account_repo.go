package repository

import (
	"context"
	"errors"

	"rpsls_wager/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetBalance returns zero for parties that never deposited.
func (r *AccountRepository) GetBalance(ctx context.Context, party string) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE party = $1`, party).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

// Credit adds amount, creating the account on first use.
func (r *AccountRepository) Credit(ctx context.Context, party string, amount int64) (int64, error) {
	return r.CreditWithTx(ctx, r.db, party, amount)
}

func (r *AccountRepository) CreditWithTx(ctx context.Context, q querier, party string, amount int64) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, store.ErrInvalidAmount
	}
	err = q.QueryRow(ctx,
		`INSERT INTO accounts (party, balance) VALUES ($1, $2)
		 ON CONFLICT (party) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance, updated_at = now()
		 RETURNING balance`,
		party, amount,
	).Scan(&newBalance)
	return newBalance, err
}

// DebitWithTx deducts amount only if the balance covers it.
func (r *AccountRepository) DebitWithTx(ctx context.Context, tx pgx.Tx, party string, amount int64) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, store.ErrInvalidAmount
	}
	err = tx.QueryRow(ctx,
		`UPDATE accounts SET balance = balance - $1, updated_at = now()
		 WHERE party = $2 AND balance >= $1
		 RETURNING balance`,
		amount, party,
	).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, store.ErrInsufficientFunds
	}
	return newBalance, err
}
