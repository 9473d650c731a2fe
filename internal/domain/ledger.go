package domain

import "time"

// LedgerEntry is one executed settlement instruction.
type LedgerEntry struct {
	ID        int64     `db:"id" json:"id"`
	GameID    string    `db:"game_id" json:"game_id"`
	Party     string    `db:"party" json:"party"`
	Kind      string    `db:"kind" json:"kind"`
	Amount    int64     `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Account holds a party's spendable balance outside any escrow.
type Account struct {
	Party     string    `db:"party" json:"party"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
