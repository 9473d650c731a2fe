package domain

import "time"

// AuditLog records a state-advancing call or a rejected attempt against a game.
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	Party     string                 `db:"party" json:"party"`
	GameID    string                 `db:"game_id" json:"game_id,omitempty"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryGame    = "game"
	AuditCategoryBalance = "balance"
	AuditCategoryDispute = "dispute"
)

// Audit actions
const (
	AuditActionTokenIssued = "token_issued"

	AuditActionGameCreate  = "game_create"
	AuditActionGameJoin    = "game_join"
	AuditActionGameReveal  = "game_reveal"
	AuditActionGameTimeout = "game_timeout"

	// A reveal that failed to open the commitment. Treated as potentially adversarial.
	AuditActionCommitmentMismatch = "commitment_mismatch"

	AuditActionDeposit = "deposit"
)
