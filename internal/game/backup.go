package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrBackupMismatch = errors.New("backup commitment does not match move and secret")

// SecretBackup is the export record a committing party keeps until reveal.
// The host never sees it.
type SecretBackup struct {
	MoveCode      uint8     `json:"moveCode"`
	SecretHex     string    `json:"secretHex"`
	CommitmentHex string    `json:"commitmentHex"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewSecretBackup builds the record for a commitment made with (m, s).
func NewSecretBackup(m Move, s Secret, createdAt time.Time) (SecretBackup, error) {
	c, err := Commit(m, s)
	if err != nil {
		return SecretBackup{}, err
	}
	return SecretBackup{
		MoveCode:      m.Code(),
		SecretHex:     s.Hex(),
		CommitmentHex: c.Hex(),
		CreatedAt:     createdAt.UTC(),
	}, nil
}

// Restore decodes the record and checks that it re-derives its commitment.
func (b SecretBackup) Restore() (Move, Secret, Commitment, error) {
	m, err := MoveFromCode(b.MoveCode)
	if err != nil {
		return Null, Secret{}, Commitment{}, err
	}
	s, err := ParseSecret(b.SecretHex)
	if err != nil {
		return Null, Secret{}, Commitment{}, err
	}
	c, err := ParseCommitment(b.CommitmentHex)
	if err != nil {
		return Null, Secret{}, Commitment{}, err
	}
	if !Verify(m, s, c) {
		return Null, Secret{}, Commitment{}, ErrBackupMismatch
	}
	return m, s, c, nil
}

// Validate reports whether the record is internally consistent.
func (b SecretBackup) Validate() error {
	_, _, _, err := b.Restore()
	return err
}

// MarshalJSON writes createdAt as RFC 3339 in UTC.
func (b SecretBackup) MarshalJSON() ([]byte, error) {
	type alias struct {
		MoveCode      uint8  `json:"moveCode"`
		SecretHex     string `json:"secretHex"`
		CommitmentHex string `json:"commitmentHex"`
		CreatedAt     string `json:"createdAt"`
	}
	return json.Marshal(alias{
		MoveCode:      b.MoveCode,
		SecretHex:     b.SecretHex,
		CommitmentHex: b.CommitmentHex,
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (b *SecretBackup) UnmarshalJSON(data []byte) error {
	var raw struct {
		MoveCode      uint8  `json:"moveCode"`
		SecretHex     string `json:"secretHex"`
		CommitmentHex string `json:"commitmentHex"`
		CreatedAt     string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("backup createdAt: %w", err)
	}
	*b = SecretBackup{
		MoveCode:      raw.MoveCode,
		SecretHex:     raw.SecretHex,
		CommitmentHex: raw.CommitmentHex,
		CreatedAt:     createdAt,
	}
	return nil
}
