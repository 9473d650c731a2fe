package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretBackupRoundTrip(t *testing.T) {
	s, err := GenerateSecret()
	require.NoError(t, err)
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("x", 3600))

	b, err := NewSecretBackup(Spock, s, created)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), b.MoveCode)
	assert.Len(t, b.SecretHex, 66)
	assert.Len(t, b.CommitmentHex, 66)

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"createdAt":"2026-03-04T04:06:07Z"`)

	var back SecretBackup
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, b.MoveCode, back.MoveCode)
	assert.Equal(t, b.SecretHex, back.SecretHex)
	assert.Equal(t, b.CommitmentHex, back.CommitmentHex)
	assert.True(t, created.Equal(back.CreatedAt))

	m, secret, c, err := back.Restore()
	require.NoError(t, err)
	assert.Equal(t, Spock, m)
	assert.Equal(t, s, secret)
	assert.True(t, Verify(m, secret, c))
}

func TestSecretBackupValidate(t *testing.T) {
	s, err := GenerateSecret()
	require.NoError(t, err)
	b, err := NewSecretBackup(Rock, s, time.Now())
	require.NoError(t, err)
	require.NoError(t, b.Validate())

	tampered := b
	tampered.MoveCode = Paper.Code()
	assert.ErrorIs(t, tampered.Validate(), ErrBackupMismatch)

	tampered = b
	tampered.MoveCode = 0
	assert.ErrorIs(t, tampered.Validate(), ErrInvalidMove)

	tampered = b
	tampered.SecretHex = "0x00"
	assert.ErrorIs(t, tampered.Validate(), ErrInvalidSecret)

	unprefixed := b
	unprefixed.SecretHex = b.SecretHex[2:]
	unprefixed.CommitmentHex = b.CommitmentHex[2:]
	assert.NoError(t, unprefixed.Validate())
}

func TestSecretBackupRejectsBadTimestamp(t *testing.T) {
	var b SecretBackup
	err := json.Unmarshal([]byte(`{"moveCode":1,"secretHex":"","commitmentHex":"","createdAt":"yesterday"}`), &b)
	assert.Error(t, err)
}
