package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rpsls_wager/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := RootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommitWritesPrivateBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	out, err := run(t, "commit", "--move", "spock", "--out", path)
	require.NoError(t, err)
	commitment := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(commitment, "0x"))
	assert.Len(t, commitment, 66)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var b game.SecretBackup
	require.NoError(t, json.Unmarshal(data, &b))
	require.NoError(t, b.Validate())
	assert.Equal(t, game.Spock.Code(), b.MoveCode)
	assert.Equal(t, commitment, b.CommitmentHex)

	// refuses to clobber an existing secret
	_, err = run(t, "commit", "--move", "rock", "--out", path)
	assert.Error(t, err)

	out, err = run(t, "backup", "show", "--in", path)
	require.NoError(t, err)
	assert.Contains(t, out, "spock (4)")
	assert.Contains(t, out, commitment)

	out, err = run(t, "backup", "reveal", "--in", path)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "spock", body["move"])
	assert.Equal(t, b.SecretHex, body["secret"])

	_, err = run(t, "verify", "--move", "4", "--secret", b.SecretHex, "--commitment", commitment)
	assert.NoError(t, err)
	out, err = run(t, "verify", "--move", "rock", "--secret", b.SecretHex, "--commitment", commitment)
	assert.ErrorIs(t, err, errMismatch)
	assert.Equal(t, "mismatch\n", out)
}

func TestBackupShowRejectsTampering(t *testing.T) {
	s, err := game.GenerateSecret()
	require.NoError(t, err)
	b, err := game.NewSecretBackup(game.Paper, s, time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC))
	require.NoError(t, err)
	b.MoveCode = game.Rock.Code()
	data, err := json.Marshal(b)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tampered.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = run(t, "backup", "show", "--in", path)
	assert.ErrorIs(t, err, game.ErrBackupMismatch)
}

func TestRulesAndOutcome(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "rock")
	assert.Contains(t, lines[0], "scissors, lizard")

	out, err = run(t, "outcome", "paper", "spock")
	require.NoError(t, err)
	assert.Equal(t, "first_wins\n", out)

	out, err = run(t, "outcome", "2", "scissors")
	require.NoError(t, err)
	assert.Equal(t, "second_wins\n", out)

	_, err = run(t, "outcome", "fire", "rock")
	assert.Error(t, err)
}
