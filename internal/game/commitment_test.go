package game

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secretOf(b ...byte) Secret {
	var s Secret
	copy(s[SecretLength-len(b):], b)
	return s
}

func TestCommitVectors(t *testing.T) {
	var seq Secret
	for i := range seq {
		seq[i] = byte(i + 1)
	}
	var ones Secret
	for i := range ones {
		ones[i] = 0xff
	}

	cases := []struct {
		move   Move
		secret Secret
		want   string
	}{
		{Rock, secretOf(1), "0x9b68e489a07c86105b2c34adda59d3851d6f33abd41be6e9559cf783147db5dd"},
		{Lizard, seq, "0xf824fa36027ef576410378f961b4bb81dc30e43cdc39b52cd0cd7e0a0c6d24fd"},
		{Paper, ones, "0x7914ba2a29bf8f0d49a57b128b7f0cce6475f0bdd7b8247267d4516450d53434"},
	}
	for _, tc := range cases {
		c, err := Commit(tc.move, tc.secret)
		require.NoError(t, err)
		assert.Equal(t, tc.want, c.Hex())
	}
}

func TestPreimageLayout(t *testing.T) {
	s := secretOf(0xab, 0xcd)
	pre, err := Preimage(Spock, s)
	require.NoError(t, err)
	require.Len(t, pre, 33)
	assert.Equal(t, byte(4), pre[0])
	assert.Equal(t, s[:], pre[1:])
	assert.Equal(t, byte(0xcd), pre[32])
}

func TestCommitRejectsInvalidMove(t *testing.T) {
	_, err := Commit(Null, secretOf(1))
	assert.ErrorIs(t, err, ErrInvalidMove)
	_, err = Commit(Move(6), secretOf(1))
	assert.ErrorIs(t, err, ErrInvalidMove)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestVerify(t *testing.T) {
	s, err := GenerateSecret()
	require.NoError(t, err)

	for _, m := range Moves {
		c, err := Commit(m, s)
		require.NoError(t, err)
		assert.True(t, Verify(m, s, c))
		for _, other := range Moves {
			if other != m {
				assert.False(t, Verify(other, s, c), "%v must not open a %v commitment", other, m)
			}
		}
		assert.False(t, Verify(m, secretOf(9), c))
		assert.False(t, Verify(Null, s, c))
	}
}

func TestGenerateSecretIsFresh(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsZero())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGenerateSecretEntropyFailure(t *testing.T) {
	s, err := GenerateSecretFrom(failingReader{})
	assert.ErrorIs(t, err, ErrEntropySourceUnavailable)
	assert.Equal(t, KindResource, KindOf(err))
	assert.True(t, s.IsZero())

	_, err = GenerateSecretFrom(bytes.NewReader(make([]byte, 16)))
	assert.ErrorIs(t, err, ErrEntropySourceUnavailable)

	old := entropy
	entropy = nil
	defer func() { entropy = old }()
	_, err = GenerateSecret()
	assert.ErrorIs(t, err, ErrEntropySourceUnavailable)
}

func TestHexParsing(t *testing.T) {
	s := secretOf(0x10, 0x20)
	parsed, err := ParseSecret(s.Hex())
	require.NoError(t, err)
	assert.Equal(t, s, parsed)

	parsed, err = ParseSecret(s.Hex()[2:])
	require.NoError(t, err)
	assert.Equal(t, s, parsed)
	assert.Equal(t, int64(0x1020), s.Big().Int64())

	_, err = ParseSecret("0x1234")
	assert.ErrorIs(t, err, ErrInvalidSecret)
	_, err = ParseCommitment("zz")
	assert.ErrorIs(t, err, ErrInvalidCommit)

	c, err := Commit(Rock, s)
	require.NoError(t, err)
	assert.Len(t, c.Hex(), 66)
	var back Commitment
	require.NoError(t, back.UnmarshalText([]byte(c.Hex())))
	assert.Equal(t, c, back)
}
