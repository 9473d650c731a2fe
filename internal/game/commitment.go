package game

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	SecretLength     = 32
	CommitmentLength = 32
	preimageLength   = 1 + SecretLength
)

// Secret is the committing party's 256-bit blinding value, big-endian.
// A secret must never be reused across games.
type Secret [SecretLength]byte

// Commitment is keccak256(moveCode || secret).
type Commitment [CommitmentLength]byte

// entropy is swapped in tests to simulate a failing source.
var entropy io.Reader = rand.Reader

// GenerateSecret draws 32 bytes from the system CSPRNG.
func GenerateSecret() (Secret, error) {
	return GenerateSecretFrom(entropy)
}

// GenerateSecretFrom reads a secret from r. Any short read or error yields
// ErrEntropySourceUnavailable and a zero secret.
func GenerateSecretFrom(r io.Reader) (Secret, error) {
	var s Secret
	if r == nil {
		return Secret{}, ErrEntropySourceUnavailable
	}
	if _, err := io.ReadFull(r, s[:]); err != nil {
		return Secret{}, fmt.Errorf("%w: %v", ErrEntropySourceUnavailable, err)
	}
	return s, nil
}

// Preimage returns the exact bytes hashed into a commitment.
func Preimage(m Move, s Secret) ([]byte, error) {
	if !m.IsValidNonNull() {
		return nil, ErrInvalidMove
	}
	buf := make([]byte, 0, preimageLength)
	buf = append(buf, m.Code())
	buf = append(buf, s[:]...)
	return buf, nil
}

// Commit binds m and s together.
func Commit(m Move, s Secret) (Commitment, error) {
	pre, err := Preimage(m, s)
	if err != nil {
		return Commitment{}, err
	}
	var c Commitment
	copy(c[:], crypto.Keccak256(pre))
	return c, nil
}

// Verify recomputes the commitment for (m, s) and compares it with c.
// The inputs are public once revealed, so the comparison need not be constant time.
func Verify(m Move, s Secret, c Commitment) bool {
	got, err := Commit(m, s)
	if err != nil {
		return false
	}
	return got == c
}

func (s Secret) Hex() string {
	return hexutil.Encode(s[:])
}

// Big returns the secret as an unsigned integer, the form a uint256 salt takes on chain.
func (s Secret) Big() *big.Int {
	return new(big.Int).SetBytes(s[:])
}

func (s Secret) IsZero() bool {
	return s == Secret{}
}

func (c Commitment) Hex() string {
	return hexutil.Encode(c[:])
}

func (c Commitment) String() string {
	return c.Hex()
}

func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

// ParseSecret decodes 64 hex digits, with or without the 0x prefix.
func ParseSecret(s string) (Secret, error) {
	var out Secret
	if err := decodeFixedHex(s, out[:]); err != nil {
		return Secret{}, ErrInvalidSecret
	}
	return out, nil
}

// ParseCommitment decodes 64 hex digits, with or without the 0x prefix.
func ParseCommitment(s string) (Commitment, error) {
	var out Commitment
	if err := decodeFixedHex(s, out[:]); err != nil {
		return Commitment{}, ErrInvalidCommit
	}
	return out, nil
}

func decodeFixedHex(s string, dst []byte) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("want %d bytes, got %d", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}

func (c Commitment) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Commitment) UnmarshalText(b []byte) error {
	parsed, err := ParseCommitment(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
