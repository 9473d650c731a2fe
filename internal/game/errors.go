package game

import "errors"

// Kind groups protocol errors by how a caller should react to them.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindState         Kind = "state"
	KindResource      Kind = "resource"
	KindUnknown       Kind = "unknown"
)

// Error is a protocol error with a stable code and kind.
type Error struct {
	Code string
	Kind Kind
}

func (e *Error) Error() string {
	return e.Code
}

var (
	// Validation: bad input shape or range, zero side effects.
	ErrInvalidMove    = &Error{Code: "invalid move", Kind: KindValidation}
	ErrStakeMismatch  = &Error{Code: "stake mismatch", Kind: KindValidation}
	ErrInvalidStake   = &Error{Code: "stake must be positive and at most MaxStake", Kind: KindValidation}
	ErrSameParty      = &Error{Code: "first and second mover must differ", Kind: KindValidation}
	ErrInvalidTimeout = &Error{Code: "timeout interval must be positive", Kind: KindValidation}
	ErrInvalidSecret  = &Error{Code: "invalid secret", Kind: KindValidation}
	ErrInvalidCommit  = &Error{Code: "invalid commitment", Kind: KindValidation}
	ErrInvalidParty   = &Error{Code: "invalid party", Kind: KindValidation}
	ErrCorruptState   = &Error{Code: "corrupt game state", Kind: KindValidation}

	// Authorization: only the right party may retry.
	ErrWrongParty = &Error{Code: "wrong party", Kind: KindAuthorization}

	// State: sequencing violations or cheating attempts.
	ErrAlreadyPlayed      = &Error{Code: "already played", Kind: KindState}
	ErrInvalidPhase       = &Error{Code: "invalid phase", Kind: KindState}
	ErrCommitmentMismatch = &Error{Code: "commitment mismatch", Kind: KindState}
	ErrTimeoutNotElapsed  = &Error{Code: "timeout not elapsed", Kind: KindState}

	// Resource: fatal to the current operation.
	ErrEntropySourceUnavailable = &Error{Code: "entropy source unavailable", Kind: KindResource}
)

// KindOf returns the kind of the first protocol error found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
