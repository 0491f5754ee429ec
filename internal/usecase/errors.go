package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInsufficientBalance blocks a placement whose stake exceeds the
	// week balance. No partial effect: no bet, no legs, no debit.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConflictingSelections blocks placement while the slip holds any
	// conflict. Expected user-correctable state, surfaced inline.
	ErrConflictingSelections = errors.New("conflicting selections")

	ErrAlreadyMember = errors.New("already a league member")
)
