package ledger

import (
	"context"
	"errors"
)

// ErrVersionConflict signals a lost optimistic-concurrency race: the
// balance row changed between read and conditional update. Callers retry
// the whole check-then-debit sequence.
var ErrVersionConflict = errors.New("week balance version conflict")

// Repository describes balance persistence needs from use cases.
type Repository interface {
	// GetOrCreate returns the (week, user) row, seeding it at the
	// starting balance on first touch.
	GetOrCreate(ctx context.Context, item WeekBalance) (WeekBalance, error)

	// UpdateConditional persists the row only when the stored version
	// still matches expectedVersion, returning ErrVersionConflict
	// otherwise. Two concurrent placements against the same balance
	// cannot both pass the sufficiency check through this guard.
	UpdateConditional(ctx context.Context, item WeekBalance, expectedVersion int64) error

	ListByWeek(ctx context.Context, leagueID, weekID string) ([]WeekBalance, error)
}
