package bet

import "context"

// Repository describes bet persistence needs from use cases. CreateWithLegs
// must persist the bet and every leg as one unit: a bet visible without
// its legs breaks the settlement ledger. Delete removes the bet and its
// legs; placement uses it to unwind a bet whose debit never landed.
type Repository interface {
	CreateWithLegs(ctx context.Context, item Bet) error
	Delete(ctx context.Context, betID string) error
	GetByID(ctx context.Context, betID string) (Bet, bool, error)
	ListByWeek(ctx context.Context, leagueID, weekID string) ([]Bet, error)
	ListByUserAndWeek(ctx context.Context, userID, leagueID, weekID string) ([]Bet, error)
	ListPendingByGame(ctx context.Context, gameID string) ([]Bet, error)
	UpdateLegResult(ctx context.Context, leg Leg) error
	UpdateStatus(ctx context.Context, item Bet) error
}
