package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// StartingBalance seeds every week balance on first touch.
var StartingBalance = decimal.NewFromInt(1000)

// WeekBalance is the per-user, per-week ledger row. Exactly one row per
// (week, user); created lazily, never deleted. Invariant for every
// user-week: sum of stakes of non-void bets == StartingBalance - Balance
// + sum of credited payouts.
type WeekBalance struct {
	WeekID           string
	LeagueID         string
	UserID           string
	DisplayName      string
	Balance          decimal.Decimal
	HighestWinPayout decimal.Decimal
	TotalBets        int
	LastWinTime      *time.Time

	// Version backs the optimistic debit guard; bumped on every mutation.
	Version int64
}

// New seeds a fresh balance row at the starting bankroll.
func New(weekID, leagueID, userID, displayName string) WeekBalance {
	return WeekBalance{
		WeekID:      weekID,
		LeagueID:    leagueID,
		UserID:      userID,
		DisplayName: displayName,
		Balance:     StartingBalance,
	}
}

// CanAfford reports whether the stake fits in the remaining balance.
func (b WeekBalance) CanAfford(stake decimal.Decimal) bool {
	return b.Balance.GreaterThanOrEqual(stake)
}

// ApplyDebit records a placed bet against the balance.
func (b *WeekBalance) ApplyDebit(stake decimal.Decimal) {
	b.Balance = b.Balance.Sub(stake)
	b.TotalBets++
}

// ApplyWin credits a settled payout and maintains the tie-break fields
// the weekly leaderboard sorts on.
func (b *WeekBalance) ApplyWin(payout decimal.Decimal, at time.Time) {
	b.Balance = b.Balance.Add(payout)
	if payout.GreaterThan(b.HighestWinPayout) {
		b.HighestWinPayout = payout
	}
	if b.LastWinTime == nil || at.After(*b.LastWinTime) {
		t := at
		b.LastWinTime = &t
	}
}
