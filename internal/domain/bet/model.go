package bet

import (
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/betslip"
	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
	StatusVoid    Status = "void"
)

type LegResult string

const (
	LegPending LegResult = "pending"
	LegWon     LegResult = "won"
	LegLost    LegResult = "lost"
	LegVoid    LegResult = "void"
)

// Leg is one selection within a bet. Legs are graded independently; the
// owning bet's status is derived from the leg results.
type Leg struct {
	BetID       string
	GameID      string
	MarketType  odds.MarketType
	Selection   string
	Odds        decimal.Decimal
	Line        *decimal.Decimal
	Result      LegResult
	ActualValue *decimal.Decimal
	PlayerName  string
	GameTime    time.Time
}

// Bet is a placed wager. Created atomically with its legs.
type Bet struct {
	ID              string
	UserID          string
	LeagueID        string
	WeekID          string
	BetType         betslip.BetType
	Stake           decimal.Decimal
	TotalOdds       decimal.Decimal
	PotentialPayout decimal.Decimal
	Status          Status
	CreatedAt       time.Time
	SettledAt       *time.Time
	Legs            []Leg
}

// DeriveStatus computes the aggregate bet status from leg results.
// Any lost leg loses the bet outright; any pending leg keeps it pending;
// all-void voids it (stake refund); otherwise every settled leg won.
func DeriveStatus(legs []Leg) Status {
	if len(legs) == 0 {
		return StatusPending
	}

	anyPending := false
	anyWon := false
	for _, leg := range legs {
		switch leg.Result {
		case LegLost:
			return StatusLost
		case LegPending:
			anyPending = true
		case LegWon:
			anyWon = true
		}
	}

	if anyPending {
		return StatusPending
	}
	if !anyWon {
		return StatusVoid
	}
	return StatusWon
}

// SettledPayout is the amount credited when a bet settles as won. Void
// legs drop out of the price: the payout is recomputed from the surviving
// legs only, with the correlation discount re-derived over that subset.
// A fully void bet refunds the stake.
func SettledPayout(b Bet) decimal.Decimal {
	switch DeriveStatus(b.Legs) {
	case StatusVoid:
		return b.Stake
	case StatusWon:
	default:
		return decimal.Decimal{}
	}

	survivors := make([]betslip.Selection, 0, len(b.Legs))
	for _, leg := range b.Legs {
		if leg.Result != LegWon {
			continue
		}
		survivors = append(survivors, betslip.Selection{
			GameID:     leg.GameID,
			MarketType: leg.MarketType,
			Name:       leg.Selection,
			Odds:       leg.Odds,
			Line:       leg.Line,
			PlayerName: leg.PlayerName,
		})
	}

	return betslip.PotentialPayout(b.Stake, survivors)
}
