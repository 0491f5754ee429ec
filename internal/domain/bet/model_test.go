package bet

import (
	"testing"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/shopspring/decimal"
)

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		results []LegResult
		want    Status
	}{
		{"no legs", nil, StatusPending},
		{"all pending", []LegResult{LegPending, LegPending}, StatusPending},
		{"any lost wins over pending", []LegResult{LegWon, LegLost, LegPending}, StatusLost},
		{"all won", []LegResult{LegWon, LegWon}, StatusWon},
		{"won with pending stays pending", []LegResult{LegWon, LegPending}, StatusPending},
		{"all void", []LegResult{LegVoid, LegVoid}, StatusVoid},
		{"won plus void settles won", []LegResult{LegWon, LegVoid}, StatusWon},
		{"void plus lost is lost", []LegResult{LegVoid, LegLost}, StatusLost},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			legs := make([]Leg, 0, len(tc.results))
			for _, result := range tc.results {
				legs = append(legs, Leg{Result: result})
			}
			if got := DeriveStatus(legs); got != tc.want {
				t.Fatalf("DeriveStatus(%v) = %s, want %s", tc.results, got, tc.want)
			}
		})
	}
}

func TestSettledPayout_AllWon(t *testing.T) {
	t.Parallel()

	b := Bet{
		Stake: decimal.NewFromInt(100),
		Legs: []Leg{
			{GameID: "g1", MarketType: odds.MarketHeadToHead, Selection: "Lakers", Odds: decimal.NewFromFloat(1.85), Result: LegWon},
			{GameID: "g2", MarketType: odds.MarketHeadToHead, Selection: "Nuggets", Odds: decimal.NewFromFloat(1.60), Result: LegWon},
		},
	}

	want := decimal.NewFromInt(100).
		Mul(decimal.NewFromFloat(1.85)).
		Mul(decimal.NewFromFloat(1.60))
	if got := SettledPayout(b); !got.Equal(want) {
		t.Fatalf("SettledPayout = %s, want %s", got, want)
	}
}

func TestSettledPayout_VoidLegDropsOutOfPrice(t *testing.T) {
	t.Parallel()

	b := Bet{
		Stake: decimal.NewFromInt(100),
		Legs: []Leg{
			{GameID: "g1", MarketType: odds.MarketHeadToHead, Selection: "Lakers", Odds: decimal.NewFromFloat(1.85), Result: LegWon},
			{GameID: "g2", MarketType: odds.MarketHeadToHead, Selection: "Suns", Odds: decimal.NewFromFloat(2.10), Result: LegVoid},
		},
	}

	want := decimal.NewFromInt(100).Mul(decimal.NewFromFloat(1.85))
	if got := SettledPayout(b); !got.Equal(want) {
		t.Fatalf("void leg must not contribute to payout: got %s, want %s", got, want)
	}
}

func TestSettledPayout_CorrelationRederivedOverSurvivors(t *testing.T) {
	t.Parallel()

	// Same-game h2h + spread + voided prop: the 0.95 prop discount falls
	// away with the voided leg, the 0.90 h2h/spread discount remains.
	b := Bet{
		Stake: decimal.NewFromInt(10),
		Legs: []Leg{
			{GameID: "g1", MarketType: odds.MarketHeadToHead, Selection: "Lakers", Odds: decimal.NewFromFloat(1.85), Result: LegWon},
			{GameID: "g1", MarketType: odds.MarketSpread, Selection: "Lakers -3.5", Odds: decimal.NewFromFloat(1.95), Result: LegWon},
			{GameID: "g1", MarketType: odds.MarketPlayerPoints, Selection: "Over 25.5", PlayerName: "LeBron James", Odds: decimal.NewFromFloat(1.87), Result: LegVoid},
		},
	}

	want := decimal.NewFromInt(10).
		Mul(decimal.NewFromFloat(1.85)).
		Mul(decimal.NewFromFloat(1.95)).
		Mul(decimal.NewFromFloat(0.90))
	if got := SettledPayout(b); !got.Equal(want) {
		t.Fatalf("SettledPayout = %s, want %s", got, want)
	}
}

func TestSettledPayout_AllVoidRefundsStake(t *testing.T) {
	t.Parallel()

	b := Bet{
		Stake: decimal.NewFromInt(40),
		Legs: []Leg{
			{Result: LegVoid},
			{Result: LegVoid},
		},
	}

	if got := SettledPayout(b); !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("all-void bet refunds the stake, got %s", got)
	}
}

func TestSettledPayout_LostBetPaysNothing(t *testing.T) {
	t.Parallel()

	b := Bet{
		Stake: decimal.NewFromInt(40),
		Legs:  []Leg{{Result: LegWon}, {Result: LegLost}},
	}

	if got := SettledPayout(b); !got.IsZero() {
		t.Fatalf("lost bet must pay nothing, got %s", got)
	}
}
