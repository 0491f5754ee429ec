package betslip

import (
	"testing"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/shopspring/decimal"
)

func h2hPick(gameID, team string, price float64) Selection {
	return Selection{
		GameID:     gameID,
		MarketType: odds.MarketHeadToHead,
		Name:       team,
		Odds:       decimal.NewFromFloat(price),
	}
}

func TestSlip_ToggleAddsAndRemoves(t *testing.T) {
	t.Parallel()

	slip := &Slip{}
	pick := h2hPick("g1", "Lakers", 1.85)

	slip.Toggle(pick)
	if slip.IsEmpty() || !slip.Contains(pick) {
		t.Fatalf("expected pick on slip after first toggle")
	}

	slip.Toggle(pick)
	if !slip.IsEmpty() {
		t.Fatalf("expected identical toggle to remove the pick, slip=%+v", slip.Selections)
	}
}

func TestSlip_ToggleReplacesOtherOutcomeOfSameMarket(t *testing.T) {
	t.Parallel()

	slip := &Slip{}
	slip.Toggle(h2hPick("g1", "Lakers", 1.85))
	slip.Toggle(h2hPick("g1", "Celtics", 1.95))

	if len(slip.Selections) != 1 {
		t.Fatalf("expected one pick per market per game, got %d", len(slip.Selections))
	}
	if slip.Selections[0].Name != "Celtics" {
		t.Fatalf("expected later pick to replace earlier, got %q", slip.Selections[0].Name)
	}
}

func TestSlip_TogglePlayerPropsAreSeparateMarkets(t *testing.T) {
	t.Parallel()

	slip := &Slip{}
	slip.Toggle(Selection{GameID: "g1", MarketType: odds.MarketPlayerPoints, Name: "Over 25.5", PlayerName: "LeBron James", Odds: decimal.NewFromFloat(1.87)})
	slip.Toggle(Selection{GameID: "g1", MarketType: odds.MarketPlayerPoints, Name: "Over 30.5", PlayerName: "Anthony Davis", Odds: decimal.NewFromFloat(2.05)})

	if len(slip.Selections) != 2 {
		t.Fatalf("props for different players must not replace each other, got %d picks", len(slip.Selections))
	}
}

func TestSlip_ClearEmptiesEverything(t *testing.T) {
	t.Parallel()

	slip := &Slip{Stake: decimal.NewFromInt(50)}
	slip.Toggle(h2hPick("g1", "Lakers", 1.85))
	slip.Toggle(h2hPick("g2", "Nuggets", 1.6))

	slip.Clear()
	if !slip.IsEmpty() || !slip.Stake.IsZero() {
		t.Fatalf("expected cleared slip, got %+v", slip)
	}
}

func TestSlip_RemoveDropsOnlyMatchingKey(t *testing.T) {
	t.Parallel()

	slip := &Slip{}
	slip.Toggle(h2hPick("g1", "Lakers", 1.85))
	slip.Toggle(h2hPick("g2", "Nuggets", 1.6))

	slip.Remove("g1", odds.MarketHeadToHead, "Lakers")
	if len(slip.Selections) != 1 || slip.Selections[0].GameID != "g2" {
		t.Fatalf("unexpected selections after remove: %+v", slip.Selections)
	}
}
