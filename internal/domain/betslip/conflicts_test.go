package betslip

import (
	"testing"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/shopspring/decimal"
)

func TestDetectConflicts_TwoHeadToHeadPicksSameGame(t *testing.T) {
	t.Parallel()

	selections := []Selection{
		h2hPick("g1", "Lakers", 1.85),
		{GameID: "g1", MarketType: odds.MarketHeadToHead, Name: "Celtics", Odds: decimal.NewFromFloat(1.95)},
	}

	conflicts := DetectConflicts(selections)
	if len(conflicts) != 1 {
		t.Fatalf("expected exactly one conflict, got %d: %+v", len(conflicts), conflicts)
	}
	if conflicts[0].Type != ConflictHeadToHead {
		t.Fatalf("expected %s, got %s", ConflictHeadToHead, conflicts[0].Type)
	}
	if conflicts[0].GameID != "g1" {
		t.Fatalf("conflict must name the game it belongs to, got %q", conflicts[0].GameID)
	}
}

func TestDetectConflicts_OverAndUnderOnTotal(t *testing.T) {
	t.Parallel()

	selections := []Selection{
		{GameID: "g1", MarketType: odds.MarketTotal, Name: "Over 220.5", Odds: decimal.NewFromFloat(1.9)},
		{GameID: "g1", MarketType: odds.MarketTotal, Name: "Under 220.5", Odds: decimal.NewFromFloat(1.9)},
	}

	conflicts := DetectConflicts(selections)
	if len(conflicts) != 1 || conflicts[0].Type != ConflictTotal {
		t.Fatalf("expected one total_conflict, got %+v", conflicts)
	}
}

func TestDetectConflicts_PlayerPropBothSides(t *testing.T) {
	t.Parallel()

	selections := []Selection{
		{GameID: "g1", MarketType: odds.MarketPlayerPoints, Name: "Over 25.5", PlayerName: "LeBron James", Odds: decimal.NewFromFloat(1.87)},
		{GameID: "g1", MarketType: odds.MarketPlayerPoints, Name: "Under 25.5", PlayerName: "LeBron James", Odds: decimal.NewFromFloat(1.93)},
	}

	conflicts := DetectConflicts(selections)
	if len(conflicts) != 1 || conflicts[0].Type != ConflictPlayerProp {
		t.Fatalf("expected one player_prop_conflict, got %+v", conflicts)
	}
	if conflicts[0].GameID != "g1" {
		t.Fatalf("conflict must name the game it belongs to, got %q", conflicts[0].GameID)
	}
}

func TestDetectConflicts_SpreadWithHeadToHeadIsAllowed(t *testing.T) {
	t.Parallel()

	selections := []Selection{
		h2hPick("g1", "Lakers", 1.85),
		{GameID: "g1", MarketType: odds.MarketSpread, Name: "Lakers +5.5", Odds: decimal.NewFromFloat(1.91)},
	}

	if conflicts := DetectConflicts(selections); len(conflicts) != 0 {
		t.Fatalf("spread plus h2h is correlated, not conflicting: %+v", conflicts)
	}
}

func TestDetectConflicts_DifferentGamesNeverConflict(t *testing.T) {
	t.Parallel()

	selections := []Selection{
		h2hPick("g1", "Lakers", 1.85),
		h2hPick("g2", "Lakers", 1.85),
	}

	if conflicts := DetectConflicts(selections); len(conflicts) != 0 {
		t.Fatalf("picks on different games must not conflict: %+v", conflicts)
	}
}

func TestDetectConflicts_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := []Selection{
		h2hPick("g1", "Lakers", 1.85),
		{GameID: "g1", MarketType: odds.MarketHeadToHead, Name: "Celtics", Odds: decimal.NewFromFloat(1.95)},
		{GameID: "g2", MarketType: odds.MarketTotal, Name: "Over 210.5", Odds: decimal.NewFromFloat(1.9)},
	}
	b := []Selection{a[2], a[1], a[0]}

	if got, want := len(DetectConflicts(a)), len(DetectConflicts(b)); got != want {
		t.Fatalf("conflict count must not depend on order: %d vs %d", got, want)
	}
}
