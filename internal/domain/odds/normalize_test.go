package odds

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeGame_SnakeCaseRecord(t *testing.T) {
	t.Parallel()

	raw := RawGame{
		"id":            "game-1",
		"home_team":     "Los Angeles Lakers",
		"away_team":     "Boston Celtics",
		"commence_time": "2026-01-15T08:30:00Z",
		"markets": []any{
			map[string]any{
				"key": "h2h",
				"outcomes": []any{
					map[string]any{"name": "Los Angeles Lakers", "price": 1.85},
					map[string]any{"name": "Boston Celtics", "price": 1.95},
				},
			},
			map[string]any{
				"key": "spreads",
				"outcomes": []any{
					map[string]any{"name": "Los Angeles Lakers", "price": 1.91, "point": -5.5},
					map[string]any{"name": "Boston Celtics", "price": 1.91, "point": 5.5},
				},
			},
		},
	}

	game, err := NormalizeGame(raw)
	if err != nil {
		t.Fatalf("NormalizeGame error: %v", err)
	}

	if game.ID != "game-1" || game.HomeTeam != "Los Angeles Lakers" || game.AwayTeam != "Boston Celtics" {
		t.Fatalf("unexpected identity fields: %+v", game)
	}
	if len(game.Markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(game.Markets))
	}
	if game.Markets[0].Type != MarketHeadToHead {
		t.Fatalf("expected h2h market, got %s", game.Markets[0].Type)
	}
	if game.Markets[1].Type != MarketSpread {
		t.Fatalf("expected spreads to fold into spread, got %s", game.Markets[1].Type)
	}
	if game.Markets[1].Outcomes[0].Line == nil || !game.Markets[1].Outcomes[0].Line.Equal(decimal.NewFromFloat(-5.5)) {
		t.Fatalf("expected spread line -5.5, got %+v", game.Markets[1].Outcomes[0].Line)
	}
}

func TestNormalizeGame_PascalCaseRecordAndMissingMarkets(t *testing.T) {
	t.Parallel()

	raw := RawGame{
		"GameId":       "game-2",
		"HomeTeam":     "Denver Nuggets",
		"AwayTeam":     "Phoenix Suns",
		"CommenceTime": "2026-01-16T02:00:00Z",
	}

	game, err := NormalizeGame(raw)
	if err != nil {
		t.Fatalf("NormalizeGame error: %v", err)
	}
	if game.ID != "game-2" {
		t.Fatalf("expected PascalCase id to resolve, got %q", game.ID)
	}
	if len(game.Markets) != 0 {
		t.Fatalf("expected no markets, got %d", len(game.Markets))
	}
}

func TestNormalizeGame_FieldPrecedencePrefersSnakeCase(t *testing.T) {
	t.Parallel()

	raw := RawGame{
		"id":            "snake-id",
		"GameId":        "pascal-id",
		"home_team":     "Home",
		"away_team":     "Away",
		"commence_time": "2026-01-15T08:30:00Z",
	}

	game, err := NormalizeGame(raw)
	if err != nil {
		t.Fatalf("NormalizeGame error: %v", err)
	}
	if game.ID != "snake-id" {
		t.Fatalf("expected snake_case field to win, got %q", game.ID)
	}
}

func TestNormalizeGame_RejectsRecordWithoutID(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeGame(RawGame{"home_team": "Home"}); err == nil {
		t.Fatalf("expected error for record without id")
	}
}

func TestNormalizeMarketType_Aliases(t *testing.T) {
	t.Parallel()

	cases := map[string]MarketType{
		"h2h":                            MarketHeadToHead,
		"Moneyline":                      MarketHeadToHead,
		"spreads":                        MarketSpread,
		"TOTALS":                         MarketTotal,
		"player_pra":                     MarketPlayerPRA,
		"player_points_rebounds_assists": MarketPlayerPRA,
	}
	for raw, want := range cases {
		got, ok := NormalizeMarketType(raw)
		if !ok || got != want {
			t.Fatalf("NormalizeMarketType(%q) = %q, %t; want %q", raw, got, ok, want)
		}
	}

	if _, ok := NormalizeMarketType("exotic_teaser"); ok {
		t.Fatalf("expected unknown market spelling to be rejected")
	}
}

func TestGameLocked_DerivedFromCommenceTime(t *testing.T) {
	t.Parallel()

	tipOff := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	game := Game{ID: "g", CommenceTime: tipOff}

	if game.Locked(tipOff.Add(-time.Minute)) {
		t.Fatalf("game should be open before commence time")
	}
	if !game.Locked(tipOff) {
		t.Fatalf("game should lock exactly at commence time")
	}
	if !game.Locked(tipOff.Add(time.Hour)) {
		t.Fatalf("game should stay locked after commence time")
	}
}

func TestPairPlayerProps_DiscardsAsymmetricQuotes(t *testing.T) {
	t.Parallel()

	quotes := []RawPropQuote{
		{"player_id": "p1", "player_name": "LeBron James", "prop_type": "player_points", "side": "over", "line": 25.5, "price": 1.87},
		{"player_id": "p1", "player_name": "LeBron James", "prop_type": "player_points", "side": "under", "line": 25.5, "price": 1.93},
		{"player_id": "p2", "player_name": "Anthony Davis", "prop_type": "player_rebounds", "side": "over", "line": 11.5, "price": 1.9},
	}

	props := PairPlayerProps(quotes)
	if len(props) != 1 {
		t.Fatalf("expected 1 paired prop, got %d", len(props))
	}

	prop := props[0]
	if prop.PlayerID != "p1" || prop.PropType != MarketPlayerPoints {
		t.Fatalf("unexpected prop identity: %+v", prop)
	}
	if !prop.OverOdds.Equal(decimal.NewFromFloat(1.87)) || !prop.UnderOdds.Equal(decimal.NewFromFloat(1.93)) {
		t.Fatalf("unexpected prop odds: %+v", prop)
	}
	if !prop.Line.Equal(decimal.NewFromFloat(25.5)) {
		t.Fatalf("unexpected prop line: %s", prop.Line)
	}
}

func TestPairPlayerProps_CamelCaseVariant(t *testing.T) {
	t.Parallel()

	quotes := []RawPropQuote{
		{"playerId": "p9", "playerName": "Nikola Jokic", "propType": "player_pra", "side": "over", "point": 45.5, "odds": 1.8},
		{"playerId": "p9", "playerName": "Nikola Jokic", "propType": "player_pra", "side": "under", "point": 45.5, "odds": 2.0},
	}

	props := PairPlayerProps(quotes)
	if len(props) != 1 {
		t.Fatalf("expected 1 paired prop, got %d", len(props))
	}
	if props[0].PropType != MarketPlayerPRA {
		t.Fatalf("expected player_pra alias to fold into canonical PRA type, got %s", props[0].PropType)
	}
}
