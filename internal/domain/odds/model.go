package odds

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketType is the canonical market vocabulary. Provider spellings are
// folded into these values by Normalize; nothing outside this package
// should ever see a provider-specific spelling.
type MarketType string

const (
	MarketHeadToHead MarketType = "h2h"
	MarketSpread     MarketType = "spread"
	MarketTotal      MarketType = "total"

	MarketPlayerPoints   MarketType = "player_points"
	MarketPlayerRebounds MarketType = "player_rebounds"
	MarketPlayerAssists  MarketType = "player_assists"
	MarketPlayerThrees   MarketType = "player_threes"
	MarketPlayerPRA      MarketType = "player_points_rebounds_assists"
)

// IsPlayerProp reports whether the market quotes an individual player line.
func (m MarketType) IsPlayerProp() bool {
	switch m {
	case MarketPlayerPoints, MarketPlayerRebounds, MarketPlayerAssists, MarketPlayerThrees, MarketPlayerPRA:
		return true
	default:
		return false
	}
}

// Outcome is a single quoted price within a market. Immutable once built.
type Outcome struct {
	Name string
	Odds decimal.Decimal
	Line *decimal.Decimal
}

// Market belongs to exactly one game.
type Market struct {
	Type     MarketType
	Outcomes []Outcome
}

// Game is the canonical representation of one fixture in the feed.
type Game struct {
	ID           string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	Markets      []Market
}

// Locked reports whether betting on the game is closed. Lock state is
// always re-derived from the commence time; a persisted flag can be stale
// across the cache validity window.
func (g Game) Locked(now time.Time) bool {
	return !g.CommenceTime.After(now)
}

// Market returns the game's market of the given type, if quoted.
func (g Game) Market(marketType MarketType) (Market, bool) {
	for _, m := range g.Markets {
		if m.Type == marketType {
			return m, true
		}
	}
	return Market{}, false
}

// Description renders the fixture as "Away @ Home", the display form used
// on slips and bet legs.
func (g Game) Description() string {
	return g.AwayTeam + " @ " + g.HomeTeam
}

// PlayerProp is a paired Over/Under quote for one player and stat type.
// Quotes missing either side never become a PlayerProp.
type PlayerProp struct {
	PlayerID   string
	PlayerName string
	PropType   MarketType
	Line       decimal.Decimal
	OverOdds   decimal.Decimal
	UnderOdds  decimal.Decimal
}
