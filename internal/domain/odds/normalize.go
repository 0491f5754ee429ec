package odds

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawGame is a single decoded feed record. Producers disagree on field
// casing (snake_case, camelCase, PascalCase), so records are kept as loose
// maps until normalized.
type RawGame map[string]any

// RawPropQuote is one side of a player prop quote as delivered by the feed.
type RawPropQuote map[string]any

// Field precedence per attribute: snake_case first (the primary provider),
// then camelCase, then PascalCase. The order is part of the normalizer
// contract and is exercised directly by tests.
var (
	gameIDFields       = []string{"id", "game_id", "gameId", "GameId", "Id"}
	homeTeamFields     = []string{"home_team", "homeTeam", "HomeTeam"}
	awayTeamFields     = []string{"away_team", "awayTeam", "AwayTeam"}
	commenceTimeFields = []string{"commence_time", "commenceTime", "CommenceTime", "start_time", "startTime"}
	marketsFields      = []string{"markets", "bookmaker_markets", "Markets"}

	marketTypeFields  = []string{"key", "market_type", "marketType", "type", "Type"}
	outcomesFields    = []string{"outcomes", "Outcomes"}
	outcomeNameFields = []string{"name", "Name", "label"}
	outcomeOddsFields = []string{"price", "odds", "Price", "Odds"}
	outcomeLineFields = []string{"point", "line", "handicap", "Point", "Line"}

	propPlayerIDFields   = []string{"player_id", "playerId", "PlayerId"}
	propPlayerNameFields = []string{"player_name", "playerName", "PlayerName", "description"}
	propTypeFields       = []string{"prop_type", "propType", "market", "key"}
	propSideFields       = []string{"side", "name", "Name"}
	propLineFields       = []string{"line", "point", "Line", "Point"}
	propOddsFields       = []string{"price", "odds", "Price", "Odds"}
)

// marketAliases folds provider spellings into the canonical vocabulary.
// Lookups are lowercase.
var marketAliases = map[string]MarketType{
	"h2h":       MarketHeadToHead,
	"head2head": MarketHeadToHead,
	"moneyline": MarketHeadToHead,

	"spread":  MarketSpread,
	"spreads": MarketSpread,

	"total":  MarketTotal,
	"totals": MarketTotal,

	"player_points":   MarketPlayerPoints,
	"player_rebounds": MarketPlayerRebounds,
	"player_assists":  MarketPlayerAssists,
	"player_threes":   MarketPlayerThrees,

	"player_points_rebounds_assists": MarketPlayerPRA,
	"player_pra":                     MarketPlayerPRA,
}

// NormalizeMarketType maps a provider market spelling onto the canonical
// vocabulary. Unknown spellings are rejected rather than passed through.
func NormalizeMarketType(raw string) (MarketType, bool) {
	canonical, ok := marketAliases[strings.ToLower(strings.TrimSpace(raw))]
	return canonical, ok
}

// NormalizeGame converts one raw feed record into the canonical Game.
// Pure: no I/O, no caching. Missing optional fields default to empty;
// only the identity fields are mandatory.
func NormalizeGame(raw RawGame) (Game, error) {
	id := pickString(raw, gameIDFields)
	if id == "" {
		return Game{}, fmt.Errorf("raw game has no id field")
	}

	commenceTime, err := pickTime(raw, commenceTimeFields)
	if err != nil {
		return Game{}, fmt.Errorf("game %s: %w", id, err)
	}

	game := Game{
		ID:           id,
		HomeTeam:     pickString(raw, homeTeamFields),
		AwayTeam:     pickString(raw, awayTeamFields),
		CommenceTime: commenceTime,
	}

	for _, rawMarket := range pickList(raw, marketsFields) {
		market, ok := normalizeMarket(rawMarket)
		if !ok {
			continue
		}
		game.Markets = append(game.Markets, market)
	}

	return game, nil
}

func normalizeMarket(raw map[string]any) (Market, bool) {
	marketType, ok := NormalizeMarketType(pickString(raw, marketTypeFields))
	if !ok {
		return Market{}, false
	}

	market := Market{Type: marketType}
	for _, rawOutcome := range pickList(raw, outcomesFields) {
		name := pickString(rawOutcome, outcomeNameFields)
		price, ok := pickDecimal(rawOutcome, outcomeOddsFields)
		if name == "" || !ok {
			continue
		}
		outcome := Outcome{Name: name, Odds: price}
		if line, ok := pickDecimal(rawOutcome, outcomeLineFields); ok {
			outcome.Line = &line
		}
		market.Outcomes = append(market.Outcomes, outcome)
	}

	if len(market.Outcomes) == 0 {
		return Market{}, false
	}
	return market, true
}

// PairPlayerProps groups raw quotes by (player, prop type) and keeps only
// pairs where both an Over and an Under price are present. Asymmetric
// quotes are discarded; a one-sided prop is not offerable.
func PairPlayerProps(quotes []RawPropQuote) []PlayerProp {
	type propKey struct {
		playerID string
		propType MarketType
	}
	type propSides struct {
		playerName string
		line       decimal.Decimal
		over       *decimal.Decimal
		under      *decimal.Decimal
	}

	sides := make(map[propKey]*propSides)
	order := make([]propKey, 0, len(quotes)/2)

	for _, quote := range quotes {
		propType, ok := NormalizeMarketType(pickString(quote, propTypeFields))
		if !ok || !propType.IsPlayerProp() {
			continue
		}
		playerID := pickString(quote, propPlayerIDFields)
		if playerID == "" {
			continue
		}
		price, ok := pickDecimal(quote, propOddsFields)
		if !ok {
			continue
		}
		line, ok := pickDecimal(quote, propLineFields)
		if !ok {
			continue
		}

		key := propKey{playerID: playerID, propType: propType}
		entry, exists := sides[key]
		if !exists {
			entry = &propSides{
				playerName: pickString(quote, propPlayerNameFields),
				line:       line,
			}
			sides[key] = entry
			order = append(order, key)
		}

		switch strings.ToLower(pickString(quote, propSideFields)) {
		case "over":
			entry.over = &price
		case "under":
			entry.under = &price
		}
	}

	out := make([]PlayerProp, 0, len(order))
	for _, key := range order {
		entry := sides[key]
		if entry.over == nil || entry.under == nil {
			continue
		}
		out = append(out, PlayerProp{
			PlayerID:   key.playerID,
			PlayerName: entry.playerName,
			PropType:   key.propType,
			Line:       entry.line,
			OverOdds:   *entry.over,
			UnderOdds:  *entry.under,
		})
	}

	return out
}

func pickString(raw map[string]any, fields []string) string {
	for _, field := range fields {
		if value, ok := raw[field]; ok {
			if text, ok := value.(string); ok && strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text)
			}
		}
	}
	return ""
}

func pickDecimal(raw map[string]any, fields []string) (decimal.Decimal, bool) {
	for _, field := range fields {
		value, ok := raw[field]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case float64:
			return decimal.NewFromFloat(typed), true
		case int:
			return decimal.NewFromInt(int64(typed)), true
		case int64:
			return decimal.NewFromInt(typed), true
		case string:
			parsed, err := decimal.NewFromString(strings.TrimSpace(typed))
			if err == nil {
				return parsed, true
			}
		}
	}
	return decimal.Decimal{}, false
}

func pickTime(raw map[string]any, fields []string) (time.Time, error) {
	for _, field := range fields {
		value, ok := raw[field]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case string:
			if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(typed)); err == nil {
				return parsed, nil
			}
		case float64:
			// Unix seconds, the compact feed variant.
			return time.Unix(int64(typed), 0).UTC(), nil
		case time.Time:
			return typed, nil
		}
	}
	return time.Time{}, fmt.Errorf("no parseable commence time")
}

func pickList(raw map[string]any, fields []string) []map[string]any {
	for _, field := range fields {
		value, ok := raw[field]
		if !ok {
			continue
		}
		items, ok := value.([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if entry, ok := item.(map[string]any); ok {
				out = append(out, entry)
			}
		}
		return out
	}
	return nil
}
