package betslip

import (
	"strings"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/shopspring/decimal"
)

// BetType is the persisted bet classification. Any multi-leg slip persists
// as SGM regardless of whether the legs share a game; the shared-game case
// only changes the display label and the correlation discount.
type BetType string

const (
	BetTypeSingle BetType = "Single"
	BetTypeSGM    BetType = "SGM"
)

var (
	one                 = decimal.NewFromInt(1)
	sameGameH2HSpread   = decimal.NewFromFloat(0.90)
	sameGamePropOverlap = decimal.NewFromFloat(0.95)
)

// Classify returns the persisted bet type for a slip.
func Classify(selections []Selection) BetType {
	if len(selections) > 1 {
		return BetTypeSGM
	}
	return BetTypeSingle
}

// DisplayLabel is the user-facing bet type name.
func DisplayLabel(selections []Selection) string {
	if len(selections) > 1 && allSameGame(selections) {
		return "Same Game Multi"
	}
	if len(selections) > 1 {
		return "Multi"
	}
	return "Single"
}

// RawCombinedOdds is the product of all leg odds before any correlation
// discount. The empty product is 1; an empty slip is never placeable so
// the identity value never reaches a user.
func RawCombinedOdds(selections []Selection) decimal.Decimal {
	combined := one
	for _, selection := range selections {
		combined = combined.Mul(selection.Odds)
	}
	return combined
}

// CorrelationFactor returns the multiplicative discount applied to a
// same-game multi. Legs on one game are not independent, so the raw
// product overstates the fair price. Factors stack multiplicatively.
func CorrelationFactor(selections []Selection) decimal.Decimal {
	factor := one
	if len(selections) < 2 || !allSameGame(selections) {
		return factor
	}

	if hasCorrelatedH2HSpread(selections) {
		factor = factor.Mul(sameGameH2HSpread)
	}
	if hasPropGamePairing(selections) {
		factor = factor.Mul(sameGamePropOverlap)
	}
	return factor
}

// CombinedOdds is the final multiplier for the slip: raw product times
// the correlation factor.
func CombinedOdds(selections []Selection) decimal.Decimal {
	return RawCombinedOdds(selections).Mul(CorrelationFactor(selections))
}

// PotentialPayout computes stake times final combined odds.
func PotentialPayout(stake decimal.Decimal, selections []Selection) decimal.Decimal {
	return stake.Mul(CombinedOdds(selections))
}

func allSameGame(selections []Selection) bool {
	for _, selection := range selections[1:] {
		if selection.GameID != selections[0].GameID {
			return false
		}
	}
	return true
}

// hasCorrelatedH2HSpread reports a h2h pick whose team also appears in a
// spread pick's display name, e.g. "Lakers" with "Lakers +5.5".
func hasCorrelatedH2HSpread(selections []Selection) bool {
	for _, h2h := range selections {
		if h2h.MarketType != odds.MarketHeadToHead {
			continue
		}
		for _, spread := range selections {
			if spread.MarketType != odds.MarketSpread {
				continue
			}
			if strings.Contains(spread.Name, h2h.Name) {
				return true
			}
		}
	}
	return false
}

func hasPropGamePairing(selections []Selection) bool {
	hasProp := false
	hasGameMarket := false
	for _, selection := range selections {
		switch {
		case selection.MarketType.IsPlayerProp():
			hasProp = true
		case selection.MarketType == odds.MarketHeadToHead,
			selection.MarketType == odds.MarketSpread,
			selection.MarketType == odds.MarketTotal:
			hasGameMarket = true
		}
	}
	return hasProp && hasGameMarket
}
