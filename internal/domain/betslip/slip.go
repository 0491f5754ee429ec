package betslip

import (
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/shopspring/decimal"
)

// Selection is one pick on a slip, identified by (GameID, MarketType, Name).
type Selection struct {
	GameID          string
	GameDescription string
	GameTime        time.Time
	MarketType      odds.MarketType
	Name            string
	Odds            decimal.Decimal
	Line            *decimal.Decimal
	PlayerName      string
}

func (s Selection) sameKey(other Selection) bool {
	return s.GameID == other.GameID && s.MarketType == other.MarketType && s.Name == other.Name
}

func (s Selection) sameMarket(other Selection) bool {
	if s.GameID != other.GameID || s.MarketType != other.MarketType {
		return false
	}
	// Player props share a market type per game; one pick per player line.
	if s.MarketType.IsPlayerProp() {
		return s.PlayerName == other.PlayerName
	}
	return true
}

// Slip is the in-progress, unpersisted set of selections for one session.
// Insertion order is kept for display; the math never depends on it.
type Slip struct {
	Selections []Selection
	Stake      decimal.Decimal
}

func (s *Slip) IsEmpty() bool {
	return len(s.Selections) == 0
}

// Contains reports whether the exact selection key is already on the slip.
func (s *Slip) Contains(selection Selection) bool {
	for _, existing := range s.Selections {
		if existing.sameKey(selection) {
			return true
		}
	}
	return false
}

// Toggle adds the selection; picking the identical selection again removes
// it, and picking a different outcome of an already-picked market replaces
// the earlier pick. At most one pick per market per game survives.
func (s *Slip) Toggle(selection Selection) {
	for i, existing := range s.Selections {
		if existing.sameKey(selection) {
			s.Selections = append(s.Selections[:i], s.Selections[i+1:]...)
			return
		}
	}
	for i, existing := range s.Selections {
		if existing.sameMarket(selection) {
			s.Selections[i] = selection
			return
		}
	}
	s.Selections = append(s.Selections, selection)
}

// Remove drops the selection with the given key, if present.
func (s *Slip) Remove(gameID string, marketType odds.MarketType, name string) {
	for i, existing := range s.Selections {
		if existing.GameID == gameID && existing.MarketType == marketType && existing.Name == name {
			s.Selections = append(s.Selections[:i], s.Selections[i+1:]...)
			return
		}
	}
}

func (s *Slip) Clear() {
	s.Selections = nil
	s.Stake = decimal.Decimal{}
}
