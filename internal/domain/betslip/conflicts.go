package betslip

import (
	"fmt"
	"strings"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
)

type ConflictType string

const (
	ConflictHeadToHead ConflictType = "h2h_conflict"
	ConflictTotal      ConflictType = "total_conflict"
	ConflictPlayerProp ConflictType = "player_prop_conflict"
)

// Conflict is a mutually-exclusive or redundant combination on a slip.
// Any conflict blocks placement; it is user-correctable state, not an
// error path.
type Conflict struct {
	Type    ConflictType
	GameID  string
	Message string
}

// DetectConflicts inspects the slip's selections grouped per game. Pure
// and order-independent. Spread-vs-h2h correlation is deliberately not a
// conflict; the aggregator discounts it instead.
func DetectConflicts(selections []Selection) []Conflict {
	byGame := make(map[string][]Selection)
	gameOrder := make([]string, 0, len(selections))
	for _, selection := range selections {
		if _, seen := byGame[selection.GameID]; !seen {
			gameOrder = append(gameOrder, selection.GameID)
		}
		byGame[selection.GameID] = append(byGame[selection.GameID], selection)
	}

	var conflicts []Conflict
	for _, gameID := range gameOrder {
		picks := byGame[gameID]
		conflicts = append(conflicts, detectGameConflicts(gameID, picks)...)
	}
	return conflicts
}

func detectGameConflicts(gameID string, picks []Selection) []Conflict {
	var conflicts []Conflict

	h2hCount := 0
	totalOver, totalUnder := false, false
	propSides := make(map[string]map[string]bool)

	var description string
	for _, pick := range picks {
		if description == "" {
			description = pick.GameDescription
		}
		switch {
		case pick.MarketType == odds.MarketHeadToHead:
			h2hCount++
		case pick.MarketType == odds.MarketTotal:
			switch overUnderSide(pick.Name) {
			case "over":
				totalOver = true
			case "under":
				totalUnder = true
			}
		case pick.MarketType.IsPlayerProp():
			key := pick.PlayerName + "|" + string(pick.MarketType)
			if propSides[key] == nil {
				propSides[key] = make(map[string]bool)
			}
			propSides[key][overUnderSide(pick.Name)] = true
		}
	}

	if h2hCount > 1 {
		conflicts = append(conflicts, Conflict{
			Type:    ConflictHeadToHead,
			GameID:  gameID,
			Message: fmt.Sprintf("multiple head-to-head picks for %s are mutually exclusive", description),
		})
	}
	if totalOver && totalUnder {
		conflicts = append(conflicts, Conflict{
			Type:    ConflictTotal,
			GameID:  gameID,
			Message: fmt.Sprintf("over and under on the total for %s cannot both win", description),
		})
	}
	for key, sides := range propSides {
		if sides["over"] && sides["under"] {
			playerName := key[:strings.Index(key, "|")]
			conflicts = append(conflicts, Conflict{
				Type:    ConflictPlayerProp,
				GameID:  gameID,
				Message: fmt.Sprintf("over and under on the same prop for %s cannot both win", playerName),
			})
		}
	}

	return conflicts
}

func overUnderSide(name string) string {
	lowered := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lowered, "over"):
		return "over"
	case strings.HasPrefix(lowered, "under"):
		return "under"
	default:
		return ""
	}
}
