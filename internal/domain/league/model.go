package league

import (
	"fmt"
	"time"
)

type CompetitionType string

const (
	// CompetitionSeason runs week after week against the season calendar.
	CompetitionSeason CompetitionType = "season"
	// CompetitionOneOff scopes the whole competition to a single game day.
	CompetitionOneOff CompetitionType = "one_off"
)

type BetVisibilityMode string

const (
	VisibilityVisible           BetVisibilityMode = "visible"
	VisibilityHidden            BetVisibilityMode = "hidden"
	VisibilityVisibleWhenLocked BetVisibilityMode = "visible_when_locked"
)

// League is a private competition group.
type League struct {
	ID                string
	Name              string
	InviteCode        string
	CompetitionType   CompetitionType
	EventDate         *time.Time
	BetVisibilityMode BetVisibilityMode
	CreatedAt         time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	switch l.CompetitionType {
	case CompetitionSeason:
	case CompetitionOneOff:
		if l.EventDate == nil {
			return fmt.Errorf("one-off league requires an event date")
		}
	default:
		return fmt.Errorf("unknown competition type %q", l.CompetitionType)
	}
	switch l.BetVisibilityMode {
	case VisibilityVisible, VisibilityHidden, VisibilityVisibleWhenLocked:
	default:
		return fmt.Errorf("unknown bet visibility mode %q", l.BetVisibilityMode)
	}
	return nil
}

// Member is a user's membership in a league. SeasonPoints accumulates at
// week close via the rank table and is never mutated elsewhere.
type Member struct {
	LeagueID     string
	UserID       string
	DisplayName  string
	SeasonPoints int
	IsAdmin      bool
	JoinedAt     time.Time
}

// seasonPointsByRank is the fixed week-close award table. 8th and below
// score nothing.
var seasonPointsByRank = []int{10, 7, 5, 4, 3, 2, 1}

// SeasonPointsForRank returns the points awarded for a 1-based weekly rank.
func SeasonPointsForRank(rank int) int {
	if rank < 1 || rank > len(seasonPointsByRank) {
		return 0
	}
	return seasonPointsByRank[rank-1]
}
