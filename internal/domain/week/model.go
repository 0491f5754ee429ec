package week

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusOpen    Status = "open"
	StatusSettled Status = "settled"
)

// Week is one competition window. Exactly one per (league, weekNumber,
// seasonYear); created on demand by the scheduler.
type Week struct {
	ID         string
	LeagueID   string
	WeekNumber int
	SeasonYear int
	StartDate  time.Time
	EndDate    time.Time
	Status     Status
	WinnerID   string
}

// Key renders the natural identity of a week. Two evaluations inside the
// same boundary always produce the same key.
func Key(leagueID string, seasonYear, weekNumber int) string {
	return fmt.Sprintf("%s:%d:wk%d", leagueID, seasonYear, weekNumber)
}
