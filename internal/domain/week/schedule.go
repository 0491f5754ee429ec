package week

import (
	"fmt"
	"time"
)

// The competition calendar is pinned to one civil timezone; weekly
// boundaries are local midnights there, not UTC.
const calendarZone = "Australia/Sydney"

// Season weeks start on Monday and the season anchor is 1 October,
// matching the basketball season tip-off window.
const (
	weekStartDay = time.Monday
	anchorMonth  = time.October
	anchorDay    = 1
)

type Scheduler struct {
	loc *time.Location
}

func NewScheduler() (*Scheduler, error) {
	loc, err := time.LoadLocation(calendarZone)
	if err != nil {
		return nil, fmt.Errorf("load calendar zone %s: %w", calendarZone, err)
	}
	return &Scheduler{loc: loc}, nil
}

// Boundary is the resolved weekly window for an evaluation instant.
type Boundary struct {
	WeekNumber int
	SeasonYear int
	StartDate  time.Time
	EndDate    time.Time
}

// Resolve computes the canonical weekly boundary containing now.
// Idempotent: any two instants inside the same boundary resolve to the
// identical week number and season year.
func (s *Scheduler) Resolve(now time.Time) Boundary {
	local := now.In(s.loc)

	start := s.mostRecentWeekStart(local)
	end := start.AddDate(0, 0, 6)
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, s.loc)

	anchorStart := s.mostRecentWeekStart(s.seasonAnchor(local))
	weekNumber := calendarDaysBetween(anchorStart, start)/7 + 1
	if weekNumber < 1 {
		weekNumber = 1
	}

	return Boundary{
		WeekNumber: weekNumber,
		SeasonYear: s.seasonYear(local),
		StartDate:  start,
		EndDate:    end,
	}
}

// OneOffBoundary scopes a single-event competition to the event's local
// calendar day: midnight to the next midnight.
func (s *Scheduler) OneOffBoundary(eventDate time.Time) (time.Time, time.Time) {
	local := eventDate.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// WithinGameDay reports whether a game starts inside the event's local
// calendar day. Used to filter the board for one-off competitions.
func (s *Scheduler) WithinGameDay(eventDate, gameTime time.Time) bool {
	start, end := s.OneOffBoundary(eventDate)
	localGame := gameTime.In(s.loc)
	return !localGame.Before(start) && localGame.Before(end)
}

func (s *Scheduler) mostRecentWeekStart(local time.Time) time.Time {
	daysBack := (int(local.Weekday()) - int(weekStartDay) + 7) % 7
	start := local.AddDate(0, 0, -daysBack)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.loc)
}

// calendarDaysBetween counts civil days from one local date to another.
// Both dates are re-anchored at UTC midnight first, so daylight-saving
// transitions in the calendar zone (166- or 170-hour weeks) cannot skew
// the count the way elapsed-duration division would.
func calendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

// seasonAnchor is local midnight on 1 October, rolled back a year when
// now precedes it in the current year.
func (s *Scheduler) seasonAnchor(local time.Time) time.Time {
	year := local.Year()
	anchor := time.Date(year, anchorMonth, anchorDay, 0, 0, 0, 0, s.loc)
	if local.Before(anchor) {
		anchor = time.Date(year-1, anchorMonth, anchorDay, 0, 0, 0, 0, s.loc)
	}
	return anchor
}

// seasonYear is the ending year of the season in progress.
func (s *Scheduler) seasonYear(local time.Time) int {
	if local.Month() >= anchorMonth {
		return local.Year() + 1
	}
	return local.Year()
}
