package week

import (
	"testing"
	"time"
)

func mustScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func TestResolve_WeekSpansSevenDays(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t)
	// A Wednesday evening in Sydney, mid-season.
	now := time.Date(2026, 1, 14, 19, 0, 0, 0, time.UTC)

	boundary := s.Resolve(now)
	if boundary.StartDate.Weekday() != time.Monday {
		t.Fatalf("week must start on Monday, got %s", boundary.StartDate.Weekday())
	}
	if boundary.StartDate.Hour() != 0 || boundary.StartDate.Minute() != 0 {
		t.Fatalf("week must start at local midnight, got %s", boundary.StartDate)
	}

	days := boundary.EndDate.YearDay() - boundary.StartDate.YearDay()
	if days != 6 {
		t.Fatalf("end - start must span days 0..6 inclusive, got %d", days)
	}
}

func TestResolve_IdempotentWithinBoundary(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t)
	first := s.Resolve(time.Date(2026, 1, 13, 3, 0, 0, 0, time.UTC))
	second := s.Resolve(time.Date(2026, 1, 15, 22, 0, 0, 0, time.UTC))

	if first.WeekNumber != second.WeekNumber || first.SeasonYear != second.SeasonYear {
		t.Fatalf("same boundary must resolve identically: %+v vs %+v", first, second)
	}
	if !first.StartDate.Equal(second.StartDate) || !first.EndDate.Equal(second.EndDate) {
		t.Fatalf("same boundary must share dates: %+v vs %+v", first, second)
	}
}

func TestResolve_StableAcrossDaylightSavingShift(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t)

	// Sydney clocks jump forward on the first Sunday of October, so the
	// opening week of the season has only 167 wall-clock hours. Both
	// sides of the shift must still resolve to the same week.
	friday := s.Resolve(time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC))
	sunday := s.Resolve(time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))
	if friday.WeekNumber != sunday.WeekNumber {
		t.Fatalf("daylight saving must not split a week: %+v vs %+v", friday, sunday)
	}
	if !friday.StartDate.Equal(sunday.StartDate) {
		t.Fatalf("daylight saving must not move the week start: %s vs %s", friday.StartDate, sunday.StartDate)
	}

	// The following Tuesday belongs to the next week, shortened hours or
	// not.
	tuesday := s.Resolve(time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC))
	if tuesday.WeekNumber != sunday.WeekNumber+1 {
		t.Fatalf("week counter must advance exactly one past the shift, got %d after %d", tuesday.WeekNumber, sunday.WeekNumber)
	}
}

func TestResolve_SeasonYearIsEndingYear(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t)

	// November sits after the anchor: season ends next calendar year.
	preNewYear := s.Resolve(time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC))
	if preNewYear.SeasonYear != 2026 {
		t.Fatalf("November 2025 belongs to season 2026, got %d", preNewYear.SeasonYear)
	}

	// March sits before the anchor: same season, same ending year.
	postNewYear := s.Resolve(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if postNewYear.SeasonYear != 2026 {
		t.Fatalf("March 2026 belongs to season 2026, got %d", postNewYear.SeasonYear)
	}
}

func TestResolve_AnchorRollsBackBeforeOctober(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t)

	// Early in the season the counter starts at 1.
	opening := s.Resolve(time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC))
	if opening.WeekNumber != 1 {
		t.Fatalf("first days of October are week 1, got %d", opening.WeekNumber)
	}

	// Mid-January is ~15 weeks after the October anchor, counted against
	// the previous year's anchor, never reset at New Year.
	january := s.Resolve(time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC))
	if january.WeekNumber < 14 || january.WeekNumber > 16 {
		t.Fatalf("January week number must count from the prior October, got %d", january.WeekNumber)
	}
}

func TestResolve_FlooredAtWeekOne(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t)
	boundary := s.Resolve(time.Date(2025, 10, 1, 1, 0, 0, 0, time.UTC))
	if boundary.WeekNumber < 1 {
		t.Fatalf("week number must never drop below 1, got %d", boundary.WeekNumber)
	}
}

func TestOneOffBoundary_SingleLocalCalendarDay(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t)
	event := time.Date(2026, 1, 14, 9, 30, 0, 0, time.UTC)

	start, end := s.OneOffBoundary(event)
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("one-off boundary must span one local day, got %s", end.Sub(start))
	}

	if !s.WithinGameDay(event, event) {
		t.Fatalf("event itself must fall inside its game day")
	}
	if s.WithinGameDay(event, event.Add(48*time.Hour)) {
		t.Fatalf("games two days out must be filtered")
	}
}

func TestKey_StableIdentity(t *testing.T) {
	t.Parallel()

	if Key("lg1", 2026, 15) != Key("lg1", 2026, 15) {
		t.Fatalf("identical inputs must produce identical keys")
	}
	if Key("lg1", 2026, 15) == Key("lg1", 2026, 16) {
		t.Fatalf("different weeks must not collide")
	}
}
