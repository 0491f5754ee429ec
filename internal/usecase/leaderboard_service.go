package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/courtsidehq/parlay-league/internal/domain/ledger"
	"github.com/courtsidehq/parlay-league/internal/domain/week"
	"github.com/shopspring/decimal"
)

type LeaderboardService struct {
	leagueRepo   league.Repository
	weekRepo     week.Repository
	balanceRepo  ledger.Repository
	weekResolver activeWeekResolver
	now          func() time.Time
}

type activeWeekResolver interface {
	ActiveWeek(ctx context.Context, item league.League) (week.Week, error)
}

func NewLeaderboardService(
	leagueRepo league.Repository,
	weekRepo week.Repository,
	balanceRepo ledger.Repository,
	weekResolver activeWeekResolver,
) *LeaderboardService {
	return &LeaderboardService{
		leagueRepo:   leagueRepo,
		weekRepo:     weekRepo,
		balanceRepo:  balanceRepo,
		weekResolver: weekResolver,
		now:          time.Now,
	}
}

// WeeklyStanding is one ranked weekly leaderboard row.
type WeeklyStanding struct {
	Rank             int
	UserID           string
	DisplayName      string
	Balance          decimal.Decimal
	HighestWinPayout decimal.Decimal
	TotalBets        int
	LastWinTime      *time.Time
}

// SeasonStanding is one ranked season leaderboard row.
type SeasonStanding struct {
	Rank         int
	UserID       string
	DisplayName  string
	SeasonPoints int
}

// Weekly ranks the active week's balances. Sort order: balance desc,
// highest win payout desc, last win time asc (an earlier big win beats a
// later one), stable beyond that. Ranks are sequential 1-based positions.
func (s *LeaderboardService) Weekly(ctx context.Context, leagueID string) ([]WeeklyStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Weekly")
	defer span.End()

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	activeWeek, err := s.weekResolver.ActiveWeek(ctx, item)
	if err != nil {
		return nil, err
	}

	return s.rankWeek(ctx, leagueID, activeWeek.ID)
}

func (s *LeaderboardService) rankWeek(ctx context.Context, leagueID, weekID string) ([]WeeklyStanding, error) {
	balances, err := s.balanceRepo.ListByWeek(ctx, leagueID, weekID)
	if err != nil {
		return nil, fmt.Errorf("list week balances: %w", err)
	}

	sort.SliceStable(balances, func(i, j int) bool {
		if !balances[i].Balance.Equal(balances[j].Balance) {
			return balances[i].Balance.GreaterThan(balances[j].Balance)
		}
		if !balances[i].HighestWinPayout.Equal(balances[j].HighestWinPayout) {
			return balances[i].HighestWinPayout.GreaterThan(balances[j].HighestWinPayout)
		}
		return earlierWin(balances[i].LastWinTime, balances[j].LastWinTime)
	})

	out := make([]WeeklyStanding, 0, len(balances))
	for idx, balance := range balances {
		out = append(out, WeeklyStanding{
			Rank:             idx + 1,
			UserID:           balance.UserID,
			DisplayName:      balance.DisplayName,
			Balance:          balance.Balance,
			HighestWinPayout: balance.HighestWinPayout,
			TotalBets:        balance.TotalBets,
			LastWinTime:      balance.LastWinTime,
		})
	}
	return out, nil
}

// earlierWin orders by last win time ascending; entries without a win
// sort after those with one.
func earlierWin(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

// JointWinners returns the standings tied with the leader on raw values.
// Joint-winner status is a display concern: it re-compares balances and
// tie-break fields, never the assigned sequential ranks.
func JointWinners(standings []WeeklyStanding) []WeeklyStanding {
	if len(standings) == 0 {
		return nil
	}

	leader := standings[0]
	out := []WeeklyStanding{leader}
	for _, row := range standings[1:] {
		if !row.Balance.Equal(leader.Balance) || !row.HighestWinPayout.Equal(leader.HighestWinPayout) {
			break
		}
		if !sameWinTime(row.LastWinTime, leader.LastWinTime) {
			break
		}
		out = append(out, row)
	}

	if len(out) == 1 {
		return out[:1]
	}
	return out
}

func sameWinTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Season ranks league members strictly by season points, stable on ties.
func (s *LeaderboardService) Season(ctx context.Context, leagueID string) ([]SeasonStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Season")
	defer span.End()

	if _, exists, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].SeasonPoints > members[j].SeasonPoints
	})

	out := make([]SeasonStanding, 0, len(members))
	for idx, member := range members {
		out = append(out, SeasonStanding{
			Rank:         idx + 1,
			UserID:       member.UserID,
			DisplayName:  member.DisplayName,
			SeasonPoints: member.SeasonPoints,
		})
	}
	return out, nil
}

// CloseWeek finalizes the active week: ranks the balances, awards season
// points per the fixed rank table, records the winner and marks the week
// settled. Idempotent: a week already settled is left untouched.
func (s *LeaderboardService) CloseWeek(ctx context.Context, leagueID string) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.CloseWeek")
	defer span.End()

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return week.Week{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return week.Week{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	activeWeek, err := s.weekResolver.ActiveWeek(ctx, item)
	if err != nil {
		return week.Week{}, err
	}
	if activeWeek.Status == week.StatusSettled {
		return activeWeek, nil
	}

	standings, err := s.rankWeek(ctx, leagueID, activeWeek.ID)
	if err != nil {
		return week.Week{}, err
	}

	for _, standing := range standings {
		points := league.SeasonPointsForRank(standing.Rank)
		if points == 0 {
			continue
		}
		member, isMember, err := s.leagueRepo.GetMember(ctx, leagueID, standing.UserID)
		if err != nil {
			return week.Week{}, fmt.Errorf("get member for award user=%s: %w", standing.UserID, err)
		}
		if !isMember {
			continue
		}
		member.SeasonPoints += points
		if err := s.leagueRepo.UpdateMember(ctx, member); err != nil {
			return week.Week{}, fmt.Errorf("award season points user=%s: %w", standing.UserID, err)
		}
	}

	if len(standings) > 0 {
		activeWeek.WinnerID = standings[0].UserID
	}
	activeWeek.Status = week.StatusSettled
	if err := s.weekRepo.Update(ctx, activeWeek); err != nil {
		return week.Week{}, fmt.Errorf("settle week: %w", err)
	}

	return activeWeek, nil
}
