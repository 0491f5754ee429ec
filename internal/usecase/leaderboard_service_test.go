package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/courtsidehq/parlay-league/internal/domain/ledger"
	"github.com/courtsidehq/parlay-league/internal/domain/week"
	"github.com/courtsidehq/parlay-league/internal/infrastructure/repository/memory"
	"github.com/shopspring/decimal"
)

type fixedWeekResolver struct {
	week week.Week
}

func (r *fixedWeekResolver) ActiveWeek(context.Context, league.League) (week.Week, error) {
	return r.week, nil
}

type leaderboardFixture struct {
	service     *LeaderboardService
	leagueRepo  *memory.LeagueRepository
	weekRepo    *memory.WeekRepository
	balanceRepo *memory.BalanceRepository
	week        week.Week
	league      league.League
}

func newLeaderboardFixture(t *testing.T) *leaderboardFixture {
	t.Helper()

	f := &leaderboardFixture{
		leagueRepo:  memory.NewLeagueRepository(),
		weekRepo:    memory.NewWeekRepository(),
		balanceRepo: memory.NewBalanceRepository(),
	}

	f.league = league.League{
		ID:                "lg-1",
		Name:              "Office League",
		InviteCode:        "ABCD23",
		CompetitionType:   league.CompetitionSeason,
		BetVisibilityMode: league.VisibilityVisible,
	}
	if err := f.leagueRepo.Create(context.Background(), f.league); err != nil {
		t.Fatalf("create league: %v", err)
	}

	f.week = week.Week{
		ID:         week.Key(f.league.ID, 2026, 7),
		LeagueID:   f.league.ID,
		WeekNumber: 7,
		SeasonYear: 2026,
		Status:     week.StatusOpen,
	}
	if _, err := f.weekRepo.GetOrCreate(context.Background(), f.week); err != nil {
		t.Fatalf("create week: %v", err)
	}

	f.service = NewLeaderboardService(f.leagueRepo, f.weekRepo, f.balanceRepo, &fixedWeekResolver{week: f.week})
	return f
}

func (f *leaderboardFixture) addMember(t *testing.T, userID string, points int) {
	t.Helper()
	member := league.Member{LeagueID: f.league.ID, UserID: userID, DisplayName: userID, SeasonPoints: points}
	if err := f.leagueRepo.AddMember(context.Background(), member); err != nil {
		t.Fatalf("add member %s: %v", userID, err)
	}
}

func (f *leaderboardFixture) seedBalance(t *testing.T, userID string, balance, highestWin int64, lastWin *time.Time) {
	t.Helper()
	row := ledger.New(f.week.ID, f.league.ID, userID, userID)
	created, err := f.balanceRepo.GetOrCreate(context.Background(), row)
	if err != nil {
		t.Fatalf("seed balance %s: %v", userID, err)
	}
	created.Balance = decimal.NewFromInt(balance)
	created.HighestWinPayout = decimal.NewFromInt(highestWin)
	created.LastWinTime = lastWin
	if err := f.balanceRepo.UpdateConditional(context.Background(), created, created.Version); err != nil {
		t.Fatalf("update balance %s: %v", userID, err)
	}
}

func TestWeekly_OrdersByBalanceThenPayoutThenWinTime(t *testing.T) {
	t.Parallel()

	f := newLeaderboardFixture(t)
	early := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	late := early.Add(3 * time.Hour)

	// Same balance for the top three; tie-breaks decide the podium.
	f.seedBalance(t, "carol", 1500, 700, &late)
	f.seedBalance(t, "alice", 1500, 900, &late)
	f.seedBalance(t, "bob", 1500, 900, &early)
	f.seedBalance(t, "dave", 2000, 100, nil)
	f.seedBalance(t, "erin", 900, 0, nil)

	standings, err := f.service.Weekly(context.Background(), f.league.ID)
	if err != nil {
		t.Fatalf("Weekly error: %v", err)
	}

	wantOrder := []string{"dave", "bob", "alice", "carol", "erin"}
	if len(standings) != len(wantOrder) {
		t.Fatalf("standings = %d rows, want %d", len(standings), len(wantOrder))
	}
	for i, want := range wantOrder {
		if standings[i].UserID != want {
			t.Fatalf("rank %d = %s, want %s", i+1, standings[i].UserID, want)
		}
		if standings[i].Rank != i+1 {
			t.Fatalf("rank field = %d, want sequential %d", standings[i].Rank, i+1)
		}
	}
}

func TestWeekly_TiedUsersGetDistinctSequentialRanks(t *testing.T) {
	t.Parallel()

	f := newLeaderboardFixture(t)
	f.seedBalance(t, "alice", 1500, 0, nil)
	f.seedBalance(t, "bob", 1500, 0, nil)

	standings, err := f.service.Weekly(context.Background(), f.league.ID)
	if err != nil {
		t.Fatalf("Weekly error: %v", err)
	}
	if standings[0].Rank != 1 || standings[1].Rank != 2 {
		t.Fatalf("ranks = %d,%d, want sequential 1,2 even on full tie", standings[0].Rank, standings[1].Rank)
	}

	joint := JointWinners(standings)
	if len(joint) != 2 {
		t.Fatalf("joint winners = %d, want 2", len(joint))
	}
}

func TestJointWinners_RequiresFullTieOnRawValues(t *testing.T) {
	t.Parallel()

	f := newLeaderboardFixture(t)
	f.seedBalance(t, "alice", 1500, 900, nil)
	f.seedBalance(t, "bob", 1500, 700, nil)

	standings, err := f.service.Weekly(context.Background(), f.league.ID)
	if err != nil {
		t.Fatalf("Weekly error: %v", err)
	}
	joint := JointWinners(standings)
	if len(joint) != 1 || joint[0].UserID != "alice" {
		t.Fatalf("joint winners = %v, want alice alone", joint)
	}
}

func TestSeason_RanksBySeasonPoints(t *testing.T) {
	t.Parallel()

	f := newLeaderboardFixture(t)
	f.addMember(t, "alice", 24)
	f.addMember(t, "bob", 31)
	f.addMember(t, "carol", 24)

	standings, err := f.service.Season(context.Background(), f.league.ID)
	if err != nil {
		t.Fatalf("Season error: %v", err)
	}
	if standings[0].UserID != "bob" || standings[0].Rank != 1 {
		t.Fatalf("rank 1 = %s, want bob", standings[0].UserID)
	}
	// Stable on ties: alice joined first, keeps the earlier slot.
	if standings[1].UserID != "alice" || standings[2].UserID != "carol" {
		t.Fatalf("tie order = %s,%s, want alice,carol", standings[1].UserID, standings[2].UserID)
	}
}

func TestCloseWeek_AwardsPointsAndSettlesWeek(t *testing.T) {
	t.Parallel()

	f := newLeaderboardFixture(t)
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9"}
	for _, userID := range users {
		f.addMember(t, userID, 0)
	}
	for i, userID := range users {
		f.seedBalance(t, userID, int64(2000-i*100), 0, nil)
	}

	closed, err := f.service.CloseWeek(context.Background(), f.league.ID)
	if err != nil {
		t.Fatalf("CloseWeek error: %v", err)
	}
	if closed.Status != week.StatusSettled {
		t.Fatalf("week status = %q, want settled", closed.Status)
	}
	if closed.WinnerID != "u1" {
		t.Fatalf("winner = %s, want u1", closed.WinnerID)
	}

	wantPoints := []int{10, 7, 5, 4, 3, 2, 1, 0, 0}
	for i, userID := range users {
		member, ok, err := f.leagueRepo.GetMember(context.Background(), f.league.ID, userID)
		if err != nil || !ok {
			t.Fatalf("get member %s: ok=%v err=%v", userID, ok, err)
		}
		if member.SeasonPoints != wantPoints[i] {
			t.Fatalf("%s season points = %d, want %d", userID, member.SeasonPoints, wantPoints[i])
		}
	}
}

func TestCloseWeek_IdempotentOnSettledWeek(t *testing.T) {
	t.Parallel()

	f := newLeaderboardFixture(t)
	f.addMember(t, "alice", 0)
	f.seedBalance(t, "alice", 1200, 0, nil)

	if _, err := f.service.CloseWeek(context.Background(), f.league.ID); err != nil {
		t.Fatalf("first CloseWeek error: %v", err)
	}

	// The resolver still points at the same week; a second close must not
	// double-award.
	settled, _, err := f.weekRepo.GetByID(context.Background(), f.week.ID)
	if err != nil {
		t.Fatalf("get week: %v", err)
	}
	f.service.weekResolver = &fixedWeekResolver{week: settled}

	if _, err := f.service.CloseWeek(context.Background(), f.league.ID); err != nil {
		t.Fatalf("second CloseWeek error: %v", err)
	}

	member, _, err := f.leagueRepo.GetMember(context.Background(), f.league.ID, "alice")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member.SeasonPoints != 10 {
		t.Fatalf("season points = %d, want 10 after repeated close", member.SeasonPoints)
	}
}
