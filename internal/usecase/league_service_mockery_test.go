package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	leaguemock "github.com/courtsidehq/parlay-league/internal/mocks/domain/league"
	idgen "github.com/courtsidehq/parlay-league/internal/platform/id"
	"github.com/stretchr/testify/mock"
)

func TestLeagueService_GetLeague_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)

	service := NewLeagueService(leagueRepo, idgen.NewRandomGenerator())
	leagueID := "lg-office-2026"
	expected := league.League{ID: leagueID, Name: "Office League", InviteCode: "ABCD23"}

	leagueRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), leagueID).
		Return(expected, true, nil).
		Once()

	got, err := service.GetLeague(ctx, leagueID)
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	if got.ID != expected.ID || got.InviteCode != expected.InviteCode {
		t.Fatalf("unexpected league: got=%+v want=%+v", got, expected)
	}
}

func TestLeagueService_GetLeague_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)

	service := NewLeagueService(leagueRepo, idgen.NewRandomGenerator())
	leagueID := "missing-league"

	leagueRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), leagueID).
		Return(league.League{}, false, nil).
		Once()

	_, err := service.GetLeague(context.Background(), leagueID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeagueService_JoinByInviteCode_RejectsExistingMemberUsingMockery(t *testing.T) {
	t.Parallel()

	leagueRepo := leaguemock.NewRepository(t)
	service := NewLeagueService(leagueRepo, idgen.NewRandomGenerator())

	item := league.League{ID: "lg-1", Name: "Office League", InviteCode: "ABCD23"}
	leagueRepo.
		On("GetByInviteCode", mock.MatchedBy(func(v context.Context) bool { return v != nil }), "ABCD23").
		Return(item, true, nil).
		Once()
	leagueRepo.
		On("GetMember", mock.MatchedBy(func(v context.Context) bool { return v != nil }), "lg-1", "user-1").
		Return(league.Member{LeagueID: "lg-1", UserID: "user-1"}, true, nil).
		Once()

	_, err := service.JoinByInviteCode(context.Background(), JoinLeagueInput{
		InviteCode:  "abcd23",
		UserID:      "user-1",
		DisplayName: "Sam",
	})
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}
