package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/courtsidehq/parlay-league/internal/infrastructure/repository/memory"
)

func TestCreateLeague_EnrollsCreatorAsAdmin(t *testing.T) {
	t.Parallel()

	repo := memory.NewLeagueRepository()
	service := NewLeagueService(repo, &seqIDGenerator{})

	created, err := service.CreateLeague(context.Background(), CreateLeagueInput{
		Name:        "Friday Crew",
		CreatorID:   "user-a",
		CreatorName: "Avery",
	})
	if err != nil {
		t.Fatalf("CreateLeague error: %v", err)
	}
	if created.CompetitionType != league.CompetitionSeason {
		t.Fatalf("competition type = %q, want season default", created.CompetitionType)
	}
	if created.BetVisibilityMode != league.VisibilityVisible {
		t.Fatalf("visibility = %q, want visible default", created.BetVisibilityMode)
	}
	if len(created.InviteCode) != inviteCodeLength {
		t.Fatalf("invite code %q length = %d, want %d", created.InviteCode, len(created.InviteCode), inviteCodeLength)
	}
	for _, r := range created.InviteCode {
		if !strings.ContainsRune(inviteCodeAlphabet, r) {
			t.Fatalf("invite code %q contains %q outside the alphabet", created.InviteCode, r)
		}
	}

	member, ok, err := repo.GetMember(context.Background(), created.ID, "user-a")
	if err != nil || !ok {
		t.Fatalf("creator membership: ok=%v err=%v", ok, err)
	}
	if !member.IsAdmin {
		t.Fatalf("creator should be admin")
	}
}

func TestCreateLeague_OneOffRequiresEventDate(t *testing.T) {
	t.Parallel()

	service := NewLeagueService(memory.NewLeagueRepository(), &seqIDGenerator{})

	_, err := service.CreateLeague(context.Background(), CreateLeagueInput{
		Name:            "Finals Night",
		CompetitionType: league.CompetitionOneOff,
		CreatorID:       "user-a",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestJoinByInviteCode(t *testing.T) {
	t.Parallel()

	repo := memory.NewLeagueRepository()
	service := NewLeagueService(repo, &seqIDGenerator{})

	created, err := service.CreateLeague(context.Background(), CreateLeagueInput{
		Name:      "Friday Crew",
		CreatorID: "user-a",
	})
	if err != nil {
		t.Fatalf("CreateLeague error: %v", err)
	}

	joined, err := service.JoinByInviteCode(context.Background(), JoinLeagueInput{
		InviteCode:  strings.ToLower(created.InviteCode),
		UserID:      "user-b",
		DisplayName: "Blake",
	})
	if err != nil {
		t.Fatalf("JoinByInviteCode error: %v", err)
	}
	if joined.ID != created.ID {
		t.Fatalf("joined league = %s, want %s", joined.ID, created.ID)
	}

	if _, err := service.JoinByInviteCode(context.Background(), JoinLeagueInput{
		InviteCode: created.InviteCode,
		UserID:     "user-b",
	}); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("repeat join error = %v, want ErrAlreadyMember", err)
	}

	if _, err := service.JoinByInviteCode(context.Background(), JoinLeagueInput{
		InviteCode: "ZZZZ99",
		UserID:     "user-c",
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown code error = %v, want ErrNotFound", err)
	}

	members, err := service.ListMembers(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("ListMembers error: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
}
