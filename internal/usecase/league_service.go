package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	idgen "github.com/courtsidehq/parlay-league/internal/platform/id"
)

// inviteCodeAlphabet skips ambiguous glyphs (0/O, 1/I) so codes survive
// being read aloud.
const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 6

const inviteCodeRetryLimit = 5

type LeagueService struct {
	leagueRepo league.Repository
	idGen      idgen.Generator
	now        func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, idGen idgen.Generator) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

type CreateLeagueInput struct {
	Name              string
	CompetitionType   league.CompetitionType
	EventDate         *time.Time
	BetVisibilityMode league.BetVisibilityMode
	CreatorID         string
	CreatorName       string
}

// CreateLeague creates a league with a fresh invite code and enrolls the
// creator as its admin member.
func (s *LeagueService) CreateLeague(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.CreateLeague")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.CreatorID = strings.TrimSpace(input.CreatorID)
	if input.CreatorID == "" {
		return league.League{}, fmt.Errorf("%w: creator id is required", ErrInvalidInput)
	}
	if input.BetVisibilityMode == "" {
		input.BetVisibilityMode = league.VisibilityVisible
	}
	if input.CompetitionType == "" {
		input.CompetitionType = league.CompetitionSeason
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	item := league.League{
		ID:                leagueID,
		Name:              input.Name,
		CompetitionType:   input.CompetitionType,
		EventDate:         input.EventDate,
		BetVisibilityMode: input.BetVisibilityMode,
		CreatedAt:         s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for attempt := 0; ; attempt++ {
		code, err := newInviteCode()
		if err != nil {
			return league.League{}, fmt.Errorf("generate invite code: %w", err)
		}
		if _, taken, err := s.leagueRepo.GetByInviteCode(ctx, code); err != nil {
			return league.League{}, fmt.Errorf("check invite code: %w", err)
		} else if !taken {
			item.InviteCode = code
			break
		}
		if attempt+1 >= inviteCodeRetryLimit {
			return league.League{}, fmt.Errorf("generate invite code: exhausted %d attempts", inviteCodeRetryLimit)
		}
	}

	if err := s.leagueRepo.Create(ctx, item); err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}

	creator := league.Member{
		LeagueID:    item.ID,
		UserID:      input.CreatorID,
		DisplayName: input.CreatorName,
		IsAdmin:     true,
		JoinedAt:    item.CreatedAt,
	}
	if err := s.leagueRepo.AddMember(ctx, creator); err != nil {
		return league.League{}, fmt.Errorf("add creator member: %w", err)
	}

	return item, nil
}

func newInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

type JoinLeagueInput struct {
	InviteCode  string
	UserID      string
	DisplayName string
}

// JoinByInviteCode enrolls a user into the league behind an invite code.
// Joining twice is rejected, not absorbed, so clients can tell the states
// apart.
func (s *LeagueService) JoinByInviteCode(ctx context.Context, input JoinLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.JoinByInviteCode")
	defer span.End()

	code := strings.ToUpper(strings.TrimSpace(input.InviteCode))
	input.UserID = strings.TrimSpace(input.UserID)
	if code == "" {
		return league.League{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByInviteCode(ctx, code)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by invite code: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: no league for invite code", ErrNotFound)
	}

	if _, isMember, err := s.leagueRepo.GetMember(ctx, item.ID, input.UserID); err != nil {
		return league.League{}, fmt.Errorf("get league member: %w", err)
	} else if isMember {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrAlreadyMember, item.ID)
	}

	member := league.Member{
		LeagueID:    item.ID,
		UserID:      input.UserID,
		DisplayName: input.DisplayName,
		JoinedAt:    s.now().UTC(),
	}
	if err := s.leagueRepo.AddMember(ctx, member); err != nil {
		return league.League{}, fmt.Errorf("add league member: %w", err)
	}

	return item, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetLeague")
	defer span.End()

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return item, nil
}

func (s *LeagueService) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListMembers")
	defer span.End()

	if _, exists, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return s.leagueRepo.ListMembers(ctx, leagueID)
}
