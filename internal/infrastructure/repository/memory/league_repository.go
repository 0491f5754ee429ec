package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
)

type LeagueRepository struct {
	mu       sync.RWMutex
	byID     map[string]league.League
	byInvite map[string]string
	members  map[string]map[string]league.Member
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{
		byID:     make(map[string]league.League),
		byInvite: make(map[string]string),
		members:  make(map[string]map[string]league.Member),
	}
}

func (r *LeagueRepository) Create(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[item.ID]; exists {
		return fmt.Errorf("league %s already exists", item.ID)
	}
	if _, taken := r.byInvite[item.InviteCode]; taken {
		return fmt.Errorf("invite code %s already in use", item.InviteCode)
	}

	r.byID[item.ID] = item
	r.byInvite[item.InviteCode] = item.ID
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[leagueID]
	return item, ok, nil
}

func (r *LeagueRepository) GetByInviteCode(_ context.Context, inviteCode string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	leagueID, ok := r.byInvite[inviteCode]
	if !ok {
		return league.League{}, false, nil
	}
	item, ok := r.byID[leagueID]
	return item, ok, nil
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.byID))
	for _, item := range r.byID {
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *LeagueRepository) AddMember(_ context.Context, member league.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[member.LeagueID]; !exists {
		return fmt.Errorf("league %s does not exist", member.LeagueID)
	}
	byUser, ok := r.members[member.LeagueID]
	if !ok {
		byUser = make(map[string]league.Member)
		r.members[member.LeagueID] = byUser
	}
	if _, exists := byUser[member.UserID]; exists {
		return fmt.Errorf("user %s is already a member of league %s", member.UserID, member.LeagueID)
	}

	byUser[member.UserID] = member
	return nil
}

func (r *LeagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.members[leagueID][userID]
	return member, ok, nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := r.members[leagueID]
	out := make([]league.Member, 0, len(byUser))
	for _, member := range byUser {
		out = append(out, member)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *LeagueRepository) UpdateMember(_ context.Context, member league.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.members[member.LeagueID]
	if !ok {
		return fmt.Errorf("league %s has no members", member.LeagueID)
	}
	if _, exists := byUser[member.UserID]; !exists {
		return fmt.Errorf("user %s is not a member of league %s", member.UserID, member.LeagueID)
	}

	byUser[member.UserID] = member
	return nil
}
