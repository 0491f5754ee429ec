package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/courtsidehq/parlay-league/internal/domain/bet"
)

type BetRepository struct {
	mu   sync.RWMutex
	byID map[string]bet.Bet
}

func NewBetRepository() *BetRepository {
	return &BetRepository{
		byID: make(map[string]bet.Bet),
	}
}

func (r *BetRepository) CreateWithLegs(_ context.Context, item bet.Bet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[item.ID]; exists {
		return fmt.Errorf("bet %s already exists", item.ID)
	}
	if len(item.Legs) == 0 {
		return fmt.Errorf("bet %s has no legs", item.ID)
	}

	r.byID[item.ID] = cloneBet(item)
	return nil
}

func (r *BetRepository) Delete(_ context.Context, betID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[betID]; !exists {
		return fmt.Errorf("bet %s does not exist", betID)
	}
	delete(r.byID, betID)
	return nil
}

func (r *BetRepository) GetByID(_ context.Context, betID string) (bet.Bet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[betID]
	if !ok {
		return bet.Bet{}, false, nil
	}
	return cloneBet(item), true, nil
}

func (r *BetRepository) ListByWeek(_ context.Context, leagueID, weekID string) ([]bet.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bet.Bet, 0, len(r.byID))
	for _, item := range r.byID {
		if item.LeagueID != leagueID || item.WeekID != weekID {
			continue
		}
		out = append(out, cloneBet(item))
	}
	sortBets(out)
	return out, nil
}

func (r *BetRepository) ListByUserAndWeek(_ context.Context, userID, leagueID, weekID string) ([]bet.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bet.Bet, 0, 4)
	for _, item := range r.byID {
		if item.UserID != userID || item.LeagueID != leagueID || item.WeekID != weekID {
			continue
		}
		out = append(out, cloneBet(item))
	}
	sortBets(out)
	return out, nil
}

func (r *BetRepository) ListPendingByGame(_ context.Context, gameID string) ([]bet.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bet.Bet, 0, 4)
	for _, item := range r.byID {
		if item.Status != bet.StatusPending {
			continue
		}
		for _, leg := range item.Legs {
			if leg.GameID == gameID {
				out = append(out, cloneBet(item))
				break
			}
		}
	}
	sortBets(out)
	return out, nil
}

func (r *BetRepository) UpdateLegResult(_ context.Context, leg bet.Leg) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[leg.BetID]
	if !ok {
		return fmt.Errorf("bet %s does not exist", leg.BetID)
	}

	for i, existing := range item.Legs {
		if existing.GameID == leg.GameID && existing.MarketType == leg.MarketType && existing.Selection == leg.Selection {
			item.Legs[i].Result = leg.Result
			item.Legs[i].ActualValue = leg.ActualValue
			r.byID[leg.BetID] = item
			return nil
		}
	}
	return fmt.Errorf("bet %s has no matching leg", leg.BetID)
}

func (r *BetRepository) UpdateStatus(_ context.Context, item bet.Bet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[item.ID]
	if !ok {
		return fmt.Errorf("bet %s does not exist", item.ID)
	}

	existing.Status = item.Status
	existing.SettledAt = item.SettledAt
	r.byID[item.ID] = existing
	return nil
}

func cloneBet(item bet.Bet) bet.Bet {
	out := item
	out.Legs = make([]bet.Leg, len(item.Legs))
	copy(out.Legs, item.Legs)
	return out
}

func sortBets(items []bet.Bet) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
