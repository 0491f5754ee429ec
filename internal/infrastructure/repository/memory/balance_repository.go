package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/courtsidehq/parlay-league/internal/domain/ledger"
)

type BalanceRepository struct {
	mu   sync.RWMutex
	rows map[string]ledger.WeekBalance
}

func NewBalanceRepository() *BalanceRepository {
	return &BalanceRepository{
		rows: make(map[string]ledger.WeekBalance),
	}
}

func balanceKey(weekID, userID string) string {
	return weekID + "|" + userID
}

func (r *BalanceRepository) GetOrCreate(_ context.Context, item ledger.WeekBalance) (ledger.WeekBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := balanceKey(item.WeekID, item.UserID)
	if existing, ok := r.rows[key]; ok {
		return existing, nil
	}

	r.rows[key] = item
	return item, nil
}

func (r *BalanceRepository) UpdateConditional(_ context.Context, item ledger.WeekBalance, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := balanceKey(item.WeekID, item.UserID)
	existing, ok := r.rows[key]
	if !ok || existing.Version != expectedVersion {
		return ledger.ErrVersionConflict
	}

	item.Version = expectedVersion + 1
	r.rows[key] = item
	return nil
}

func (r *BalanceRepository) ListByWeek(_ context.Context, leagueID, weekID string) ([]ledger.WeekBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ledger.WeekBalance, 0, len(r.rows))
	for _, row := range r.rows {
		if row.LeagueID != leagueID || row.WeekID != weekID {
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
