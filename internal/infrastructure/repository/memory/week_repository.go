package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/courtsidehq/parlay-league/internal/domain/week"
)

type WeekRepository struct {
	mu   sync.RWMutex
	byID map[string]week.Week
}

func NewWeekRepository() *WeekRepository {
	return &WeekRepository{
		byID: make(map[string]week.Week),
	}
}

func (r *WeekRepository) GetOrCreate(_ context.Context, item week.Week) (week.Week, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[item.ID]; ok {
		return existing, nil
	}

	r.byID[item.ID] = item
	return item, nil
}

func (r *WeekRepository) GetByID(_ context.Context, weekID string) (week.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[weekID]
	return item, ok, nil
}

func (r *WeekRepository) Update(_ context.Context, item week.Week) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[item.ID]; !ok {
		return fmt.Errorf("week %s does not exist", item.ID)
	}

	r.byID[item.ID] = item
	return nil
}
