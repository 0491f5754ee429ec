package week

import "context"

// Repository describes week persistence needs from use cases. GetOrCreate
// is keyed on (league, weekNumber, seasonYear): repeated calls inside one
// boundary must return the same row.
type Repository interface {
	GetOrCreate(ctx context.Context, item Week) (Week, error)
	GetByID(ctx context.Context, weekID string) (Week, bool, error)
	Update(ctx context.Context, item Week) error
}
