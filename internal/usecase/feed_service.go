package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/courtsidehq/parlay-league/internal/platform/cache"
)

// OddsFeedProvider is the upstream odds source as seen by use cases.
type OddsFeedProvider interface {
	FetchGames(ctx context.Context) ([]odds.RawGame, error)
	FetchPlayerProps(ctx context.Context, gameID string) ([]odds.RawPropQuote, error)
}

const (
	gamesBoardCacheKey  = "oddsfeed:games"
	propsCacheKeyPrefix = "oddsfeed:props:"
)

// FeedService owns the game board: fetch, normalize, cache. A provider
// outage degrades to the last-good cached board rather than an error;
// the board is display data and an empty list is an acceptable answer.
type FeedService struct {
	provider OddsFeedProvider
	store    *cache.Store
	now      func() time.Time
}

func NewFeedService(provider OddsFeedProvider, store *cache.Store) *FeedService {
	return &FeedService{
		provider: provider,
		store:    store,
		now:      time.Now,
	}
}

// GamesBoard returns the normalized upcoming games, freshest first by
// start time. Records the normalizer rejects are dropped, not fatal.
func (s *FeedService) GamesBoard(ctx context.Context) ([]odds.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedService.GamesBoard")
	defer span.End()

	if s.store != nil {
		if cached, ok := s.store.Get(ctx, gamesBoardCacheKey); ok {
			if games, ok := cached.([]odds.Game); ok {
				return games, nil
			}
		}
	}

	rawGames, err := s.provider.FetchGames(ctx)
	if err != nil {
		if stale, ok := s.staleGames(ctx); ok {
			return stale, nil
		}
		// No board at all: show an empty list, the outage is upstream's
		// problem, not the viewer's.
		return []odds.Game{}, nil
	}

	games := make([]odds.Game, 0, len(rawGames))
	for _, raw := range rawGames {
		game, err := odds.NormalizeGame(raw)
		if err != nil {
			continue
		}
		games = append(games, game)
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].CommenceTime.Before(games[j].CommenceTime)
	})

	if s.store != nil {
		s.store.Set(ctx, gamesBoardCacheKey, games)
	}
	return games, nil
}

// GamesBoardWithin filters the board to games starting inside [from, to).
// One-off leagues use this to scope the board to their event day.
func (s *FeedService) GamesBoardWithin(ctx context.Context, from, to time.Time) ([]odds.Game, error) {
	games, err := s.GamesBoard(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]odds.Game, 0, len(games))
	for _, game := range games {
		if game.CommenceTime.Before(from) || !game.CommenceTime.Before(to) {
			continue
		}
		out = append(out, game)
	}
	return out, nil
}

// PlayerProps returns the paired player props for a game. Unlike the
// board, prop errors are surfaced: the caller asked for a specific game.
func (s *FeedService) PlayerProps(ctx context.Context, gameID string) ([]odds.PlayerProp, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedService.PlayerProps")
	defer span.End()

	if gameID == "" {
		return nil, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	cacheKey := propsCacheKeyPrefix + gameID
	if s.store != nil {
		if cached, ok := s.store.Get(ctx, cacheKey); ok {
			if props, ok := cached.([]odds.PlayerProp); ok {
				return props, nil
			}
		}
	}

	quotes, err := s.provider.FetchPlayerProps(ctx, gameID)
	if err != nil {
		if s.store != nil {
			if stale, found, _ := s.store.GetStale(ctx, cacheKey); found {
				if props, ok := stale.([]odds.PlayerProp); ok {
					return props, nil
				}
			}
		}
		return nil, fmt.Errorf("%w: fetch player props: %v", ErrDependencyUnavailable, err)
	}

	props := odds.PairPlayerProps(quotes)
	if s.store != nil {
		s.store.Set(ctx, cacheKey, props)
	}
	return props, nil
}

func (s *FeedService) staleGames(ctx context.Context) ([]odds.Game, bool) {
	if s.store == nil {
		return nil, false
	}
	stale, found, _ := s.store.GetStale(ctx, gamesBoardCacheKey)
	if !found {
		return nil, false
	}
	games, ok := stale.([]odds.Game)
	return games, ok
}
