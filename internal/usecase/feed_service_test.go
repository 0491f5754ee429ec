package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/courtsidehq/parlay-league/internal/platform/cache"
)

type stubFeedProvider struct {
	games    []odds.RawGame
	gamesErr error
	props    []odds.RawPropQuote
	propsErr error
	calls    int
}

func (p *stubFeedProvider) FetchGames(context.Context) ([]odds.RawGame, error) {
	p.calls++
	return p.games, p.gamesErr
}

func (p *stubFeedProvider) FetchPlayerProps(context.Context, string) ([]odds.RawPropQuote, error) {
	return p.props, p.propsErr
}

func rawGame(id string, commence time.Time) odds.RawGame {
	return odds.RawGame{
		"id":            id,
		"home_team":     "Kings",
		"away_team":     "Hawks",
		"commence_time": commence.Format(time.RFC3339),
	}
}

func TestGamesBoard_NormalizesAndSorts(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	provider := &stubFeedProvider{games: []odds.RawGame{
		rawGame("g2", base.Add(2*time.Hour)),
		rawGame("g1", base.Add(time.Hour)),
		{"home_team": "Nets"}, // no id, dropped
	}}
	service := NewFeedService(provider, cache.NewStore(time.Minute))

	games, err := service.GamesBoard(context.Background())
	if err != nil {
		t.Fatalf("GamesBoard error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("games = %d, want 2 (unparseable dropped)", len(games))
	}
	if games[0].ID != "g1" || games[1].ID != "g2" {
		t.Fatalf("order = %s,%s, want g1,g2 by start time", games[0].ID, games[1].ID)
	}
}

func TestGamesBoard_ServesCacheWithoutRefetch(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	provider := &stubFeedProvider{games: []odds.RawGame{rawGame("g1", base)}}
	service := NewFeedService(provider, cache.NewStore(time.Minute))

	if _, err := service.GamesBoard(context.Background()); err != nil {
		t.Fatalf("first GamesBoard error: %v", err)
	}
	if _, err := service.GamesBoard(context.Background()); err != nil {
		t.Fatalf("second GamesBoard error: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
}

func TestGamesBoard_FallsBackToStaleOnProviderFailure(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	provider := &stubFeedProvider{games: []odds.RawGame{rawGame("g1", base)}}
	store := cache.NewStore(time.Nanosecond)
	service := NewFeedService(provider, store)

	if _, err := service.GamesBoard(context.Background()); err != nil {
		t.Fatalf("warm GamesBoard error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	provider.gamesErr = errors.New("upstream down")
	games, err := service.GamesBoard(context.Background())
	if err != nil {
		t.Fatalf("stale GamesBoard error: %v", err)
	}
	if len(games) != 1 || games[0].ID != "g1" {
		t.Fatalf("stale board = %v, want last-good g1", games)
	}
}

func TestGamesBoard_EmptyListWhenNoCacheAndProviderDown(t *testing.T) {
	t.Parallel()

	provider := &stubFeedProvider{gamesErr: errors.New("upstream down")}
	service := NewFeedService(provider, cache.NewStore(time.Minute))

	games, err := service.GamesBoard(context.Background())
	if err != nil {
		t.Fatalf("GamesBoard error: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("games = %d, want empty board on cold outage", len(games))
	}
}

func TestGamesBoardWithin_FiltersToWindow(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	provider := &stubFeedProvider{games: []odds.RawGame{
		rawGame("before", base.Add(-2*time.Hour)),
		rawGame("inside", base.Add(time.Hour)),
		rawGame("after", base.Add(30*time.Hour)),
	}}
	service := NewFeedService(provider, cache.NewStore(time.Minute))

	games, err := service.GamesBoardWithin(context.Background(), base, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GamesBoardWithin error: %v", err)
	}
	if len(games) != 1 || games[0].ID != "inside" {
		t.Fatalf("filtered board = %v, want only the in-window game", games)
	}
}

func TestPlayerProps_PairsAndSurfacesErrors(t *testing.T) {
	t.Parallel()

	provider := &stubFeedProvider{props: []odds.RawPropQuote{
		{"player_id": "p1", "player_name": "A. Star", "prop_type": "player_points", "side": "Over", "line": 24.5, "price": 1.87},
		{"player_id": "p1", "player_name": "A. Star", "prop_type": "player_points", "side": "Under", "line": 24.5, "price": 1.93},
	}}
	service := NewFeedService(provider, cache.NewStore(time.Minute))

	props, err := service.PlayerProps(context.Background(), "g1")
	if err != nil {
		t.Fatalf("PlayerProps error: %v", err)
	}
	if len(props) != 1 || props[0].PlayerID != "p1" {
		t.Fatalf("props = %v, want one paired prop", props)
	}

	failing := NewFeedService(&stubFeedProvider{propsErr: errors.New("down")}, cache.NewStore(time.Minute))
	if _, err := failing.PlayerProps(context.Background(), "g1"); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("error = %v, want ErrDependencyUnavailable", err)
	}
}
