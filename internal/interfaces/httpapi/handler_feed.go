package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/odds"
)

type outcomeDTO struct {
	Name string  `json:"name"`
	Odds string  `json:"odds"`
	Line *string `json:"line,omitempty"`
}

type marketDTO struct {
	Type     string       `json:"type"`
	Outcomes []outcomeDTO `json:"outcomes"`
}

type gameDTO struct {
	ID           string      `json:"id"`
	Description  string      `json:"description"`
	HomeTeam     string      `json:"homeTeam"`
	AwayTeam     string      `json:"awayTeam"`
	CommenceTime string      `json:"commenceTime"`
	Locked       bool        `json:"locked"`
	Markets      []marketDTO `json:"markets"`
}

type playerPropDTO struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	PropType   string `json:"propType"`
	Line       string `json:"line"`
	OverOdds   string `json:"overOdds"`
	UnderOdds  string `json:"underOdds"`
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	games, err := h.feedService.GamesBoard(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	now := time.Now()
	items := make([]gameDTO, 0, len(games))
	for _, game := range games {
		items = append(items, gameToDTO(ctx, game, now))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListPlayerProps(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerProps")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	props, err := h.feedService.PlayerProps(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "list player props failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerPropDTO, 0, len(props))
	for _, prop := range props {
		items = append(items, playerPropDTO{
			PlayerID:   prop.PlayerID,
			PlayerName: prop.PlayerName,
			PropType:   string(prop.PropType),
			Line:       prop.Line.String(),
			OverOdds:   prop.OverOdds.String(),
			UnderOdds:  prop.UnderOdds.String(),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func gameToDTO(ctx context.Context, game odds.Game, now time.Time) gameDTO {
	ctx, span := startSpan(ctx, "httpapi.gameToDTO")
	defer span.End()

	markets := make([]marketDTO, 0, len(game.Markets))
	for _, market := range game.Markets {
		outcomes := make([]outcomeDTO, 0, len(market.Outcomes))
		for _, outcome := range market.Outcomes {
			dto := outcomeDTO{
				Name: outcome.Name,
				Odds: outcome.Odds.String(),
			}
			if outcome.Line != nil {
				line := outcome.Line.String()
				dto.Line = &line
			}
			outcomes = append(outcomes, dto)
		}
		markets = append(markets, marketDTO{
			Type:     string(market.Type),
			Outcomes: outcomes,
		})
	}

	return gameDTO{
		ID:           game.ID,
		Description:  game.Description(),
		HomeTeam:     game.HomeTeam,
		AwayTeam:     game.AwayTeam,
		CommenceTime: game.CommenceTime.UTC().Format(time.RFC3339),
		Locked:       game.Locked(now),
		Markets:      markets,
	}
}
