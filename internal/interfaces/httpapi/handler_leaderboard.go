package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/courtsidehq/parlay-league/internal/usecase"
)

type weeklyStandingDTO struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"userId"`
	DisplayName      string `json:"displayName"`
	Balance          string `json:"balance"`
	HighestWinPayout string `json:"highestWinPayout"`
	TotalBets        int    `json:"totalBets"`
	LastWinTime      string `json:"lastWinTime,omitempty"`
	IsJointWinner    bool   `json:"isJointWinner"`
}

type seasonStandingDTO struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	SeasonPoints int    `json:"seasonPoints"`
}

func (h *Handler) WeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.WeeklyLeaderboard")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	standings, err := h.leaderboardService.Weekly(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "weekly leaderboard failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	winners := usecase.JointWinners(standings)
	winnerIDs := make(map[string]struct{}, len(winners))
	for _, winner := range winners {
		winnerIDs[winner.UserID] = struct{}{}
	}

	items := make([]weeklyStandingDTO, 0, len(standings))
	for _, standing := range standings {
		_, joint := winnerIDs[standing.UserID]
		item := weeklyStandingDTO{
			Rank:             standing.Rank,
			UserID:           standing.UserID,
			DisplayName:      standing.DisplayName,
			Balance:          standing.Balance.String(),
			HighestWinPayout: standing.HighestWinPayout.String(),
			TotalBets:        standing.TotalBets,
			IsJointWinner:    joint && len(winners) > 1,
		}
		if standing.LastWinTime != nil {
			item.LastWinTime = standing.LastWinTime.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SeasonLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeasonLeaderboard")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	standings, err := h.leaderboardService.Season(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "season leaderboard failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonStandingDTO, 0, len(standings))
	for _, standing := range standings {
		items = append(items, seasonStandingDTO{
			Rank:         standing.Rank,
			UserID:       standing.UserID,
			DisplayName:  standing.DisplayName,
			SeasonPoints: standing.SeasonPoints,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
