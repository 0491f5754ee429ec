package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/courtsidehq/parlay-league/internal/domain/bet"
	"github.com/courtsidehq/parlay-league/internal/usecase"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

type legGradeRequest struct {
	MarketType  string `json:"marketType" validate:"required"`
	Selection   string `json:"selection" validate:"required"`
	Result      string `json:"result" validate:"required,oneof=won lost void"`
	ActualValue string `json:"actualValue"`
}

type settleLegsRequest struct {
	GameID string            `json:"gameId" validate:"required"`
	Grades []legGradeRequest `json:"grades" validate:"required,min=1,dive"`
}

type closeWeekRequest struct {
	LeagueID string `json:"leagueId" validate:"required"`
}

// SettleLegsJob grades all pending legs on a finished game. Invoked by the
// job queue once final scores are available.
func (h *Handler) SettleLegsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleLegsJob")
	defer span.End()

	var req settleLegsRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	grades := make([]usecase.LegGrade, 0, len(req.Grades))
	for _, item := range req.Grades {
		grade := usecase.LegGrade{
			MarketType: item.MarketType,
			Selection:  item.Selection,
			Result:     bet.LegResult(item.Result),
		}
		if strings.TrimSpace(item.ActualValue) != "" {
			actual, err := decimal.NewFromString(strings.TrimSpace(item.ActualValue))
			if err != nil {
				writeError(ctx, w, fmt.Errorf("%w: actualValue must be a decimal number: %v", usecase.ErrInvalidInput, err))
				return
			}
			grade.ActualValue = &actual
		}
		grades = append(grades, grade)
	}

	settled, err := h.bettingService.SettleGame(ctx, req.GameID, grades)
	if err != nil {
		h.logger.ErrorContext(ctx, "settle legs job failed", "game_id", req.GameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "settle legs job finished", "game_id", req.GameID, "legs_settled", settled)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"gameId": req.GameID, "legsSettled": settled})
}

// CloseWeekJob ranks the active week, awards season points and marks the
// week settled. Safe to retry: a settled week is left untouched.
func (h *Handler) CloseWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CloseWeekJob")
	defer span.End()

	var req closeWeekRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	closed, err := h.leaderboardService.CloseWeek(ctx, req.LeagueID)
	if err != nil {
		h.logger.ErrorContext(ctx, "close week job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "close week job finished",
		"league_id", req.LeagueID,
		"week_id", closed.ID,
		"winner_id", closed.WinnerID,
	)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"weekId":   closed.ID,
		"status":   string(closed.Status),
		"winnerId": closed.WinnerID,
	})
}

// WeekMaintenanceJob runs one maintenance sweep: queue close-week jobs for
// expired weeks and re-queue the next sweep.
func (h *Handler) WeekMaintenanceJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.WeekMaintenanceJob")
	defer span.End()

	result, err := h.jobService.RunWeekMaintenance(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "week maintenance job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "week maintenance job finished",
		"leagues_checked", result.LeaguesChecked,
		"close_week_jobs_queued", result.CloseWeekJobsQueued,
	)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"leaguesChecked":      result.LeaguesChecked,
		"closeWeekJobsQueued": result.CloseWeekJobsQueued,
		"nextRunQueued":       result.NextRunQueued,
	})
}
