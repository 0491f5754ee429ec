package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/bet"
	"github.com/courtsidehq/parlay-league/internal/domain/betslip"
	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/courtsidehq/parlay-league/internal/usecase"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

type selectionRequest struct {
	GameID          string `json:"gameId" validate:"required"`
	GameDescription string `json:"gameDescription"`
	GameTime        string `json:"gameTime" validate:"required"`
	MarketType      string `json:"marketType" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Odds            string `json:"odds" validate:"required"`
	Line            string `json:"line"`
	PlayerName      string `json:"playerName"`
}

type placeBetRequest struct {
	Stake      string             `json:"stake" validate:"required"`
	Selections []selectionRequest `json:"selections" validate:"required,min=1,dive"`
}

type previewSlipRequest struct {
	Stake      string             `json:"stake"`
	Selections []selectionRequest `json:"selections" validate:"required,min=1,dive"`
}

type conflictDTO struct {
	Type    string `json:"type"`
	GameID  string `json:"gameId"`
	Message string `json:"message"`
}

type slipPreviewDTO struct {
	BetType           string        `json:"betType"`
	DisplayLabel      string        `json:"displayLabel"`
	RawOdds           string        `json:"rawOdds"`
	CorrelationFactor string        `json:"correlationFactor"`
	TotalOdds         string        `json:"totalOdds"`
	PotentialPayout   string        `json:"potentialPayout,omitempty"`
	Conflicts         []conflictDTO `json:"conflicts"`
}

type legDTO struct {
	GameID      string `json:"gameId"`
	MarketType  string `json:"marketType"`
	Selection   string `json:"selection"`
	Odds        string `json:"odds"`
	Line        string `json:"line,omitempty"`
	Result      string `json:"result"`
	ActualValue string `json:"actualValue,omitempty"`
	PlayerName  string `json:"playerName,omitempty"`
	GameTime    string `json:"gameTime"`
}

type betDTO struct {
	ID              string   `json:"id"`
	UserID          string   `json:"userId"`
	BetType         string   `json:"betType"`
	Stake           string   `json:"stake"`
	TotalOdds       string   `json:"totalOdds"`
	PotentialPayout string   `json:"potentialPayout"`
	Status          string   `json:"status"`
	CreatedAt       string   `json:"createdAt"`
	SettledAt       string   `json:"settledAt,omitempty"`
	Legs            []legDTO `json:"legs,omitempty"`
	DetailsHidden   bool     `json:"detailsHidden"`
}

func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	var req placeBetRequest
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

	slip, err := slipFromRequest(ctx, req.Stake, req.Selections)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	placed, err := h.bettingService.PlaceBet(ctx, usecase.PlaceBetInput{
		UserID:      principal.UserID,
		DisplayName: principal.DisplayName,
		LeagueID:    leagueID,
		Slip:        slip,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "place bet failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, betToDTO(ctx, placed, true))
}

// PreviewSlip prices a slip without placing it: combined odds, correlation
// discount, payout and any blocking conflicts.
func (h *Handler) PreviewSlip(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewSlip")
	defer span.End()

	var req previewSlipRequest
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

	slip, err := slipFromRequest(ctx, req.Stake, req.Selections)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	conflicts := betslip.DetectConflicts(slip.Selections)
	conflictItems := make([]conflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		conflictItems = append(conflictItems, conflictDTO{
			Type:    string(conflict.Type),
			GameID:  conflict.GameID,
			Message: conflict.Message,
		})
	}

	preview := slipPreviewDTO{
		BetType:           string(betslip.Classify(slip.Selections)),
		DisplayLabel:      betslip.DisplayLabel(slip.Selections),
		RawOdds:           betslip.RawCombinedOdds(slip.Selections).String(),
		CorrelationFactor: betslip.CorrelationFactor(slip.Selections).String(),
		TotalOdds:         betslip.CombinedOdds(slip.Selections).String(),
		Conflicts:         conflictItems,
	}
	if slip.Stake.IsPositive() {
		preview.PotentialPayout = betslip.PotentialPayout(slip.Stake, slip.Selections).String()
	}

	writeSuccess(ctx, w, http.StatusOK, preview)
}

func (h *Handler) ListLeagueBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueBets")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rows, err := h.bettingService.GetMemberBets(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league bets failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]betDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, betToDTO(ctx, row.Bet, row.ShowDetails))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func slipFromRequest(ctx context.Context, stake string, selections []selectionRequest) (betslip.Slip, error) {
	ctx, span := startSpan(ctx, "httpapi.slipFromRequest")
	defer span.End()

	slip := betslip.Slip{}
	if strings.TrimSpace(stake) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(stake))
		if err != nil {
			return betslip.Slip{}, fmt.Errorf("%w: stake must be a decimal number: %v", usecase.ErrInvalidInput, err)
		}
		slip.Stake = parsed
	}

	for _, item := range selections {
		marketType, ok := odds.NormalizeMarketType(item.MarketType)
		if !ok {
			return betslip.Slip{}, fmt.Errorf("%w: unknown market type %q", usecase.ErrInvalidInput, item.MarketType)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(item.Odds))
		if err != nil {
			return betslip.Slip{}, fmt.Errorf("%w: odds must be a decimal number: %v", usecase.ErrInvalidInput, err)
		}
		gameTime, err := time.Parse(time.RFC3339, strings.TrimSpace(item.GameTime))
		if err != nil {
			return betslip.Slip{}, fmt.Errorf("%w: gameTime must be RFC3339: %v", usecase.ErrInvalidInput, err)
		}

		selection := betslip.Selection{
			GameID:          item.GameID,
			GameDescription: item.GameDescription,
			GameTime:        gameTime,
			MarketType:      marketType,
			Name:            item.Name,
			Odds:            price,
			PlayerName:      item.PlayerName,
		}
		if strings.TrimSpace(item.Line) != "" {
			line, err := decimal.NewFromString(strings.TrimSpace(item.Line))
			if err != nil {
				return betslip.Slip{}, fmt.Errorf("%w: line must be a decimal number: %v", usecase.ErrInvalidInput, err)
			}
			selection.Line = &line
		}
		slip.Selections = append(slip.Selections, selection)
	}

	return slip, nil
}

func betToDTO(ctx context.Context, v bet.Bet, showDetails bool) betDTO {
	ctx, span := startSpan(ctx, "httpapi.betToDTO")
	defer span.End()

	dto := betDTO{
		ID:            v.ID,
		UserID:        v.UserID,
		BetType:       string(v.BetType),
		Stake:         v.Stake.String(),
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
		DetailsHidden: !showDetails,
	}
	if v.SettledAt != nil {
		dto.SettledAt = v.SettledAt.UTC().Format(time.RFC3339)
	}
	if !showDetails {
		return dto
	}

	dto.TotalOdds = v.TotalOdds.String()
	dto.PotentialPayout = v.PotentialPayout.String()
	dto.Legs = make([]legDTO, 0, len(v.Legs))
	for _, leg := range v.Legs {
		item := legDTO{
			GameID:     leg.GameID,
			MarketType: string(leg.MarketType),
			Selection:  leg.Selection,
			Odds:       leg.Odds.String(),
			Result:     string(leg.Result),
			PlayerName: leg.PlayerName,
			GameTime:   leg.GameTime.UTC().Format(time.RFC3339),
		}
		if leg.Line != nil {
			item.Line = leg.Line.String()
		}
		if leg.ActualValue != nil {
			item.ActualValue = leg.ActualValue.String()
		}
		dto.Legs = append(dto.Legs, item)
	}
	return dto
}
