package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/courtsidehq/parlay-league/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

type createLeagueRequest struct {
	Name              string `json:"name" validate:"required,max=80"`
	CompetitionType   string `json:"competitionType" validate:"omitempty,oneof=season one_off"`
	EventDate         string `json:"eventDate" validate:"omitempty"`
	BetVisibilityMode string `json:"betVisibilityMode" validate:"omitempty,oneof=visible hidden visible_when_locked"`
}

type joinLeagueRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,len=6"`
}

type leagueDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	InviteCode        string `json:"inviteCode"`
	CompetitionType   string `json:"competitionType"`
	EventDate         string `json:"eventDate,omitempty"`
	BetVisibilityMode string `json:"betVisibilityMode"`
	CreatedAt         string `json:"createdAt"`
}

type memberDTO struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	SeasonPoints int    `json:"seasonPoints"`
	IsAdmin      bool   `json:"isAdmin"`
	JoinedAt     string `json:"joinedAt"`
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createLeagueRequest
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

	var eventDate *time.Time
	if strings.TrimSpace(req.EventDate) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EventDate))
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: eventDate must be RFC3339: %v", usecase.ErrInvalidInput, err))
			return
		}
		eventDate = &parsed
	}

	created, err := h.leagueService.CreateLeague(ctx, usecase.CreateLeagueInput{
		Name:              req.Name,
		CompetitionType:   league.CompetitionType(req.CompetitionType),
		EventDate:         eventDate,
		BetVisibilityMode: league.BetVisibilityMode(req.BetVisibilityMode),
		CreatorID:         principal.UserID,
		CreatorName:       principal.DisplayName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(ctx, created))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req joinLeagueRequest
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

	joined, err := h.leagueService.JoinByInviteCode(ctx, usecase.JoinLeagueInput{
		InviteCode:  req.InviteCode,
		UserID:      principal.UserID,
		DisplayName: principal.DisplayName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(ctx, joined))
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	item, err := h.leagueService.GetLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(ctx, item))
}

func (h *Handler) ListLeagueMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueMembers")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	members, err := h.leagueService.ListMembers(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league members failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]memberDTO, 0, len(members))
	for _, member := range members {
		items = append(items, memberDTO{
			UserID:       member.UserID,
			DisplayName:  member.DisplayName,
			SeasonPoints: member.SeasonPoints,
			IsAdmin:      member.IsAdmin,
			JoinedAt:     member.JoinedAt.UTC().Format(time.RFC3339),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func leagueToDTO(ctx context.Context, v league.League) leagueDTO {
	ctx, span := startSpan(ctx, "httpapi.leagueToDTO")
	defer span.End()

	dto := leagueDTO{
		ID:                v.ID,
		Name:              v.Name,
		InviteCode:        v.InviteCode,
		CompetitionType:   string(v.CompetitionType),
		BetVisibilityMode: string(v.BetVisibilityMode),
		CreatedAt:         v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.EventDate != nil {
		dto.EventDate = v.EventDate.UTC().Format(time.RFC3339)
	}
	return dto
}
