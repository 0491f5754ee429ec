package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicFeedRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/games/{gameID}/props", handler.ListPlayerProps)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("POST /v1/leagues/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}", RequireAuth(verifier, http.HandlerFunc(handler.GetLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/members", RequireAuth(verifier, http.HandlerFunc(handler.ListLeagueMembers)))
	mux.Handle("POST /v1/leagues/{leagueID}/bets", RequireAuth(verifier, http.HandlerFunc(handler.PlaceBet)))
	mux.Handle("GET /v1/leagues/{leagueID}/bets", RequireAuth(verifier, http.HandlerFunc(handler.ListLeagueBets)))
	mux.Handle("POST /v1/betslip/preview", RequireAuth(verifier, http.HandlerFunc(handler.PreviewSlip)))
	mux.Handle("GET /v1/leagues/{leagueID}/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.WeeklyLeaderboard)))
	mux.Handle("GET /v1/leagues/{leagueID}/leaderboard/season", RequireAuth(verifier, http.HandlerFunc(handler.SeasonLeaderboard)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/settle-legs", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SettleLegsJob)))
	mux.Handle("POST /v1/internal/jobs/close-week", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CloseWeekJob)))
	mux.Handle("POST /v1/internal/jobs/week-maintenance", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.WeekMaintenanceJob)))
}
