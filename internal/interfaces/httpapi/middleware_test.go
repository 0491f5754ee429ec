package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtsidehq/parlay-league/internal/domain/user"
	"github.com/courtsidehq/parlay-league/internal/usecase"
)

type staticVerifier struct {
	token     string
	principal user.Principal
}

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != v.token {
		return user.Principal{}, fmt.Errorf("%w: token rejected", usecase.ErrUnauthorized)
	}
	return v.principal, nil
}

func TestRequireAuth_InjectsPrincipal(t *testing.T) {
	verifier := staticVerifier{token: "good-token", principal: user.Principal{UserID: "user-1", DisplayName: "Sam"}}
	var seen user.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = principalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(verifier, next)

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/lg-1", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if seen.UserID != "user-1" {
		t.Fatalf("expected principal user-1 in context, got %q", seen.UserID)
	}
}

func TestRequireAuth_RejectsMissingAndMalformedHeaders(t *testing.T) {
	verifier := staticVerifier{token: "good-token"}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(verifier, next)

	for _, header := range []string{"", "good-token", "Basic good-token", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/v1/leagues/lg-1", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected status 401, got %d", header, rec.Code)
		}
	}
}

func TestRequireInternalJobToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireInternalJobToken("job-secret", next)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/close-week", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with valid token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/close-week", nil)
	req.Header.Set("X-Internal-Job-Token", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with invalid token, got %d", rec.Code)
	}
}

func TestRequireInternalJobToken_UnconfiguredToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireInternalJobToken("", next)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/close-week", nil)
	req.Header.Set("X-Internal-Job-Token", "anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 when token is not configured, got %d", rec.Code)
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS([]string{"https://parlay-league-fe.vercel.app"}, next)

	req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
	req.Header.Set("Origin", "https://parlay-league-fe.vercel.app")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://parlay-league-fe.vercel.app" {
		t.Fatalf("unexpected Access-Control-Allow-Origin: %q", got)
	}
}

func TestCORS_OptionsPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS([]string{"*"}, next)

	req := httptest.NewRequest(http.MethodOptions, "/v1/games", nil)
	req.Header.Set("Origin", "https://parlay-league-fe.vercel.app")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected Access-Control-Allow-Origin: %q", got)
	}
}

func TestCORS_DisallowsUnconfiguredOrigin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS([]string{"https://allowed.example.com"}, next)

	req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
	req.Header.Set("Origin", "https://not-allowed.example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected empty Access-Control-Allow-Origin, got %q", got)
	}
}
