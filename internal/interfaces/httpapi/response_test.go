package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/courtsidehq/parlay-league/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_SentinelTable(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
		wantCode   string
	}{
		{"invalid input", usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"},
		{"insufficient balance", usecase.ErrInsufficientBalance, http.StatusBadRequest, "insufficientBalance", "FAILED_PRECONDITION"},
		{"conflicting selections", usecase.ErrConflictingSelections, http.StatusBadRequest, "conflictingSelections", "FAILED_PRECONDITION"},
		{"already member", usecase.ErrAlreadyMember, http.StatusConflict, "alreadyMember", "ALREADY_EXISTS"},
		{"not found", usecase.ErrNotFound, http.StatusNotFound, "notFound", "NOT_FOUND"},
		{"unauthorized", usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"},
		{"dependency unavailable", usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internalError", "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(context.Background(), fmt.Errorf("wrapped: %w", tt.err))
			if mapped.HTTPStatus != tt.wantStatus {
				t.Fatalf("expected http status %d, got %d", tt.wantStatus, mapped.HTTPStatus)
			}
			if mapped.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, mapped.Reason)
			}
			if mapped.Status != tt.wantCode {
				t.Fatalf("expected status %q, got %q", tt.wantCode, mapped.Status)
			}
		})
	}
}
