package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/initra/procflow/pkg/middleware"
)

func newDisabledAuthenticator(t *testing.T) *middleware.Authenticator {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth, err := middleware.NewAuthenticator(context.Background(), &middleware.AuthConfig{Enabled: false}, logger)
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	return auth
}

func TestDisabledAuthResolvesActorHeaders(t *testing.T) {
	auth := newDisabledAuthenticator(t)

	var got middleware.Actor
	var ok bool
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = middleware.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/documents", nil)
	req.Header.Set("X-Actor-Id", "u-123")
	req.Header.Set("X-Actor-Role", "audit_manager")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !ok {
		t.Fatal("actor missing from context")
	}
	if got.ID != "u-123" || got.Role != "audit_manager" {
		t.Errorf("actor = %+v", got)
	}
}

func TestDisabledAuthRejectsMissingHeaders(t *testing.T) {
	auth := newDisabledAuthenticator(t)

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without actor")
	}))

	req := httptest.NewRequest("GET", "/documents", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWithActorRoundTrip(t *testing.T) {
	ctx := middleware.WithActor(context.Background(), middleware.Actor{ID: "u-1", Role: "ceo"})

	a, ok := middleware.ActorFromContext(ctx)
	if !ok || a.ID != "u-1" || a.Role != "ceo" {
		t.Errorf("actor = %+v, ok = %v", a, ok)
	}

	if _, ok := middleware.ActorFromContext(context.Background()); ok {
		t.Error("actor resolved from empty context")
	}
}
