package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/lmorand/brasserie-backend/pkg/auth"
	"github.com/lmorand/brasserie-backend/pkg/config"
)

func authTestConfig() config.TokenConfig {
	return config.TokenConfig{Secret: "0123456789abcdef0123456789abcdef", TTLHours: 1}
}

func mintTestToken(t *testing.T, cfg config.TokenConfig, issued time.Time) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, issued, pkgAuth.Claims{UserID: userID, Email: "t@b.fr", Role: "staff"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, userID
}

func authProbe(t *testing.T, cfg config.TokenConfig, decorate func(*http.Request)) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var captured *http.Request
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	decorate(req)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	cfg := authTestConfig()
	token, userID := mintTestToken(t, cfg, time.Now().UTC())

	rec, captured := authProbe(t, cfg, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := UserIDFromContext(captured.Context()); got != userID.String() {
		t.Fatalf("user id not seeded, got %q", got)
	}
	if got := RoleFromContext(captured.Context()); got != "staff" {
		t.Fatalf("role not seeded, got %q", got)
	}
}

func TestAuthAcceptsLegacyTokenHeader(t *testing.T) {
	cfg := authTestConfig()
	token, _ := mintTestToken(t, cfg, time.Now().UTC())

	rec, _ := authProbe(t, cfg, func(r *http.Request) {
		r.Header.Set("X-Br-Token", token)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via legacy header, got %d", rec.Code)
	}
}

func TestAuthRejectsWithOpaque401(t *testing.T) {
	cfg := authTestConfig()
	expired, _ := mintTestToken(t, cfg, time.Now().UTC().Add(-48*time.Hour))

	cases := map[string]func(*http.Request){
		"no credentials": func(r *http.Request) {},
		"garbage token":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
		"expired token":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
		"empty bearer":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer   ") },
	}

	for name, decorate := range cases {
		rec, _ := authProbe(t, cfg, decorate)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}
