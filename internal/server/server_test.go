package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"identityresolver/internal/auth"
	"identityresolver/internal/model"
	"identityresolver/internal/registry"
	"identityresolver/internal/stats"
	"identityresolver/internal/store"
)

func newTestServer(t *testing.T) (*Server, *auth.TokenService) {
	t.Helper()
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg := registry.New()
	cache := stats.NewCache()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)

	return New(st, reg, cache, tokens, nil), tokens
}

func TestHealthzUnauthenticated(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestResolveWithoutBearerRejected(t *testing.T) {
	s, _ := newTestServer(t)

	body, _ := json.Marshal(resolveRequest{PhoneNumber: "+911234567890"})
	req := httptest.NewRequest(http.MethodPost, "/v1/resolve", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestResolveWithBearerSucceeds(t *testing.T) {
	s, tokens := newTestServer(t)
	ctx := context.Background()

	if err := s.store.SaveEntry(ctx, "+911234567890", model.CrowdEntry{SavedName: "Rahul Sharma", UserID: "u1", TrustScore: 0.8, Timestamp: 1}); err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	token, _, err := tokens.Issue("tester", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	body, _ := json.Marshal(resolveRequest{PhoneNumber: "+911234567890", TotalNumbers: 1})
	req := httptest.NewRequest(http.MethodPost, "/v1/resolve", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var profile model.IdentityProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if profile.Name == "" {
		t.Error("profile.Name is empty")
	}
}

func TestRegistryCountsRequiresAuth(t *testing.T) {
	s, tokens := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/registry/counts", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	token, _, err := tokens.Issue("tester", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/v1/registry/counts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want %d", rec.Code, http.StatusOK)
	}

	var counts map[registry.Category]int
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("unmarshal counts: %v", err)
	}
	if counts[registry.FirstName] == 0 {
		t.Error("expected built-in FIRST_NAME seed entries")
	}
}
