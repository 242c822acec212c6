package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, ttl)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	return m
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewManager("too-short", time.Hour); err == nil {
		t.Fatal("NewManager() accepted a short secret")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	hash, err := m.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals plaintext")
	}
	if !m.CheckPassword(hash, "hunter22") {
		t.Error("CheckPassword rejected the correct password")
	}
	if m.CheckPassword(hash, "hunter23") {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.GenerateToken(7, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if claims.Username != "alice" || claims.UserID != 7 {
		t.Errorf("claims = %q/%d, want alice/7", claims.Username, claims.UserID)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	m := newTestManager(t, time.Hour)
	expired := newTestManager(t, -time.Minute)

	expiredToken, err := expired.GenerateToken(1, "bob")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	other, err := NewManager("ffffffffffffffffffffffffffffffff", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	foreignToken, err := other.GenerateToken(1, "bob")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	for name, token := range map[string]string{
		"garbage":      "not.a.token",
		"expired":      expiredToken,
		"wrong secret": foreignToken,
	} {
		if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: ValidateToken() error = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestMiddleware(t *testing.T) {
	m := newTestManager(t, time.Hour)
	token, err := m.GenerateToken(7, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	var gotClaims *Claims
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusNoContent {
				if gotClaims == nil || gotClaims.Username != "alice" {
					t.Errorf("claims not propagated: %+v", gotClaims)
				}
			} else if !strings.Contains(rec.Body.String(), "error") {
				t.Errorf("error body missing: %q", rec.Body.String())
			}
		})
	}
}
