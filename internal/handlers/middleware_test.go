package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chesscoach/internal/security"
)

func TestRequireAuthWithoutCookie(t *testing.T) {
	m := NewMiddleware(nil, nil, nil)

	called := false
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("GET", "/api/puzzles", nil))

	if called {
		t.Fatal("handler should not be called without a session cookie")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestCSRFProtect(t *testing.T) {
	csrf := security.NewCSRFGenerator("test-secret")
	m := NewMiddleware(nil, csrf, nil)

	sessionID := "session-123"
	token, err := csrf.GenerateToken(sessionID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	handler := m.CSRFProtect(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	withSession := func(r *http.Request) *http.Request {
		ctx := context.WithValue(r.Context(), SessionContextKey, sessionID)
		return r.WithContext(ctx)
	}

	t.Run("GET passes without token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler(recorder, withSession(httptest.NewRequest("GET", "/api/puzzles", nil)))
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
	})

	t.Run("POST without token rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler(recorder, withSession(httptest.NewRequest("POST", "/api/puzzles", nil)))
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", recorder.Code)
		}
	})

	t.Run("POST with valid token passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/puzzles", nil)
		req.Header.Set("X-CSRF-Token", token)
		recorder := httptest.NewRecorder()
		handler(recorder, withSession(req))
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
	})

	t.Run("POST with wrong session rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/puzzles", nil)
		req.Header.Set("X-CSRF-Token", token)
		ctx := context.WithValue(req.Context(), SessionContextKey, "other-session")
		recorder := httptest.NewRecorder()
		handler(recorder, req.WithContext(ctx))
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", recorder.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	limiter := security.NewRateLimiter(2, time.Minute)
	m := NewMiddleware(nil, nil, limiter)

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler(recorder, req)
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", recorder.Code)
	}

	// A different IP is not affected
	recorder = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for fresh IP, got %d", recorder.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		expected   string
	}{
		{"remote addr only", "10.0.0.1:5000", "", "", "10.0.0.1"},
		{"x-forwarded-for wins", "10.0.0.1:5000", "203.0.113.7", "", "203.0.113.7"},
		{"x-real-ip fallback", "10.0.0.1:5000", "", "203.0.113.8", "203.0.113.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if ip := clientIP(req); ip != tt.expected {
				t.Errorf("clientIP() = %q, want %q", ip, tt.expected)
			}
		})
	}
}
