package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_Disabled(t *testing.T) {
	config := &AuthConfig{
		Enabled: false,
	}

	handler := Auth(config)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestAuth_ValidCredentials(t *testing.T) {
	config := &AuthConfig{
		Enabled:  true,
		User:     "admin",
		Password: "secret",
	}

	handler := Auth(config)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestAuth_InvalidCredentials(t *testing.T) {
	config := &AuthConfig{
		Enabled:  true,
		User:     "admin",
		Password: "secret",
	}

	handler := Auth(config)(okHandler())

	tests := []struct {
		name string
		user string
		pass string
	}{
		{"wrong password", "admin", "wrong"},
		{"wrong user", "intruder", "secret"},
		{"both wrong", "intruder", "wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.SetBasicAuth(tt.user, tt.pass)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", w.Code)
			}

			if w.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}

func TestAuth_NoCredentials(t *testing.T) {
	config := &AuthConfig{
		Enabled:  true,
		User:     "admin",
		Password: "secret",
	}

	handler := Auth(config)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestAuth_ExcludedPath(t *testing.T) {
	config := &AuthConfig{
		Enabled:  true,
		User:     "admin",
		Password: "secret",
	}

	handler := Auth(config, "/health", "/debug/*")(okHandler())

	// Excluded paths pass without credentials
	for _, path := range []string{"/health", "/debug/pprof/heap"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200 for excluded path, got %d", path, w.Code)
		}
	}

	// Everything else stays protected
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 for protected path, got %d", w.Code)
	}
}

func TestAuth_Update(t *testing.T) {
	config := &AuthConfig{
		Enabled:  true,
		User:     "admin",
		Password: "secret",
	}

	handler := Auth(config)(okHandler())

	config.Update(true, "admin", "rotated")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("old password should be rejected after update, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.SetBasicAuth("admin", "rotated")
	w = httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("new password should be accepted after update, got %d", w.Code)
	}
}
