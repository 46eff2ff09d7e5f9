package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/version", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["version"] == "" {
		t.Error("expected a version")
	}
	if !strings.Contains(resp["full"], resp["version"]) {
		t.Errorf("full = %q, should embed version %q", resp["full"], resp["version"])
	}
}

func TestConfig_MasksAPIKey(t *testing.T) {
	env := newTestEnv(t)
	env.app.Config.Clients.EODHD.APIKey = "super-secret-key-1234"

	rec := env.request(t, http.MethodGet, "/api/config", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	key, _ := resp["quote_api_key"].(string)
	if key == "super-secret-key-1234" {
		t.Error("API key must be masked")
	}
	if key == "" || key[len(key)-4:] != "1234" {
		t.Errorf("masked key = %q, want suffix 1234", key)
	}
}

func TestShutdown_DisabledInProduction(t *testing.T) {
	env := newTestEnv(t)
	env.app.Config.Environment = "production"

	rec := env.request(t, http.MethodPost, "/api/shutdown", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/nonsense", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflights(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodOptions, "/api/portfolio", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}

func TestCorrelationID_Propagated(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "req-abc-123" {
		t.Errorf("correlation id = %q, want req-abc-123", got)
	}
}

func TestCorrelationID_GeneratedWhenAbsent(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); len(got) != 8 {
		t.Errorf("generated correlation id = %q, want 8 characters", got)
	}
}
