package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tradebot/dashboard/internal/ui/config"
)

func testConfig(apiBaseURL string) *config.Config {
	return &config.Config{
		Environment:     "test",
		Host:            "127.0.0.1",
		Port:            8080,
		LogLevel:        "debug",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
		APIBaseURL:      apiBaseURL,
		APIRoot:         "/api",
		APITimeout:      2 * time.Second,
		APIProxyEnabled: true,
		Language:        "en",
		AllowedOrigins:  []string{"*"},
		RateLimitRPS:    0,
		MaxRequestSize:  1024,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	s, err := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s.Handler()
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/status":
			_, _ = w.Write([]byte(`{"running":true,"trading_enabled":false}`))
		case "/api/trades":
			_, _ = w.Write([]byte(`{"trades":[],"status":"` + r.URL.Query().Get("status") + `"}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(backend.Close)
	return backend
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Dashboard(t *testing.T) {
	backend := newBackend(t)
	h := newTestServer(t, testConfig(backend.URL))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "trading_enabled") {
		t.Error("expected the status payload on the dashboard")
	}

	for header, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'self'; frame-ancestors 'none';",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should only be set in prod and staging")
	}
}

func TestServer_Metrics(t *testing.T) {
	backend := newBackend(t)
	h := newTestServer(t, testConfig(backend.URL))

	serve(h, httptest.NewRequest(http.MethodGet, "/ui-api/status", nil))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`tradebot_api_client_requests_total{endpoint="status",method="GET",outcome="success",status="200"} 1`,
		`tradebot_ui_http_requests_total{method="GET",route="/ui-api/status",status="200"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics to contain %q", want)
		}
	}
}

func TestServer_APIProxy(t *testing.T) {
	backend := newBackend(t)
	h := newTestServer(t, testConfig(backend.URL))

	req := httptest.NewRequest(http.MethodGet, "/api/trades?status=open", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := serve(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != `{"trades":[],"status":"open"}` {
		t.Errorf("body = %s, want the backend payload", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestServer_APIProxyWithoutAPIRoot(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"running":true}`))
	}))
	t.Cleanup(backend.Close)

	cfg := testConfig(backend.URL)
	cfg.APIRoot = "/"
	h := newTestServer(t, cfg)

	for _, path := range []string{"/status", "/jobs/predict_BTC%2FUSDT_1h"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}

	// the dashboard calls the API without a prefix too
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/ui-api/status", nil)); rec.Code != http.StatusOK {
		t.Errorf("status panel = %d, want 200", rec.Code)
	}

	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/unknown", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("paths outside the API endpoints should not be proxied, got %d", rec.Code)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"/status", "/jobs/predict_BTC%2FUSDT_1h", "/status"}
	if strings.Join(paths, " ") != strings.Join(want, " ") {
		t.Errorf("backend paths = %v, want %v", paths, want)
	}
	for _, p := range paths {
		if strings.HasPrefix(p, "//") {
			t.Errorf("backend received a doubled separator: %s", p)
		}
	}
}

func TestProxyPrefixes(t *testing.T) {
	if got := proxyPrefixes("/api"); len(got) != 1 || got[0] != "/api" {
		t.Errorf("proxyPrefixes(/api) = %v, want [/api]", got)
	}

	got := proxyPrefixes("")
	want := []string{"/status", "/stats", "/jobs", "/trades", "/trade", "/predict", "/config", "/train"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("proxyPrefixes(\"\") = %v, want %v", got, want)
	}
}

func TestServer_APIProxyDisabled(t *testing.T) {
	backend := newBackend(t)
	cfg := testConfig(backend.URL)
	cfg.APIProxyEnabled = false
	h := newTestServer(t, cfg)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a JSON error body: %v", err)
	}
	if body["error_code"] != "resource_not_found" || body["detail"] == "" {
		t.Errorf("unexpected error body: %v", body)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	backend := newBackend(t)
	h := newTestServer(t, testConfig(backend.URL))

	rec := serve(h, httptest.NewRequest(http.MethodPut, "/ui-api/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error_code":"method_not_allowed"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestServer_RequestSizeLimit(t *testing.T) {
	backend := newBackend(t)
	h := newTestServer(t, testConfig(backend.URL))

	body := "symbol=" + strings.Repeat("A", 2048) + "&action=buy"
	req := httptest.NewRequest(http.MethodPost, "/ui-api/trade", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(h, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if rec.Header().Get("Tradebot-Max-Request-Size") != "1024" {
		t.Errorf("max request size header = %q, want 1024", rec.Header().Get("Tradebot-Max-Request-Size"))
	}
}

func TestServer_RateLimit(t *testing.T) {
	backend := newBackend(t)
	cfg := testConfig(backend.URL)
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	h := newTestServer(t, cfg)

	first := serve(h, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := serve(h, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if got := second.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}

	other := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	other.Header.Set("X-Real-IP", "198.51.100.7")
	if rec := serve(h, other); rec.Code != http.StatusOK {
		t.Errorf("request from another client status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(0, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := range 100 {
		if rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestClientLimiters_SweepsIdleClients(t *testing.T) {
	limiters := newClientLimiters(1, 1)
	start := time.Now()

	limiters.reserve("192.0.2.1", start)
	limiters.reserve("192.0.2.2", start.Add(limiterIdleTimeout/2))
	limiters.reserve("192.0.2.2", start.Add(limiterIdleTimeout+2*time.Second))

	if _, ok := limiters.limiters["192.0.2.1"]; ok {
		t.Error("expected the idle client to be removed")
	}
	if _, ok := limiters.limiters["192.0.2.2"]; !ok {
		t.Error("expected the active client to be kept")
	}
}

func TestServer_StaticAssets(t *testing.T) {
	backend := newBackend(t)
	h := newTestServer(t, testConfig(backend.URL))

	for _, path := range []string{"/static/app.js", "/static/app.css", "/static/highlight.css"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
		})
	}
}

func TestSecurityHeaders_Production(t *testing.T) {
	h := SecurityHeaders("prod")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS in prod")
	}
}

func TestNewServer_InvalidLanguage(t *testing.T) {
	cfg := testConfig("http://tradebot-api:8000")
	cfg.Language = "fr"

	if _, err := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("expected an error for an unsupported language")
	}
}
