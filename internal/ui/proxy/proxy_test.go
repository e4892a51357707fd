package proxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/tradebot/dashboard/internal/ui/client"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAPIProxy_InvalidTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"no scheme", "tradebot-api"},
		{"unsupported scheme", "ws://tradebot-api:8000"},
		{"no host", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAPIProxy(tt.target, discardLogger()); err == nil {
				t.Errorf("expected an error for %q", tt.target)
			}
		})
	}
}

func TestAPIProxy_ForwardsRequests(t *testing.T) {
	var gotPath, gotRawPath, gotQuery, gotHost, gotForwardedHost, gotMethod string
	var gotBody []byte

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotRawPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		gotHost = r.Host
		gotForwardedHost = r.Header.Get("X-Forwarded-Host")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"running"}`))
	}))
	defer backend.Close()

	p, err := NewAPIProxy(backend.URL, discardLogger())
	if err != nil {
		t.Fatalf("NewAPIProxy() error = %v", err)
	}

	tests := []struct {
		name      string
		method    string
		target    string
		body      string
		wantPath  string
		wantRaw   string
		wantQuery string
	}{
		{"status", http.MethodGet, "/api/status", "", "/api/status", "/api/status", ""},
		{"trades with query", http.MethodGet, "/api/trades?status=open", "", "/api/trades", "/api/trades", "status=open"},
		{"trade body", http.MethodPost, "/api/trade", `{"symbol":"BTC","action":"buy"}`, "/api/trade", "/api/trade", ""},
		{"escaped job id", http.MethodDelete, "/api/jobs/predict_BTC%2FUSDT_1h", "", "/api/jobs/predict_BTC/USDT_1h", "/api/jobs/predict_BTC%2FUSDT_1h", ""},
	}

	backendURL, _ := url.Parse(backend.URL)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://dashboard.local:8080"+tt.target, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			p.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if rec.Body.String() != `{"status":"running"}` {
				t.Errorf("body = %s, want the backend body", rec.Body.String())
			}
			if gotMethod != tt.method {
				t.Errorf("method = %s, want %s", gotMethod, tt.method)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %s, want %s", gotPath, tt.wantPath)
			}
			if gotRawPath != tt.wantRaw {
				t.Errorf("escaped path = %s, want %s", gotRawPath, tt.wantRaw)
			}
			if gotQuery != tt.wantQuery {
				t.Errorf("query = %q, want %q", gotQuery, tt.wantQuery)
			}
			if string(gotBody) != tt.body {
				t.Errorf("body = %s, want %s", gotBody, tt.body)
			}
			if gotHost != backendURL.Host {
				t.Errorf("host = %s, want the backend host %s", gotHost, backendURL.Host)
			}
			if gotForwardedHost != "dashboard.local:8080" {
				t.Errorf("X-Forwarded-Host = %q, want dashboard.local:8080", gotForwardedHost)
			}
		})
	}
}

// the 502 produced by the proxy is classified and formatted like any other server error
func TestAPIProxy_BackendUnreachable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	p, err := NewAPIProxy(target, discardLogger())
	if err != nil {
		t.Fatalf("NewAPIProxy() error = %v", err)
	}

	front := httptest.NewServer(p)
	defer front.Close()

	c, err := client.NewClient(client.Config{BaseURL: front.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.GetStatus(context.Background())
	if !client.IsKind(err, client.KindServer) {
		t.Fatalf("expected a server error, got %v", err)
	}

	var ce *client.ClientError
	if !errors.As(err, &ce) || ce.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected a 502 ClientError, got %v", err)
	}

	u, _ := url.Parse(target)
	want := "trading bot API unreachable at " + u.Host
	if got := client.FormatError(err); got != want {
		t.Errorf("FormatError() = %q, want %q", got, want)
	}
}
