package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
}

type backend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newBackend(t *testing.T, status int, payload string) *backend {
	t.Helper()
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			query:  r.URL.RawQuery,
			body:   string(body),
		})
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) last(t *testing.T) recordedRequest {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		t.Fatal("backend received no requests")
	}
	return b.requests[len(b.requests)-1]
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   string
	}{
		{
			name:       "status",
			args:       []string{"status"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/status",
		},
		{
			name:       "stats",
			args:       []string{"stats"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/stats",
		},
		{
			name:       "jobs list",
			args:       []string{"jobs", "list"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/jobs",
		},
		{
			name:       "jobs add",
			args:       []string{"jobs", "add", "BTC/USDT", "--interval", "4h"},
			wantMethod: http.MethodPost,
			wantPath:   "/api/jobs",
			wantBody:   `{"symbol":"BTC/USDT","interval":"4h"}`,
		},
		{
			name:       "jobs remove",
			args:       []string{"jobs", "remove", "predict_BTC/USDT_1h"},
			wantMethod: http.MethodDelete,
			wantPath:   "/api/jobs/predict_BTC%2FUSDT_1h",
		},
		{
			name:       "trades default status",
			args:       []string{"trades"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/trades",
			wantQuery:  "status=all",
		},
		{
			name:       "trades open",
			args:       []string{"trades", "--status", "open"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/trades",
			wantQuery:  "status=open",
		},
		{
			name:       "trade",
			args:       []string{"trade", "ETH/USDT", "SELL"},
			wantMethod: http.MethodPost,
			wantPath:   "/api/trade",
			wantBody:   `{"symbol":"ETH/USDT","action":"sell"}`,
		},
		{
			name:       "predict",
			args:       []string{"predict", "BTC/USDT", "--timeframe", "4h"},
			wantMethod: http.MethodPost,
			wantPath:   "/api/predict",
			wantBody:   `{"symbol":"BTC/USDT","timeframe":"4h"}`,
		},
		{
			name:       "config get",
			args:       []string{"config", "get"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/config",
		},
		{
			name:       "config get section",
			args:       []string{"config", "get", "--section", "model"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/config",
			wantQuery:  "section=model",
		},
		{
			name:       "config set",
			args:       []string{"config", "set", "trader", `{"risk_per_trade":0.02}`},
			wantMethod: http.MethodPost,
			wantPath:   "/api/config",
			wantBody:   `{"section":"trader","config":{"risk_per_trade":0.02}}`,
		},
		{
			name:       "train",
			args:       []string{"train", "BTC/USDT", "--data-points", "500"},
			wantMethod: http.MethodPost,
			wantPath:   "/api/train",
			wantBody:   `{"symbol":"BTC/USDT","data_points":500}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, http.StatusOK, `{"ok":true}`)

			code, stdout, stderr := run(t, append([]string{"--api-url", b.URL}, tt.args...)...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", code, stderr)
			}
			if stdout != "{\n  \"ok\": true\n}\n" {
				t.Errorf("stdout = %q", stdout)
			}

			got := b.last(t)
			if got.method != tt.wantMethod {
				t.Errorf("method = %s, want %s", got.method, tt.wantMethod)
			}
			if got.path != tt.wantPath {
				t.Errorf("path = %s, want %s", got.path, tt.wantPath)
			}
			if got.query != tt.wantQuery {
				t.Errorf("query = %q, want %q", got.query, tt.wantQuery)
			}
			if tt.wantBody != "" && strings.TrimSpace(got.body) != tt.wantBody {
				t.Errorf("body = %s, want %s", got.body, tt.wantBody)
			}
		})
	}
}

func TestOutputYAML(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"running":true,"symbol":"BTC/USDT","last_trade":{"id":7,"side":"buy"}}`)

	code, stdout, stderr := run(t, "--api-url", b.URL, "-o", "yaml", "status")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}

	want := "running: true\nsymbol: BTC/USDT\nlast_trade:\n  id: 7\n  side: buy\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestAPIRootFlag(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{}`)

	if code, _, stderr := run(t, "--api-url", b.URL, "--api-root", "v2", "status"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if got := b.last(t).path; got != "/v2/status" {
		t.Errorf("path = %s, want /v2/status", got)
	}
}

func TestServerErrorIsReported(t *testing.T) {
	b := newBackend(t, http.StatusBadRequest, `{"detail":"Invalid symbol: XYZ"}`)

	code, stdout, stderr := run(t, "--api-url", b.URL, "--log-level", "error", "predict", "XYZ")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing", stdout)
	}
	if !strings.Contains(stderr, "Error: Invalid symbol: XYZ\n") {
		t.Errorf("stderr = %q", stderr)
	}
	if strings.Count(stderr, "Error:") != 1 {
		t.Errorf("expected the error to be printed once, stderr = %q", stderr)
	}
}

func TestNoResponseIsLocalized(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{}`)
	url := b.URL
	b.Close()

	code, _, stderr := run(t, "--api-url", url, "--lang", "de", "--log-level", "error", "status")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Error: Keine Antwort vom Server erhalten") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestLocalErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "invalid trade action",
			args: []string{"trade", "BTC/USDT", "hold"},
			want: `invalid trade action "hold"`,
		},
		{
			name: "invalid config json",
			args: []string{"config", "set", "trader", "{risk"},
			want: "configuration parameters must be valid JSON",
		},
		{
			name: "invalid trade status",
			args: []string{"trades", "--status", "pending"},
			want: `invalid status "pending"`,
		},
		{
			name: "invalid output format",
			args: []string{"-o", "xml", "status"},
			want: `invalid output format "xml"`,
		},
		{
			name: "unsupported language",
			args: []string{"--lang", "fr", "status"},
			want: "fr",
		},
		{
			name: "missing argument",
			args: []string{"predict"},
			want: "accepts 1 arg(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, http.StatusOK, `{}`)

			code, _, stderr := run(t, append([]string{"--api-url", b.URL}, tt.args...)...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.HasPrefix(stderr, "Error: ") || !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %q, want an error containing %q", stderr, tt.want)
			}
			if b.count() != 0 {
				t.Errorf("backend received %d requests, want 0", b.count())
			}
		})
	}
}

func TestEnvironmentDefaults(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"a":1}`)
	t.Setenv("TRADEBOT_API_URL", b.URL)
	t.Setenv("TRADEBOT_OUTPUT", "yaml")

	code, stdout, stderr := run(t, "stats")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if stdout != "a: 1\n" {
		t.Errorf("stdout = %q, want yaml output", stdout)
	}
}

func TestWritePayload_NonJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writePayload(&buf, "yaml", []byte("plain text")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "plain text\n" {
		t.Errorf("got %q", buf.String())
	}
}
