package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/linearmesh/pkg/cache"
	"github.com/matzehuels/linearmesh/pkg/config"
	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/mesh"
	"github.com/matzehuels/linearmesh/pkg/observability"
	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

const flowJSON = `{
  "points": [{"name": "A"}, {"name": "B"}, {"name": "C"}],
  "links": [{"source": 0, "target": 1, "value": 10, "links": [{"source": 1, "target": 2, "value": 4}]}]
}`

const flowYAML = `
points:
  - name: A
  - name: B
links:
  - source: 0
    target: 1
    value: 10
`

// testServer builds a server over a runner backed by an in-process Redis.
func testServer(t *testing.T, cfg *config.Config) (*Server, *prometheus.Registry) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	runner := pipeline.NewRunner(cache.NewRedisCacheFromClient(client), nil, nil)
	t.Cleanup(func() { runner.Close() })

	if cfg == nil {
		cfg = config.Default()
	}
	reg := prometheus.NewRegistry()
	logger := log.New(&bytes.Buffer{})
	return New(runner, cfg, logger, reg), reg
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return e
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t, nil)
	w := do(t, s, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestLayout(t *testing.T) {
	s, _ := testServer(t, nil)

	w := do(t, s, http.MethodPost, "/v1/layout", "application/json", flowJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(HeaderCache); got != "miss" {
		t.Errorf("%s = %q, want miss", HeaderCache, got)
	}

	l, err := graph.UnmarshalLayout(w.Body.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(l.Layers) != 3 || l.NodeCount() != 3 || len(l.Links) != 2 {
		t.Errorf("layout has %d layers, %d nodes, %d links; want 3, 3, 2", len(l.Layers), l.NodeCount(), len(l.Links))
	}

	again := do(t, s, http.MethodPost, "/v1/layout", "application/json", flowJSON)
	if got := again.Header().Get(HeaderCache); got != "hit" {
		t.Errorf("second request %s = %q, want hit", HeaderCache, got)
	}
	if !bytes.Equal(again.Body.Bytes(), w.Body.Bytes()) {
		t.Error("cached layout differs from the computed one")
	}
}

func TestLayoutInputFormats(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
	}{
		{"json without header", "/v1/layout", "", flowJSON},
		{"yaml by header", "/v1/layout", "application/yaml", flowYAML},
		{"yaml by query", "/v1/layout?input=yaml", "text/plain", flowYAML},
		{"json with charset", "/v1/layout", "application/json; charset=utf-8", flowJSON},
	}

	s, _ := testServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, tt.target, tt.contentType, tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestBodyOptionsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	width := 2000.0
	cfg.Mesh.ContainerWidth = &width

	s, _ := testServer(t, cfg)

	body := `{"points":[{"name":"A"},{"name":"B"}],"links":[{"source":0,"target":1,"value":1}],"options":{"container_width":800}}`
	w := do(t, s, http.MethodPost, "/v1/layout", "application/json", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	l, err := graph.UnmarshalLayout(w.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if l.Options.ContainerWidth != 800 {
		t.Errorf("container width = %v, want 800 from the body", l.Options.ContainerWidth)
	}

	w = do(t, s, http.MethodPost, "/v1/layout", "application/json", flowJSON)
	l, err = graph.UnmarshalLayout(w.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if l.Options.ContainerWidth != 2000 {
		t.Errorf("container width = %v, want 2000 from the config", l.Options.ContainerWidth)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		query       string
		contentType string
		prefix      string
	}{
		{"", "image/svg+xml", "<svg"},
		{"?format=svg&interactive=true&title=Flows", "image/svg+xml", "<svg"},
		{"?format=png&scale=1", "image/png", "\x89PNG"},
		{"?format=json&style=curve", "application/json; charset=utf-8", "{"},
		{"?format=dot&detailed=1", "text/vnd.graphviz; charset=utf-8", "digraph"},
	}

	s, _ := testServer(t, nil)
	for _, tt := range tests {
		t.Run("render"+tt.query, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/v1/render"+tt.query, "application/json", flowJSON)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !bytes.HasPrefix(w.Body.Bytes(), []byte(tt.prefix)) {
				t.Errorf("body starts with %.20q, want %q", w.Body.String(), tt.prefix)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	s, _ := testServer(t, nil)

	w := do(t, s, http.MethodPost, "/v1/snapshot", "application/json", flowJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var snap mesh.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Layers) != 3 {
		t.Fatalf("snapshot has %d layers, want 3", len(snap.Layers))
	}
	if b := snap.Layers[1][0]; b.Name != "B" || b.Value != 10 {
		t.Errorf("middle node = %s (%v), want B (10)", b.Name, b.Value)
	}
}

func TestErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 512

	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"empty body", http.MethodPost, "/v1/layout", "", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed json", http.MethodPost, "/v1/layout", "", "{", http.StatusBadRequest, "INVALID_FORMAT"},
		{"unsupported content type", http.MethodPost, "/v1/layout", "application/xml", "<x/>", http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad reference", http.MethodPost, "/v1/layout", "",
			`{"points":[{"name":"A"}],"links":[{"source":0,"target":5,"value":1}]}`,
			http.StatusUnprocessableEntity, "INVALID_REFERENCE"},
		{"bad options", http.MethodPost, "/v1/layout", "",
			`{"points":[{"name":"A"}],"links":[],"options":{"curvature":2}}`,
			http.StatusUnprocessableEntity, "INVALID_OPTIONS"},
		{"bad format", http.MethodPost, "/v1/render?format=gif", "", flowJSON, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad style", http.MethodPost, "/v1/render?style=sketch", "", flowJSON, http.StatusUnprocessableEntity, "INVALID_STYLE"},
		{"bad bool", http.MethodPost, "/v1/render?interactive=maybe", "", flowJSON, http.StatusUnprocessableEntity, "INVALID_OPTIONS"},
		{"body too large", http.MethodPost, "/v1/layout", "", `{"points":[` + strings.Repeat(`{"name":"x"},`, 100) + `{"name":"y"}]}`,
			http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
		{"unknown route", http.MethodGet, "/v2/layout", "", "", http.StatusNotFound, "NOT_FOUND"},
		{"wrong method", http.MethodGet, "/v1/layout", "", "", http.StatusMethodNotAllowed, "UNSUPPORTED"},
	}

	s, _ := testServer(t, cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.target, tt.contentType, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tt.status, w.Body.String())
			}
			e := decodeError(t, w)
			if e.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Error.Code, tt.code)
			}
			if e.RequestID == "" || e.RequestID != w.Header().Get(HeaderRequestID) {
				t.Errorf("request id %q does not match header %q", e.RequestID, w.Header().Get(HeaderRequestID))
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	s, _ := testServer(t, nil)

	w := do(t, s, http.MethodGet, "/healthz", "", "")
	if id := w.Header().Get(HeaderRequestID); len(id) != 36 {
		t.Errorf("generated request id = %q", id)
	}

	const incoming = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, incoming)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != incoming {
		t.Errorf("request id = %q, want the incoming %q", got, incoming)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "not a uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got == "not a uuid" {
		t.Error("malformed incoming request id should be replaced")
	}
}

func TestMetrics(t *testing.T) {
	s, reg := testServer(t, nil)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetAPIHooks(hooks)
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	do(t, s, http.MethodPost, "/v1/layout", "application/json", flowJSON)

	w := do(t, s, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`linearmesh_http_requests_total{method="POST",route="/v1/layout",status="200"} 1`,
		`linearmesh_pipeline_stage_total{result="ok",stage="layout"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{cache.ErrNetwork, http.StatusInternalServerError},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		if got, _ := classify(tt.err); got != tt.status {
			t.Errorf("classify(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := testServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
