package server

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/swimlane/pkg/cache"
	"github.com/matzehuels/swimlane/pkg/config"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/layout/position"
	"github.com/matzehuels/swimlane/pkg/layout/routing"
	"github.com/matzehuels/swimlane/pkg/observability"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

const chainDoc = `{
  "nodes": [
    {"id": 1, "kind": "start", "label": "Received", "pool": "Shop", "lane": "Sales"},
    {"id": 2, "kind": "task", "label": "Check", "pool": "Shop", "lane": "Sales"},
    {"id": 3, "kind": "end", "pool": "Shop", "lane": "Sales"}
  ],
  "edges": [
    {"from": 1, "to": 2},
    {"from": 2, "to": 3}
  ]
}`

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	ts := httptest.NewServer(New(runner, cfg, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var body HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("Status = %q, want ok", body.Status)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("%s = %q, want a uuid", RequestIDHeader, resp.Header.Get(RequestIDHeader))
	}
}

func TestRequestID_Propagated(t *testing.T) {
	ts := newTestServer(t, nil)
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("%s = %q, want %q", RequestIDHeader, got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" {
		t.Errorf("%s kept invalid id %q", RequestIDHeader, got)
	}
}

func TestLayout_JSON(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/v1/layout", chainDoc)

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, b)
	}
	var body LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.RequestID != resp.Header.Get(RequestIDHeader) {
		t.Errorf("RequestID = %q, header %q", body.RequestID, resp.Header.Get(RequestIDHeader))
	}
	if body.Report == nil || !body.Report.OK() {
		t.Fatalf("Report = %+v, want no diagnostics", body.Report)
	}
	if body.Report.Routed != 2 {
		t.Errorf("Routed = %d, want 2", body.Report.Routed)
	}

	var doc graph.Document
	if err := json.Unmarshal(body.Document, &doc); err != nil {
		t.Fatalf("document: %v", err)
	}
	for _, n := range doc.Nodes {
		if n.Layer == nil || *n.Layer != n.ID-1 {
			t.Errorf("node %d layer = %v, want %d", n.ID, n.Layer, n.ID-1)
		}
	}
	for _, e := range doc.Edges {
		if len(e.Points) < 2 {
			t.Errorf("edge %d->%d has %d points, want >= 2", e.From, e.To, len(e.Points))
		}
	}
}

func TestLayout_Envelope(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `{"document": ` + chainDoc + `, "options": {"ordering": "alignment", "router": "elbow", "sweeps": 2}}`
	resp := post(t, ts.URL+"/v1/layout", body)

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, b)
	}
	var out LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Report == nil || len(out.Report.Lanes) != 1 {
		t.Errorf("Report = %+v, want one lane", out.Report)
	}
}

func TestLayout_BPMN(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/v1/layout?format=bpmn", chainDoc)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/xml" {
		t.Errorf("Content-Type = %q, want application/xml", ct)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "bpmn:definitions") {
		t.Errorf("body does not look like BPMN XML: %.80s", b)
	}
}

func TestLayout_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		body       string
		mutate     func(*config.Config)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "bad format",
			query:      "?format=png",
			body:       chainDoc,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FORMAT",
		},
		{
			name:       "not json",
			body:       "nodes: []",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "dangling edge",
			body:       `{"nodes": [{"id": 1, "kind": "task", "pool": "P", "lane": "L"}], "edges": [{"from": 1, "to": 9}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_NODE",
		},
		{
			name:       "unknown ordering",
			body:       `{"document": ` + chainDoc + `, "options": {"ordering": "magic"}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "negative spacing",
			body:       `{"document": ` + chainDoc + `, "options": {"position": {"Spacing": -100}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "negative origin",
			body:       `{"document": ` + chainDoc + `, "options": {"position": {"OriginX": -500, "OriginY": -500}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "oversized layer width",
			body:       `{"document": ` + chainDoc + `, "options": {"position": {"LayerWidth": 1e9}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "oversized routing padding",
			body:       `{"document": ` + chainDoc + `, "options": {"routing": {"Padding": 10000000}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "negative routing margin",
			body:       `{"document": ` + chainDoc + `, "options": {"routing": {"Margin": -1}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "too large",
			body:       chainDoc,
			mutate:     func(c *config.Config) { c.Server.MaxBodyBytes = 16 },
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.mutate)
			resp := post(t, ts.URL+"/v1/layout"+tt.query, tt.body)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q (%s)", body.Code, tt.wantCode, body.Error)
			}
			if body.RequestID == "" {
				t.Error("RequestID is empty")
			}
		})
	}
}

const forkDoc = `{
  "nodes": [
    {"id": 1, "kind": "start", "pool": "Shop", "lane": "Sales"},
    {"id": 2, "kind": "gateway_parallel", "pool": "Shop", "lane": "Sales"},
    {"id": 3, "kind": "task", "label": "Pack", "pool": "Shop", "lane": "Sales"},
    {"id": 4, "kind": "task", "label": "Bill", "pool": "Shop", "lane": "Sales"},
    {"id": 5, "kind": "end", "pool": "Shop", "lane": "Sales"}
  ],
  "edges": [
    {"from": 1, "to": 2},
    {"from": 2, "to": 3},
    {"from": 2, "to": 4},
    {"from": 3, "to": 5},
    {"from": 4, "to": 5}
  ]
}`

func TestLayout_PartialOptions(t *testing.T) {
	tests := []struct {
		name    string
		options string
	}{
		{"position layer width only", `{"position": {"LayerWidth": 200}}`},
		{"routing margin only", `{"routing": {"Margin": 10}}`},
		{"empty structs", `{"position": {}, "routing": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			resp := post(t, ts.URL+"/v1/layout", `{"document": `+forkDoc+`, "options": `+tt.options+`}`)
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				t.Fatalf("status = %d, want 200: %s", resp.StatusCode, b)
			}
			var out LayoutResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatal(err)
			}
			if out.Report == nil || out.Report.Routed != 5 {
				t.Errorf("Report = %+v, want 5 routed edges", out.Report)
			}

			var doc graph.Document
			if err := json.Unmarshal(out.Document, &doc); err != nil {
				t.Fatalf("document: %v", err)
			}
			byID := map[int]graph.NodeDoc{}
			for _, n := range doc.Nodes {
				byID[n.ID] = n
			}
			pack, bill := byID[3], byID[4]
			if pack.X != bill.X {
				t.Errorf("same-layer X = %v and %v, want equal", pack.X, bill.X)
			}
			if gap := math.Abs(pack.Y - bill.Y); gap <= graph.SizeTask.H {
				t.Errorf("same-layer tasks %v apart, want more than height %v", gap, graph.SizeTask.H)
			}
			if byID[1].X < position.DefaultOptions().OriginX {
				t.Errorf("start X = %v, want >= default origin %v", byID[1].X, position.DefaultOptions().OriginX)
			}
		})
	}
}

func TestLayout_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/v1/layout")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestLayout_Concurrent(t *testing.T) {
	ts := newTestServer(t, nil)

	var wg sync.WaitGroup
	codes := make([]int, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/v1/layout", "application/json", strings.NewReader(chainDoc))
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	for i, c := range codes {
		if c != http.StatusOK {
			t.Errorf("request %d status = %d, want 200", i, c)
		}
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
	errors   int
}

func (h *httpRecorder) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func (h *httpRecorder) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestHTTPHooks(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	defer observability.SetHTTPHooks(observability.NoopHTTPHooks{})

	ts := newTestServer(t, nil)
	post(t, ts.URL+"/v1/layout", chainDoc)
	post(t, ts.URL+"/v1/layout?format=png", chainDoc)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.statuses) != 2 || rec.statuses[0] != http.StatusOK || rec.statuses[1] != http.StatusBadRequest {
		t.Errorf("statuses = %v, want [200 400]", rec.statuses)
	}
	if rec.errors != 1 {
		t.Errorf("errors = %d, want 1", rec.errors)
	}
}

func TestSplitRequest(t *testing.T) {
	doc, opts, err := splitRequest([]byte(chainDoc))
	if err != nil || opts != nil || string(doc) != chainDoc {
		t.Errorf("bare document: doc changed=%v opts=%v err=%v", string(doc) != chainDoc, opts, err)
	}

	doc, opts, err = splitRequest([]byte(`{"document": {"nodes": []}, "options": {"sweeps": 3}}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(doc) != `{"nodes": []}` {
		t.Errorf("doc = %s", doc)
	}
	if opts == nil || opts.Sweeps != 3 {
		t.Errorf("opts = %+v, want Sweeps 3", opts)
	}
}

func TestMergeOptions(t *testing.T) {
	s := New(pipeline.NewRunner(nil, nil, log.New(io.Discard)), config.Default(), log.New(io.Discard))

	got := s.mergeOptions(nil)
	if got.Ordering != s.defaults.Ordering || got.Position != s.defaults.Position {
		t.Errorf("mergeOptions(nil) = %+v, want defaults", got)
	}

	got = s.mergeOptions(&pipeline.Options{Ordering: "barycentric", Sweeps: 7, Refresh: true})
	if got.Ordering != "barycentric" || got.Sweeps != 7 || !got.Refresh {
		t.Errorf("mergeOptions() = %+v", got)
	}
	if got.Router != s.defaults.Router {
		t.Errorf("Router = %q, want default %q", got.Router, s.defaults.Router)
	}

	defPos := *s.defaults.Position
	defRoute := *s.defaults.Routing
	got = s.mergeOptions(&pipeline.Options{
		Position: &position.Options{LayerWidth: 200},
		Routing:  &routing.Options{Padding: 10},
	})
	want := defPos
	want.LayerWidth = 200
	if *got.Position != want {
		t.Errorf("Position = %+v, want %+v", *got.Position, want)
	}
	if got.Routing.Padding != 10 || got.Routing.Margin != defRoute.Margin || got.Routing.MaxCells != defRoute.MaxCells {
		t.Errorf("Routing = %+v, want defaults with Padding 10", *got.Routing)
	}
	if *s.defaults.Position != defPos || *s.defaults.Routing != defRoute {
		t.Error("mergeOptions modified the server defaults")
	}

	got = s.mergeOptions(&pipeline.Options{Position: &position.Options{Spacing: -100}})
	if got.Position.Spacing != -100 || got.Position.OriginX != defPos.OriginX {
		t.Errorf("Position = %+v, want Spacing -100 over defaults", *got.Position)
	}
	if err := got.Position.Validate(); err == nil {
		t.Error("Validate() = nil for negative spacing")
	}
}
