package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paydash/internal/core"
	"paydash/internal/report"
	"paydash/internal/services"
	"paydash/internal/theme"
)

const sampleJSON = `[
	{"username": "alice", "date": "2024-01-01", "daily_amount": 1.0},
	{"username": "alice", "date": "2024-01-02", "daily_amount": 2.0},
	{"username": "bob", "date": "2024-01-01", "daily_amount": 3.14159}
]`

type fakeJournal struct {
	outcomes []core.RenderOutcome
	pingErr  error
	limit    int
}

func (f *fakeJournal) Recent(_ context.Context, limit int) ([]core.RenderOutcome, error) {
	f.limit = limit
	return f.outcomes, nil
}

func (f *fakeJournal) Ping(context.Context) error { return f.pingErr }

func writeData(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return path
}

func newTestServer(t *testing.T, path string, v report.Variant, j JournalReader) *Server {
	t.Helper()
	svc := services.NewRenderService(path, report.NewGenerator(theme.Dark(), v), nil)
	return NewServer(Options{Addr: ":0", Renderer: svc, Theme: theme.Dark(), Journal: j})
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestDashboardFull(t *testing.T) {
	srv := newTestServer(t, writeData(t, sampleJSON), report.VariantFull, nil)

	rr := get(srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"User Daily Amount Visualization",
		"Total Users", "Total Amount", "Average Daily Amount",
		`data-chart="daily"`, `data-chart="cumulative"`,
		"Raw Data", "User Rankings",
		"2024-01-02", "3.1416", "6.1416",
		`id="report-data"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("security headers not applied")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request id header not set")
	}
}

func TestDashboardBasic(t *testing.T) {
	srv := newTestServer(t, writeData(t, sampleJSON), report.VariantBasic, nil)

	body := get(srv, "/").Body.String()
	if !strings.Contains(body, `data-chart="daily"`) || !strings.Contains(body, "Raw Data") {
		t.Fatal("basic dashboard needs the daily chart and raw table")
	}
	for _, absent := range []string{`data-chart="cumulative"`, "User Rankings", "Total Users"} {
		if strings.Contains(body, absent) {
			t.Errorf("basic dashboard should not contain %q", absent)
		}
	}
}

func TestDashboardErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		msg    string
	}{
		{
			name:   "missing file",
			path:   filepath.Join(t.TempDir(), "users.json"),
			status: http.StatusNotFound,
			msg:    "file not found",
		},
		{
			name:   "malformed input",
			path:   writeData(t, "{not json"),
			status: http.StatusUnprocessableEntity,
			msg:    "Error reading the JSON file",
		},
		{
			name:   "malformed record",
			path:   writeData(t, `[{"username": "a", "date": "yesterday", "daily_amount": 1}]`),
			status: http.StatusUnprocessableEntity,
			msg:    "invalid entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.path, report.VariantFull, nil)
			rr := get(srv, "/")
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d", rr.Code, tt.status)
			}
			body := rr.Body.String()
			if !strings.Contains(body, tt.msg) {
				t.Errorf("body missing message %q", tt.msg)
			}
			if strings.Contains(body, "<canvas") || strings.Contains(body, "<table") {
				t.Error("error page must not contain charts or tables")
			}
		})
	}
}

func TestDashboardUnknownPathAndMethod(t *testing.T) {
	srv := newTestServer(t, writeData(t, sampleJSON), report.VariantFull, &fakeJournal{})

	if rr := get(srv, "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	}

	routes := []string{
		"/", "/api/report", "/charts/daily.svg", "/renders",
		"/healthz", "/readyz", "/metrics", "/static/app.js",
	}
	for _, path := range routes {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			rr := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
			if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "GET, HEAD" {
				t.Errorf("%s %s status=%d allow=%q", method, path, rr.Code, rr.Header().Get("Allow"))
			}
		}

		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodHead, path, nil))
		if rr.Code == http.StatusMethodNotAllowed {
			t.Errorf("HEAD %s should be allowed", path)
		}
	}
}

func TestReportJSON(t *testing.T) {
	srv := newTestServer(t, writeData(t, sampleJSON), report.VariantFull, nil)

	rr := get(srv, "/api/report")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var payload struct {
		RenderID string        `json:"render_id"`
		Report   report.Report `json:"report"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.RenderID == "" || payload.RenderID != rr.Header().Get("X-Render-ID") {
		t.Errorf("render id mismatch: %q vs %q", payload.RenderID, rr.Header().Get("X-Render-ID"))
	}
	if payload.Report.RecordCount != 3 || len(payload.Report.RawTable.Rows) != 3 {
		t.Errorf("unexpected report %+v", payload.Report)
	}
	if payload.Report.Daily.Shape != report.ShapeSpline || !payload.Report.Daily.UnifiedHover {
		t.Errorf("full daily chart should be spline with unified hover")
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Error("report must not be cached")
	}
}

func TestReportJSONError(t *testing.T) {
	srv := newTestServer(t, writeData(t, "[1, 2"), report.VariantFull, nil)

	rr := get(srv, "/api/report")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", rr.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Kind != core.KindMalformedInput || body.Error.Message == "" {
		t.Errorf("unexpected error body %+v", body)
	}
}

func TestChartSVG(t *testing.T) {
	full := newTestServer(t, writeData(t, sampleJSON), report.VariantFull, nil)
	for _, path := range []string{"/charts/daily.svg", "/charts/cumulative.svg"} {
		rr := get(full, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("Content-Type") != "image/svg+xml" || !bytes.HasPrefix(rr.Body.Bytes(), []byte("<svg")) {
			t.Errorf("%s is not an svg", path)
		}
	}

	if rr := get(full, "/charts/other.svg"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown chart status=%d", rr.Code)
	}

	basic := newTestServer(t, writeData(t, sampleJSON), report.VariantBasic, nil)
	if rr := get(basic, "/charts/cumulative.svg"); rr.Code != http.StatusNotFound {
		t.Errorf("basic cumulative chart status=%d", rr.Code)
	}

	missing := newTestServer(t, filepath.Join(t.TempDir(), "absent.json"), report.VariantFull, nil)
	if rr := get(missing, "/charts/daily.svg"); rr.Code != http.StatusNotFound {
		t.Errorf("missing file chart status=%d", rr.Code)
	}
}

func TestRenders(t *testing.T) {
	path := writeData(t, sampleJSON)

	disabled := newTestServer(t, path, report.VariantFull, nil)
	if rr := get(disabled, "/renders"); rr.Code != http.StatusNotFound {
		t.Errorf("disabled journal status=%d", rr.Code)
	}

	j := &fakeJournal{outcomes: []core.RenderOutcome{
		{ID: "r1", Source: path, Variant: "full", Status: core.StatusOK, Records: 3, Users: 2, At: time.Now()},
	}}
	srv := newTestServer(t, path, report.VariantFull, j)

	rr := get(srv, "/renders?limit=5000")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if j.limit != maxRendersLimit {
		t.Errorf("limit should be capped, got %d", j.limit)
	}
	if !strings.Contains(rr.Body.String(), `"id":"r1"`) {
		t.Errorf("body missing outcome: %s", rr.Body.String())
	}

	if rr := get(srv, "/renders?limit=zero"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit status=%d", rr.Code)
	}
}

func TestHealthReadyMetrics(t *testing.T) {
	srv := newTestServer(t, writeData(t, sampleJSON), report.VariantFull, &fakeJournal{})

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(srv, path); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}

	get(srv, "/")
	rr := get(srv, "/metrics")
	if !strings.Contains(rr.Body.String(), "renders_total 1") {
		t.Errorf("metrics should count the render: %s", rr.Body.String())
	}

	down := newTestServer(t, writeData(t, sampleJSON), report.VariantFull, &fakeJournal{pingErr: errors.New("locked")})
	if rr := get(down, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with failing journal status=%d", rr.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, writeData(t, sampleJSON), report.VariantFull, nil)
	for _, path := range []string{"/static/app.js", "/static/style.css"} {
		rr := get(srv, path)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
		if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age") {
			t.Errorf("%s missing cache header", path)
		}
	}
}

func TestUnifiedHoverGroupsByDate(t *testing.T) {
	srv := newTestServer(t, writeData(t, sampleJSON), report.VariantFull, nil)

	js := get(srv, "/static/app.js").Body.String()
	if !strings.Contains(js, "mode: 'x', intersect: false") {
		t.Error("unified hover should group points sharing an x value")
	}
	if strings.Contains(js, "mode: 'index'") {
		t.Error("index mode pairs points by array position across series with different dates")
	}
}

func TestWriteStaticReport(t *testing.T) {
	svc := services.NewRenderService(writeData(t, sampleJSON), report.NewGenerator(theme.Dark(), report.VariantFull), nil)
	res, err := svc.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteStaticReport(context.Background(), &buf, res, theme.Dark()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "<svg") < 2 {
		t.Error("static report should inline both charts")
	}
	if strings.Contains(out, "<script") {
		t.Error("static report must not need scripts")
	}
	if !strings.Contains(out, "User Rankings") || !strings.Contains(out, res.ID) {
		t.Error("static report missing ranking table or render id")
	}
}
