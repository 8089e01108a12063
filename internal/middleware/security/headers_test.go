package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDashboardPolicy(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	DashboardPolicy().Middleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := rr.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "script-src 'self' "+ChartCDN) {
		t.Errorf("CSP must allow the chart library CDN: %q", csp)
	}
	if !strings.Contains(csp, "object-src 'none'") {
		t.Errorf("CSP should forbid plugins: %q", csp)
	}

	tests := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for k, want := range tests {
		if got := rr.Header().Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if _, ok := rr.Header()["Cross-Origin-Embedder-Policy"]; ok {
		t.Error("empty COEP should not be sent")
	}
}

func TestStaticAssetMiddleware(t *testing.T) {
	serve := func(maxAge time.Duration) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		StaticAssetMiddleware(maxAge)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
		return rr
	}

	if got := serve(time.Hour).Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := serve(0).Header().Get("Cache-Control"); got != "" {
		t.Errorf("zero max age should not set Cache-Control, got %q", got)
	}
}
