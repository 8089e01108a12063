package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "paydash/internal/log"
)

func TestMiddleware(t *testing.T) {
	var seenID string
	var seenLogger *applog.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		seenLogger = applog.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	m := NewMiddleware(applog.Discard())
	rr := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.HasPrefix(seenID, "req_") {
		t.Errorf("request id = %q", seenID)
	}
	if rr.Header().Get(RequestIDHeader) != seenID {
		t.Errorf("response header %q != context id %q", rr.Header().Get(RequestIDHeader), seenID)
	}
	if seenLogger == nil || seenLogger.Component() != applog.ComponentHTTP {
		t.Error("handler should see the request logger")
	}
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}

	got := m.GetMetrics()
	if got.TotalRequests != 1 || got.FailedRequests != 0 {
		t.Errorf("metrics = %+v", got)
	}
}

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	m := NewMiddleware(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")

	rr := httptest.NewRecorder()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})).ServeHTTP(rr, req)

	if rr.Header().Get(RequestIDHeader) != "upstream-42" {
		t.Errorf("incoming id not kept: %q", rr.Header().Get(RequestIDHeader))
	}
	if m.GetMetrics().FailedRequests != 1 {
		t.Error("5xx responses should be counted")
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
