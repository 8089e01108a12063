package http

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"paydash/internal/core"
	applog "paydash/internal/log"
)

const maxRendersLimit = 500

func (s *Server) countRender(err error) {
	atomic.AddInt64(&s.appMetrics.renders, 1)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.renderFailures, 1)
	}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}).Write(w)
}

// handleReady checks templates and the journal. A missing data file is
// reported but does not make the service unready: the page explains it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if _, err := os.Stat(s.renderer.Source()); err != nil {
		checks["data_file"] = "missing"
	} else {
		checks["data_file"] = "ok"
	}

	if s.journal == nil {
		checks["journal"] = "not_configured"
	} else if err := s.journal.Ping(ctx); err != nil {
		checks["journal"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["journal"] = "ok"
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides request and render counters in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	renders := atomic.LoadInt64(&s.appMetrics.renders)
	failures := atomic.LoadInt64(&s.appMetrics.renderFailures)
	uptime := time.Since(s.appMetrics.uptime)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.FailedRequests)

	fmt.Fprintf(w, "# HELP renders_total Total render cycles\n")
	fmt.Fprintf(w, "# TYPE renders_total counter\n")
	fmt.Fprintf(w, "renders_total %d\n\n", renders)

	fmt.Fprintf(w, "# HELP render_failures_total Render cycles that ended in an error\n")
	fmt.Fprintf(w, "# TYPE render_failures_total counter\n")
	fmt.Fprintf(w, "render_failures_total %d\n\n", failures)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}

// handleRenders lists recent render outcomes from the journal.
func (s *Server) handleRenders(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		NotFoundError("journal_disabled", "The render journal is not enabled.").Write(w)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			NewResponse().Status(http.StatusBadRequest).
				JSON(ErrorBody{Error: ErrorDetail{Kind: "bad_request", Message: "limit must be a positive integer"}}).
				Write(w)
			return
		}
		limit = min(n, maxRendersLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	outcomes, err := s.journal.Recent(ctx, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read render journal",
			applog.FieldError, err.Error(),
			applog.FieldOperation, "recent")
		NewResponse().Status(http.StatusInternalServerError).
			JSON(ErrorBody{Error: ErrorDetail{Kind: core.KindInternal, Message: "The render journal could not be read."}}).
			Write(w)
		return
	}
	if outcomes == nil {
		outcomes = []core.RenderOutcome{}
	}
	NewResponse().NoStore().JSON(map[string]any{"renders": outcomes}).Write(w)
}
