package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"paydash/internal/core"
	applog "paydash/internal/log"
	"paydash/internal/middleware/security"
	"paydash/internal/middleware/trace"
	"paydash/internal/services"
	"paydash/internal/theme"
	appweb "paydash/web"
)

const defaultRenderTimeout = 7 * time.Second

// Renderer runs one render cycle.
type Renderer interface {
	Render(ctx context.Context) (services.Result, error)
	Source() string
}

// JournalReader lists recent render outcomes.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]core.RenderOutcome, error)
	Ping(ctx context.Context) error
}

// Options configures a Server. Journal may be nil.
type Options struct {
	Addr          string
	Renderer      Renderer
	Theme         theme.Theme
	Journal       JournalReader
	Logger        *applog.Logger
	RenderTimeout time.Duration
}

type appMetrics struct {
	uptime         time.Time
	renders        int64
	renderFailures int64
}

type Server struct {
	http.Server
	templates     *template.Template
	renderer      Renderer
	theme         theme.Theme
	journal       JournalReader
	logger        *applog.Logger
	renderTimeout time.Duration

	traceMiddleware *trace.Middleware
	appMetrics      *appMetrics
	shutdownOnce    sync.Once
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	timeout := opts.RenderTimeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      timeout + 5*time.Second,
			IdleTimeout:       60 * time.Second,
		},
		renderer:        opts.Renderer,
		theme:           opts.Theme,
		journal:         opts.Journal,
		logger:          logger.WithComponent(applog.ComponentHTTP),
		renderTimeout:   timeout,
		traceMiddleware: trace.NewMiddleware(logger),
		appMetrics:      &appMetrics{uptime: time.Now()},
	}

	t, err := LoadTemplates()
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", getOnly(security.StaticAssetMiddleware(time.Hour)(static)))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err.Error())
	}

	mux.Handle("/", getOnly(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/api/report", getOnly(http.HandlerFunc(s.handleReportJSON)))
	mux.Handle("/charts/", getOnly(http.HandlerFunc(s.handleChartSVG)))
	mux.Handle("/renders", getOnly(http.HandlerFunc(s.handleRenders)))
	mux.Handle("/healthz", getOnly(http.HandlerFunc(s.handleHealth)))
	mux.Handle("/readyz", getOnly(http.HandlerFunc(s.handleReady)))
	mux.Handle("/metrics", getOnly(http.HandlerFunc(s.handleMetrics)))

	s.Handler = s.traceMiddleware.Middleware(security.DashboardPolicy().Middleware(mux))
	return s
}

// getOnly answers 405 for anything but GET and HEAD. Every route is read-only.
func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if resp := RequireGET(r); resp != nil {
			resp.Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render runs one cycle bounded by the render timeout and counts it.
func (s *Server) render(ctx context.Context) (services.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()

	res, err := s.renderer.Render(ctx)
	s.countRender(err)
	return res, err
}
