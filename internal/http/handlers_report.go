package http

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"strings"

	"paydash/internal/charts"
	"paydash/internal/core"
	applog "paydash/internal/log"
	"paydash/internal/report"
	"paydash/internal/theme"
)

// chartTheme is the subset of the theme the browser charts need.
type chartTheme struct {
	Foreground       string `json:"foreground"`
	Grid             string `json:"grid"`
	LegendBackground string `json:"legendBackground"`
	FontSize         int    `json:"fontSize"`
	TitleFontSize    int    `json:"titleFontSize"`
	TickAngle        int    `json:"tickAngle"`
}

func newChartTheme(t theme.Theme) chartTheme {
	return chartTheme{
		Foreground:       t.Foreground,
		Grid:             t.GridColor,
		LegendBackground: t.LegendBG,
		FontSize:         t.FontSize,
		TitleFontSize:    t.TitleFontSize,
		TickAngle:        t.TickAngle,
	}
}

// pageData feeds dashboard.html, error.html and static_report.html.
type pageData struct {
	Theme      theme.Theme
	Report     report.Report
	RenderID   string
	Charts     []report.ChartData
	ChartTheme chartTheme
	SVG        []template.HTML
	Message    string
	ErrorKind  string
}

func chartList(rep report.Report) []report.ChartData {
	out := []report.ChartData{rep.Daily}
	if rep.Cumulative != nil {
		out = append(out, *rep.Cumulative)
	}
	return out
}

// handleDashboard renders the main dashboard page. A failed render shows a
// single message and no chart or table.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	logger := applog.FromContext(r.Context())
	res, err := s.render(r.Context())
	if err != nil {
		data := pageData{
			Theme:     s.theme,
			RenderID:  res.ID,
			Message:   core.UserMessage(err, s.renderer.Source()),
			ErrorKind: core.Kind(err),
		}
		s.writePage(w, r, StatusFor(err), "error.html", data)
		return
	}

	data := pageData{
		Theme:      s.theme,
		Report:     res.Report,
		RenderID:   res.ID,
		Charts:     chartList(res.Report),
		ChartTheme: newChartTheme(s.theme),
	}
	logger.DebugContext(r.Context(), "Dashboard rendered", applog.FieldRenderID, res.ID)
	s.writePage(w, r, http.StatusOK, "dashboard.html", data)
}

// writePage executes a template into a buffer so a template failure never
// leaves a half-written page.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err.Error(),
			"template", name)
		http.Error(w, "page could not be rendered", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = io.Copy(w, &buf)
}

// handleReportJSON returns the full report model.
func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	res, err := s.render(r.Context())
	if err != nil {
		ErrorResponse(err, s.renderer.Source()).Header("X-Render-ID", res.ID).Write(w)
		return
	}

	NewResponse().
		NoStore().
		Header("X-Render-ID", res.ID).
		JSON(map[string]any{"render_id": res.ID, "report": res.Report}).
		Write(w)
}

// handleChartSVG serves /charts/daily.svg and /charts/cumulative.svg.
func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/charts/"), ".svg")
	if !ok || (name != "daily" && name != "cumulative") {
		http.NotFound(w, r)
		return
	}

	res, err := s.render(r.Context())
	if err != nil {
		NewResponse().Status(StatusFor(err)).NoStore().
			Text(core.UserMessage(err, s.renderer.Source())).
			Write(w)
		return
	}

	c := res.Report.Daily
	if name == "cumulative" {
		if res.Report.Cumulative == nil {
			NotFoundError("chart_unavailable", "The cumulative chart is not part of the basic report.").Write(w)
			return
		}
		c = *res.Report.Cumulative
	}

	var buf bytes.Buffer
	if err := charts.RenderSVG(&buf, c, s.theme); err != nil {
		s.logger.WithComponent(applog.ComponentCharts).ErrorContext(r.Context(), "Chart rendering failed",
			applog.FieldChart, name,
			applog.FieldRenderID, res.ID,
			applog.FieldError, err.Error())
		NewResponse().Status(http.StatusInternalServerError).Text("chart could not be rendered").Write(w)
		return
	}
	NewResponse().NoStore().Header("X-Render-ID", res.ID).SVG(buf.Bytes()).Write(w)
}
