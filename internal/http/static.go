package http

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"paydash/internal/charts"
	"paydash/internal/services"
	"paydash/internal/theme"
)

// WriteStaticReport writes a self-contained HTML page with the charts
// inlined as SVG. The page needs no script and no network access.
func WriteStaticReport(ctx context.Context, w io.Writer, res services.Result, t theme.Theme) error {
	tmpl, err := LoadTemplates()
	if err != nil {
		return err
	}

	svgs, err := charts.RenderAll(ctx, res.Report, t)
	if err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	data := pageData{Theme: t, Report: res.Report, RenderID: res.ID}
	for _, c := range chartList(res.Report) {
		data.SVG = append(data.SVG, template.HTML(svgs[c.ID]))
	}

	if err := tmpl.ExecuteTemplate(w, "static_report.html", data); err != nil {
		return fmt.Errorf("execute static report: %w", err)
	}
	return nil
}
