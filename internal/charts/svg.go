// Package charts draws report line charts as SVG on the server.
package charts

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"paydash/internal/core"
	"paydash/internal/report"
	"paydash/internal/theme"
)

const day = 24 * time.Hour

// RenderSVG writes one line chart with a time series per user.
// A chart without any series is written as a placeholder with the chart title.
func RenderSVG(w io.Writer, c report.ChartData, t theme.Theme) error {
	if len(c.Series) == 0 {
		return writePlaceholder(w, c, t)
	}

	fg := color(t.Foreground)
	grid := chart.Style{StrokeColor: color(t.GridColor), StrokeWidth: 1}

	series := make([]chart.Series, 0, len(c.Series))
	var xs []time.Time
	var ys []float64
	for _, s := range c.Series {
		ts := chart.TimeSeries{
			Name:  s.Name,
			Style: lineStyle(color(s.Color)),
		}
		for _, p := range s.Points {
			d, err := core.ParseDate(p.X)
			if err != nil {
				return fmt.Errorf("series %s: %w", s.Name, err)
			}
			ts.XValues = append(ts.XValues, d.Time)
			ts.YValues = append(ts.YValues, p.Y)
		}
		xs = append(xs, ts.XValues...)
		ys = append(ys, ts.YValues...)
		series = append(series, ts)
	}

	graph := chart.Chart{
		Title:      c.Title,
		TitleStyle: chart.Style{FontColor: fg, FontSize: float64(t.TitleFontSize)},
		Width:      t.ChartWidth,
		Height:     t.ChartHeight,
		Background: chart.Style{
			FillColor: color(t.Background),
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
		},
		Canvas: chart.Style{FillColor: color(t.Background)},
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			NameStyle:      chart.Style{FontColor: fg},
			Style:          chart.Style{FontColor: fg, StrokeColor: fg, FontSize: float64(t.FontSize), TextRotationDegrees: float64(t.TickAngle)},
			ValueFormatter: chart.TimeDateValueFormatter,
			GridMajorStyle: grid,
			Range:          timeRange(xs),
		},
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			NameStyle:      chart.Style{FontColor: fg},
			Style:          chart.Style{FontColor: fg, StrokeColor: fg, FontSize: float64(t.FontSize)},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.2f", v) },
			GridMajorStyle: grid,
			Range:          valueRange(ys),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph, chart.Style{
		FillColor:   color(t.LegendBG),
		FontColor:   fg,
		StrokeColor: color(t.GridColor),
	})}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", c.ID, err)
	}
	return nil
}

// RenderAll renders the daily chart and, when present, the cumulative chart
// concurrently. The result is keyed by chart ID.
func RenderAll(ctx context.Context, rep report.Report, t theme.Theme) (map[string][]byte, error) {
	charts := []report.ChartData{rep.Daily}
	if rep.Cumulative != nil {
		charts = append(charts, *rep.Cumulative)
	}

	out := make([][]byte, len(charts))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range charts {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := RenderSVG(&buf, c, t); err != nil {
				return err
			}
			out[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(charts))
	for i, c := range charts {
		result[c.ID] = out[i]
	}
	return result, nil
}

func lineStyle(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: c,
		StrokeWidth: 2,
		DotColor:    c,
		DotWidth:    4,
	}
}

// timeRange widens a single-day range so the axis never has zero width.
func timeRange(xs []time.Time) chart.Range {
	if len(xs) == 0 {
		return nil
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x.Before(lo) {
			lo = x
		}
		if x.After(hi) {
			hi = x
		}
	}
	if !lo.Equal(hi) {
		return nil
	}
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(lo.Add(-day)),
		Max: chart.TimeToFloat64(hi.Add(day)),
	}
}

func valueRange(ys []float64) chart.Range {
	if len(ys) == 0 {
		return nil
	}
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo = min(lo, y)
		hi = max(hi, y)
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// color converts #rgb or #rrggbb to a drawing color.
func color(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return drawing.ColorFromHex(hex)
}

func writePlaceholder(w io.Writer, c report.ChartData, t theme.Theme) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="100%%" height="100%%" fill="%s"/>`+
			`<text x="50%%" y="50%%" fill="%s" font-size="%d" text-anchor="middle">%s: no data</text></svg>`,
		t.ChartWidth, t.ChartHeight, html.EscapeString(t.Background), html.EscapeString(t.Foreground),
		t.FontSize, html.EscapeString(c.Title))
	return err
}
