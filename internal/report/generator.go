package report

import (
	"fmt"
	"strconv"

	"paydash/internal/core"
	"paydash/internal/theme"
)

// Variant selects which parts of the dashboard are built.
type Variant string

const (
	// VariantBasic is the daily chart with straight lines plus the raw table.
	VariantBasic Variant = "basic"
	// VariantFull adds headline metrics, the cumulative chart and the ranking table.
	VariantFull Variant = "full"
)

// LineShape controls interpolation between points.
type LineShape string

const (
	ShapeLinear LineShape = "linear"
	ShapeSpline LineShape = "spline"
)

// IsValid returns true for known variants.
func (v Variant) IsValid() bool {
	return v == VariantBasic || v == VariantFull
}

type (
	// Metric is one labeled headline figure.
	Metric struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}

	// Point is one chart observation. Y keeps full precision for plotting.
	Point struct {
		X string  `json:"x"`
		Y float64 `json:"y"`
	}

	// Series is the line of one username.
	Series struct {
		Name   string  `json:"name"`
		Color  string  `json:"color"`
		Points []Point `json:"points"`
	}

	// ChartData is everything a renderer needs to draw one line chart.
	ChartData struct {
		ID           string    `json:"id"`
		Title        string    `json:"title"`
		XLabel       string    `json:"xLabel"`
		YLabel       string    `json:"yLabel"`
		LegendTitle  string    `json:"legendTitle"`
		Shape        LineShape `json:"shape"`
		Markers      bool      `json:"markers"`
		UnifiedHover bool      `json:"unifiedHover"`
		Labels       []string  `json:"labels"` // distinct dates, ascending
		Series       []Series  `json:"series"`
	}

	// Table is a formatted grid of strings.
	Table struct {
		Title   string     `json:"title"`
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}

	// Report is the complete presentation model of one render cycle.
	Report struct {
		Title        string     `json:"title"`
		Variant      Variant    `json:"variant"`
		RecordCount  int        `json:"recordCount"`
		Metrics      []Metric   `json:"metrics,omitempty"`
		Daily        ChartData  `json:"daily"`
		Cumulative   *ChartData `json:"cumulative,omitempty"`
		RawTable     Table      `json:"rawTable"`
		RankingTable *Table     `json:"rankingTable,omitempty"`
	}
)

// Generator builds reports with a fixed theme and variant.
type Generator struct {
	Theme   theme.Theme
	Variant Variant
}

// NewGenerator returns a generator; an unknown variant falls back to full.
func NewGenerator(t theme.Theme, v Variant) Generator {
	if !v.IsValid() {
		v = VariantFull
	}
	return Generator{Theme: t, Variant: v}
}

// Build derives every aggregate from records and formats them for display.
// Records are never modified.
func (g Generator) Build(records []core.PaymentRecord) Report {
	rep := Report{
		Title:       g.Theme.PageTitle,
		Variant:     g.Variant,
		RecordCount: len(records),
		RawTable:    RawTable(records),
	}

	shape := ShapeLinear
	if g.Variant == VariantFull {
		shape = ShapeSpline
	}
	rep.Daily = g.chart("daily", "Daily Amount by User", "Daily Amount", shape, dailyPoints(records))

	if g.Variant == VariantFull {
		rep.Metrics = HeadlineTable(Headline(records))
		cum := g.chart("cumulative", "Cumulative Amount by User", "Cumulative Amount", shape, cumulativePoints(records))
		rep.Cumulative = &cum
		ranking := RankingTable(Ranking(records))
		rep.RankingTable = &ranking
	}
	return rep
}

// HeadlineTable formats headline metrics as three labeled figures.
func HeadlineTable(m HeadlineMetrics) []Metric {
	mean := "—"
	if m.HasData {
		mean = core.FormatAmount(m.Mean)
	}
	return []Metric{
		{Label: "Total Users", Value: strconv.Itoa(m.Users)},
		{Label: "Total Amount", Value: core.FormatAmount(m.Total)},
		{Label: "Average Daily Amount", Value: mean},
	}
}

// RawTable renders one row per record in input order.
func RawTable(records []core.PaymentRecord) Table {
	t := Table{
		Title:   "Raw Data",
		Columns: []string{"Username", "Date", "Daily Amount"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{r.Username, r.Date.String(), core.FormatAmount(r.DailyAmount)})
	}
	return t
}

// RankingTable renders user summaries with fixed precision monetary columns.
func RankingTable(rows []UserSummary) Table {
	t := Table{
		Title:   "User Rankings",
		Columns: []string{"Username", "Total Amount", "Average Amount", "Max Amount", "Number of Entries"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, s := range rows {
		t.Rows = append(t.Rows, []string{
			s.Username,
			core.FormatAmount(s.Total),
			core.FormatAmount(s.Mean),
			core.FormatAmount(s.Max),
			strconv.Itoa(s.Count),
		})
	}
	return t
}

type userPoints struct {
	order  []string
	points map[string][]Point
	dates  []string
}

func (g Generator) chart(id, title, yLabel string, shape LineShape, up userPoints) ChartData {
	c := ChartData{
		ID:           id,
		Title:        title,
		XLabel:       "Date",
		YLabel:       yLabel,
		LegendTitle:  "Users",
		Shape:        shape,
		Markers:      true,
		UnifiedHover: true,
		Labels:       up.dates,
		Series:       make([]Series, 0, len(up.order)),
	}
	for i, name := range up.order {
		c.Series = append(c.Series, Series{
			Name:   name,
			Color:  g.Theme.SeriesColor(i),
			Points: up.points[name],
		})
	}
	return c
}

// dailyPoints groups daily amounts per user, each line following ascending date.
func dailyPoints(records []core.PaymentRecord) userPoints {
	up := newUserPoints(records)
	for _, i := range SortedByDate(records) {
		r := records[i]
		up.points[r.Username] = append(up.points[r.Username], Point{X: r.Date.String(), Y: r.DailyAmount.InexactFloat64()})
	}
	return up
}

func cumulativePoints(records []core.PaymentRecord) userPoints {
	up := newUserPoints(records)
	for _, row := range Cumulative(records) {
		r := row.Record
		up.points[r.Username] = append(up.points[r.Username], Point{X: r.Date.String(), Y: row.Cumulative.InexactFloat64()})
	}
	return up
}

func newUserPoints(records []core.PaymentRecord) userPoints {
	up := userPoints{order: usernames(records), points: make(map[string][]Point)}
	seen := make(map[string]struct{})
	for _, i := range SortedByDate(records) {
		d := records[i].Date.String()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		up.dates = append(up.dates, d)
	}
	if up.dates == nil {
		up.dates = []string{}
	}
	return up
}

// String implements fmt.Stringer for logging.
func (r Report) String() string {
	return fmt.Sprintf("report(%s, %d records, %d users)", r.Variant, r.RecordCount, len(r.Daily.Series))
}
