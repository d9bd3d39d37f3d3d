package service

import (
	"bytes"
	"fmt"

	"github.com/msomdec/zatigwera/internal/domain"
	chart "github.com/wcharczuk/go-chart/v2"
)

// ChartKind names the gender-distribution charts the dashboards embed.
type ChartKind string

const (
	ChartGenderBar ChartKind = "gender-bar.svg"
	ChartGenderPie ChartKind = "gender-pie.svg"
)

// RenderChart draws counts as an SVG document.
func RenderChart(kind ChartKind, counts []domain.GenderCount) ([]byte, error) {
	switch kind {
	case ChartGenderBar:
		return GenderBarChart(counts)
	case ChartGenderPie:
		return GenderPieChart(counts)
	}
	return nil, fmt.Errorf("%w: unknown chart %q", domain.ErrNotFound, kind)
}

// GenderBarChart renders one bar per gender.
func GenderBarChart(counts []domain.GenderCount) ([]byte, error) {
	if len(counts) == 0 {
		counts = domain.NormalizeGenderCounts(nil)
	}

	peak := 1
	bars := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, chart.Value{Label: string(c.Gender), Value: float64(c.Count)})
		peak = max(peak, c.Count)
	}

	graph := chart.BarChart{
		Title:      "Gender Distribution",
		Width:      560,
		Height:     320,
		BarWidth:   60,
		BarSpacing: 40,
		Background: chart.Style{Padding: chart.Box{Top: 48}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak)},
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// GenderPieChart renders the share of each gender. Empty buckets are left
// out; with no records at all there is nothing to draw and nil is returned.
func GenderPieChart(counts []domain.GenderCount) ([]byte, error) {
	var values []chart.Value
	total := 0
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		total += c.Count
		values = append(values, chart.Value{Label: string(c.Gender), Value: float64(c.Count)})
	}
	if total == 0 {
		return nil, nil
	}
	for i := range values {
		values[i].Label = fmt.Sprintf("%s %.1f%%", values[i].Label, 100*values[i].Value/float64(total))
	}

	graph := chart.PieChart{
		Width:  360,
		Height: 360,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}
