// Package chart renders the analytics page images: per-user income and
// expense bar charts and a per-client balance time series. Charts are
// rasterized server-side to PNG and embedded into the page as data URIs.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"moneydesk/internal/core"
)

// ErrNoData is returned when a chart has nothing to plot. Callers render
// a message instead of an image.
var ErrNoData = errors.New("no data to plot")

const (
	chartWidth  = 900
	chartHeight = 400
)

var (
	incomeColor  = drawing.Color{R: 75, G: 192, B: 192, A: 255}
	expenseColor = drawing.Color{R: 255, G: 99, B: 132, A: 255}
	themeColor   = drawing.Color{R: 110, G: 63, B: 242, A: 255}
)

func rubles(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.0f ₽", f)
}

// IncomeByUser renders the per-user income bar chart.
func IncomeByUser(summaries []core.UserSummary) ([]byte, error) {
	bars := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		bars = append(bars, chart.Value{
			Label: s.UserName,
			Value: s.Income.InexactFloat64(),
			Style: chart.Style{FillColor: incomeColor, StrokeColor: incomeColor},
		})
	}
	return barPNG("Приход по пользователям", bars)
}

// ExpenseByUser renders the per-user expense bar chart.
func ExpenseByUser(summaries []core.UserSummary) ([]byte, error) {
	bars := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		bars = append(bars, chart.Value{
			Label: s.UserName,
			Value: s.Expense.InexactFloat64(),
			Style: chart.Style{FillColor: expenseColor, StrokeColor: expenseColor},
		})
	}
	return barPNG("Расход по пользователям", bars)
}

func barPNG(title string, bars []chart.Value) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			ValueFormatter: rubles,
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// BalanceHistory renders the balance time series for one client as a
// line chart. At least two points are required to draw a line.
func BalanceHistory(points []core.BalancePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrNoData
	}
	series := chart.TimeSeries{
		Name:    "Баланс",
		XValues: make([]time.Time, 0, len(points)),
		YValues: make([]float64, 0, len(points)),
		Style: chart.Style{
			StrokeColor: themeColor,
			StrokeWidth: 2,
			FillColor:   themeColor.WithAlpha(40),
		},
	}
	for _, p := range points {
		series.XValues = append(series.XValues, p.Date)
		series.YValues = append(series.YValues, p.Balance.InexactFloat64())
	}

	graph := chart.Chart{
		Title:  "История баланса",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02.01.2006"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: rubles,
		},
		Series: []chart.Series{series},
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render line chart: %w", err)
	}
	return buf.Bytes(), nil
}
