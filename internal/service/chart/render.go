package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"

	"sitechat/internal/model"
	"sitechat/internal/util"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	panelWidth  = 600
	panelHeight = 500
)

var (
	colorSpent     = drawing.ColorFromHex("ff9999")
	colorRemaining = drawing.ColorFromHex("66b3ff")
	colorAllocated = drawing.ColorFromHex("9999ff")

	colorCompleted  = drawing.ColorFromHex("66cc66")
	colorInProgress = drawing.ColorFromHex("ffcc66")
	colorNotStarted = drawing.ColorFromHex("ff9999")
)

// milestoneProgress maps a milestone status to a completion percentage and colour.
func milestoneProgress(status string) (float64, drawing.Color) {
	switch status {
	case model.MilestoneCompleted:
		return 100, colorCompleted
	case model.MilestoneInProgress:
		return 50, colorInProgress
	default:
		return 0, colorNotStarted
	}
}

func moneyFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return util.FormatMoney(int64(f))
	}
	return ""
}

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f%%", f)
	}
	return ""
}

// renderBudget draws the spent/remaining pie next to the
// allocated/spent/remaining bars.
func renderBudget(p model.Project) ([]byte, error) {
	b := p.Budget

	var slices []gochart.Value
	for _, v := range []gochart.Value{
		{Label: "Spent", Value: float64(b.Spent), Style: gochart.Style{FillColor: colorSpent}},
		{Label: "Remaining", Value: float64(b.Remaining), Style: gochart.Style{FillColor: colorRemaining}},
	} {
		if v.Value > 0 {
			slices = append(slices, v)
		}
	}
	if len(slices) == 0 {
		return nil, ErrEmptyBudget
	}

	pie := gochart.PieChart{
		Title:  "Budget Allocation for " + p.Name,
		Width:  panelWidth,
		Height: panelHeight,
		Values: slices,
	}

	// fixed range: go-chart rejects a zero-height data range
	top := float64(max(b.Allocated, b.Spent, b.Remaining, 1))
	yAxis := gochart.YAxis{
		Name:           "Amount ($)",
		Range:          &gochart.ContinuousRange{Min: 0, Max: top * 1.1},
		ValueFormatter: moneyFormatter,
	}
	bars := gochart.BarChart{
		Title:      "Budget Breakdown (in $)",
		Width:      panelWidth,
		Height:     panelHeight,
		BarWidth:   90,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20}},
		YAxis:      yAxis,
		Bars: []gochart.Value{
			{Label: "Allocated", Value: float64(b.Allocated), Style: gochart.Style{FillColor: colorAllocated, StrokeColor: colorAllocated}},
			{Label: "Spent", Value: float64(b.Spent), Style: gochart.Style{FillColor: colorSpent, StrokeColor: colorSpent}},
			{Label: "Remaining", Value: float64(b.Remaining), Style: gochart.Style{FillColor: colorRemaining, StrokeColor: colorRemaining}},
		},
	}

	var left, right bytes.Buffer
	if err := pie.Render(gochart.PNG, &left); err != nil {
		return nil, fmt.Errorf("render budget pie: %w", err)
	}
	if err := bars.Render(gochart.PNG, &right); err != nil {
		return nil, fmt.Errorf("render budget bars: %w", err)
	}
	return sideBySide(left.Bytes(), right.Bytes())
}

func renderProgress(p model.Project) ([]byte, error) {
	if len(p.Milestones) == 0 {
		return nil, ErrNoMilestones
	}

	values := make([]gochart.Value, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		pct, color := milestoneProgress(m.Status)
		values = append(values, gochart.Value{
			Label: m.Name,
			Value: pct,
			Style: gochart.Style{FillColor: color, StrokeColor: color},
		})
	}

	bars := gochart.BarChart{
		Title:      "Milestone Progress for " + p.Name,
		Width:      1000,
		Height:     600,
		BarWidth:   80,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20}},
		YAxis: gochart.YAxis{
			Name:           "Completion Percentage",
			Range:          &gochart.ContinuousRange{Min: 0, Max: 100},
			ValueFormatter: percentFormatter,
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := bars.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render progress chart: %w", err)
	}
	return buf.Bytes(), nil
}

// renderTimeline draws each milestone as a bar from 30 days before its target
// date to the target date, one row per milestone.
func renderTimeline(p model.Project) ([]byte, error) {
	if len(p.Milestones) == 0 {
		return nil, ErrNoMilestones
	}

	n := len(p.Milestones)
	series := make([]gochart.Series, 0, n)
	ticks := make([]gochart.Tick, 0, n+2)
	ticks = append(ticks, gochart.Tick{Value: 0})

	for i, m := range p.Milestones {
		target, err := util.ParseDate(m.Date)
		if err != nil {
			return nil, fmt.Errorf("milestone %q: %w", m.Name, err)
		}
		// first milestone on top
		row := float64(n - i)
		_, color := milestoneProgress(m.Status)

		series = append(series, gochart.TimeSeries{
			Name: fmt.Sprintf("%s (%s)", m.Name, m.Status),
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 18,
			},
			XValues: []time.Time{target.AddDate(0, 0, -30), target},
			YValues: []float64{row, row},
		})
		ticks = append(ticks, gochart.Tick{Value: row, Label: m.Name})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n + 1)})

	graph := gochart.Chart{
		Title:      "Project Timeline for " + p.Name,
		Width:      1200,
		Height:     600,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 160, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(n + 1)},
			Ticks: ticks,
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render timeline chart: %w", err)
	}
	return buf.Bytes(), nil
}

// sideBySide joins two PNG panels horizontally. go-chart renders one chart
// per canvas.
func sideBySide(left, right []byte) ([]byte, error) {
	l, err := png.Decode(bytes.NewReader(left))
	if err != nil {
		return nil, fmt.Errorf("decode left panel: %w", err)
	}
	r, err := png.Decode(bytes.NewReader(right))
	if err != nil {
		return nil, fmt.Errorf("decode right panel: %w", err)
	}

	lb, rb := l.Bounds(), r.Bounds()
	height := max(lb.Dy(), rb.Dy())
	canvas := image.NewRGBA(image.Rect(0, 0, lb.Dx()+rb.Dx(), height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, lb.Dx(), lb.Dy()), l, lb.Min, draw.Over)
	draw.Draw(canvas, image.Rect(lb.Dx(), 0, lb.Dx()+rb.Dx(), rb.Dy()), r, rb.Min, draw.Over)

	var out bytes.Buffer
	if err := png.Encode(&out, canvas); err != nil {
		return nil, fmt.Errorf("encode budget chart: %w", err)
	}
	return out.Bytes(), nil
}
