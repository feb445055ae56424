// Package chart computes line/area chart geometry for the MRR history and
// renders it as SVG. The same geometry drives the terminal chart, in cell
// units instead of viewBox units.
package chart

import "math"

// Margin is the space reserved around the plot area for axis labels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Layout describes the drawing surface.
type Layout struct {
	Width, Height float64
	Margin        Margin
}

// DefaultLayout is the 1000x300 viewBox used by the web chart.
var DefaultLayout = Layout{
	Width:  1000,
	Height: 300,
	Margin: Margin{Top: 20, Right: 20, Bottom: 30, Left: 50},
}

// PlotWidth is the horizontal extent between the left and right margins.
func (l Layout) PlotWidth() float64 { return l.Width - l.Margin.Left - l.Margin.Right }

// PlotHeight is the vertical extent between the top and bottom margins.
func (l Layout) PlotHeight() float64 { return l.Height - l.Margin.Top - l.Margin.Bottom }

// Baseline is the y coordinate of the value zero.
func (l Layout) Baseline() float64 { return l.Margin.Top + l.PlotHeight() }

// X maps point index i of count points onto the horizontal axis.
func (l Layout) X(i, count int) float64 {
	if count < 2 {
		return l.Margin.Left
	}
	return l.Margin.Left + float64(i)/float64(count-1)*l.PlotWidth()
}

// Y maps value v onto the vertical axis for the domain [0, max]. Larger
// values sit higher, i.e. at smaller y.
func (l Layout) Y(v, max float64) float64 {
	if max <= 0 {
		max = 1
	}
	return l.Margin.Top + l.PlotHeight() - v/max*l.PlotHeight()
}

// Index inverse-maps a horizontal position to the nearest point index. The
// result may lie outside [0, count-1].
func (l Layout) Index(x float64, count int) int {
	if count < 2 || l.PlotWidth() <= 0 {
		return 0
	}
	f := (x - l.Margin.Left) / l.PlotWidth() * float64(count-1)
	// Halves round toward +Inf, so -0.5 still selects the first point.
	return int(math.Floor(f + 0.5))
}
