package chart

import (
	"errors"
	"strconv"
	"strings"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
)

// ErrInsufficientData is returned when fewer than two points are available.
var ErrInsufficientData = errors.New("données insuffisantes pour afficher le graphique")

// InsufficientDataMessage is the placeholder shown instead of a chart.
const InsufficientDataMessage = "Données insuffisantes pour afficher le graphique."

// GridLines is the number of horizontal gridlines (four equal divisions).
const GridLines = 5

// Point is a data point mapped into layout coordinates.
type Point struct {
	X, Y  float64
	Month string
	Value float64
}

// HLine is a horizontal gridline with its axis label.
type HLine struct {
	Y      float64
	LabelY float64
	Value  float64
	Label  string
}

// VLine is a vertical gridline with its month label.
type VLine struct {
	X      float64
	Label  string
	Hidden bool
}

// Geometry is everything needed to draw one chart.
type Geometry struct {
	Layout   Layout
	Max      float64
	Points   []Point
	LinePath string
	AreaPath string
	HLines   []HLine
	VLines   []VLine
}

// Compute maps points into layout. The value domain is [0, max(values)].
func Compute(points []model.MrrPoint, layout Layout) (Geometry, error) {
	if len(points) < 2 {
		return Geometry{}, ErrInsufficientData
	}

	max := points[0].Value
	for _, p := range points[1:] {
		if p.Value > max {
			max = p.Value
		}
	}
	domain := max
	if domain <= 0 {
		domain = 1
	}

	g := Geometry{Layout: layout, Max: domain}
	n := len(points)
	var line strings.Builder
	for i, p := range points {
		pt := Point{
			X:     layout.X(i, n),
			Y:     layout.Y(p.Value, domain),
			Month: p.Month,
			Value: p.Value,
		}
		g.Points = append(g.Points, pt)
		if i == 0 {
			line.WriteString("M ")
		} else {
			line.WriteString(" L ")
		}
		line.WriteString(num(pt.X) + " " + num(pt.Y))

		g.VLines = append(g.VLines, VLine{
			X:      pt.X,
			Label:  metrics.ShortMonth(p.Month),
			Hidden: i == 0 || i == n-1,
		})
	}
	g.LinePath = line.String()

	base := layout.Baseline()
	g.AreaPath = g.LinePath + " V " + num(base) + " L " + num(g.Points[0].X) + " " + num(base) + " Z"

	for i := 0; i < GridLines; i++ {
		frac := float64(i) / float64(GridLines-1)
		val := frac * domain
		g.HLines = append(g.HLines, HLine{
			Y:      layout.Margin.Top + frac*layout.PlotHeight(),
			LabelY: layout.Y(val, domain) + 4,
			Value:  val,
			Label:  metrics.FormatThousands(val),
		})
	}
	return g, nil
}

// Tooltip is the hover readout for one point.
type Tooltip struct {
	Index int
	X, Y  float64
	BoxX  float64
	BoxY  float64
	Month string
	Value string
}

// Tooltip box size in layout units.
const (
	TooltipWidth  = 120
	TooltipHeight = 50
)

// Hover resolves a pointer at horizontal position x to the nearest point.
// Positions that map outside the data return false.
func (g Geometry) Hover(x float64) (Tooltip, bool) {
	i := g.Layout.Index(x, len(g.Points))
	if i < 0 || i >= len(g.Points) {
		return Tooltip{}, false
	}
	return g.TooltipAt(i), true
}

// TooltipAt builds the readout for point i. The box flips to the left of the
// crosshair on the right half of the surface.
func (g Geometry) TooltipAt(i int) Tooltip {
	p := g.Points[i]
	boxX := p.X + 10
	if p.X > g.Layout.Width/2 {
		boxX = p.X - TooltipWidth - 10
	}
	return Tooltip{
		Index: i,
		X:     p.X,
		Y:     p.Y,
		BoxX:  boxX,
		BoxY:  g.Layout.Margin.Top,
		Month: metrics.LongMonth(p.Month),
		Value: metrics.FormatCurrency(p.Value),
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
