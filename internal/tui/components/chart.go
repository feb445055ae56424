package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/chart"
	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Rows below the plot: the x axis and the month labels.
const chartFooterRows = 2

// ChartLayout is the cell layout of a LineChart of the given size. The left
// margin holds the y-axis labels.
func ChartLayout(width, height int) chart.Layout {
	return chart.Layout{
		Width:  float64(width),
		Height: float64(height),
		Margin: chart.Margin{Left: 7, Right: 1, Bottom: chartFooterRows},
	}
}

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellAxis
	cellLabel
	cellArea
	cellLine
	cellPoint
	cellHover
)

// LineChart draws the MRR history as a filled line chart in a width x height
// cell grid. hover is the index of the highlighted point, or -1.
func LineChart(points []model.MrrPoint, width, height, hover int) (string, error) {
	layout := ChartLayout(width, height)
	g, err := chart.Compute(points, layout)
	if err != nil {
		return "", err
	}

	left := int(layout.Margin.Left)
	plotH := height - chartFooterRows
	if plotH < 2 || width <= left+2 {
		return Sparkline(values(points), theme.Active.Accent), nil
	}

	grid := make([][]rune, height)
	kinds := make([][]cellKind, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
		kinds[r] = make([]cellKind, width)
	}
	set := func(r, c int, ch rune, k cellKind) {
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = ch
			kinds[r][c] = k
		}
	}
	rowOf := func(y float64) int {
		return min(max(int(math.Round(y)), 0), plotH-1)
	}

	// Axes.
	for r := 0; r < plotH; r++ {
		set(r, left-1, '│', cellAxis)
	}
	set(plotH, left-1, '└', cellAxis)
	for c := left; c < width; c++ {
		set(plotH, c, '─', cellAxis)
	}
	for _, hl := range g.HLines {
		r := rowOf(layout.Y(hl.Value, g.Max))
		set(r, left-1, '┤', cellAxis)
		label := []rune(hl.Label)
		for i, ch := range label {
			set(r, left-1-len(label)+i-1, ch, cellLabel)
		}
	}

	// Line and area, interpolated per column.
	for c := left; c < width; c++ {
		y, ok := interpolate(g.Points, float64(c))
		if !ok {
			continue
		}
		lr := rowOf(y)
		set(lr, c, '•', cellLine)
		for r := lr + 1; r < plotH; r++ {
			set(r, c, '░', cellArea)
		}
	}
	for i, p := range g.Points {
		c := int(math.Round(p.X))
		if i == hover {
			for r := 0; r < plotH; r++ {
				if kinds[r][c] == cellEmpty || kinds[r][c] == cellArea {
					set(r, c, '┊', cellHover)
				}
			}
			set(rowOf(p.Y), c, '◆', cellHover)
			continue
		}
		set(rowOf(p.Y), c, '●', cellPoint)
	}

	// Month labels, skipped where they would overlap.
	lastEnd := left - 1
	for _, vl := range g.VLines {
		label := []rune(vl.Label)
		start := int(math.Round(vl.X)) - len(label)/2
		start = min(max(start, left), width-len(label))
		if start <= lastEnd {
			continue
		}
		for i, ch := range label {
			set(plotH+1, start+i, ch, cellLabel)
		}
		lastEnd = start + len(label)
	}

	var b strings.Builder
	for r := range grid {
		if r > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(grid[r], kinds[r]))
	}

	if hover >= 0 && hover < len(g.Points) {
		b.WriteString("\n")
		b.WriteString(tooltipLine(g, hover, width))
	}
	return b.String(), nil
}

// HoverIndex maps a column inside a LineChart of n points to the nearest
// point index, or -1 when the column is outside the data.
func HoverIndex(col, width, height, n int) int {
	layout := ChartLayout(width, height)
	if col < int(layout.Margin.Left) || col >= width {
		return -1
	}
	i := layout.Index(float64(col), n)
	if i < 0 || i >= n {
		return -1
	}
	return i
}

func interpolate(points []chart.Point, x float64) (float64, bool) {
	if len(points) < 2 || x < points[0].X || x > points[len(points)-1].X {
		return 0, false
	}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if x <= b.X {
			if b.X == a.X {
				return b.Y, true
			}
			f := (x - a.X) / (b.X - a.X)
			return a.Y + f*(b.Y-a.Y), true
		}
	}
	return points[len(points)-1].Y, true
}

func tooltipLine(g chart.Geometry, i, width int) string {
	t := theme.Active
	tip := g.TooltipAt(i)
	text := " " + tip.Month + " · " + tip.Value + " "
	w := lipgloss.Width(text)

	start := int(math.Round(tip.X)) + 1
	if tip.X > g.Layout.Width/2 {
		start = int(math.Round(tip.X)) - w
	}
	start = min(max(start, 0), max(width-w, 0))

	space := lipgloss.NewStyle().Background(t.Surface)
	box := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	return space.Render(strings.Repeat(" ", start)) + box.Render(text)
}

func renderRow(cells []rune, kinds []cellKind) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(cells); i++ {
		if i < len(cells) && kinds[i] == kinds[start] {
			continue
		}
		b.WriteString(styleFor(kinds[start]).Render(string(cells[start:i])))
		start = i
	}
	return b.String()
}

func styleFor(k cellKind) lipgloss.Style {
	t := theme.Active
	s := lipgloss.NewStyle().Background(t.Surface)
	switch k {
	case cellAxis:
		return s.Foreground(t.TextDim)
	case cellLabel:
		return s.Foreground(t.TextMuted)
	case cellArea:
		return s.Foreground(t.AccentDim)
	case cellLine:
		return s.Foreground(t.Accent)
	case cellPoint:
		return s.Foreground(t.AccentBright).Bold(true)
	case cellHover:
		return s.Foreground(t.TextPrimary).Bold(true)
	default:
		return s
	}
}

func values(points []model.MrrPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
