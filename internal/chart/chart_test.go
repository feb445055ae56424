package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

func threePoints() []model.MrrPoint {
	return []model.MrrPoint{
		{Month: "2024-01", Value: 100},
		{Month: "2024-02", Value: 200},
		{Month: "2024-03", Value: 150},
	}
}

func TestComputeDomainAndOrdering(t *testing.T) {
	g, err := Compute(threePoints(), DefaultLayout)
	require.NoError(t, err)

	assert.Equal(t, 200.0, g.Max)
	require.Len(t, g.Points, 3)

	// The maximum sits on the top margin, zero on the baseline.
	assert.Equal(t, 20.0, g.Points[1].Y)
	assert.Equal(t, 270.0, DefaultLayout.Baseline())
	assert.Equal(t, 270.0, DefaultLayout.Y(0, g.Max))
	assert.Less(t, g.Points[1].Y, g.Points[2].Y)
	assert.Less(t, g.Points[2].Y, g.Points[0].Y)

	assert.Equal(t, 50.0, g.Points[0].X)
	assert.Equal(t, 515.0, g.Points[1].X)
	assert.Equal(t, 980.0, g.Points[2].X)
}

func TestComputePaths(t *testing.T) {
	g, err := Compute(threePoints(), DefaultLayout)
	require.NoError(t, err)

	assert.Equal(t, "M 50 145 L 515 20 L 980 82.5", g.LinePath)
	assert.Equal(t, g.LinePath+" V 270 L 50 270 Z", g.AreaPath)
}

func TestComputeGridlines(t *testing.T) {
	g, err := Compute(model.DefaultState().MrrHistory, DefaultLayout)
	require.NoError(t, err)

	require.Len(t, g.HLines, GridLines)
	assert.Equal(t, 20.0, g.HLines[0].Y)
	assert.Equal(t, 270.0, g.HLines[4].Y)
	assert.Equal(t, "0K", g.HLines[0].Label)
	assert.Equal(t, "13K", g.HLines[4].Label)

	require.Len(t, g.VLines, 12)
	assert.True(t, g.VLines[0].Hidden)
	assert.True(t, g.VLines[11].Hidden)
	assert.False(t, g.VLines[5].Hidden)
	assert.Equal(t, "janv.", g.VLines[0].Label)
}

func TestComputeInsufficientData(t *testing.T) {
	_, err := Compute(threePoints()[:1], DefaultLayout)
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = Compute(nil, DefaultLayout)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeAllZeroValues(t *testing.T) {
	g, err := Compute([]model.MrrPoint{{Month: "2024-01"}, {Month: "2024-02"}}, DefaultLayout)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Max)
	assert.Equal(t, 270.0, g.Points[0].Y)
}

func TestHover(t *testing.T) {
	g, err := Compute(threePoints(), DefaultLayout)
	require.NoError(t, err)

	tip, ok := g.Hover(60)
	require.True(t, ok)
	assert.Equal(t, 0, tip.Index)
	assert.Equal(t, 60.0, tip.BoxX, "left half places the box to the right")
	assert.Equal(t, 20.0, tip.BoxY)
	assert.Equal(t, "janvier 2024", tip.Month)

	tip, ok = g.Hover(970)
	require.True(t, ok)
	assert.Equal(t, 2, tip.Index)
	assert.Equal(t, 850.0, tip.BoxX, "right half places the box to the left")

	tip, ok = g.Hover(500)
	require.True(t, ok)
	assert.Equal(t, 1, tip.Index)

	// Half a step (465/2) left of the first point still selects it.
	tip, ok = g.Hover(50 - 232.5)
	require.True(t, ok)
	assert.Equal(t, 0, tip.Index)
	_, ok = g.Hover(50 - 240)
	assert.False(t, ok)

	_, ok = g.Hover(-500)
	assert.False(t, ok)
	_, ok = g.Hover(2000)
	assert.False(t, ok)
}

func TestRenderSVG(t *testing.T) {
	g, err := Compute(threePoints(), DefaultLayout)
	require.NoError(t, err)

	svg := RenderSVG(g, nil)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `viewBox="0 0 1000 300"`)
	assert.Contains(t, svg, `d="M 50 145 L 515 20 L 980 82.5"`)
	assert.Contains(t, svg, `stroke="transparent"`)
	assert.NotContains(t, svg, "tooltip-bg")
	assert.Equal(t, svg, RenderSVG(g, nil))

	tip := g.TooltipAt(1)
	withTip := RenderSVG(g, &tip)
	assert.Contains(t, withTip, `class="tooltip-bg" x="385"`)
	assert.Contains(t, withTip, "février 2024")
}
