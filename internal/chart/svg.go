package chart

import (
	"html"
	"strings"
)

// RenderSVG renders g as a standalone SVG document. A non-nil tip draws the
// hover crosshair, point marker and readout box.
func RenderSVG(g Geometry, tip *Tooltip) string {
	l := g.Layout
	var b strings.Builder

	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 ` + num(l.Width) + ` ` + num(l.Height) + `" id="mrr-chart">`)

	b.WriteString(`<g class="grid y-grid">`)
	for _, h := range g.HLines {
		b.WriteString(`<line x1="` + num(l.Margin.Left) + `" y1="` + num(h.Y) + `" x2="` + num(l.Margin.Left+l.PlotWidth()) + `" y2="` + num(h.Y) + `" stroke="var(--border-color)" stroke-dasharray="2,3" />`)
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g class="grid x-grid">`)
	for _, v := range g.VLines {
		stroke := "var(--border-color)"
		if v.Hidden {
			stroke = "transparent"
		}
		b.WriteString(`<line x1="` + num(v.X) + `" y1="` + num(l.Margin.Top) + `" x2="` + num(v.X) + `" y2="` + num(l.Baseline()) + `" stroke="` + stroke + `" stroke-dasharray="2,3" />`)
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g class="axis y-axis">`)
	for _, h := range g.HLines {
		b.WriteString(`<text x="` + num(l.Margin.Left-10) + `" y="` + num(h.LabelY) + `" text-anchor="end">` + html.EscapeString(h.Label) + `</text>`)
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g class="axis x-axis">`)
	for _, v := range g.VLines {
		b.WriteString(`<text x="` + num(v.X) + `" y="` + num(l.Height-5) + `" text-anchor="middle">` + html.EscapeString(v.Label) + `</text>`)
	}
	b.WriteString(`</g>`)

	b.WriteString(`<defs><linearGradient id="areaGradient" x1="0%" y1="0%" x2="0%" y2="100%">`)
	b.WriteString(`<stop offset="0%" style="stop-color:var(--primary-color);stop-opacity:0.4"/>`)
	b.WriteString(`<stop offset="100%" style="stop-color:var(--primary-color);stop-opacity:0"/>`)
	b.WriteString(`</linearGradient></defs>`)

	b.WriteString(`<path class="area" d="` + g.AreaPath + `" fill="url(#areaGradient)"></path>`)
	b.WriteString(`<path class="line mrr" d="` + g.LinePath + `" fill="none"></path>`)

	if tip != nil {
		b.WriteString(`<g class="tooltip">`)
		b.WriteString(`<line class="hover-line" x1="` + num(tip.X) + `" y1="` + num(l.Margin.Top) + `" x2="` + num(tip.X) + `" y2="` + num(l.Baseline()) + `"></line>`)
		b.WriteString(`<circle class="hover-circle" r="5" cx="` + num(tip.X) + `" cy="` + num(tip.Y) + `"></circle>`)
		b.WriteString(`<rect class="tooltip-bg" x="` + num(tip.BoxX) + `" y="` + num(tip.BoxY) + `" width="120" height="50" rx="5"></rect>`)
		b.WriteString(`<text class="tooltip-text" x="` + num(tip.BoxX+10) + `" y="` + num(tip.BoxY+20) + `">` + html.EscapeString(tip.Month) + `</text>`)
		b.WriteString(`<text class="tooltip-value" x="` + num(tip.BoxX+10) + `" y="` + num(tip.BoxY+40) + `">` + html.EscapeString(tip.Value) + `</text>`)
		b.WriteString(`</g>`)
	}

	b.WriteString(`</svg>`)
	return b.String()
}
