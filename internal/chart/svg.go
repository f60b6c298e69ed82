package chart

import (
	"fmt"
	"math"
	"strings"

	"BreakoutSentinel/internal/model"
)

// SVGRenderer draws a candlestick chart with the consolidation bounds and
// trend line overlaid. SVG keeps the binary free of image dependencies and
// Telegram accepts it as a document attachment.
type SVGRenderer struct {
	Width  int
	Height int
	// ContextBars is how many bars to show before the prior move's low.
	ContextBars int
}

// NewSVGRenderer returns a renderer with the default canvas size.
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{Width: 960, Height: 540, ContextBars: 5}
}

func (r *SVGRenderer) ContentType() string { return "image/svg+xml" }

// Render draws the window from just before the prior move's low through the
// simulated exit.
func (r *SVGRenderer) Render(bars []model.PricePoint, setup model.Setup) ([]byte, error) {
	first := setup.PriorMove.LowIndex - r.ContextBars
	if first < 0 {
		first = 0
	}
	last := setup.Exit.Index
	if last >= len(bars) {
		last = len(bars) - 1
	}
	if first > last {
		return nil, fmt.Errorf("chart window [%d,%d] out of order", first, last)
	}
	window := bars[first : last+1]

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range window {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	if hi <= lo {
		return nil, fmt.Errorf("chart window has no price range")
	}

	const margin = 40.0
	plotW := float64(r.Width) - 2*margin
	plotH := float64(r.Height) - 2*margin
	xStep := plotW / float64(len(window))
	y := func(price float64) float64 {
		return margin + plotH*(1-(price-lo)/(hi-lo))
	}
	x := func(idx int) float64 {
		return margin + xStep*(float64(idx-first)+0.5)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, r.Width, r.Height)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="white"/>`, r.Width, r.Height)
	fmt.Fprintf(&sb, `<text x="%v" y="24" font-family="monospace" font-size="16">%s  %s</text>`,
		margin, setup.Symbol, setup.Entry.Date.Format("2006-01-02"))

	// Candles.
	bodyW := xStep * 0.6
	if bodyW < 1 {
		bodyW = 1
	}
	for i, b := range window {
		idx := first + i
		cx := x(idx)
		color := "#26a69a"
		if b.Close < b.Open {
			color = "#ef5350"
		}
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`,
			cx, y(b.High), cx, y(b.Low), color)
		top, bot := math.Max(b.Open, b.Close), math.Min(b.Open, b.Close)
		h := y(bot) - y(top)
		if h < 1 {
			h = 1
		}
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			cx-bodyW/2, y(top), bodyW, h, color)
	}

	// Consolidation bounds.
	cons := setup.Consolidation
	x1, x2 := x(cons.StartIndex), x(cons.EndIndex)
	for _, bound := range []float64{cons.UpperBound, cons.LowerBound} {
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#1565c0" stroke-dasharray="4 3"/>`,
			x1, y(bound), x2, y(bound))
	}

	// Trend line over the consolidation window, in bar-offset coordinates.
	if setup.TrendLine.Slope != 0 || setup.TrendLine.Intercept != 0 {
		p1 := setup.TrendLine.Intercept
		p2 := setup.TrendLine.Intercept + setup.TrendLine.Slope*float64(cons.Days()-1)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#6a1b9a"/>`,
			x1, y(p1), x2, y(p2))
	}

	// Entry and exit markers.
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="none" stroke="#2e7d32" stroke-width="2"/>`,
		x(setup.Entry.Index), y(setup.Entry.Price))
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="none" stroke="#c62828" stroke-width="2"/>`,
		x(setup.Exit.Index), y(setup.Exit.Price))

	sb.WriteString(`</svg>`)
	return []byte(sb.String()), nil
}
