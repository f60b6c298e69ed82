package chart

import (
	"strings"
	"testing"
	"time"

	"BreakoutSentinel/internal/model"
)

func chartFixture() ([]model.PricePoint, model.Setup) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PricePoint, 40)
	for i := range bars {
		base := 10 + 0.1*float64(i)
		bars[i] = model.PricePoint{
			Date: start.AddDate(0, 0, i),
			Open: base, High: base + 0.3, Low: base - 0.3, Close: base + 0.1,
			Volume: 1000,
		}
	}
	setup := model.Setup{
		Symbol:        "AAPL",
		PriorMove:     model.PriorMove{LowIndex: 2, HighIndex: 15},
		Consolidation: model.Consolidation{StartIndex: 16, EndIndex: 30, UpperBound: 13.2, LowerBound: 12.0},
		Entry:         model.Entry{Index: 31, Date: bars[31].Date, Price: 13.3},
		Exit:          model.Exit{Index: 38, Date: bars[38].Date, Price: 13.8},
		TrendLine:     model.TrendLine{Slope: 0.05, Intercept: 12.5},
	}
	return bars, setup
}

func TestSVGRenderer_Render(t *testing.T) {
	bars, setup := chartFixture()
	r := NewSVGRenderer()

	img, err := r.Render(bars, setup)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(img)
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("output is not a complete SVG document")
	}
	if !strings.Contains(svg, "AAPL") {
		t.Error("chart header missing the symbol")
	}
	if r.ContentType() != "image/svg+xml" {
		t.Errorf("content type = %q", r.ContentType())
	}
}

func TestSVGRenderer_BadWindow(t *testing.T) {
	bars, setup := chartFixture()
	setup.PriorMove.LowIndex = 50 // beyond the series
	setup.Exit.Index = 5

	if _, err := NewSVGRenderer().Render(bars, setup); err == nil {
		t.Error("expected an error for an inverted window")
	}
}

func TestNoopRenderer(t *testing.T) {
	bars, setup := chartFixture()
	img, err := (NoopRenderer{}).Render(bars, setup)
	if err != nil || img != nil {
		t.Errorf("noop = (%v, %v), want (nil, nil)", img, err)
	}
}
