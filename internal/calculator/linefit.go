package calculator

import "sort"

// Point is a single (x, y) observation for line fitting.
type Point struct {
	X float64
	Y float64
}

// LineFit is a slope/intercept pair.
type LineFit struct {
	Slope     float64
	Intercept float64
}

// FitRobustLine fits a line through the points using a weighted Theil-Sen
// estimator: the slope is the weighted median of all pairwise slopes, with
// pairs involving later points weighted more heavily, and the intercept is
// the weighted median of the per-point intercepts implied by that slope.
// Deterministic for a given input. Returns false for fewer than 2 points.
func FitRobustLine(points []Point) (LineFit, bool) {
	n := len(points)
	if n < 2 {
		return LineFit{}, false
	}

	slopes := make([]weighted, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := points[j].X - points[i].X
			if dx == 0 {
				continue
			}
			slopes = append(slopes, weighted{
				value:  (points[j].Y - points[i].Y) / dx,
				weight: float64(i + j + 2),
			})
		}
	}
	if len(slopes) == 0 {
		return LineFit{}, false
	}
	slope := weightedMedian(slopes)

	intercepts := make([]weighted, n)
	for i, p := range points {
		intercepts[i] = weighted{
			value:  p.Y - slope*p.X,
			weight: float64(i + 1),
		}
	}
	intercept := weightedMedian(intercepts)

	return LineFit{Slope: slope, Intercept: intercept}, true
}

type weighted struct {
	value  float64
	weight float64
}

// weightedMedian returns the value at which the cumulative weight first
// reaches half the total weight.
func weightedMedian(ws []weighted) float64 {
	sort.Slice(ws, func(i, j int) bool { return ws[i].value < ws[j].value })
	total := 0.0
	for _, w := range ws {
		total += w.weight
	}
	half := total / 2
	acc := 0.0
	for _, w := range ws {
		acc += w.weight
		if acc >= half {
			return w.value
		}
	}
	return ws[len(ws)-1].value
}

// RegressionSlope computes the ordinary least-squares slope of y over
// 0..n-1 indices. Used for the range estimator's drift measurement, where
// outliers have already been handled upstream.
func RegressionSlope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	meanX := float64(n-1) / 2
	meanY := 0.0
	for _, y := range ys {
		meanY += y
	}
	meanY /= float64(n)

	var num, den float64
	for i, y := range ys {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
