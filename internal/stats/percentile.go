// Package stats computes percentile summaries over metric history and
// formats raw magnitudes for display.
package stats

import (
	"math"
	"sort"
)

// DefaultPercentiles are the percentiles shown for every metric.
var DefaultPercentiles = []float64{50, 90, 99}

// Percentile estimates the pth percentile (0..100) of an ascending slice
// using linear interpolation between the order statistics around the
// fractional rank p/100*(n-1). Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	low := int(math.Floor(rank))
	high := int(math.Ceil(rank))
	if low == high {
		return sorted[low]
	}

	weight := rank - float64(low)
	return sorted[low]*(1-weight) + sorted[high]*weight
}

// Quantile is one computed percentile.
type Quantile struct {
	P     float64
	Value float64
}

// Summary is a percentile snapshot of one metric's history.
type Summary struct {
	// Quantiles holds one entry per requested percentile, in request order.
	Quantiles []Quantile
	// Samples is the number of values that took part in ranking.
	Samples int
}

// Value returns the computed value for percentile p, or 0 if p was not requested.
func (s Summary) Value(p float64) float64 {
	for _, q := range s.Quantiles {
		if q.P == p {
			return q.Value
		}
	}
	return 0
}

// Summarize computes the requested percentiles over values without modifying it.
// When activeOnly is set, only strictly positive values are ranked, so idle
// periods do not drag the percentiles down to zero.
func Summarize(values []float64, percentiles []float64, activeOnly bool) Summary {
	ranked := make([]float64, 0, len(values))
	for _, v := range values {
		if activeOnly && !(v > 0) {
			continue
		}
		ranked = append(ranked, v)
	}
	sort.Float64s(ranked)

	quantiles := make([]Quantile, len(percentiles))
	for i, p := range percentiles {
		quantiles[i] = Quantile{P: p, Value: Percentile(ranked, p)}
	}

	return Summary{
		Quantiles: quantiles,
		Samples:   len(ranked),
	}
}
