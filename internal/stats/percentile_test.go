package stats

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		expect float64
	}{
		{"empty", nil, 50, 0},
		{"single p0", []float64{7}, 0, 7},
		{"single p50", []float64{7}, 50, 7},
		{"single p99", []float64{7}, 99, 7},
		{"exact rank", []float64{1, 2, 3}, 50, 2},
		{"interpolated", []float64{1, 2, 3, 4}, 50, 2.5},
		{"p90 of ten", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 90, 9.1},
		{"p100", []float64{1, 5, 9}, 100, 9},
		{"p0", []float64{1, 5, 9}, 0, 1},
		{"above range clamps", []float64{1, 5, 9}, 150, 9},
		{"below range clamps", []float64{1, 5, 9}, -10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expect, Percentile(tt.sorted, tt.p), 1e-9)
		})
	}
}

func TestPercentile_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(300)
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.ExpFloat64() * 1e6
		}
		sort.Float64s(values)

		p50 := Percentile(values, 50)
		p90 := Percentile(values, 90)
		p99 := Percentile(values, 99)

		require.LessOrEqual(t, p50, p90)
		require.LessOrEqual(t, p90, p99)
		require.GreaterOrEqual(t, p50, values[0])
		require.LessOrEqual(t, p99, values[n-1])
	}
}

func TestSummarize_ActiveOnly(t *testing.T) {
	values := []float64{0, 0, 0.4, 0, 0.2, -1, 0.6, 0}

	active := Summarize(values, DefaultPercentiles, true)
	assert.Equal(t, 3, active.Samples)
	assert.InDelta(t, 0.4, active.Value(50), 1e-9)

	all := Summarize(values, DefaultPercentiles, false)
	assert.Equal(t, len(values), all.Samples)
	assert.InDelta(t, 0.0, all.Value(50), 1e-9)
}

func TestSummarize_Idle(t *testing.T) {
	s := Summarize([]float64{0, 0, 0}, []float64{50, 90}, true)

	assert.Equal(t, 0, s.Samples)
	require.Len(t, s.Quantiles, 2)
	assert.Equal(t, Quantile{P: 50, Value: 0}, s.Quantiles[0])
	assert.Equal(t, Quantile{P: 90, Value: 0}, s.Quantiles[1])
}

func TestSummarize_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Summarize(values, []float64{50}, true)

	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSummarize_RequestOrder(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4, 5}, []float64{90, 50}, true)

	require.Len(t, s.Quantiles, 2)
	assert.Equal(t, 90.0, s.Quantiles[0].P)
	assert.Equal(t, 50.0, s.Quantiles[1].P)
	assert.Equal(t, 0.0, s.Value(99), "unrequested percentile reads as zero")
}
