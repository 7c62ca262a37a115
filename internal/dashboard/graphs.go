package dashboard

import (
	"math"
	"strings"
)

// barBlocks are block characters for 8-level vertical resolution (lowest to highest).
var barBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sqrtScale compresses the value range so small activity stays visible
// next to spikes. Non-positive values map to zero.
func sqrtScale(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return math.Sqrt(v)
}

// RenderBarChart renders one bar per sample, newest at the right edge.
//
// Only the newest width samples are shown; shorter histories are padded on
// the left. Bars are sqrt-scaled and normalized to the tallest visible bar,
// so the chart always uses the full height. Each row contributes eight
// levels, giving height*8 steps of resolution.
//
// The result is height lines of exactly width runes, top row first.
func RenderBarChart(data []float64, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	visible := data
	if len(visible) > width {
		visible = visible[len(visible)-width:]
	}
	offset := width - len(visible)

	scaled := make([]float64, len(visible))
	peak := 0.0
	for i, v := range visible {
		scaled[i] = sqrtScale(v)
		if scaled[i] > peak {
			peak = scaled[i]
		}
	}

	levels := height * len(barBlocks)
	eighths := make([]int, len(visible))
	if peak > 0 {
		for i, s := range scaled {
			eighths[i] = clampInt(int(math.Round(s/peak*float64(levels))), levels)
		}
	}

	rows := make([]string, height)
	for row := 0; row < height; row++ {
		rowFromBottom := height - 1 - row

		var b strings.Builder
		b.Grow(width)
		b.WriteString(strings.Repeat(" ", offset))
		for _, e := range eighths {
			fill := clampInt(e-rowFromBottom*len(barBlocks), len(barBlocks))
			if fill == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(barBlocks[fill-1])
		}
		rows[row] = b.String()
	}
	return rows
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
