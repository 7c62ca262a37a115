package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

// Binary unit thresholds.
const (
	KB = 1024.0
	MB = KB * 1024
	GB = MB * 1024
	TB = GB * 1024
)

// FormatMagnitude formats a byte count (or a byte rate when isRate is set)
// using the largest binary unit the value reaches. Scaled values get two
// decimals; plain bytes are shown whole, truncated rather than rounded so a
// value below 1 KB never reads as "1024 B".
func FormatMagnitude(value float64, isRate bool) string {
	suffix := ""
	if isRate {
		suffix = "/s"
	}

	switch {
	case value >= TB:
		return fmt.Sprintf("%.2f TB%s", value/TB, suffix)
	case value >= GB:
		return fmt.Sprintf("%.2f GB%s", value/GB, suffix)
	case value >= MB:
		return fmt.Sprintf("%.2f MB%s", value/MB, suffix)
	case value >= KB:
		return fmt.Sprintf("%.2f KB%s", value/KB, suffix)
	default:
		return fmt.Sprintf("%.0f B%s", math.Trunc(value), suffix)
	}
}

// FormatPercent formats a 0..1 utilization ratio as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatValue formats a raw metric value according to the metric's kind.
// Throughput metrics render as byte rates, memory gauges as byte quantities
// and everything else as a utilization percentage.
func FormatValue(m telemetry.Metric, raw float64) string {
	switch m.Kind {
	case telemetry.KindRate:
		return FormatMagnitude(m.DisplayValue(raw), true)
	case telemetry.KindMemory:
		return FormatMagnitude(m.DisplayValue(raw), false)
	default:
		return FormatPercent(raw)
	}
}

// FormatPercentileLabel renders a percentile as "p50", "p99.9" etc.
func FormatPercentileLabel(p float64) string {
	return "p" + strconv.FormatFloat(p, 'f', -1, 64)
}
