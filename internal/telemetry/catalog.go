package telemetry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind describes how a metric's raw value should be interpreted for display.
type Kind int

const (
	// KindUtilization is a fractional activity ratio in 0..1.
	KindUtilization Kind = iota
	// KindRate is a throughput in bytes per second.
	KindRate
	// KindMemory is an absolute byte quantity.
	KindMemory
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindUtilization:
		return "utilization"
	case KindRate:
		return "rate"
	case KindMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// Metric identifies one column of the dmon stream.
type Metric struct {
	// Name is the dmon column header, e.g. "SMACT".
	Name string
	// FieldID is the DCGM field identifier passed to `dcgmi dmon -e`.
	FieldID int
	// Kind selects the display formatting.
	Kind Kind
	// Scale multiplies the raw value before display. Zero means 1.
	Scale float64
	// Description is a short explanation shown by `dmontop fields`.
	Description string
}

// DisplayValue returns the raw value multiplied by the metric's display scale.
func (m Metric) DisplayValue(raw float64) float64 {
	if m.Scale == 0 {
		return raw
	}
	return raw * m.Scale
}

// Catalog is the fixed, ordered list of metrics for one dmon invocation.
// Position in the catalog is the only join key between record fields and metrics.
type Catalog []Metric

// Names returns the metric names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, m := range c {
		names[i] = m.Name
	}
	return names
}

// FieldList returns the comma-separated DCGM field ids for `dcgmi dmon -e`.
func (c Catalog) FieldList() string {
	ids := make([]string, len(c))
	for i, m := range c {
		ids[i] = strconv.Itoa(m.FieldID)
	}
	return strings.Join(ids, ",")
}

const mib = 1024 * 1024

// activityMetrics is the base profiling field set.
var activityMetrics = Catalog{
	{Name: "SMACT", FieldID: 1002, Kind: KindUtilization, Description: "SM activity"},
	{Name: "SMOCC", FieldID: 1003, Kind: KindUtilization, Description: "SM occupancy"},
	{Name: "TENSO", FieldID: 1004, Kind: KindUtilization, Description: "Tensor core activity"},
	{Name: "FP64A", FieldID: 1006, Kind: KindUtilization, Description: "FP64 pipe activity"},
	{Name: "FP32A", FieldID: 1007, Kind: KindUtilization, Description: "FP32 pipe activity"},
	{Name: "FP16A", FieldID: 1008, Kind: KindUtilization, Description: "FP16 pipe activity"},
	{Name: "DRAMA", FieldID: 1005, Kind: KindUtilization, Description: "DRAM activity"},
	{Name: "PCITX", FieldID: 1009, Kind: KindRate, Description: "PCIe transmit bytes/s"},
	{Name: "PCIRX", FieldID: 1010, Kind: KindRate, Description: "PCIe receive bytes/s"},
	{Name: "NVLTX", FieldID: 1011, Kind: KindRate, Description: "NVLink transmit bytes/s"},
	{Name: "NVLRX", FieldID: 1012, Kind: KindRate, Description: "NVLink receive bytes/s"},
}

// Preset catalog names.
const (
	PresetActivity       = "activity"
	PresetActivityMemory = "activity+memory"
)

var presets = map[string]Catalog{
	PresetActivity: activityMetrics,
	PresetActivityMemory: append(append(Catalog{}, activityMetrics...),
		Metric{Name: "FBUSD", FieldID: 252, Kind: KindMemory, Scale: mib, Description: "Framebuffer memory used"}),
}

// Preset returns a copy of the named catalog.
func Preset(name string) (Catalog, error) {
	c, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	out := make(Catalog, len(c))
	copy(out, c)
	return out, nil
}

// PresetNames lists the available catalog presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
