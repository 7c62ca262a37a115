package dashboard

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/dmontop/internal/history"
	"github.com/rileyhilliard/dmontop/internal/metrics"
	"github.com/rileyhilliard/dmontop/internal/stats"
	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

// DefaultMaxLinesPerIteration bounds how many lines one poll may ingest,
// so a burst of buffered input can't starve key handling or rendering.
const DefaultMaxLinesPerIteration = 64

// LineSource yields raw lines without blocking.
type LineSource interface {
	TryNext() (string, bool)
	Ended() bool
}

// Sink receives every accepted record, e.g. the CSV sample log.
type Sink interface {
	Send(rec telemetry.Record) bool
}

// Options configures a Driver.
type Options struct {
	Catalog     telemetry.Catalog
	Tag         string
	History     int
	Interval    time.Duration
	Percentiles []float64
	ActiveOnly  bool

	// MaxLinesPerIteration defaults to DefaultMaxLinesPerIteration.
	MaxLinesPerIteration int
}

// Panel is the computed content for one metric.
type Panel struct {
	Metric  telemetry.Metric
	Samples []float64 // oldest first
	Summary stats.Summary
	Latest  string // formatted newest value, empty before the first sample
	Stats   []string
}

// Driver owns the history table and decides when a frame is due.
// It is not safe for concurrent use; the Bubble Tea update loop owns it.
type Driver struct {
	catalog     telemetry.Catalog
	parser      *telemetry.Parser
	table       *history.Table
	sink        Sink
	metrics     *metrics.Pipeline
	interval    time.Duration
	percentiles []float64
	activeOnly  bool
	maxLines    int

	lastRender time.Time
	accepted   int
	rejected   int
}

// NewDriver validates opts and builds a driver. sink and p may be nil.
func NewDriver(opts Options, sink Sink, p *metrics.Pipeline) (*Driver, error) {
	if len(opts.Catalog) == 0 {
		return nil, fmt.Errorf("dashboard needs at least one metric")
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("render interval must be positive, got %v", opts.Interval)
	}

	parser, err := telemetry.NewParser(opts.Tag, len(opts.Catalog))
	if err != nil {
		return nil, err
	}

	percentiles := opts.Percentiles
	if len(percentiles) == 0 {
		percentiles = stats.DefaultPercentiles
	}

	maxLines := opts.MaxLinesPerIteration
	if maxLines <= 0 {
		maxLines = DefaultMaxLinesPerIteration
	}

	return &Driver{
		catalog:     append(telemetry.Catalog(nil), opts.Catalog...),
		parser:      parser,
		table:       history.New(len(opts.Catalog), opts.History),
		sink:        sink,
		metrics:     p,
		interval:    opts.Interval,
		percentiles: append([]float64(nil), percentiles...),
		activeOnly:  opts.ActiveOnly,
		maxLines:    maxLines,
	}, nil
}

// Ingest parses one line and, if it is a sample, records it and hands it
// to the sink. Returns whether the line was accepted.
func (d *Driver) Ingest(line string) bool {
	rec, outcome := d.parser.Inspect(line)
	d.metrics.ObserveLine(outcome)
	if outcome != telemetry.Accepted {
		d.rejected++
		return false
	}

	if err := d.table.PushRecord(rec); err != nil {
		// Parser and table are built from the same catalog.
		d.rejected++
		return false
	}
	d.accepted++
	d.metrics.ObserveRecord(d.catalog, rec)

	if d.sink != nil {
		d.sink.Send(rec)
	}
	return true
}

// Drain ingests up to the per-iteration limit of lines that are already
// available and returns how many lines were consumed.
func (d *Driver) Drain(src LineSource) int {
	n := 0
	for n < d.maxLines {
		line, ok := src.TryNext()
		if !ok {
			break
		}
		d.Ingest(line)
		n++
	}
	return n
}

// Due reports whether a frame should be drawn at now.
func (d *Driver) Due(now time.Time) bool {
	return d.lastRender.IsZero() || now.Sub(d.lastRender) >= d.interval
}

// MarkRendered resets the render timer.
func (d *Driver) MarkRendered(now time.Time) {
	d.lastRender = now
	d.metrics.FrameRendered()
}

// Panels computes the display content for every metric.
func (d *Driver) Panels() []Panel {
	panels := make([]Panel, len(d.catalog))
	for i, m := range d.catalog {
		samples := d.table.Snapshot(i)
		summary := stats.Summarize(samples, d.percentiles, d.activeOnly)

		p := Panel{
			Metric:  m,
			Samples: samples,
			Summary: summary,
			Stats:   make([]string, len(summary.Quantiles)),
		}
		if len(samples) > 0 {
			p.Latest = stats.FormatValue(m, samples[len(samples)-1])
		}
		for j, q := range summary.Quantiles {
			p.Stats[j] = fmt.Sprintf("%s: %s", stats.FormatPercentileLabel(q.P), stats.FormatValue(m, q.Value))
		}
		panels[i] = p
	}
	return panels
}

// Catalog returns the metrics in display order.
func (d *Driver) Catalog() telemetry.Catalog {
	return d.catalog
}

// Tag returns the entity tag being matched.
func (d *Driver) Tag() string {
	return d.parser.Tag()
}

// Accepted returns the number of sample lines ingested.
func (d *Driver) Accepted() int {
	return d.accepted
}

// Rejected returns the number of lines dropped as non-samples or malformed.
func (d *Driver) Rejected() int {
	return d.rejected
}

// History exposes the table for inspection.
func (d *Driver) History() *history.Table {
	return d.table
}
