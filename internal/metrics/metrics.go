// Package metrics exposes dmontop's own pipeline counters in Prometheus
// format. Every method is safe on a nil *Pipeline, so components can take an
// optional pipeline without checking for it.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

const namespace = "dmontop"

// Pipeline holds the counters for one dashboard run.
type Pipeline struct {
	registry *prometheus.Registry

	lines          *prometheus.CounterVec
	frames         prometheus.Counter
	logRecords     prometheus.Counter
	logWriteErrors prometheus.Counter
	logDropped     prometheus.Counter
	logQueueDepth  prometheus.Gauge
	lastValue      *prometheus.GaugeVec
}

// NewPipeline creates a pipeline with its own registry.
func NewPipeline() *Pipeline {
	p := &Pipeline{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "lines_total",
			Help:      "Lines read from the telemetry stream, by parse outcome.",
		}, []string{"outcome"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "frames_total",
			Help:      "Dashboard frames rendered.",
		}),
		logRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "samplelog",
			Name:      "records_total",
			Help:      "Records written to the sample log.",
		}),
		logWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "samplelog",
			Name:      "write_errors_total",
			Help:      "Sample log writes that failed and were skipped.",
		}),
		logDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "samplelog",
			Name:      "dropped_total",
			Help:      "Records handed to the sample log after it stopped, or left queued at shutdown.",
		}),
		logQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "samplelog",
			Name:      "queue_depth",
			Help:      "Records waiting to be written to the sample log.",
		}),
		lastValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gpu",
			Name:      "last_value",
			Help:      "Most recent raw value per dmon metric.",
		}, []string{"metric"}),
	}

	p.registry.MustRegister(
		p.lines,
		p.frames,
		p.logRecords,
		p.logWriteErrors,
		p.logDropped,
		p.logQueueDepth,
		p.lastValue,
	)

	return p
}

// Registry returns the underlying registry.
func (p *Pipeline) Registry() *prometheus.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

// ObserveLine counts one parsed line by outcome.
func (p *Pipeline) ObserveLine(outcome telemetry.Outcome) {
	if p == nil {
		return
	}
	p.lines.WithLabelValues(outcome.String()).Inc()
}

// ObserveRecord updates the last-value gauges for an accepted record.
func (p *Pipeline) ObserveRecord(catalog telemetry.Catalog, rec telemetry.Record) {
	if p == nil {
		return
	}
	for i, m := range catalog {
		if i >= rec.Len() {
			break
		}
		p.lastValue.WithLabelValues(m.Name).Set(rec.At(i))
	}
}

// FrameRendered counts one rendered frame.
func (p *Pipeline) FrameRendered() {
	if p == nil {
		return
	}
	p.frames.Inc()
}

// LogRecordWritten counts one record appended to the sample log.
func (p *Pipeline) LogRecordWritten() {
	if p == nil {
		return
	}
	p.logRecords.Inc()
}

// LogWriteFailed counts one swallowed sample log write error.
func (p *Pipeline) LogWriteFailed() {
	if p == nil {
		return
	}
	p.logWriteErrors.Inc()
}

// LogDropped counts records that never reached the sample log file.
func (p *Pipeline) LogDropped(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.logDropped.Add(float64(n))
}

// SetLogQueueDepth records the current sample log backlog.
func (p *Pipeline) SetLogQueueDepth(n int) {
	if p == nil {
		return
	}
	p.logQueueDepth.Set(float64(n))
}

// Handler returns an HTTP handler serving the registry.
func (p *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (p *Pipeline) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
