// Package samplelog appends accepted telemetry records to a CSV file from a
// dedicated worker goroutine, so the dashboard never waits on disk I/O.
//
// The hand-off queue is unbounded: Send appends under a short lock and
// returns immediately regardless of how far behind the writer is.
package samplelog

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/rileyhilliard/dmontop/internal/logger"
	"github.com/rileyhilliard/dmontop/internal/metrics"
	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

// TimestampFormat is the layout of the first CSV column.
const TimestampFormat = time.RFC3339Nano

// Logger owns one append target and the worker that writes to it.
type Logger struct {
	mu      sync.Mutex
	queue   []entry
	closing bool

	notify chan struct{}
	done   chan struct{}
	abort  atomic.Bool

	closeOnce sync.Once

	out     io.WriteCloser
	columns []string
	now     func() time.Time
	log     logger.Logger
	metrics *metrics.Pipeline
}

// entry is a record stamped with the time it was handed off.
type entry struct {
	at  time.Time
	rec telemetry.Record
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Logger) { l.log = log }
}

// WithMetrics reports writes, errors and backlog to p.
func WithMetrics(p *metrics.Pipeline) Option {
	return func(l *Logger) { l.metrics = p }
}

// Open creates (or truncates) path and starts the worker.
// The file is opened synchronously so callers can treat failure as fatal.
func Open(path string, catalog telemetry.Catalog, opts ...Option) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLog,
			"Can't create sample log "+path,
			"Check that the directory exists and is writable, or pick another path with --log.")
	}
	return New(f, catalog, opts...), nil
}

// New starts a worker that writes records for catalog to out.
// The worker owns out and closes it when it exits.
func New(out io.WriteCloser, catalog telemetry.Catalog, opts ...Option) *Logger {
	l := &Logger{
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		out:     out,
		columns: catalog.Names(),
		now:     time.Now,
		log:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.run()
	return l
}

// Send stamps rec with the current time and queues it without waiting for the worker.
// It returns false, dropping rec, once the logger is closing or the worker has exited.
func (l *Logger) Send(rec telemetry.Record) bool {
	select {
	case <-l.done:
		l.metrics.LogDropped(1)
		return false
	default:
	}

	at := l.now()

	l.mu.Lock()
	if l.closing {
		l.mu.Unlock()
		l.metrics.LogDropped(1)
		return false
	}
	l.queue = append(l.queue, entry{at: at, rec: rec})
	depth := len(l.queue)
	l.mu.Unlock()

	l.metrics.SetLogQueueDepth(depth)

	select {
	case l.notify <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the number of records waiting to be written.
func (l *Logger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Done is closed when the worker has exited and the file is closed.
func (l *Logger) Done() <-chan struct{} {
	return l.done
}

// Close stops accepting records and waits for the backlog to be written
// until ctx expires. Records still queued at that point are dropped.
func (l *Logger) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closing = true
		l.mu.Unlock()

		select {
		case l.notify <- struct{}{}:
		default:
		}
	})

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.abort.Store(true)
		return ctx.Err()
	}
}

// run is the worker loop: header first, then records in arrival order.
func (l *Logger) run() {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("sample log worker stopped: %v", r)
		}
	}()
	defer l.out.Close()

	header := append([]string{"timestamp"}, l.columns...)
	if err := l.writeRow(header); err != nil {
		l.log.Warn("sample log header write failed: %v", err)
	}

	row := make([]string, len(l.columns)+1)
	failures := 0

	for {
		batch, ok := l.next()
		if !ok {
			return
		}

		for i, e := range batch {
			if l.abort.Load() {
				l.metrics.LogDropped(len(batch) - i)
				return
			}

			row = formatRow(row[:0], e)
			if err := l.writeRow(row); err != nil {
				failures++
				l.metrics.LogWriteFailed()
				if failures == 1 {
					l.log.Warn("sample log write failed, continuing without this row: %v", err)
				} else {
					l.log.Debug("sample log write failed (%d so far): %v", failures, err)
				}
				continue
			}
			l.metrics.LogRecordWritten()
		}
	}
}

// next blocks until records are queued and takes all of them.
// It returns false when the logger is closing and the queue is empty.
func (l *Logger) next() ([]entry, bool) {
	l.mu.Lock()
	for len(l.queue) == 0 && !l.closing {
		l.mu.Unlock()
		<-l.notify
		l.mu.Lock()
	}
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	l.metrics.SetLogQueueDepth(0)
	return batch, len(batch) > 0
}

func formatRow(row []string, e entry) []string {
	row = append(row, e.at.Format(TimestampFormat))
	for i := 0; i < e.rec.Len(); i++ {
		row = append(row, strconv.FormatFloat(e.rec.At(i), 'f', -1, 64))
	}
	return row
}

// writeRow writes one unbuffered line so a failed write never poisons later ones.
// Fields are metric names, timestamps and plain numbers, none of which need quoting.
func (l *Logger) writeRow(row []string) error {
	_, err := io.WriteString(l.out, strings.Join(row, ",")+"\n")
	return err
}
