// Package history keeps a bounded, per-metric rolling window of samples.
//
// A Table is an arena of fixed-capacity ring buffers, one per catalog
// position. It is owned by a single goroutine (the dashboard update loop)
// and does no locking.
package history

import (
	"fmt"

	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

// DefaultCapacity is the default number of samples retained per metric.
const DefaultCapacity = 300

// Table holds one ring buffer per metric, indexed by catalog position.
type Table struct {
	capacity int
	buffers  []*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// New creates a table for metrics buffers of the given capacity.
// A non-positive capacity falls back to DefaultCapacity.
func New(metrics, capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	buffers := make([]*ringBuffer, metrics)
	for i := range buffers {
		buffers[i] = newRingBuffer(capacity)
	}
	return &Table{
		capacity: capacity,
		buffers:  buffers,
	}
}

// Capacity returns the per-metric capacity.
func (t *Table) Capacity() int {
	return t.capacity
}

// Metrics returns the number of metric buffers.
func (t *Table) Metrics() int {
	return len(t.buffers)
}

// Push appends value to the metric's buffer, evicting the oldest value when full.
func (t *Table) Push(metric int, value float64) {
	t.buffers[metric].push(value)
}

// PushRecord pushes every value of rec into the buffer at the same index.
func (t *Table) PushRecord(rec telemetry.Record) error {
	if rec.Len() != len(t.buffers) {
		return fmt.Errorf("record has %d values, table tracks %d metrics", rec.Len(), len(t.buffers))
	}
	for i := range t.buffers {
		t.buffers[i].push(rec.At(i))
	}
	return nil
}

// Snapshot returns a copy of the metric's values, oldest first.
func (t *Table) Snapshot(metric int) []float64 {
	return t.buffers[metric].getAll()
}

// Last returns up to count of the most recent values for metric, oldest first.
func (t *Table) Last(metric, count int) []float64 {
	return t.buffers[metric].getLast(count)
}

// Len returns the number of values currently held for metric.
func (t *Table) Len(metric int) int {
	return t.buffers[metric].count
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value to the ring buffer, overwriting the oldest when full.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position; the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		idx := (start + i) % r.size
		result[i] = r.data[idx]
	}

	return result
}

// getAll returns all stored values in chronological order.
func (r *ringBuffer) getAll() []float64 {
	return r.getLast(r.count)
}
