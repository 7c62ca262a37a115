package telemetry

// Record is one accepted sample: exactly one value per catalog metric, in
// catalog order. A Record is never modified after construction.
type Record struct {
	values []float64
}

// NewRecord copies values into a new Record.
func NewRecord(values []float64) Record {
	v := make([]float64, len(values))
	copy(v, values)
	return Record{values: v}
}

// Len returns the number of values.
func (r Record) Len() int {
	return len(r.values)
}

// At returns the value for the metric at index i.
func (r Record) At(i int) float64 {
	return r.values[i]
}

// Values returns a copy of the values in catalog order.
func (r Record) Values() []float64 {
	out := make([]float64, len(r.values))
	copy(out, r.values)
	return out
}
