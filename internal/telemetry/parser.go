package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Outcome classifies the result of parsing one line.
type Outcome int

const (
	// Accepted means the line produced a Record.
	Accepted Outcome = iota
	// NotSample means the line does not start with the entity tag
	// (headers, unit rows, blank lines, other entities).
	NotSample
	// FieldCount means the line is tagged but has the wrong number of columns.
	FieldCount
	// NotNumeric means at least one column is not a finite number (e.g. "N/A").
	NotNumeric
)

// String returns a short label, used as a metric label value.
func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case NotSample:
		return "not_sample"
	case FieldCount:
		return "field_count"
	case NotNumeric:
		return "not_numeric"
	default:
		return "unknown"
	}
}

// Parser turns dmon output lines into Records.
//
// A sample line looks like:
//
//	GPU 0     0.000  0.000  0.000 ...
//
// With tag "GPU 0" the label word "GPU" is dropped, leaving the entity id
// column followed by one column per metric. The id column is redundant and
// is discarded too.
type Parser struct {
	tag        string
	labelWords int
	fields     int
}

// NewParser creates a parser for lines starting with tag and carrying n metric values.
func NewParser(tag string, n int) (*Parser, error) {
	words := strings.Fields(tag)
	if len(words) == 0 {
		return nil, fmt.Errorf("entity tag must not be empty")
	}
	if n < 1 {
		return nil, fmt.Errorf("field count must be at least 1, got %d", n)
	}

	labelWords := len(words) - 1
	if labelWords < 1 {
		labelWords = 1
	}

	return &Parser{
		tag:        tag,
		labelWords: labelWords,
		fields:     n,
	}, nil
}

// Tag returns the entity tag the parser matches.
func (p *Parser) Tag() string {
	return p.tag
}

// Fields returns the number of metric values per record.
func (p *Parser) Fields() int {
	return p.fields
}

// Parse returns the Record for line, or false if the line is not a sample.
func (p *Parser) Parse(line string) (Record, bool) {
	rec, outcome := p.Inspect(line)
	return rec, outcome == Accepted
}

// matchesTag reports whether line starts with the tag as whole words, so
// tag "GPU 1" does not claim rows from GPU 10..19.
func (p *Parser) matchesTag(line string) bool {
	if !strings.HasPrefix(line, p.tag) {
		return false
	}
	return len(line) == len(p.tag) || unicode.IsSpace(rune(line[len(p.tag)]))
}

// Inspect parses line and reports why it was rejected, if it was.
// A rejected line never yields a partial Record.
func (p *Parser) Inspect(line string) (Record, Outcome) {
	if !p.matchesTag(line) {
		return Record{}, NotSample
	}

	tokens := strings.Fields(line)
	if len(tokens) < p.labelWords {
		return Record{}, FieldCount
	}
	columns := tokens[p.labelWords:]
	if len(columns) != p.fields+1 {
		return Record{}, FieldCount
	}

	values := make([]float64, p.fields)
	for i, col := range columns {
		v, err := strconv.ParseFloat(col, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Record{}, NotNumeric
		}
		if i > 0 {
			values[i-1] = v
		}
	}

	return Record{values: values}, Accepted
}
