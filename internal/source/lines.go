// Package source feeds raw telemetry lines to the dashboard.
//
// A Lines value wraps a blocking reader (the dcgmi child's stdout, a
// captured file, or stdin) with one reader goroutine, so the update loop
// can ask for "the next line, if any" without ever waiting.
package source

import (
	"bufio"
	"io"
	"sync"
)

// bufferedLines bounds how far the reader goroutine may run ahead of the
// consumer. Once full, the reader blocks and the pipe applies backpressure.
const bufferedLines = 4096

// maxLineBytes caps a single input line. Longer lines are skipped.
const maxLineBytes = 1 << 20

// Lines is a non-blocking line feed over an io.Reader.
type Lines struct {
	ch   chan string
	done chan struct{}
	quit chan struct{}

	quitOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewLines starts reading r in the background.
func NewLines(r io.Reader) *Lines {
	l := &Lines{
		ch:   make(chan string, bufferedLines),
		done: make(chan struct{}),
		quit: make(chan struct{}),
	}
	go l.read(r)
	return l
}

func (l *Lines) read(r io.Reader) {
	defer close(l.done)
	defer close(l.ch)

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, ok, err := readLine(br)
		if ok {
			select {
			case l.ch <- line:
			case <-l.quit:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				l.mu.Lock()
				l.err = err
				l.mu.Unlock()
			}
			return
		}
	}
}

// readLine returns the next line without its line ending. A line longer
// than maxLineBytes is consumed up to its newline and reported as !ok, so
// one runaway line costs only itself.
func readLine(br *bufio.Reader) (string, bool, error) {
	var buf []byte
	tooLong := false
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			// ReadLine hands back the final unterminated line before EOF,
			// so an error here never carries a fragment.
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(frag) > maxLineBytes {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, frag...)
			}
		}
		if !isPrefix {
			return string(buf), !tooLong, nil
		}
	}
}

// TryNext returns the next available line, or false if none is ready.
func (l *Lines) TryNext() (string, bool) {
	select {
	case line, ok := <-l.ch:
		return line, ok
	default:
		return "", false
	}
}

// Ended reports whether the reader hit end of input and every line has
// been consumed.
func (l *Lines) Ended() bool {
	select {
	case <-l.done:
		return len(l.ch) == 0
	default:
		return false
	}
}

// Done is closed once the reader goroutine has stopped.
func (l *Lines) Done() <-chan struct{} {
	return l.done
}

// Close stops the reader goroutine once its current read returns.
// Lines already buffered stay available to TryNext.
func (l *Lines) Close() {
	l.quitOnce.Do(func() { close(l.quit) })
}

// Err returns the read error that stopped the feed, if any. A clean EOF
// is not an error, and neither is a skipped overlong line.
func (l *Lines) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
