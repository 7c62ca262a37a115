package source

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/rileyhilliard/dmontop/internal/logger"
)

// Dmon describes one `dcgmi dmon` invocation.
type Dmon struct {
	Binary   string
	Fields   string
	EntityID int
	Interval time.Duration
}

// Args returns the dcgmi argument list, excluding the binary.
func (d Dmon) Args() []string {
	return []string{
		"dmon",
		"-e", d.Fields,
		"--entity-id", strconv.Itoa(d.EntityID),
		"-d", strconv.FormatInt(d.Interval.Milliseconds(), 10),
	}
}

// String renders the full command line for diagnostics.
func (d Dmon) String() string {
	return d.Binary + " " + strings.Join(d.Args(), " ")
}

// Stream is a running line producer plus whatever must be released when
// the dashboard exits.
type Stream struct {
	*Lines

	stop     func() error
	stopOnce sync.Once
	stopErr  error
}

// Stop releases the underlying process or file. Safe to call more than once.
func (s *Stream) Stop() error {
	s.stopOnce.Do(func() {
		s.Lines.Close()
		if s.stop != nil {
			s.stopErr = s.stop()
		}
	})
	return s.stopErr
}

// stderrTail keeps the last bytes a child wrote to stderr.
type stderrTail struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

const stderrTailBytes = 4096

func (t *stderrTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - stderrTailBytes; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *stderrTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}

// StartDmon spawns dcgmi and streams its stdout.
func StartDmon(d Dmon, log logger.Logger) (*Stream, error) {
	if log == nil {
		log = logger.Noop()
	}

	cmd := exec.Command(d.Binary, d.Args()...)
	stderr := &stderrTail{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Couldn't create stdout pipe for dcgmi",
			"This shouldn't happen - please report this bug!")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Couldn't start "+d.Binary,
			"Make sure DCGM is installed and dcgmi is on your PATH, or set `dcgmi` in .dmontop.yaml. Use --input to replay a captured stream instead.")
	}
	log.Debug("started %s (pid %d)", d, cmd.Process.Pid)

	waited := make(chan error, 1)
	lines := NewLines(stdout)
	go func() {
		<-lines.Done()
		err := cmd.Wait()
		if tail := stderr.String(); tail != "" {
			log.Debug("dcgmi stderr: %s", tail)
		}
		waited <- err
	}()

	stop := func() error {
		select {
		case err := <-waited:
			waited <- err
			return nil
		default:
		}
		if err := cmd.Process.Kill(); err != nil && !isProcessDone(err) {
			return err
		}
		// The pipe closes when the child dies, which unblocks the reader.
		select {
		case <-waited:
		case <-time.After(2 * time.Second):
			log.Warn("dcgmi did not exit after kill")
		}
		return nil
	}

	return &Stream{Lines: lines, stop: stop}, nil
}

func isProcessDone(err error) bool {
	return stderrors.Is(err, os.ErrProcessDone)
}

// OpenInput replays a captured stream from path, or from stdin when path is "-".
func OpenInput(path string, stdin io.Reader) (*Stream, error) {
	if path == "-" {
		return &Stream{Lines: NewLines(stdin)}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Can't open input "+path,
			"Check the path passed to --input, or use - to read from stdin.")
	}
	return &Stream{Lines: NewLines(f), stop: f.Close}, nil
}
