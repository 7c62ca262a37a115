package source

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, l *Lines) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not finish")
	}
}

func drain(l *Lines) []string {
	var got []string
	for {
		line, ok := l.TryNext()
		if !ok {
			return got
		}
		got = append(got, line)
	}
}

func TestLines_TryNext(t *testing.T) {
	l := NewLines(strings.NewReader("#Entity   SMACT\nGPU 0  0.5\n\nGPU 0  0.6\n"))
	waitDone(t, l)

	assert.False(t, l.Ended(), "buffered lines are still pending")
	assert.Equal(t, []string{"#Entity   SMACT", "GPU 0  0.5", "", "GPU 0  0.6"}, drain(l))
	assert.True(t, l.Ended())
	assert.NoError(t, l.Err())

	line, ok := l.TryNext()
	assert.False(t, ok)
	assert.Empty(t, line)
}

func TestLines_TryNextNeverBlocks(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()
	l := NewLines(r)

	start := time.Now()
	_, ok := l.TryNext()
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.False(t, l.Ended())

	_, err = w.WriteString("GPU 0 1\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		line, ok := l.TryNext()
		return ok && line == "GPU 0 1"
	}, 5*time.Second, time.Millisecond)
}

func TestLines_SkipsOverlongLine(t *testing.T) {
	junk := strings.Repeat("x", 2*maxLineBytes)
	input := "GPU 0 1\n" + junk + "\nGPU 0 2\nGPU 0 3\n"
	l := NewLines(strings.NewReader(input))

	var got []string
	require.Eventually(t, func() bool {
		got = append(got, drain(l)...)
		return l.Ended()
	}, 5*time.Second, time.Millisecond)

	assert.Equal(t, []string{"GPU 0 1", "GPU 0 2", "GPU 0 3"}, got)
	assert.NoError(t, l.Err())
}

func TestLines_LongLineWithinLimit(t *testing.T) {
	long := "GPU 0 " + strings.Repeat("1 ", 100*1024)
	l := NewLines(strings.NewReader(long + "\nGPU 0 2"))
	waitDone(t, l)

	assert.Equal(t, []string{long, "GPU 0 2"}, drain(l))
}

func TestLines_ReadError(t *testing.T) {
	l := NewLines(iotest.ErrReader(os.ErrClosed))
	waitDone(t, l)

	assert.ErrorIs(t, l.Err(), os.ErrClosed)
	assert.True(t, l.Ended())
}

func TestLines_CloseUnblocksReader(t *testing.T) {
	// More lines than the buffer holds, with nobody consuming.
	input := strings.Repeat("GPU 0 1\n", bufferedLines+10)
	l := NewLines(strings.NewReader(input))

	l.Close()
	l.Close()
	waitDone(t, l)
}

func TestDmon_Args(t *testing.T) {
	d := Dmon{
		Binary:   "dcgmi",
		Fields:   "1002,1003",
		EntityID: 3,
		Interval: 250 * time.Millisecond,
	}

	assert.Equal(t, []string{"dmon", "-e", "1002,1003", "--entity-id", "3", "-d", "250"}, d.Args())
	assert.Equal(t, "dcgmi dmon -e 1002,1003 --entity-id 3 -d 250", d.String())
}

func TestStartDmon_MissingBinary(t *testing.T) {
	_, err := StartDmon(Dmon{Binary: filepath.Join(t.TempDir(), "no-dcgmi")}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSource))
}

// fakeDcgmi writes an executable script that stands in for dcgmi.
func fakeDcgmi(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "dcgmi")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestStartDmon_StreamsStdout(t *testing.T) {
	bin := fakeDcgmi(t, `echo "args: $*"; echo "GPU 0 0.5"`)

	s, err := StartDmon(Dmon{Binary: bin, Fields: "1002", EntityID: 0, Interval: 100 * time.Millisecond}, nil)
	require.NoError(t, err)
	waitDone(t, s.Lines)

	assert.Equal(t, []string{"args: dmon -e 1002 --entity-id 0 -d 100", "GPU 0 0.5"}, drain(s.Lines))
	assert.True(t, s.Ended())
	assert.NoError(t, s.Stop())
}

func TestStartDmon_StopKillsChild(t *testing.T) {
	bin := fakeDcgmi(t, `echo "GPU 0 0.5"; exec sleep 30`)

	s, err := StartDmon(Dmon{Binary: bin, Fields: "1002"}, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := s.TryNext()
		return ok
	}, 5*time.Second, time.Millisecond)

	start := time.Now()
	require.NoError(t, s.Stop())
	assert.Less(t, time.Since(start), 2*time.Second)
	waitDone(t, s.Lines)
	assert.NoError(t, s.Stop())
}

func TestOpenInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.txt")
	require.NoError(t, os.WriteFile(path, []byte("GPU 0 1\nGPU 0 2\n"), 0644))

	s, err := OpenInput(path, nil)
	require.NoError(t, err)
	waitDone(t, s.Lines)
	assert.Equal(t, []string{"GPU 0 1", "GPU 0 2"}, drain(s.Lines))
	assert.NoError(t, s.Stop())
}

func TestOpenInput_Stdin(t *testing.T) {
	s, err := OpenInput("-", strings.NewReader("GPU 0 7\n"))
	require.NoError(t, err)
	waitDone(t, s.Lines)
	assert.Equal(t, []string{"GPU 0 7"}, drain(s.Lines))
	assert.NoError(t, s.Stop())
}

func TestOpenInput_Missing(t *testing.T) {
	_, err := OpenInput(filepath.Join(t.TempDir(), "nope.txt"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSource))
}
