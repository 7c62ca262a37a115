package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/dmontop/internal/config"
	"github.com/rileyhilliard/dmontop/internal/errors"
)

func TestWriteFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFields(&buf))

	output := buf.String()
	assert.Contains(t, output, "activity (-e 1002,1003,1004,1006,1007,1008,1005,1009,1010,1011,1012)")
	assert.Contains(t, output, "activity+memory (-e ")
	assert.Contains(t, output, "FBUSD")

	var smact string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "SMACT") {
			smact = line
			break
		}
	}
	require.NotEmpty(t, smact)
	assert.Contains(t, smact, "1002")
	assert.Contains(t, smact, "utilization")
	assert.Contains(t, smact, "SM activity")
}

func TestConfigSet_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\ninterval: 100ms\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, configSet(&out, path, "interval", "500ms"))
	assert.Contains(t, out.String(), "Set interval = 500ms in "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# mine")
}

func TestConfigSet_DiscoveredFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("history: 300\n"), 0644))

	require.NoError(t, configSet(&bytes.Buffer{}, "", "history", "600"))

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.History)
}

func TestConfigSet_NoConfigFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	err := configSet(&bytes.Buffer{}, "", "history", "600")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "dmontop init")
}
