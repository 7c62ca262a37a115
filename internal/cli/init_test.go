package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/dmontop/internal/config"
	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

func TestInit_NonInteractiveWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Init(InitOptions{Dir: dir, NonInteractive: true, Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Created")

	path := filepath.Join(dir, config.ConfigFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# dmontop configuration")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestInit_ExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("interval: 1s\n"), 0644))

	err := Init(InitOptions{Dir: dir, NonInteractive: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "--force")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "interval: 1s\n", string(data), "existing file is untouched")

	err = Init(InitOptions{Dir: dir, NonInteractive: true, Overwrite: true, Out: &bytes.Buffer{}})
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.Interval)
}

func TestApplyInitAnswers(t *testing.T) {
	tests := []struct {
		name    string
		answers initAnswers
		check   func(t *testing.T, cfg *config.Config)
		wantErr bool
	}{
		{
			name: "all answers",
			answers: initAnswers{
				EntityID: " 3 ",
				Interval: "250ms",
				Catalog:  telemetry.PresetActivityMemory,
				LogFile:  " ~/dmon.csv ",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 3, cfg.EntityID)
				assert.Equal(t, 250*time.Millisecond, cfg.Interval)
				assert.Equal(t, telemetry.PresetActivityMemory, cfg.Catalog)
				assert.Equal(t, "~/dmon.csv", cfg.LogFile)
				assert.Equal(t, 10*time.Millisecond, cfg.Poll)
			},
		},
		{
			name:    "fast interval pulls poll down",
			answers: initAnswers{EntityID: "0", Interval: "5ms", Catalog: telemetry.PresetActivity},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 5*time.Millisecond, cfg.Poll)
				assert.NoError(t, config.Validate(cfg))
			},
		},
		{
			name:    "bad entity id",
			answers: initAnswers{EntityID: "gpu0", Interval: "100ms"},
			wantErr: true,
		},
		{
			name:    "bad interval",
			answers: initAnswers{EntityID: "0", Interval: "fast"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			err := applyInitAnswers(cfg, tt.answers)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
