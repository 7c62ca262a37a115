package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "future version",
			mutate:  func(cfg *Config) { cfg.Version = CurrentConfigVersion + 1 },
			wantErr: "from the future",
		},
		{
			name:    "interval below a millisecond",
			mutate:  func(cfg *Config) { cfg.Interval = 500 * time.Microsecond },
			wantErr: "too short",
		},
		{
			name:    "zero poll",
			mutate:  func(cfg *Config) { cfg.Poll = 0 },
			wantErr: "poll needs to be positive",
		},
		{
			name: "poll longer than interval",
			mutate: func(cfg *Config) {
				cfg.Interval = 50 * time.Millisecond
				cfg.Poll = 60 * time.Millisecond
			},
			wantErr: "longer than interval",
		},
		{
			name:    "zero history",
			mutate:  func(cfg *Config) { cfg.History = 0 },
			wantErr: "history needs to be between",
		},
		{
			name:    "huge history",
			mutate:  func(cfg *Config) { cfg.History = MaxHistory + 1 },
			wantErr: "history needs to be between",
		},
		{
			name:    "unknown catalog",
			mutate:  func(cfg *Config) { cfg.Catalog = "everything" },
			wantErr: "isn't a known preset",
		},
		{
			name:    "negative entity",
			mutate:  func(cfg *Config) { cfg.EntityID = -1 },
			wantErr: "entity_id can't be negative",
		},
		{
			name:    "blank entity tag",
			mutate:  func(cfg *Config) { cfg.EntityTag = "   " },
			wantErr: "entity_tag is only whitespace",
		},
		{
			name:    "no percentiles",
			mutate:  func(cfg *Config) { cfg.Percentiles = nil },
			wantErr: "percentiles can't be empty",
		},
		{
			name:    "percentile above 100",
			mutate:  func(cfg *Config) { cfg.Percentiles = []float64{50, 101} },
			wantErr: "needs to be 0-100",
		},
		{
			name:    "NaN percentile",
			mutate:  func(cfg *Config) { cfg.Percentiles = []float64{math.NaN()} },
			wantErr: "needs to be 0-100",
		},
		{
			name:    "empty dcgmi",
			mutate:  func(cfg *Config) { cfg.Dcgmi = "" },
			wantErr: "dcgmi is empty",
		},
		{
			name:    "bad color",
			mutate:  func(cfg *Config) { cfg.Color = "sometimes" },
			wantErr: "color 'sometimes' isn't valid",
		},
		{
			name: "edge values are fine",
			mutate: func(cfg *Config) {
				cfg.Interval = time.Millisecond
				cfg.Poll = time.Millisecond
				cfg.History = 1
				cfg.Percentiles = []float64{0, 100}
				cfg.Color = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `# dmontop settings
version: 1
# sampling
interval: 100ms # fast
history: 300
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, SetValue(path, "interval", "250ms"))
	require.NoError(t, SetValue(path, "catalog", "activity+memory"))
	require.NoError(t, SetValue(path, "percentiles", "50, 95,99.9"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# dmontop settings")
	assert.Contains(t, string(data), "interval: 250ms # fast")
	assert.Contains(t, string(data), "percentiles: [50, 95, 99.9]")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, "activity+memory", cfg.Catalog)
	assert.Equal(t, []float64{50, 95, 99.9}, cfg.Percentiles)
	assert.Equal(t, 300, cfg.History)
}

func TestSetValue_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, nil, 0644))

	require.NoError(t, SetValue(path, "entity_id", "3"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.EntityID)
}

func TestSetValue_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	original := "version: 1\nhistory: 300\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	err := SetValue(path, "hosts", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")

	err = SetValue(path, "history", "0")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data), "invalid values never reach the file")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestSettableKeys(t *testing.T) {
	keys := SettableKeys()
	assert.Contains(t, keys, "interval")
	assert.Contains(t, keys, "percentiles")
	assert.NotContains(t, keys, "version")
	assert.IsIncreasing(t, keys)
}
