package config

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/dmontop/internal/history"
	"github.com/rileyhilliard/dmontop/internal/stats"
	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .dmontop.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Interval is both the dcgmi sampling delay and the redraw period.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Poll is how often the dashboard checks the stream for new lines.
	Poll time.Duration `yaml:"poll" mapstructure:"poll"`

	// History is the number of samples kept per metric.
	History int `yaml:"history" mapstructure:"history"`

	// Catalog names the metric preset: "activity" or "activity+memory".
	Catalog string `yaml:"catalog" mapstructure:"catalog"`

	// EntityID is the GPU passed to dcgmi --entity-id.
	EntityID int `yaml:"entity_id" mapstructure:"entity_id"`

	// EntityTag is the row prefix dmon prints for the entity.
	// Empty means "GPU <entity_id>".
	EntityTag string `yaml:"entity_tag" mapstructure:"entity_tag"`

	// Percentiles shown in each metric's stats column.
	Percentiles []float64 `yaml:"percentiles" mapstructure:"percentiles"`

	// ActiveOnly drops zero samples before computing percentiles.
	ActiveOnly bool `yaml:"active_only" mapstructure:"active_only"`

	// Dcgmi is the dcgmi binary name or path.
	Dcgmi string `yaml:"dcgmi" mapstructure:"dcgmi"`

	// LogFile enables the CSV sample log. Supports ~, ${HOME}, ${USER},
	// ${HOST} and ${DATE}.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// MetricsAddr serves Prometheus metrics on host:port when set.
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`

	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:     CurrentConfigVersion,
		Interval:    100 * time.Millisecond,
		Poll:        10 * time.Millisecond,
		History:     history.DefaultCapacity,
		Catalog:     telemetry.PresetActivity,
		EntityID:    0,
		Percentiles: append([]float64(nil), stats.DefaultPercentiles...),
		ActiveOnly:  true,
		Dcgmi:       "dcgmi",
		Color:       "auto",
	}
}

// Tag returns the entity tag used to recognize sample rows.
func (c *Config) Tag() string {
	if c.EntityTag != "" {
		return c.EntityTag
	}
	return fmt.Sprintf("GPU %d", c.EntityID)
}

// Metrics resolves the configured catalog preset.
func (c *Config) Metrics() (telemetry.Catalog, error) {
	return telemetry.Preset(c.Catalog)
}

// fileConfig is the on-disk shape written by `dmontop init`.
// Durations are kept as strings so the YAML stays human-editable.
type fileConfig struct {
	Version     int       `yaml:"version"`
	Interval    string    `yaml:"interval"`
	Poll        string    `yaml:"poll,omitempty"`
	History     int       `yaml:"history"`
	Catalog     string    `yaml:"catalog"`
	EntityID    int       `yaml:"entity_id"`
	EntityTag   string    `yaml:"entity_tag,omitempty"`
	Percentiles []float64 `yaml:"percentiles,flow"`
	ActiveOnly  bool      `yaml:"active_only"`
	Dcgmi       string    `yaml:"dcgmi"`
	LogFile     string    `yaml:"log_file,omitempty"`
	MetricsAddr string    `yaml:"metrics_addr,omitempty"`
	Color       string    `yaml:"color"`
}

// MarshalYAML writes durations in their string form (e.g. "100ms").
func (c Config) MarshalYAML() (interface{}, error) {
	fc := fileConfig{
		Version:     c.Version,
		Interval:    c.Interval.String(),
		History:     c.History,
		Catalog:     c.Catalog,
		EntityID:    c.EntityID,
		EntityTag:   c.EntityTag,
		Percentiles: c.Percentiles,
		ActiveOnly:  c.ActiveOnly,
		Dcgmi:       c.Dcgmi,
		LogFile:     c.LogFile,
		MetricsAddr: c.MetricsAddr,
		Color:       c.Color,
	}
	if c.Poll != DefaultConfig().Poll {
		fc.Poll = c.Poll.String()
	}
	return fc, nil
}
