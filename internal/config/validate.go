package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

// MaxHistory caps the per-metric window so a typo can't eat the machine.
const MaxHistory = 100_000

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try running the command again.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but dmontop only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest dmontop release.")
	}

	if err := validateTiming(cfg.Interval, cfg.Poll); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Use durations like '100ms' or '1s' in .dmontop.yaml, or pass --interval.")
	}

	if cfg.History < 1 || cfg.History > MaxHistory {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history needs to be between 1 and %d samples (got %d)", MaxHistory, cfg.History),
			"The default of 300 keeps 30 seconds at a 100ms interval.")
	}

	if _, err := telemetry.Preset(cfg.Catalog); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("catalog '%s' isn't a known preset", cfg.Catalog),
			"Use one of: "+strings.Join(telemetry.PresetNames(), ", ")+". Run 'dmontop fields' to see what each one samples.")
	}

	if cfg.EntityID < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("entity_id can't be negative (got %d)", cfg.EntityID),
			"Run 'dcgmi discovery -l' to list GPU ids.")
	}

	if cfg.EntityTag != "" && strings.TrimSpace(cfg.EntityTag) == "" {
		return errors.New(errors.ErrConfig,
			"entity_tag is only whitespace",
			"Remove entity_tag to use 'GPU <entity_id>', or set it to the row prefix dmon prints.")
	}

	if err := validatePercentiles(cfg.Percentiles); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'percentiles' list in your .dmontop.yaml.")
	}

	if strings.TrimSpace(cfg.Dcgmi) == "" {
		return errors.New(errors.ErrConfig,
			"dcgmi is empty",
			"Set it to the dcgmi binary name or path, or remove it to use 'dcgmi'.")
	}

	if err := validateColor(cfg.Color); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'color' setting in your .dmontop.yaml.")
	}

	return nil
}

// validateTiming checks the redraw interval and the poll cadence.
func validateTiming(interval, poll time.Duration) error {
	if interval < time.Millisecond {
		return fmt.Errorf("interval '%v' is too short - dcgmi samples in whole milliseconds", interval)
	}
	if poll <= 0 {
		return fmt.Errorf("poll needs to be positive (got %v)", poll)
	}
	if poll > interval {
		return fmt.Errorf("poll (%v) is longer than interval (%v) - frames would be late every time", poll, interval)
	}
	return nil
}

// validatePercentiles checks each configured percentile is within 0-100.
func validatePercentiles(ps []float64) error {
	if len(ps) == 0 {
		return fmt.Errorf("percentiles can't be empty - the stats column would have nothing to show")
	}
	for _, p := range ps {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return fmt.Errorf("percentile %v needs to be 0-100", p)
		}
	}
	return nil
}

// validateColor checks the color mode.
func validateColor(color string) error {
	validColors := map[string]bool{"auto": true, "always": true, "never": true, "": true}
	if !validColors[color] {
		return fmt.Errorf("color '%s' isn't valid - use 'auto', 'always', or 'never'", color)
	}
	return nil
}
