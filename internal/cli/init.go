package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/dmontop/internal/config"
	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/rileyhilliard/dmontop/internal/telemetry"
	"github.com/rileyhilliard/dmontop/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string    // Directory to write into (default: current directory)
	Overwrite      bool      // Overwrite existing config without asking
	NonInteractive bool      // Skip prompts, use defaults
	Out            io.Writer // Progress output (default: stdout)
}

// initAnswers are the form fields, kept as strings for huh inputs.
type initAnswers struct {
	EntityID string
	Interval string
	Catalog  string
	LogFile  string
}

// Init creates a new .dmontop.yaml configuration file.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, ui.Fail("Cancelled."))
			return nil
		}
	}

	cfg := config.DefaultConfig()
	answers := initAnswers{
		EntityID: strconv.Itoa(cfg.EntityID),
		Interval: cfg.Interval.String(),
		Catalog:  cfg.Catalog,
	}

	if !opts.NonInteractive {
		if err := promptInit(&answers); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive flag")
		}
	}

	if err := applyInitAnswers(cfg, answers); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# dmontop configuration
# Run 'dmontop' to open the dashboard, 'dmontop fields' to list catalogs.

`
	content := header + string(data)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintln(out, ui.Success("Created %s", configPath))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, ui.Muted("  dmontop                       - Open the dashboard"))
	fmt.Fprintln(out, ui.Muted("  dmontop config set <key> <v>  - Change a setting"))
	return nil
}

// promptInit asks for the settings most people change.
func promptInit(a *initAnswers) error {
	catalogs := make([]huh.Option[string], 0, len(telemetry.PresetNames()))
	for _, name := range telemetry.PresetNames() {
		catalogs = append(catalogs, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GPU entity id").
				Description("Passed to dcgmi dmon --entity-id").
				Value(&a.EntityID).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative integer")
					}
					return nil
				}),
			huh.NewInput().
				Title("Sampling interval").
				Description("Also the redraw period, e.g. 100ms or 1s").
				Value(&a.Interval).
				Validate(func(s string) error {
					d, err := time.ParseDuration(strings.TrimSpace(s))
					if err != nil || d < time.Millisecond {
						return fmt.Errorf("enter a duration of at least 1ms")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Metric catalog").
				Options(catalogs...).
				Value(&a.Catalog),
			huh.NewInput().
				Title("Sample log (optional)").
				Description("CSV path; supports ~, ${HOME}, ${USER}, ${HOST}, ${DATE}").
				Placeholder("~/dmon-${HOST}-${DATE}.csv (leave empty to skip)").
				Value(&a.LogFile),
		),
	)
	return form.Run()
}

// applyInitAnswers copies form answers into cfg.
func applyInitAnswers(cfg *config.Config, a initAnswers) error {
	id, err := strconv.Atoi(strings.TrimSpace(a.EntityID))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid entity id", a.EntityID),
			"Use the GPU index shown by 'dcgmi discovery -l'.")
	}
	interval, err := time.ParseDuration(strings.TrimSpace(a.Interval))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid interval", a.Interval),
			"Try something like 100ms or 1s.")
	}

	cfg.EntityID = id
	cfg.Interval = interval
	if cfg.Poll > cfg.Interval {
		cfg.Poll = cfg.Interval
	}
	cfg.Catalog = a.Catalog
	cfg.LogFile = strings.TrimSpace(a.LogFile)
	return nil
}
