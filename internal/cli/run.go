package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/rileyhilliard/dmontop/internal/config"
	"github.com/rileyhilliard/dmontop/internal/dashboard"
	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/rileyhilliard/dmontop/internal/logger"
	"github.com/rileyhilliard/dmontop/internal/metrics"
	"github.com/rileyhilliard/dmontop/internal/samplelog"
	"github.com/rileyhilliard/dmontop/internal/source"
	"github.com/rileyhilliard/dmontop/internal/telemetry"
)

const (
	// logDrainTimeout bounds how long quitting waits for queued log rows.
	logDrainTimeout = 2 * time.Second

	// debugLogFile receives standard log output when DMONTOP_DEBUG is set.
	debugLogFile = "dmontop-debug.log"
)

// RunFlags holds the dashboard flags. Zero values mean "use the config file".
type RunFlags struct {
	ConfigPath  string
	IntervalMS  int
	LogFile     string
	History     int
	Catalog     string
	EntityID    int
	Input       string
	MetricsAddr string
}

var runFlags = &RunFlags{}

// AddRunFlags registers the dashboard flags on cmd.
func AddRunFlags(cmd *cobra.Command, f *RunFlags) {
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "config file (default: search for "+config.ConfigFileName+")")
	cmd.Flags().IntVarP(&f.IntervalMS, "interval", "i", 100, "sampling and redraw interval in milliseconds")
	cmd.Flags().StringVarP(&f.LogFile, "log", "l", "", "write every sample to this CSV file")
	cmd.Flags().IntVar(&f.History, "history", 0, "samples kept per metric (default from config, 300)")
	cmd.Flags().StringVar(&f.Catalog, "catalog", "", "metric preset (see 'dmontop fields')")
	cmd.Flags().IntVar(&f.EntityID, "entity-id", 0, "GPU entity id passed to dcgmi")
	cmd.Flags().StringVar(&f.Input, "input", "", "replay a captured dmon stream from a file, or - for stdin")
	cmd.Flags().StringVar(&f.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port")
}

// resolveConfig loads the config file and applies the flags the user set.
func resolveConfig(flags *pflag.FlagSet, f *RunFlags) (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(f.ConfigPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("interval") {
		cfg.Interval = time.Duration(f.IntervalMS) * time.Millisecond
		if cfg.Poll > cfg.Interval && cfg.Interval > 0 {
			cfg.Poll = cfg.Interval
		}
	}
	if flags.Changed("log") {
		cfg.LogFile = f.LogFile
	}
	if flags.Changed("history") {
		cfg.History = f.History
	}
	if flags.Changed("catalog") {
		cfg.Catalog = f.Catalog
	}
	if flags.Changed("entity-id") {
		cfg.EntityID = f.EntityID
		// A configured tag names a specific GPU; a new id needs the derived one.
		cfg.EntityTag = ""
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = f.MetricsAddr
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runCommand is the implementation called by the root command.
func runCommand(cmd *cobra.Command, f *RunFlags) error {
	cfg, err := resolveConfig(cmd.Flags(), f)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrTerminal,
			"stdout is not a terminal",
			"dmontop draws a full-screen dashboard. Run it in an interactive terminal without redirecting its output.")
	}

	return runDashboard(cmd.Context(), cfg, f.Input)
}

// session is everything runDashboard starts and must release.
type session struct {
	stream    *source.Stream
	samples   *samplelog.Logger
	pipeline  *metrics.Pipeline
	catalog   telemetry.Catalog
	log       logger.Logger
}

// startSession opens the sample log and the line source. On error anything
// already started is released.
func startSession(cfg *config.Config, input string, diag logger.Logger) (*session, error) {
	catalog, err := cfg.Metrics()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Unknown metric catalog",
			"Run 'dmontop fields' to list the presets.")
	}

	s := &session{
		pipeline: metrics.NewPipeline(),
		catalog:  catalog,
		log:      diag,
	}

	if cfg.LogFile != "" {
		path := config.ExpandPath(cfg.LogFile, time.Now())
		s.samples, err = samplelog.Open(path, catalog,
			samplelog.WithLogger(logger.Named(diag, "samplelog")),
			samplelog.WithMetrics(s.pipeline))
		if err != nil {
			return nil, err
		}
		diag.Info("logging samples to %s", path)
	}

	if input != "" {
		s.stream, err = source.OpenInput(input, os.Stdin)
	} else {
		s.stream, err = source.StartDmon(source.Dmon{
			Binary:   cfg.Dcgmi,
			Fields:   catalog.FieldList(),
			EntityID: cfg.EntityID,
			Interval: cfg.Interval,
		}, logger.Named(diag, "source"))
	}
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// sink returns the sample log as a dashboard sink, or nil when logging is off.
func (s *session) sink() dashboard.Sink {
	if s.samples == nil {
		return nil
	}
	return s.samples
}

// close stops the source first so no record arrives after the log closes.
func (s *session) close() {
	if s.stream != nil {
		if err := s.stream.Stop(); err != nil {
			s.log.Debug("stopping source: %v", err)
		}
	}
	if s.samples != nil {
		ctx, cancel := context.WithTimeout(context.Background(), logDrainTimeout)
		defer cancel()
		if err := s.samples.Close(ctx); err != nil {
			s.log.Warn("sample log closed with %d records unwritten: %v", s.samples.Pending(), err)
		}
	}
}

// runDashboard runs the TUI until the user quits, alongside the optional
// metrics server.
func runDashboard(ctx context.Context, cfg *config.Config, input string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	applyColor(cfg.Color)

	restoreLog, err := redirectLog()
	if err != nil {
		return err
	}

	diag := logger.NewEnvLogger("[dmontop]")
	s, err := startSession(cfg, input, diag)
	if err != nil {
		restoreLog()
		return err
	}
	defer s.close()
	// Runs before close, so drain warnings reach the restored terminal.
	defer restoreLog()

	driver, err := dashboard.NewDriver(dashboard.Options{
		Catalog:     s.catalog,
		Tag:         cfg.Tag(),
		History:     cfg.History,
		Interval:    cfg.Interval,
		Percentiles: cfg.Percentiles,
		ActiveOnly:  cfg.ActiveOnly,
	}, s.sink(), s.pipeline)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot build the dashboard",
			"Check the entity tag and catalog in your config.")
	}

	model := dashboard.NewModel(driver, s.stream,
		dashboard.WithPoll(cfg.Poll),
		dashboard.WithLogger(logger.Named(diag, "dashboard")))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			if err := s.pipeline.Serve(gctx, cfg.MetricsAddr); err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					fmt.Sprintf("Metrics server on %s failed", cfg.MetricsAddr),
					"Pick a free host:port for --metrics-addr or leave it empty.")
			}
			return nil
		})
	}

	g.Go(func() error {
		// The metrics server follows the TUI down.
		defer cancel()

		opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(gctx)}
		if input == "-" {
			// Samples arrive on stdin, so keys must come from the terminal.
			opts = append(opts, tea.WithInputTTY())
		}
		program := tea.NewProgram(model, opts...)
		if _, err := program.Run(); err != nil {
			if stderrors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
				// Cancelled by a failing sibling; its error is the one to report.
				return nil
			}
			return errors.WrapWithCode(err, errors.ErrTerminal,
				"Dashboard failed",
				"Make sure dmontop runs in an interactive terminal.")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	diag.Info("exiting after %d samples", driver.Accepted())
	return nil
}

// redirectLog keeps standard log output off the dashboard. With
// DMONTOP_DEBUG set it goes to debugLogFile, otherwise it is discarded.
// The returned func puts the previous output and prefix back.
func redirectLog() (func(), error) {
	prevOut, prevPrefix := log.Writer(), log.Prefix()
	if !logger.DebugEnabled() {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(prevOut) }, nil
	}
	f, err := tea.LogToFile(debugLogFile, "dmontop")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLog,
			"Cannot open the debug log",
			fmt.Sprintf("Unset %s or make %s writable.", logger.DebugEnv, debugLogFile))
	}
	return func() {
		log.SetOutput(prevOut)
		log.SetPrefix(prevPrefix)
		f.Close()
	}, nil
}

// applyColor sets the lipgloss color profile for the configured mode.
func applyColor(mode string) {
	switch mode {
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	default:
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	}
}
