package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/dmontop/internal/config"
	"github.com/rileyhilliard/dmontop/internal/errors"
	"github.com/rileyhilliard/dmontop/internal/telemetry"
	"github.com/rileyhilliard/dmontop/internal/ui"
)

// Command-specific flags
var (
	initForce          bool
	initNonInteractive bool
	configSetPath      string
)

// initCmd creates a new .dmontop.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .dmontop.yaml configuration",
	Long: `Initialize a new dmontop configuration file.

Creates a .dmontop.yaml file in the current directory. Prompts for the GPU,
sampling interval, metric catalog and an optional sample log.

Examples:
  dmontop init
  dmontop init --force
  dmontop init --non-interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
			Out:            cmd.OutOrStdout(),
		})
	},
}

// fieldsCmd lists the metric presets
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List metric catalogs and their dcgmi field ids",
	Long: `List every metric catalog preset with the dcgmi field ids it requests.

Use a preset name with --catalog or the catalog config key.

Examples:
  dmontop fields
  dmontop --catalog activity+memory`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeFields(cmd.OutOrStdout())
	},
}

// configCmd groups config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or edit the configuration file",
}

// configSetCmd sets a single key, keeping comments and layout
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the configuration file",
	Long: `Set one top-level key in the configuration file.

The edited file is validated before it is written, so an invalid value never
replaces a working config. Comments and key order are preserved.

Keys: ` + strings.Join(config.SettableKeys(), ", ") + `

Examples:
  dmontop config set interval 250ms
  dmontop config set percentiles 50,95,99.9
  dmontop config set log_file '~/dmon-${DATE}.csv'`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.SettableKeys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSet(cmd.OutOrStdout(), configSetPath, args[0], args[1])
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for dmontop.

Examples:
  # Bash
  dmontop completion bash > /etc/bash_completion.d/dmontop

  # Zsh
  dmontop completion zsh > "${fpath[1]}/_dmontop"

  # Fish
  dmontop completion fish > ~/.config/fish/completions/dmontop.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

// writeFields prints every preset as a table of metrics.
func writeFields(out io.Writer) error {
	for i, name := range telemetry.PresetNames() {
		catalog, err := telemetry.Preset(name)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (-e %s)\n", name, catalog.FieldList())

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, m := range catalog {
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\n", m.Name, m.FieldID, m.Kind, m.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// configSet updates key in the config file at path, or the discovered one.
func configSet(out io.Writer, path, key, value string) error {
	if path == "" {
		found, err := config.Find("")
		if err != nil {
			return err
		}
		if found == "" {
			return errors.New(errors.ErrConfig,
				"No config file found",
				"Run 'dmontop init' first, or pass --file.")
		}
		path = found
	}

	if err := config.SetValue(path, key, value); err != nil {
		if errors.IsCode(err, errors.ErrConfig) {
			return err
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't set %s in %s", key, path),
			"Run 'dmontop config set --help' for the accepted keys.")
	}
	fmt.Fprintln(out, ui.Success("Set %s = %s in %s", key, value, path))
	return nil
}

func init() {
	AddRunFlags(rootCmd, runFlags)

	// init command flags
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and write defaults")

	// config set flags
	configSetCmd.Flags().StringVar(&configSetPath, "file", "", "config file to edit (default: the discovered one)")
	configCmd.AddCommand(configSetCmd)

	// Register all commands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}
