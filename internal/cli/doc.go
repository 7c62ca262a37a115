// Package cli implements the dmontop command-line interface.
//
// The root command runs the dashboard. Its flags override values from the
// config file (.dmontop.yaml, found by walking up from the working
// directory, or ~/.config/dmontop/config.yaml), and the merged config is
// validated before anything is started.
//
// # Command Structure
//
//	dmontop                     - Live dashboard for one GPU
//	dmontop init                - Create .dmontop.yaml
//	dmontop fields              - List metric catalogs and field ids
//	dmontop config set <k> <v>  - Edit one config key in place
//	dmontop completion <shell>  - Shell completion script
//	dmontop version             - Build information
//
// # Run Sequence
//
//  1. Load config and apply flags
//  2. Refuse to start unless stdout is a terminal
//  3. Open the sample log (if any), then start dcgmi or open --input
//  4. Run the Bubble Tea program and the optional metrics server in one
//     errgroup; quitting the dashboard stops the server
//  5. Stop the source, then drain the sample log with a short deadline
//
// Setup failures are returned as structured errors and printed by Execute,
// which exits with status 1.
package cli
