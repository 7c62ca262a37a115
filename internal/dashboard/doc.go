// Package dashboard implements the live dcgmi dmon telemetry TUI.
//
// The dashboard shows one panel per metric: a bar chart of the recent history
// window on the left and percentile stats on the right.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: holds the Driver, the line source, layout and the cached frame
//   - Update: processes poll ticks, key presses and window resizes
//   - View: returns the cached frame wrapped in a header and footer
//
// # Render cycle
//
// A pollMsg fires every poll interval (default 10ms). Each iteration:
//
//  1. Drains up to DefaultMaxLinesPerIteration ready lines from the source
//  2. Parses each line; samples go into history and to the sample log sink
//  3. If the render interval (default 100ms) has passed since the last
//     frame, recomputes every panel and caches the result
//
// Sampling and drawing are decoupled: history receives every sample even
// when several arrive between frames, and frames are drawn at the render
// interval even when no new sample arrived.
//
// # Key bindings
//
//	q, Ctrl+C   - Quit
//	?           - Toggle help
package dashboard
