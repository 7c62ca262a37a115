package ui

// Status symbols for one-line command output.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolLive    = "◉"
	SymbolEnded   = "◌"
)
