package xltemplate

import "log/slog"

// Options holds configuration for a Workbook.
type Options struct {
	logger            *slog.Logger
	recalculateOnOpen bool
}

func defaultOptions() *Options {
	return &Options{
		logger: slog.New(slog.DiscardHandler),
	}
}

// Option configures a Workbook.
type Option func(*Options)

// WithLogger sets the logger used for debug output (default: discard).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecalculateOnOpen tells Excel to recalculate all formulas when the file is opened.
// Formulas written by Tile carry no cached value until then.
func WithRecalculateOnOpen(recalc bool) Option {
	return func(o *Options) { o.recalculateOnOpen = recalc }
}

// TileOptions holds configuration for a single Tile call.
type TileOptions struct {
	rowSpacing int
	colSpacing int
}

func defaultTileOptions() *TileOptions {
	return &TileOptions{rowSpacing: 1, colSpacing: 1}
}

// TileOption configures Tile.
type TileOption func(*TileOptions)

// WithSpacing sets the number of blank rows and columns between tiles (default: 1, 1).
func WithSpacing(rows, cols int) TileOption {
	return func(o *TileOptions) {
		o.rowSpacing = rows
		o.colSpacing = cols
	}
}

// FillOptions holds configuration for a single Fill call.
type FillOptions struct {
	gridRow      int
	gridCol      int
	prefix       string
	defaultValue any
	hasDefault   bool
}

func defaultFillOptions() *FillOptions {
	return &FillOptions{gridRow: 1, gridCol: 1}
}

// FillOption configures Fill.
type FillOption func(*FillOptions)

// AtGrid selects the tile to fill by 1-based grid row and column (default: 1, 1).
func AtGrid(row, col int) FillOption {
	return func(o *FillOptions) {
		o.gridRow = row
		o.gridCol = col
	}
}

// WithPrefix restricts filling to labels that start with prefix. The prefix is
// stripped from the label before the data lookup.
func WithPrefix(prefix string) FillOption {
	return func(o *FillOptions) { o.prefix = prefix }
}

// WithDefault writes value into label cells whose key is missing from the data.
// Without it such cells are left untouched.
func WithDefault(value any) FillOption {
	return func(o *FillOptions) {
		o.defaultValue = value
		o.hasDefault = true
	}
}
