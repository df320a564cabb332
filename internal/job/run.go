package job

import (
	"fmt"
	"log/slog"
	"maps"
	"os"

	"github.com/javajack/xltemplate"
)

// Run executes the job: open the template, make the copies, tile, fill, and
// save. Steps run in that order, each list in file order.
func (j *Job) Run(logger *slog.Logger) error {
	wb, err := xltemplate.Open(j.Template,
		xltemplate.WithLogger(logger),
		xltemplate.WithRecalculateOnOpen(j.Recalculate))
	if err != nil {
		return err
	}
	defer wb.Close()

	for _, c := range j.Copies {
		if err := wb.CopySheet(c.Source, c.Target); err != nil {
			return err
		}
	}

	for _, t := range j.Tiles {
		err := wb.Tile(t.Sheet, t.Rows, t.Cols, xltemplate.WithSpacing(*t.RowSpacing, *t.ColSpacing))
		if err != nil {
			return err
		}
		logger.Info("Tiled sheet", "sheet", t.Sheet, "rows", t.Rows, "cols", t.Cols)
	}

	for i, f := range j.Fills {
		data, err := f.data()
		if err != nil {
			return fmt.Errorf("fills[%d]: %w", i, err)
		}
		opts := []xltemplate.FillOption{
			xltemplate.AtGrid(f.GridRow, f.GridCol),
			xltemplate.WithPrefix(f.Prefix),
		}
		if f.Default != nil {
			opts = append(opts, xltemplate.WithDefault(f.Default))
		}
		if err := wb.Fill(f.Sheet, data, opts...); err != nil {
			return err
		}
		logger.Info("Filled sheet", "sheet", f.Sheet, "grid_row", f.GridRow, "grid_col", f.GridCol, "keys", len(data))
	}

	if err := wb.Save(j.Output); err != nil {
		return err
	}
	logger.Info("Saved workbook", "path", j.Output)
	return nil
}

// data merges the inline data with the mapping built from the source.
func (f *Fill) data() (map[string]any, error) {
	data := make(map[string]any, len(f.Data))
	maps.Copy(data, f.Data)
	if f.Source == nil {
		return data, nil
	}

	rows, err := f.Source.rows()
	if err != nil {
		return nil, err
	}

	var mapping map[string]any
	if f.Source.KeyExpr != "" {
		mapping, err = xltemplate.BuildMappingExpr(rows, f.Source.KeyExpr, f.Source.ValueExpr)
	} else {
		mapping, err = xltemplate.BuildMapping(rows, f.Source.KeyColumns, f.Source.ValueColumn, f.Source.Separator)
	}
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", f.Source.Path, err)
	}
	maps.Copy(data, mapping)
	return data, nil
}

func (s *Source) rows() ([]xltemplate.Row, error) {
	if !s.IsCSV() {
		return xltemplate.ReadSheetRows(s.Path, s.Sheet)
	}
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer file.Close()
	return xltemplate.ReadCSV(file)
}
