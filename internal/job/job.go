// Package job loads and runs template jobs: a template, the sheet copies,
// tiles and fills to apply to it, and where to save the result. Jobs are
// written in YAML or TOML.
package job

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a job file that decodes but cannot be run.
var ErrInvalid = errors.New("invalid job")

// Job is one template run.
type Job struct {
	Template    string `yaml:"template" toml:"template"`
	Output      string `yaml:"output" toml:"output"`
	Recalculate bool   `yaml:"recalculate" toml:"recalculate"`
	Copies      []Copy `yaml:"copies" toml:"copies"`
	Tiles       []Tile `yaml:"tiles" toml:"tiles"`
	Fills       []Fill `yaml:"fills" toml:"fills"`
}

// Copy duplicates a sheet before tiling.
type Copy struct {
	Source string `yaml:"source" toml:"source"`
	Target string `yaml:"target" toml:"target"`
}

// Tile repeats a sheet into a grid. Spacing defaults to 1 when omitted.
type Tile struct {
	Sheet      string `yaml:"sheet" toml:"sheet"`
	Rows       int    `yaml:"rows" toml:"rows"`
	Cols       int    `yaml:"cols" toml:"cols"`
	RowSpacing *int   `yaml:"row_spacing" toml:"row_spacing"`
	ColSpacing *int   `yaml:"col_spacing" toml:"col_spacing"`
}

// Fill writes data into one tile. Inline data and data built from Source are
// merged, with Source winning on duplicate keys.
type Fill struct {
	Sheet   string         `yaml:"sheet" toml:"sheet"`
	GridRow int            `yaml:"grid_row" toml:"grid_row"`
	GridCol int            `yaml:"grid_col" toml:"grid_col"`
	Prefix  string         `yaml:"prefix" toml:"prefix"`
	Default any            `yaml:"default" toml:"default"`
	Data    map[string]any `yaml:"data" toml:"data"`
	Source  *Source        `yaml:"source" toml:"source"`
}

// Source reads tabular rows from a CSV file or a workbook sheet and turns them
// into fill data, either by key columns or by key and value expressions.
type Source struct {
	Path        string   `yaml:"path" toml:"path"`
	Sheet       string   `yaml:"sheet" toml:"sheet"` // workbook sources only
	KeyColumns  []string `yaml:"key_columns" toml:"key_columns"`
	ValueColumn string   `yaml:"value_column" toml:"value_column"`
	Separator   string   `yaml:"separator" toml:"separator"`
	KeyExpr     string   `yaml:"key_expr" toml:"key_expr"`
	ValueExpr   string   `yaml:"value_expr" toml:"value_expr"`
}

// IsCSV reports whether the source is read as CSV rather than as a workbook.
func (s *Source) IsCSV() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ".csv")
}

// Load reads a job file. The format is picked by extension: .toml for TOML,
// .yaml or .yml for YAML. Relative paths in the job resolve against the
// directory of the job file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var j Job
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &j); err != nil {
			return nil, fmt.Errorf("parse job file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &j); err != nil {
			return nil, fmt.Errorf("parse job file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported job file extension %q", ErrInvalid, ext)
	}

	if err := j.validate(); err != nil {
		return nil, err
	}
	j.applyDefaults()
	j.resolve(filepath.Dir(path))
	return &j, nil
}

func (j *Job) validate() error {
	if j.Template == "" {
		return fmt.Errorf("%w: template is required", ErrInvalid)
	}
	if j.Output == "" {
		return fmt.Errorf("%w: output is required", ErrInvalid)
	}
	for i, c := range j.Copies {
		if c.Source == "" || c.Target == "" {
			return fmt.Errorf("%w: copies[%d]: source and target are required", ErrInvalid, i)
		}
	}
	for i, t := range j.Tiles {
		if t.Sheet == "" {
			return fmt.Errorf("%w: tiles[%d]: sheet is required", ErrInvalid, i)
		}
	}
	for i, f := range j.Fills {
		if f.Sheet == "" {
			return fmt.Errorf("%w: fills[%d]: sheet is required", ErrInvalid, i)
		}
		if s := f.Source; s != nil {
			if s.Path == "" {
				return fmt.Errorf("%w: fills[%d]: source path is required", ErrInvalid, i)
			}
			byColumns := len(s.KeyColumns) > 0 && s.ValueColumn != ""
			byExpr := s.KeyExpr != "" && s.ValueExpr != ""
			if byColumns == byExpr {
				return fmt.Errorf("%w: fills[%d]: source needs key_columns and value_column, or key_expr and value_expr",
					ErrInvalid, i)
			}
			if !s.IsCSV() && s.Sheet == "" {
				return fmt.Errorf("%w: fills[%d]: sheet is required for workbook sources", ErrInvalid, i)
			}
		}
	}
	return nil
}

func (j *Job) applyDefaults() {
	for i := range j.Tiles {
		t := &j.Tiles[i]
		if t.RowSpacing == nil {
			t.RowSpacing = intPtr(1)
		}
		if t.ColSpacing == nil {
			t.ColSpacing = intPtr(1)
		}
	}
	for i := range j.Fills {
		f := &j.Fills[i]
		if f.GridRow == 0 {
			f.GridRow = 1
		}
		if f.GridCol == 0 {
			f.GridCol = 1
		}
	}
}

func (j *Job) resolve(dir string) {
	j.Template = resolvePath(dir, j.Template)
	j.Output = resolvePath(dir, j.Output)
	for i := range j.Fills {
		if s := j.Fills[i].Source; s != nil {
			s.Path = resolvePath(dir, s.Path)
		}
	}
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func intPtr(v int) *int {
	return &v
}
