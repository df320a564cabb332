package xltemplate

import (
	"fmt"
	"strings"
)

// Row is one record of tabular data keyed by column name.
type Row map[string]any

// BuildMapping turns rows into a key→value mapping for Fill. The key of each
// row is the text of its keyColumns joined with separator; the value is the
// row's valueColumn. Later rows overwrite earlier rows with the same key.
// A column missing from a row fails with ErrNotFound.
func BuildMapping(rows []Row, keyColumns []string, valueColumn, separator string) (map[string]any, error) {
	m := make(map[string]any, len(rows))
	parts := make([]string, len(keyColumns))
	for i, row := range rows {
		for j, col := range keyColumns {
			v, ok := row[col]
			if !ok {
				return nil, fmt.Errorf("row %d: key column %q: %w", i+1, col, ErrNotFound)
			}
			parts[j] = stringify(v)
		}
		v, ok := row[valueColumn]
		if !ok {
			return nil, fmt.Errorf("row %d: value column %q: %w", i+1, valueColumn, ErrNotFound)
		}
		m[strings.Join(parts, separator)] = v
	}
	return m, nil
}

// BuildMappingExpr is BuildMapping with the key and value computed by
// expressions over each row's columns, e.g. key `Region + "_" + Year` and
// value `Sales * 1000`. A nil key result maps to the empty string.
func BuildMappingExpr(rows []Row, keyExpr, valueExpr string) (map[string]any, error) {
	if keyExpr == "" || valueExpr == "" {
		return nil, fmt.Errorf("key and value expressions are required")
	}
	ev := newEvaluator()
	m := make(map[string]any, len(rows))
	for i, row := range rows {
		key, err := ev.Evaluate(keyExpr, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: key: %w", i+1, err)
		}
		value, err := ev.Evaluate(valueExpr, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: value: %w", i+1, err)
		}
		m[stringify(key)] = value
	}
	return m, nil
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}
