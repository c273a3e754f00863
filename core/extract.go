package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/schema"
)

// Extract flattens raw records onto the schema, producing one
// default-filled row per record. A single malformed field never discards a
// row; a record is dropped only when its identity field is unrecoverable,
// and the dropped count is reported on the table.
func Extract(records []map[string]any, def *schema.FeatureSchema) *schema.FeatureTable {
	table := &schema.FeatureTable{Schema: def, Rows: make([]schema.FeatureRow, 0, len(records))}

	for _, rec := range records {
		row, ok := extractRow(rec, def)
		if !ok {
			table.Dropped++
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	// Derived fields run after primary extraction so their inputs are
	// always present and default-filled.
	for i := range table.Rows {
		for _, d := range def.Derived {
			v := d.Compute(&table.Rows[i])
			if !isFinite(v) {
				v = 0
			}
			table.Rows[i].Num[d.Name] = v
		}
	}

	return table
}

// extractRow projects one record. The bool result is false only when the
// identity field cannot be recovered.
func extractRow(rec map[string]any, def *schema.FeatureSchema) (schema.FeatureRow, bool) {
	row := schema.FeatureRow{
		Num:       make(map[string]float64),
		Cat:       make(map[string]string),
		Defaulted: make(map[string]bool),
	}

	for _, f := range def.Fields {
		raw, resolved := ResolvePath(rec, f.Path)

		value, err := coerceField(raw, resolved, f)
		if err != nil {
			if f.Identity {
				return row, false
			}
			// Recovered per SchemaError semantics: substitute the default.
			value = defaultValue(f)
			row.Defaulted[f.Name] = true
		}

		switch v := value.(type) {
		case float64:
			row.Num[f.Name] = v
		case string:
			row.Cat[f.Name] = v
		}
		if f.Identity {
			row.ID = identityString(value)
		}
	}

	return row, true
}

// coerceField reads the raw value according to the declared field type.
func coerceField(raw any, resolved bool, f schema.Field) (any, error) {
	if !resolved && f.Type != schema.PresentField {
		return nil, &contract.SchemaError{Field: f.Name, Path: f.Path, Reason: "path not found"}
	}

	switch f.Type {
	case schema.NumberField:
		v, ok := toFloat(raw)
		if !ok || !isFinite(v) {
			return nil, &contract.SchemaError{Field: f.Name, Path: f.Path, Reason: "not a number"}
		}
		return v, nil

	case schema.StringField:
		s, ok := raw.(string)
		if !ok {
			return nil, &contract.SchemaError{Field: f.Name, Path: f.Path, Reason: "not a string"}
		}
		return s, nil

	case schema.BoolField:
		b, ok := raw.(bool)
		if !ok {
			return nil, &contract.SchemaError{Field: f.Name, Path: f.Path, Reason: "not a bool"}
		}
		return boolToNum(b), nil

	case schema.LengthField:
		s, ok := raw.(string)
		if !ok {
			return nil, &contract.SchemaError{Field: f.Name, Path: f.Path, Reason: "not a string"}
		}
		return float64(len(s)), nil

	case schema.HourField, schema.WeekdayField:
		s, ok := raw.(string)
		if !ok {
			return nil, &contract.SchemaError{Field: f.Name, Path: f.Path, Reason: "not a timestamp"}
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, &contract.SchemaError{Field: f.Name, Path: f.Path, Reason: "unparsable timestamp"}
		}
		if f.Type == schema.HourField {
			return float64(t.Hour()), nil
		}
		// Monday = 0, matching upstream weekday encoding.
		return float64((int(t.Weekday()) + 6) % 7), nil

	case schema.PresentField:
		return boolToNum(resolved), nil

	default:
		return nil, &contract.SchemaError{Field: f.Name, Path: f.Path, Reason: fmt.Sprintf("unknown field type %q", f.Type)}
	}
}

// defaultValue materializes the declared default in the row representation.
func defaultValue(f schema.Field) any {
	switch f.Type {
	case schema.StringField:
		if s, ok := f.Default.(string); ok {
			return s
		}
		return ""
	case schema.BoolField, schema.PresentField:
		if b, ok := f.Default.(bool); ok {
			return boolToNum(b)
		}
		return 0.0
	default:
		if v, ok := toFloat(f.Default); ok && isFinite(v) {
			return v
		}
		return 0.0
	}
}

// identityString renders the identity value as a stable row ID.
func identityString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toFloat coerces JSON-decoded numeric shapes to float64.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case bool:
		return boolToNum(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// parseTimestamp accepts RFC3339 and a few close variants seen upstream.
func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func boolToNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
