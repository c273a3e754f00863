// Package jsonsafe converts analysis result trees into pure JSON primitives
// before serialization. Numeric edge cases produced by the statistics layer
// (NaN, infinities) and non-primitive types (timestamps, typed strings) are
// coerced so that encoding never fails on a valid result.
package jsonsafe

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/huangsam/prlens/internal/contract"
)

// Sanitize deep-walks a value and returns an equivalent tree built only from
// JSON primitives: nil, bool, string, float64, []any, map[string]any.
// NaN and infinite floats become nil. time.Time becomes RFC 3339. Anything
// with no JSON representation falls back to its Stringer form, or nil.
func Sanitize(v any) any {
	return sanitizeValue(reflect.ValueOf(v))
}

// Marshal sanitizes and encodes a value with two-space indentation.
func Marshal(v any) ([]byte, error) {
	out, err := json.MarshalIndent(Sanitize(v), "", "  ")
	if err != nil {
		return nil, &contract.SerializationError{Detail: err.Error()}
	}
	return out, nil
}

// WriteFile sanitizes a value and writes it as indented JSON, creating
// parent directories as needed.
func WriteFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func sanitizeValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}

	// time.Time is a struct but must serialize as a string.
	if rv.Type() == reflect.TypeOf(time.Time{}) && rv.CanInterface() {
		t := rv.Interface().(time.Time)
		if t.IsZero() {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return sanitizeValue(rv.Elem())

	case reflect.Bool:
		return rv.Bool()

	case reflect.String:
		return rv.String()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = sanitizeValue(rv.Index(i))
		}
		return out

	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = sanitizeValue(iter.Value())
		}
		return out

	case reflect.Struct:
		return sanitizeStruct(rv)

	default:
		return stringerOrNil(rv)
	}
}

// sanitizeStruct walks exported fields honoring json tags, including
// omitempty, "-" and embedded struct inlining.
func sanitizeStruct(rv reflect.Value) map[string]any {
	out := make(map[string]any)
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		fv := rv.Field(i)

		// Unexported embedded structs still contribute their exported
		// fields, matching encoding/json.
		embedded := field.Anonymous && fv.Kind() == reflect.Struct
		if !field.IsExported() && !embedded {
			continue
		}

		name, omitempty, skip := parseJSONTag(field)
		if skip {
			continue
		}

		if embedded && name == "" {
			inner := sanitizeStruct(fv)
			for k, v := range inner {
				out[k] = v
			}
			continue
		}
		if name == "" {
			name = field.Name
		}
		if omitempty && fv.IsZero() {
			continue
		}
		out[name] = sanitizeValue(fv)
	}
	return out
}

func parseJSONTag(field reflect.StructField) (name string, omitempty, skip bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", false, true
	}
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

// mapKey renders any map key as a string. Typed string keys come out as
// their underlying string; everything else goes through fmt.
func mapKey(rv reflect.Value) string {
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(rv.Interface())
}

func stringerOrNil(rv reflect.Value) any {
	if !rv.CanInterface() {
		return nil
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return nil
}
