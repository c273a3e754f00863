package core

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/huangsam/prlens/internal/contract"
)

// LoadSnapshot reads and parses one input JSON snapshot. This is the only
// place where an error surfaces as a user-visible failure; everything past
// this boundary degrades instead of aborting.
func LoadSnapshot(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read input file: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("cannot parse input file: %w", err)
	}
	return data, nil
}

// ResolvePath walks a dot-separated path through nested maps. The boolean
// reports whether the full path resolved to a non-null value.
func ResolvePath(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var cur any = data
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// ExtractRecords pulls the record sequence at the schema's entity path.
// Arrays are returned in order; keyed maps are flattened to records with
// the key injected under keyField, sorted by key for determinism. A missing
// or empty entity yields a MissingDataError.
func ExtractRecords(data map[string]any, entityPath, keyField string) ([]map[string]any, error) {
	raw, ok := ResolvePath(data, entityPath)
	if !ok {
		return nil, &contract.MissingDataError{Path: entityPath}
	}

	switch v := raw.(type) {
	case []any:
		records := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				records = append(records, m)
			}
		}
		if len(records) == 0 {
			return nil, &contract.MissingDataError{Path: entityPath}
		}
		return records, nil

	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		records := make([]map[string]any, 0, len(keys))
		for _, k := range keys {
			m, ok := v[k].(map[string]any)
			if !ok {
				continue
			}
			rec := make(map[string]any, len(m)+1)
			for kk, vv := range m {
				rec[kk] = vv
			}
			if keyField != "" {
				rec[keyField] = k
			}
			records = append(records, rec)
		}
		if len(records) == 0 {
			return nil, &contract.MissingDataError{Path: entityPath}
		}
		return records, nil

	default:
		return nil, &contract.MissingDataError{Path: entityPath}
	}
}
