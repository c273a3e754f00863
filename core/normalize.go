package core

import (
	"math"

	"github.com/huangsam/prlens/schema"
)

// Normalize rescales the configured numeric columns to zero mean and unit
// variance, returning a new table with per-column scaler parameters
// retained for traceability. Columns with zero variance come out all-zero.
// Non-finite inputs are coerced to 0 before scaling. The source table is
// never mutated.
func Normalize(table *schema.FeatureTable, columns []string) *schema.NormalizedTable {
	out := &schema.NormalizedTable{
		Schema:  table.Schema,
		Rows:    make([]schema.FeatureRow, len(table.Rows)),
		Columns: columns,
		Params:  make(map[string]schema.ScalerParams, len(columns)),
	}

	for i, row := range table.Rows {
		out.Rows[i] = copyRow(row)
	}

	n := float64(len(table.Rows))
	if n == 0 {
		return out
	}

	for _, col := range columns {
		values := make([]float64, len(out.Rows))
		for i := range out.Rows {
			v := out.Rows[i].Num[col]
			if !isFinite(v) {
				v = 0
			}
			values[i] = v
		}

		var sum float64
		for _, v := range values {
			sum += v
		}
		mean := sum / n

		var sq float64
		for _, v := range values {
			d := v - mean
			sq += d * d
		}
		std := math.Sqrt(sq / n)

		out.Params[col] = schema.ScalerParams{Mean: mean, Std: std}

		for i, v := range values {
			if std == 0 {
				out.Rows[i].Num[col] = 0
			} else {
				out.Rows[i].Num[col] = (v - mean) / std
			}
		}
	}

	return out
}

func copyRow(row schema.FeatureRow) schema.FeatureRow {
	cp := schema.FeatureRow{
		ID:        row.ID,
		Num:       make(map[string]float64, len(row.Num)),
		Cat:       make(map[string]string, len(row.Cat)),
		Defaulted: make(map[string]bool, len(row.Defaulted)),
	}
	for k, v := range row.Num {
		cp.Num[k] = v
	}
	for k, v := range row.Cat {
		cp.Cat[k] = v
	}
	for k, v := range row.Defaulted {
		cp.Defaulted[k] = v
	}
	return cp
}
