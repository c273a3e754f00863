package core

import (
	"math"
	"sort"

	"github.com/huangsam/prlens/schema"
	"gonum.org/v1/gonum/stat"
)

// Anomaly detection constants.
const (
	iqrFenceMultiplier = 1.5
	highSeveritySigma  = 2.5
	minAnomalyRows     = 3
)

// DetectAnomalies flags statistically unusual rows per metric column using
// the IQR fence method. Metrics with fewer than minAnomalyRows rows or zero
// variance produce no anomalies, avoiding spurious detection on degenerate
// input. Each metric is evaluated independently.
func DetectAnomalies(table *schema.FeatureTable, metrics []string) []schema.Anomaly {
	anomalies := []schema.Anomaly{}

	for _, metric := range metrics {
		values := table.Column(metric)
		if len(values) < minAnomalyRows {
			continue
		}

		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)

		mean, std := stat.MeanStdDev(sorted, nil)
		if std == 0 || math.IsNaN(std) {
			continue
		}

		q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
		q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
		iqr := q3 - q1
		low := q1 - iqrFenceMultiplier*iqr
		high := q3 + iqrFenceMultiplier*iqr

		for i, v := range values {
			if v >= low && v <= high {
				continue
			}
			severity := schema.MediumSeverity
			if math.Abs(v-mean) > highSeveritySigma*std {
				severity = schema.HighSeverity
			}
			anomalies = append(anomalies, schema.Anomaly{
				Row:      i,
				ID:       table.Rows[i].ID,
				Metric:   metric,
				Value:    v,
				Low:      low,
				High:     high,
				Severity: severity,
			})
		}
	}

	return anomalies
}
