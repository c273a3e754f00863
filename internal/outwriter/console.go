package outwriter

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Console rendering limits.
const (
	maxTableRows    = 10 // rows shown in the top-risk table
	maxAnomalyLines = 5  // anomaly detail lines before eliding
	maxIDWidth      = 40 // row ID truncation in tables
	barWidth        = 40 // width of the distribution bar chart
)

// writeSummary renders the full console summary for one report.
func writeSummary(w io.Writer, report *schema.InsightReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	md := report.Metadata
	fmt.Fprintf(w, "Insights for %s report (%s)\n", md.ReportKind, md.Status)
	fmt.Fprintf(w, "Analyzed %d rows (%d dropped) in %v\n\n", md.TotalAnalyzed, md.DroppedRows, duration.Round(time.Millisecond))

	if md.TotalAnalyzed == 0 {
		if md.Error != "" {
			fmt.Fprintf(w, "Nothing to report: %s\n", md.Error)
		} else {
			fmt.Fprintln(w, "Nothing to report.")
		}
		return nil
	}

	writeClusterSection(w, report, fmtFloat)
	if err := writeRiskTable(w, report, cfg, fmtFloat); err != nil {
		return err
	}
	if cfg.Visualize {
		writeDistributionChart(w, report.Risk.Distribution, cfg)
	}
	writeAnomalySection(w, report.Anomalies, fmtFloat)
	writeRecommendationSection(w, report.Recommendations, cfg)
	return nil
}

// writeClusterSection prints one line per cluster plus the model summary.
func writeClusterSection(w io.Writer, report *schema.InsightReport, fmtFloat func(float64) string) {
	c := report.Clustering
	if len(c.Clusters) == 0 {
		return
	}
	mode := "requested"
	if c.AutoK {
		mode = "auto-selected"
	}
	fmt.Fprintf(w, "Clusters: %d (%s, silhouette %s)\n", c.OptimalK, mode, fmtFloat(c.Silhouette))
	for _, cl := range c.Clusters {
		fmt.Fprintf(w, "  [%d] %-24s size=%d flagged=%.0f%%\n",
			cl.ID, cl.Label, cl.Size, cl.FlaggedRate*100)
	}
	fmt.Fprintln(w)
}

// writeRiskTable prints the highest-scoring rows as a bordered table.
func writeRiskTable(w io.Writer, report *schema.InsightReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	scores := make([]schema.RiskScore, len(report.Risk.Scores))
	copy(scores, report.Risk.Scores)
	if len(scores) == 0 {
		return nil
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Value > scores[j].Value })
	if len(scores) > maxTableRows {
		scores = scores[:maxTableRows]
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "ID", "Score", "Level"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	idWidth := min(maxIDWidth, maxTableWidth(cfg)/2)
	var data [][]string
	for i, s := range scores {
		level := string(s.Bucket)
		if cfg.UseColors {
			level = contract.GetColorBucket(s.Bucket)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(s.ID, idWidth),
			fmtFloat(s.Value),
			level,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Showing top %d of %d rows by risk (%d high-risk)\n\n",
		len(scores), len(report.Risk.Scores), len(report.Risk.HighRisk))
	return nil
}

// writeDistributionChart renders the bucket distribution as ASCII bars.
func writeDistributionChart(w io.Writer, dist map[schema.RiskBucket]int, cfg *contract.Config) {
	total := 0
	for _, n := range dist {
		total += n
	}
	if total == 0 {
		return
	}
	fmt.Fprintln(w, "Risk distribution:")
	for _, bucket := range []schema.RiskBucket{schema.LowBucket, schema.MediumBucket, schema.HighBucket, schema.CriticalBucket} {
		n := dist[bucket]
		filled := n * barWidth / total
		label := string(bucket)
		if cfg.UseColors {
			label = contract.GetColorBucket(bucket)
		}
		fmt.Fprintf(w, "  %-10s %s %d\n", label, strings.Repeat("#", filled), n)
	}
	fmt.Fprintln(w)
}

// writeAnomalySection prints a short digest of detected outliers.
func writeAnomalySection(w io.Writer, anomalies []schema.Anomaly, fmtFloat func(float64) string) {
	if len(anomalies) == 0 {
		return
	}
	fmt.Fprintf(w, "Anomalies: %d\n", len(anomalies))
	shown := anomalies
	if len(shown) > maxAnomalyLines {
		shown = shown[:maxAnomalyLines]
	}
	for _, a := range shown {
		fmt.Fprintf(w, "  %s %s=%s (expected %s..%s, %s)\n",
			contract.TruncateText(a.ID, maxIDWidth), a.Metric,
			fmtFloat(a.Value), fmtFloat(a.Low), fmtFloat(a.High), a.Severity)
	}
	if len(anomalies) > len(shown) {
		fmt.Fprintf(w, "  ... and %d more\n", len(anomalies)-len(shown))
	}
	fmt.Fprintln(w)
}

// writeRecommendationSection prints prioritized suggestions.
func writeRecommendationSection(w io.Writer, recs []schema.Recommendation, cfg *contract.Config) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return
	}
	fmt.Fprintln(w, "Recommendations:")
	for _, r := range recs {
		priority := string(r.Priority)
		if cfg.UseColors {
			priority = contract.GetColorPriority(r.Priority)
		}
		fmt.Fprintf(w, "  [%s] %s: %s\n", priority, r.Category, r.Suggestion)
	}
}

// createFormatter builds the float formatter used across summary sections.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}
