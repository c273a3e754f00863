package runstore

import (
	"fmt"

	"github.com/huangsam/prlens/schema"
)

// PrintRunStatus prints run store status information.
func PrintRunStatus(status schema.RunStoreStatus) {
	fmt.Printf("Run Backend: %s\n", status.Backend)
	if status.Location != "" {
		fmt.Printf("Location: %s\n", status.Location)
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	fmt.Printf("Total Risk Score Rows: %d\n", status.TotalRows)
	if status.LatestRun != nil {
		fmt.Printf("Latest Run: %s\n", status.LatestRun.Format("2006-01-02 15:04:05"))
	}
}

// PrintRunHistory prints the most recent runs, newest first.
func PrintRunHistory(runs []schema.RunRecord) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	for _, r := range runs {
		line := fmt.Sprintf("#%d %s kind=%s rows=%d dropped=%d",
			r.RunID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Kind, r.TotalRows, r.Dropped)
		if r.DurationMs != nil {
			line += fmt.Sprintf(" duration=%dms", *r.DurationMs)
		} else {
			line += " (incomplete)"
		}
		fmt.Println(line)
	}
}
