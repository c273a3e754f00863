package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/prlens/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	MediumColor   = color.New(color.FgYellow)              // mediumColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// GetColorBucket returns a colored bucket label for console output (table).
func GetColorBucket(bucket schema.RiskBucket) string {
	switch bucket {
	case schema.CriticalBucket:
		return CriticalColor.Sprint(string(bucket))
	case schema.HighBucket:
		return HighColor.Sprint(string(bucket))
	case schema.MediumBucket:
		return MediumColor.Sprint(string(bucket))
	default:
		return LowColor.Sprint(string(bucket))
	}
}

// GetColorPriority returns a colored priority label for console output.
func GetColorPriority(p schema.Priority) string {
	switch p {
	case schema.CriticalPriority:
		return CriticalColor.Sprint(string(p))
	case schema.HighPriority:
		return HighColor.Sprint(string(p))
	case schema.MediumPriority:
		return MediumColor.Sprint(string(p))
	default:
		return LowColor.Sprint(string(p))
	}
}

// TruncateText shortens text to maxLen runes, appending "..." when truncated.
func TruncateText(text string, maxLen int) string {
	if maxLen <= 3 {
		maxLen = 3
	}
	rr := []rune(text)
	if len(rr) <= maxLen {
		return text
	}
	return string(rr[:maxLen-3]) + "..."
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogVerbose logs a progress message to stderr when verbose mode is on.
func LogVerbose(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".prlens_runs.db"
	}
	return homeDir + string(os.PathSeparator) + ".prlens_runs.db"
}

// ValidateDatabaseConnectionString performs basic validation for database
// backends that require a connection string.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		if strings.TrimSpace(connStr) == "" {
			return fmt.Errorf("backend %s requires a connection string", backend)
		}
	case schema.SQLiteBackend, schema.NoneBackend:
		// SQLite falls back to the default file path; none needs nothing.
	default:
		return fmt.Errorf("unsupported backend: %s", backend)
	}
	return nil
}
