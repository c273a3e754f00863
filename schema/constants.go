package schema

// Custom string types for type safety.
type (
	// ReportKind identifies which report snapshot an analysis run consumes.
	ReportKind string

	// FieldType declares how a schema field is read out of a raw record.
	FieldType string

	// RiskBucket represents the categorical bucket of a risk score.
	RiskBucket string

	// Severity represents the severity of a detected anomaly.
	Severity string

	// Priority represents the priority of a recommendation.
	Priority string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All report kinds supported.
const (
	StaleKind     ReportKind = "stale"     // abandoned/stale PR audit
	LeadTimeKind  ReportKind = "leadtime"  // commit-to-merge lead time tracker
	CollabKind    ReportKind = "collab"    // developer collaboration matrix
	ReadinessKind ReportKind = "readiness" // merge readiness quality rollups
	SentimentKind ReportKind = "sentiment" // comment sentiment and conflict detection
	LifecycleKind ReportKind = "lifecycle" // PR lifecycle timing analysis
)

// All field types supported by the extractor.
const (
	NumberField  FieldType = "number"  // numeric value at the source path
	StringField  FieldType = "string"  // categorical string value
	BoolField    FieldType = "bool"    // boolean coerced to 0/1
	LengthField  FieldType = "length"  // length of the string at the source path
	HourField    FieldType = "hour"    // hour-of-day of an RFC3339 timestamp
	WeekdayField FieldType = "weekday" // weekday (0=Monday) of an RFC3339 timestamp
	PresentField FieldType = "present" // 1 when the path resolves to a non-null value
)

// Risk buckets with fixed cut points. Boundaries are inclusive-lower and
// exclusive-upper except Critical, which includes 100.
const (
	LowBucket      RiskBucket = "Low"      // [0, 25)
	MediumBucket   RiskBucket = "Medium"   // [25, 50)
	HighBucket     RiskBucket = "High"     // [50, 75)
	CriticalBucket RiskBucket = "Critical" // [75, 100]
)

// All anomaly severities supported.
const (
	MediumSeverity Severity = "Medium"
	HighSeverity   Severity = "High"
)

// All recommendation priorities supported.
const (
	LowPriority      Priority = "Low"
	MediumPriority   Priority = "Medium"
	HighPriority     Priority = "High"
	CriticalPriority Priority = "Critical"
)

// All run store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// SchemaVersion is stamped into report metadata so downstream renderers can
// detect incompatible layout changes.
const SchemaVersion = "1.0"

// AllReportKinds returns a list of all supported report kinds.
var AllReportKinds = []ReportKind{
	StaleKind, LeadTimeKind, CollabKind, ReadinessKind, SentimentKind, LifecycleKind,
}

// ValidReportKinds lists all valid report kinds.
var ValidReportKinds = map[ReportKind]struct{}{
	StaleKind:     {},
	LeadTimeKind:  {},
	CollabKind:    {},
	ReadinessKind: {},
	SentimentKind: {},
	LifecycleKind: {},
}

// ValidRunBackends lists all valid run store backends.
var ValidRunBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// BucketFor maps a clipped risk score to its categorical bucket.
func BucketFor(score float64) RiskBucket {
	switch {
	case score >= 75:
		return CriticalBucket
	case score >= 50:
		return HighBucket
	case score >= 25:
		return MediumBucket
	default:
		return LowBucket
	}
}
