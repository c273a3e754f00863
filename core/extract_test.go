package core

import (
	"testing"

	"github.com/huangsam/prlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSchema is a compact schema exercising every field type.
func testSchema() *schema.FeatureSchema {
	return &schema.FeatureSchema{
		Kind:        schema.StaleKind,
		EntityLabel: "rows",
		Fields: []schema.Field{
			{Name: "id", Path: "number", Type: schema.NumberField, Identity: true},
			{Name: "count", Path: "stats.count", Type: schema.NumberField, Default: 0.0},
			{Name: "author", Path: "user.login", Type: schema.StringField, Default: "unknown"},
			{Name: "title_length", Path: "title", Type: schema.LengthField, Default: 0.0},
			{Name: "is_draft", Path: "draft", Type: schema.BoolField, Default: false},
			{Name: "created_hour", Path: "created_at", Type: schema.HourField, Default: 0.0},
			{Name: "created_day", Path: "created_at", Type: schema.WeekdayField, Default: 0.0},
			{Name: "is_merged", Path: "merged_at", Type: schema.PresentField, Default: false},
		},
		Derived: []schema.DerivedField{
			{Name: "double_count", Compute: func(r *schema.FeatureRow) float64 {
				return r.Value("count") * 2
			}},
		},
	}
}

func TestExtract_FullRecord(t *testing.T) {
	records := []map[string]any{
		{
			"number":     42.0,
			"stats":      map[string]any{"count": 7.0},
			"user":       map[string]any{"login": "alice"},
			"title":      "Hello",
			"draft":      true,
			"created_at": "2026-07-06T14:30:00Z", // a Monday
			"merged_at":  "2026-07-08T09:00:00Z",
		},
	}

	table := Extract(records, testSchema())
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 0, table.Dropped)

	row := table.Rows[0]
	assert.Equal(t, "42", row.ID)
	assert.Equal(t, 42.0, row.Value("id"))
	assert.Equal(t, 7.0, row.Value("count"))
	assert.Equal(t, "alice", row.Cat["author"])
	assert.Equal(t, 5.0, row.Value("title_length"))
	assert.Equal(t, 1.0, row.Value("is_draft"))
	assert.Equal(t, 14.0, row.Value("created_hour"))
	assert.Equal(t, 0.0, row.Value("created_day"), "Monday maps to 0")
	assert.Equal(t, 1.0, row.Value("is_merged"))
	assert.Equal(t, 14.0, row.Value("double_count"), "derived after primary extraction")
	assert.Empty(t, row.Defaulted)
}

func TestExtract_DefaultsOnMissingFields(t *testing.T) {
	records := []map[string]any{
		{"number": 1.0}, // everything else absent
	}

	table := Extract(records, testSchema())
	require.Equal(t, 1, table.Len())

	row := table.Rows[0]
	assert.Equal(t, 0.0, row.Value("count"))
	assert.Equal(t, "unknown", row.Cat["author"])
	assert.Equal(t, 0.0, row.Value("is_draft"))
	assert.True(t, row.Defaulted["count"])
	assert.True(t, row.Defaulted["author"])

	// PresentField is never defaulted: an absent path is a real 0 signal.
	assert.Equal(t, 0.0, row.Value("is_merged"))
	assert.False(t, row.Defaulted["is_merged"])
}

func TestExtract_DefaultsOnMistypedFields(t *testing.T) {
	records := []map[string]any{
		{
			"number":     2.0,
			"stats":      map[string]any{"count": "many"}, // not numeric
			"user":       map[string]any{"login": 123.0},  // not a string
			"created_at": "yesterday",                     // unparsable
		},
	}

	table := Extract(records, testSchema())
	require.Equal(t, 1, table.Len())

	row := table.Rows[0]
	assert.True(t, row.Defaulted["author"])
	assert.True(t, row.Defaulted["created_hour"])
	assert.Equal(t, "unknown", row.Cat["author"])
	assert.Equal(t, 0.0, row.Value("created_hour"))

	// Numeric strings still coerce
	assert.True(t, row.Defaulted["count"])
}

func TestExtract_DropsRowsWithoutIdentity(t *testing.T) {
	records := []map[string]any{
		{"number": 1.0},
		{"title": "no id here"},
		{"number": "NaN text"},
		{"number": 3.0},
	}

	table := Extract(records, testSchema())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 2, table.Dropped)
	assert.Equal(t, "1", table.Rows[0].ID)
	assert.Equal(t, "3", table.Rows[1].ID)
}

func TestExtract_NumericStringCoercion(t *testing.T) {
	records := []map[string]any{
		{"number": "17"},
	}
	table := Extract(records, testSchema())
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 17.0, table.Rows[0].Value("id"))
	assert.Equal(t, "17", table.Rows[0].ID)
}

func TestExtract_NonFiniteDerivedCoercedToZero(t *testing.T) {
	def := testSchema()
	def.Derived = append(def.Derived, schema.DerivedField{
		Name: "bogus_ratio",
		Compute: func(r *schema.FeatureRow) float64 {
			return r.Value("count") / 0 // +Inf or NaN
		},
	})

	records := []map[string]any{{"number": 1.0, "stats": map[string]any{"count": 5.0}}}
	table := Extract(records, def)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 0.0, table.Rows[0].Value("bogus_ratio"))
}

func TestExtract_EmptyInput(t *testing.T) {
	table := Extract(nil, testSchema())
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.Dropped)
}

func TestExtract_StaleSchemaEndToEnd(t *testing.T) {
	def := schema.SchemaFor(schema.StaleKind)
	records := []map[string]any{
		{
			"number":              101.0,
			"title":               "Refactor config loading",
			"state":               "open",
			"created_at":          "2026-05-12T08:00:00Z",
			"repository_name":     "backend",
			"user":                map[string]any{"login": "carol"},
			"inactivity_duration": map[string]any{"days": 45.0, "total_hours": 1080.0},
			"inactivity_analysis": map[string]any{"category": "abandoned", "priority": "high"},
			"details": map[string]any{
				"review_count":   2.0,
				"comment_count":  3.0,
				"commit_count":   4.0,
				"failing_checks": 1.0,
				"total_checks":   4.0,
			},
			"draft":         false,
			"additions":     300.0,
			"deletions":     100.0,
			"changed_files": 9.0,
		},
	}

	table := Extract(records, def)
	require.Equal(t, 1, table.Len())

	row := table.Rows[0]
	assert.Equal(t, "101", row.ID)
	assert.Equal(t, 45.0, row.Value("inactive_days"))
	assert.Equal(t, 400.0, row.Value("total_changes"))
	assert.Equal(t, 0.25, row.Value("check_failure_rate"))
	assert.Equal(t, 5.0, row.Value("engagement_score"))
	assert.Equal(t, "carol", row.Cat["author"])
	assert.True(t, def.Flag.Matches(&row), "abandoned category is flagged")
}
