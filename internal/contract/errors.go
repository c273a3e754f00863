package contract

import "fmt"

// MissingDataError indicates that no records were found under the expected
// snapshot path. Downstream stages receive an empty table and produce
// empty-but-valid outputs; only the CLI boundary turns it into a non-zero
// exit when the whole run is meaningless.
type MissingDataError struct {
	Path string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no records found under %q", e.Path)
}

// SchemaError indicates that an individual field was unreadable or
// mistyped. It is recovered locally by substituting the schema default and
// never propagates out of the extractor.
type SchemaError struct {
	Field  string
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("field %q (path %q): %s", e.Field, e.Path, e.Reason)
}

// InsufficientDataError indicates too few rows for a requested statistic or
// clustering. It is recovered by clamping parameters or skipping the
// affected analysis, not by aborting.
type InsufficientDataError struct {
	Need int
	Got  int
	What string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs at least %d rows, got %d", e.What, e.Need, e.Got)
}

// SerializationError indicates a value in the result tree could not be
// converted to a JSON primitive. Recovered via best-effort coercion; total
// failure is recovered by emitting the minimal error report.
type SerializationError struct {
	Detail string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize: %s", e.Detail)
}
