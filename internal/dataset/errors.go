package dataset

import "fmt"

// SchemaError reports an expected column that is absent or of the wrong kind.
// Schema errors are fatal: the run cannot proceed on a malformed extract.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
}

// IntegralityError reports a fractional value in a column expected to hold
// whole numbers. Casting must not truncate silently.
type IntegralityError struct {
	Column string
	Row    int
	Value  float64
}

func (e *IntegralityError) Error() string {
	return fmt.Sprintf("column %q: value %g at row %d is not integral", e.Column, e.Value, e.Row)
}

// ValueError reports a single value that violates a dataset assumption,
// e.g. a zero lambda making the FLC ratio undefined.
type ValueError struct {
	Column string
	Row    int
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("column %q: row %d: %s", e.Column, e.Row, e.Reason)
}
