package dataset

import (
	"fmt"
	"strconv"
)

// Column kinds.
const (
	KindFloat  = "float"
	KindInt    = "int"
	KindString = "string"
	KindFactor = "factor"
)

// Column is a named, fixed-length series of one kind.
type Column interface {
	Name() string
	Len() int
	Kind() string
	// Value renders the value at row i for display and tidy export.
	Value(i int) string
	// IsMissing reports whether the value at row i is absent.
	IsMissing(i int) bool
	// withName returns a copy of the column under a new name.
	withName(name string) Column
}

// FloatColumn holds real values with optional per-row missingness.
type FloatColumn struct {
	name string
	vals []float64
	miss []bool // nil when the column has no missing values
}

// NewFloatColumn builds a float column with no missing values.
func NewFloatColumn(name string, vals []float64) *FloatColumn {
	return &FloatColumn{name: name, vals: append([]float64(nil), vals...)}
}

// NewFloatColumnWithMissing builds a float column with an explicit missing mask.
// miss may be nil; otherwise it must match len(vals).
func NewFloatColumnWithMissing(name string, vals []float64, miss []bool) (*FloatColumn, error) {
	if miss != nil && len(miss) != len(vals) {
		return nil, fmt.Errorf("column %s: missing mask length %d != values length %d", name, len(miss), len(vals))
	}
	c := NewFloatColumn(name, vals)
	if miss != nil {
		c.miss = append([]bool(nil), miss...)
	}
	return c, nil
}

func (c *FloatColumn) Name() string { return c.name }
func (c *FloatColumn) Len() int     { return len(c.vals) }
func (c *FloatColumn) Kind() string { return KindFloat }

func (c *FloatColumn) IsMissing(i int) bool { return c.miss != nil && c.miss[i] }

// At returns the value at row i and whether it is present.
func (c *FloatColumn) At(i int) (float64, bool) {
	if c.IsMissing(i) {
		return 0, false
	}
	return c.vals[i], true
}

// Values returns a copy of all values, including positions that are missing.
// Callers that must exclude missing rows should consult IsMissing.
func (c *FloatColumn) Values() []float64 { return append([]float64(nil), c.vals...) }

// Present returns the values at non-missing rows only.
func (c *FloatColumn) Present() []float64 {
	if c.miss == nil {
		return c.Values()
	}
	out := make([]float64, 0, len(c.vals))
	for i, v := range c.vals {
		if !c.miss[i] {
			out = append(out, v)
		}
	}
	return out
}

func (c *FloatColumn) Value(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	return strconv.FormatFloat(c.vals[i], 'g', -1, 64)
}

func (c *FloatColumn) withName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

// IntColumn holds integral values with no missingness.
type IntColumn struct {
	name string
	vals []int
}

func NewIntColumn(name string, vals []int) *IntColumn {
	return &IntColumn{name: name, vals: append([]int(nil), vals...)}
}

func (c *IntColumn) Name() string       { return c.name }
func (c *IntColumn) Len() int           { return len(c.vals) }
func (c *IntColumn) Kind() string       { return KindInt }
func (c *IntColumn) IsMissing(int) bool { return false }
func (c *IntColumn) At(i int) int       { return c.vals[i] }
func (c *IntColumn) Value(i int) string { return strconv.Itoa(c.vals[i]) }
func (c *IntColumn) Values() []int      { return append([]int(nil), c.vals...) }

func (c *IntColumn) withName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

// StringColumn holds free-form labels; an empty string marks a missing value.
type StringColumn struct {
	name string
	vals []string
}

func NewStringColumn(name string, vals []string) *StringColumn {
	return &StringColumn{name: name, vals: append([]string(nil), vals...)}
}

func (c *StringColumn) Name() string         { return c.name }
func (c *StringColumn) Len() int             { return len(c.vals) }
func (c *StringColumn) Kind() string         { return KindString }
func (c *StringColumn) IsMissing(i int) bool { return c.vals[i] == "" }
func (c *StringColumn) At(i int) string      { return c.vals[i] }
func (c *StringColumn) Value(i int) string   { return c.vals[i] }
func (c *StringColumn) Values() []string     { return append([]string(nil), c.vals...) }

func (c *StringColumn) withName(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

// Factor is a categorical column with a fixed, ordered level set.
// Levels are declared up front rather than inferred from the data, so
// grouped output ordering is reproducible across runs.
type Factor struct {
	name   string
	levels []string
	codes  []int // index into levels; -1 marks a missing value
}

// NewFactor builds a factor from label values against a declared level set.
// A value not in levels is an error unless it is empty and allowMissing is set.
func NewFactor(name string, values []string, levels []string, allowMissing bool) (*Factor, error) {
	idx := make(map[string]int, len(levels))
	for i, l := range levels {
		if _, dup := idx[l]; dup {
			return nil, fmt.Errorf("factor %s: duplicate level %q", name, l)
		}
		idx[l] = i
	}
	codes := make([]int, len(values))
	for i, v := range values {
		if v == "" {
			if !allowMissing {
				return nil, fmt.Errorf("factor %s: missing value at row %d", name, i)
			}
			codes[i] = -1
			continue
		}
		code, ok := idx[v]
		if !ok {
			return nil, fmt.Errorf("factor %s: value %q at row %d is not a declared level", name, v, i)
		}
		codes[i] = code
	}
	return &Factor{name: name, levels: append([]string(nil), levels...), codes: codes}, nil
}

func (f *Factor) Name() string         { return f.name }
func (f *Factor) Len() int             { return len(f.codes) }
func (f *Factor) Kind() string         { return KindFactor }
func (f *Factor) IsMissing(i int) bool { return f.codes[i] < 0 }

// Levels returns the ordered level set.
func (f *Factor) Levels() []string { return append([]string(nil), f.levels...) }

// Code returns the level index at row i, or -1 for missing.
func (f *Factor) Code(i int) int { return f.codes[i] }

// At returns the label at row i; missing rows yield the empty string.
func (f *Factor) At(i int) string {
	if f.codes[i] < 0 {
		return ""
	}
	return f.levels[f.codes[i]]
}

func (f *Factor) Value(i int) string { return f.At(i) }

// Counts tallies rows per level in level order (missing rows excluded).
func (f *Factor) Counts() []int {
	counts := make([]int, len(f.levels))
	for _, c := range f.codes {
		if c >= 0 {
			counts[c]++
		}
	}
	return counts
}

func (f *Factor) withName(name string) Column {
	cp := *f
	cp.name = name
	return &cp
}

// Table is an immutable, column-oriented view of the dataset. Every
// transformation produces a new Table; columns are never mutated in place.
type Table struct {
	cols  []Column
	index map[string]int
}

// New builds a table from columns of equal length and unique names.
func New(cols ...Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table: no columns")
	}
	n := cols[0].Len()
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Len() != n {
			return nil, fmt.Errorf("table: column %s has %d rows, want %d", c.Name(), c.Len(), n)
		}
		if _, dup := index[c.Name()]; dup {
			return nil, fmt.Errorf("table: duplicate column %s", c.Name())
		}
		index[c.Name()] = i
	}
	return &Table{cols: append([]Column(nil), cols...), index: index}, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.cols[0].Len() }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &SchemaError{Column: name, Reason: "column not found"}
	}
	return t.cols[i], nil
}

// Float returns the named column, which must hold floats.
func (t *Table) Float(name string) (*FloatColumn, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	fc, ok := c.(*FloatColumn)
	if !ok {
		return nil, &SchemaError{Column: name, Reason: fmt.Sprintf("kind %s, want %s", c.Kind(), KindFloat)}
	}
	return fc, nil
}

// Int returns the named column, which must hold integers.
func (t *Table) Int(name string) (*IntColumn, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	ic, ok := c.(*IntColumn)
	if !ok {
		return nil, &SchemaError{Column: name, Reason: fmt.Sprintf("kind %s, want %s", c.Kind(), KindInt)}
	}
	return ic, nil
}

// Str returns the named column, which must hold strings.
func (t *Table) Str(name string) (*StringColumn, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	sc, ok := c.(*StringColumn)
	if !ok {
		return nil, &SchemaError{Column: name, Reason: fmt.Sprintf("kind %s, want %s", c.Kind(), KindString)}
	}
	return sc, nil
}

// Factor returns the named column, which must be a factor.
func (t *Table) Factor(name string) (*Factor, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	f, ok := c.(*Factor)
	if !ok {
		return nil, &SchemaError{Column: name, Reason: fmt.Sprintf("kind %s, want %s", c.Kind(), KindFactor)}
	}
	return f, nil
}

// Rename returns a new table with one column renamed.
func (t *Table) Rename(old, new string) (*Table, error) {
	i, ok := t.index[old]
	if !ok {
		return nil, &SchemaError{Column: old, Reason: "column not found"}
	}
	if _, taken := t.index[new]; taken && new != old {
		return nil, fmt.Errorf("table: rename %s: column %s already exists", old, new)
	}
	cols := append([]Column(nil), t.cols...)
	cols[i] = cols[i].withName(new)
	return New(cols...)
}

// WithColumn returns a new table with col appended, or replacing a column of
// the same name.
func (t *Table) WithColumn(col Column) (*Table, error) {
	cols := append([]Column(nil), t.cols...)
	if i, ok := t.index[col.Name()]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return New(cols...)
}

// Row renders row i as strings in column order (tidy long-form view).
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Value(i)
	}
	return out
}

// Head renders up to n leading rows.
func (t *Table) Head(n int) [][]string {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = t.Row(i)
	}
	return rows
}
