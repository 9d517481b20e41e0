package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Raw column names as shipped in the study extract. Two of them carry the
// source's dotted naming and are renamed during transformation.
const (
	ColAge        = "age"
	ColSex        = "sex"
	ColSampleYr   = "sample.yr"
	ColKappa      = "kappa"
	ColLambda     = "lambda"
	ColFLCGrp     = "flc.grp"
	ColCreatinine = "creatinine"
	ColMGUS       = "mgus"
	ColFutime     = "futime"
	ColDeath      = "death"
	ColChapter    = "chapter"
)

type columnSpec struct {
	name         string
	kind         string // KindFloat or KindString at load time
	allowMissing bool
}

// rawSchema declares the 11 documented columns. Numeric columns load as
// floats; integral casting happens in the transform stage so that a
// fractional age fails there, loudly, rather than during parsing.
var rawSchema = []columnSpec{
	{name: ColAge, kind: KindFloat},
	{name: ColSex, kind: KindString},
	{name: ColSampleYr, kind: KindFloat},
	{name: ColKappa, kind: KindFloat},
	{name: ColLambda, kind: KindFloat},
	{name: ColFLCGrp, kind: KindFloat},
	{name: ColCreatinine, kind: KindFloat, allowMissing: true},
	{name: ColMGUS, kind: KindFloat},
	{name: ColFutime, kind: KindFloat},
	{name: ColDeath, kind: KindFloat},
	{name: ColChapter, kind: KindString, allowMissing: true},
}

// ColumnNames returns the declared raw column names in schema order.
func ColumnNames() []string {
	names := make([]string, len(rawSchema))
	for i, s := range rawSchema {
		names[i] = s.name
	}
	return names
}

// fromRecords validates the header against the raw schema and builds the
// typed table. records[0] is the header; the remaining rows are data.
func fromRecords(records [][]string) (*Table, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset has no data rows")
	}
	header := records[0]
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[cleanHeader(h)] = i
	}
	data := records[1:]
	n := len(data)

	cols := make([]Column, 0, len(rawSchema))
	for _, spec := range rawSchema {
		at, ok := pos[spec.name]
		if !ok {
			return nil, &SchemaError{Column: spec.name, Reason: "column not found in header"}
		}
		switch spec.kind {
		case KindString:
			vals := make([]string, n)
			for i, rec := range data {
				v := cell(rec, at)
				if v == "" && !spec.allowMissing {
					return nil, &ValueError{Column: spec.name, Row: i, Reason: "missing value"}
				}
				vals[i] = v
			}
			cols = append(cols, NewStringColumn(spec.name, vals))
		case KindFloat:
			vals := make([]float64, n)
			var miss []bool
			for i, rec := range data {
				v := cell(rec, at)
				if v == "" || strings.EqualFold(v, "NA") {
					if !spec.allowMissing {
						return nil, &ValueError{Column: spec.name, Row: i, Reason: "missing value"}
					}
					if miss == nil {
						miss = make([]bool, n)
					}
					miss[i] = true
					continue
				}
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, &SchemaError{Column: spec.name, Reason: fmt.Sprintf("row %d: %q is not numeric", i, v)}
				}
				vals[i] = f
			}
			fc, err := NewFloatColumnWithMissing(spec.name, vals, miss)
			if err != nil {
				return nil, err
			}
			cols = append(cols, fc)
		}
	}
	return New(cols...)
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	v := strings.TrimSpace(rec[i])
	if strings.EqualFold(v, "NA") {
		return ""
	}
	return v
}

// cleanHeader strips a UTF-8 BOM and surrounding whitespace from a header cell.
func cleanHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "\uFEFF")
	return strings.TrimSpace(h)
}
