// Package aggregate computes the grouped summaries consumed by the report
// and the regression stage. All functions treat their input table as
// read-only and emit results in factor level order, never row-arrival order.
package aggregate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/MwillianM/FlchainExploration/internal/dataset"
	"github.com/MwillianM/FlchainExploration/internal/transform"
)

// GroupAggregate is one row of the group-aggregate table: summary FLC
// statistics and the observed death rate within one flc_group level.
type GroupAggregate struct {
	Group     string
	Count     int
	FLCMin    float64
	FLCMax    float64
	FLCMean   float64
	DeathRate float64
}

// ByFLCGroup groups the transformed table by flc_group and summarizes each
// group's combined FLC level and death rate. Levels with no rows are
// omitted, never fabricated; output order follows the factor's level order.
func ByFLCGroup(t *dataset.Table) ([]GroupAggregate, error) {
	grp, err := t.Factor(transform.ColFLCGroup)
	if err != nil {
		return nil, err
	}
	flc, err := t.Float(transform.ColFLC)
	if err != nil {
		return nil, err
	}
	death, err := t.Factor(dataset.ColDeath)
	if err != nil {
		return nil, err
	}

	levels := grp.Levels()
	vals := make([][]float64, len(levels))
	deaths := make([]int, len(levels))
	n := t.NumRows()
	for i := 0; i < n; i++ {
		code := grp.Code(i)
		v, ok := flc.At(i)
		if !ok {
			continue
		}
		vals[code] = append(vals[code], v)
		if death.At(i) == transform.DeathLevels[1] {
			deaths[code]++
		}
	}

	out := make([]GroupAggregate, 0, len(levels))
	for code, level := range levels {
		vs := vals[code]
		if len(vs) == 0 {
			continue
		}
		mn, mx := vs[0], vs[0]
		for _, v := range vs[1:] {
			if v < mn {
				mn = v
			}
			if v > mx {
				mx = v
			}
		}
		out = append(out, GroupAggregate{
			Group:     level,
			Count:     len(vs),
			FLCMin:    mn,
			FLCMax:    mx,
			FLCMean:   stat.Mean(vs, nil),
			DeathRate: float64(deaths[code]) / float64(len(vs)),
		})
	}
	return out, nil
}

// CategoryRate is a per-level count and death rate for one factor.
type CategoryRate struct {
	Level string
	Count int
	Rate  float64
}

// DeathRateBy computes the death rate within each level of the named factor,
// in level order. Rows with a missing factor value are excluded.
func DeathRateBy(t *dataset.Table, factorName string) ([]CategoryRate, error) {
	f, err := t.Factor(factorName)
	if err != nil {
		return nil, err
	}
	death, err := t.Factor(dataset.ColDeath)
	if err != nil {
		return nil, err
	}
	levels := f.Levels()
	counts := make([]int, len(levels))
	deaths := make([]int, len(levels))
	for i := 0; i < t.NumRows(); i++ {
		code := f.Code(i)
		if code < 0 {
			continue
		}
		counts[code]++
		if death.At(i) == transform.DeathLevels[1] {
			deaths[code]++
		}
	}
	out := make([]CategoryRate, 0, len(levels))
	for code, level := range levels {
		if counts[code] == 0 {
			continue
		}
		out = append(out, CategoryRate{
			Level: level,
			Count: counts[code],
			Rate:  float64(deaths[code]) / float64(counts[code]),
		})
	}
	return out, nil
}

// CategoryMean is a per-level count and mean of one numeric column.
type CategoryMean struct {
	Level string
	Count int
	Mean  float64
}

// MeanBy computes the mean of a numeric column within each level of the
// named factor, in level order. Missing values on either side are excluded.
func MeanBy(t *dataset.Table, factorName, valueName string) ([]CategoryMean, error) {
	f, err := t.Factor(factorName)
	if err != nil {
		return nil, err
	}
	col, err := t.Float(valueName)
	if err != nil {
		return nil, err
	}
	levels := f.Levels()
	vals := make([][]float64, len(levels))
	for i := 0; i < t.NumRows(); i++ {
		code := f.Code(i)
		if code < 0 {
			continue
		}
		v, ok := col.At(i)
		if !ok {
			continue
		}
		vals[code] = append(vals[code], v)
	}
	out := make([]CategoryMean, 0, len(levels))
	for code, level := range levels {
		if len(vals[code]) == 0 {
			continue
		}
		out = append(out, CategoryMean{Level: level, Count: len(vals[code]), Mean: stat.Mean(vals[code], nil)})
	}
	return out, nil
}

// FloatSummary describes a numeric column with missing rows excluded.
type FloatSummary struct {
	Count   int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	Std     float64
}

// Summarize computes count/min/max/mean/std for a float column, explicitly
// excluding missing rows rather than propagating them as zeros.
func Summarize(col *dataset.FloatColumn) FloatSummary {
	present := col.Present()
	s := FloatSummary{Count: len(present), Missing: col.Len() - len(present)}
	if len(present) == 0 {
		return s
	}
	s.Min, s.Max = present[0], present[0]
	for _, v := range present[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = stat.Mean(present, nil)
	if len(present) > 1 {
		s.Std = stat.StdDev(present, nil)
	}
	return s
}

// Correlation computes the Pearson correlation between two numeric columns,
// using only rows where both values are present.
func Correlation(t *dataset.Table, a, b string) (float64, error) {
	ca, err := t.Float(a)
	if err != nil {
		return 0, err
	}
	cb, err := t.Float(b)
	if err != nil {
		return 0, err
	}
	var xs, ys []float64
	for i := 0; i < ca.Len(); i++ {
		x, okx := ca.At(i)
		y, oky := cb.At(i)
		if !okx || !oky {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < 2 {
		return 0, nil
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0, nil
	}
	return r, nil
}
