// Package transform turns the raw study extract into the analysis table:
// renamed columns, expanded labels, verified integral casts, and the derived
// flc, flc_ratio, recruits, and flc_ratio_range columns. The input table is
// never mutated; every step produces a new table.
package transform

import (
	"fmt"
	"math"

	"github.com/MwillianM/FlchainExploration/internal/dataset"
)

// Transformed column names introduced or renamed by this stage.
const (
	ColSampleYear    = "sample_year"
	ColFLCGroup      = "flc_group"
	ColRecruits      = "recruits"
	ColFLC           = "flc"
	ColFLCRatio      = "flc_ratio"
	ColFLCRatioRange = "flc_ratio_range"
)

// Fixed, ordered level sets. Declaring them here (rather than inferring from
// the data) keeps grouped output ordering identical across runs.
var (
	SexLevels      = []string{"Female", "Male"}
	FLCGroupLevels = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	MGUSLevels     = []string{"non-mgus", "mgus"}
	DeathLevels    = []string{"alive", "dead"}
	RecruitLevels  = []string{"early", "middle", "late"}

	// RetainedChapters is the fixed reference set of cause-of-death chapters
	// kept by the long-tail collapse; everything else becomes Others.
	RetainedChapters = []string{"Circulatory", "Neoplasms", "Respiratory", "Mental", "Nervous"}

	// RatioRangeLevels bucket flc_ratio around the 0.26–1.65 clinical
	// reference range for the kappa/lambda ratio.
	RatioRangeLevels = []string{"low", "normal", "high"}
)

// ChapterOther is the collapse target for rare cause-of-death chapters.
const ChapterOther = "Others"

// chapterMinShare is the share of non-missing chapter values below which a
// label is folded into Others.
const chapterMinShare = 0.05

// Recruitment window cutpoints: 1994/1997, 1997/2000, 2000/2003.
const (
	recruitMinYear    = 1994
	recruitEarlyUpTo  = 1997
	recruitMiddleUpTo = 2000
	recruitMaxYear    = 2003
)

// FLC ratio clinical reference range.
const (
	ratioLow  = 0.26
	ratioHigh = 1.65
)

// Apply runs the full transformation over the raw table.
func Apply(raw *dataset.Table) (*dataset.Table, error) {
	t, err := raw.Rename(dataset.ColSampleYr, ColSampleYear)
	if err != nil {
		return nil, err
	}
	t, err = t.Rename(dataset.ColFLCGrp, ColFLCGroup)
	if err != nil {
		return nil, err
	}

	if t, err = expandSex(t); err != nil {
		return nil, err
	}
	if t, err = castFLCGroup(t); err != nil {
		return nil, err
	}
	if t, err = recodeBinary(t, dataset.ColMGUS, MGUSLevels); err != nil {
		return nil, err
	}
	if t, err = recodeBinary(t, dataset.ColDeath, DeathLevels); err != nil {
		return nil, err
	}
	for _, name := range []string{dataset.ColAge, ColSampleYear, dataset.ColFutime} {
		if t, err = castIntegral(t, name); err != nil {
			return nil, err
		}
	}
	if t, err = collapseChapterColumn(t); err != nil {
		return nil, err
	}
	if t, err = bucketRecruits(t); err != nil {
		return nil, err
	}
	if t, err = deriveFLC(t); err != nil {
		return nil, err
	}
	if t, err = bucketRatioRange(t); err != nil {
		return nil, err
	}
	return t, nil
}

// expandSex maps the single-letter sex codes to full words.
func expandSex(t *dataset.Table) (*dataset.Table, error) {
	col, err := t.Str(dataset.ColSex)
	if err != nil {
		return nil, err
	}
	vals := col.Values()
	out := make([]string, len(vals))
	for i, v := range vals {
		switch v {
		case "F", "Female":
			out[i] = "Female"
		case "M", "Male":
			out[i] = "Male"
		default:
			return nil, &dataset.ValueError{Column: dataset.ColSex, Row: i, Reason: fmt.Sprintf("unknown sex code %q", v)}
		}
	}
	f, err := dataset.NewFactor(dataset.ColSex, out, SexLevels, false)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(f)
}

// castFLCGroup turns the numeric group assignment into an ordered factor.
func castFLCGroup(t *dataset.Table) (*dataset.Table, error) {
	col, err := t.Float(ColFLCGroup)
	if err != nil {
		return nil, err
	}
	n := col.Len()
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		v, ok := col.At(i)
		if !ok {
			return nil, &dataset.ValueError{Column: ColFLCGroup, Row: i, Reason: "missing group assignment"}
		}
		if v != math.Trunc(v) || v < 1 || v > float64(len(FLCGroupLevels)) {
			return nil, &dataset.ValueError{Column: ColFLCGroup, Row: i, Reason: fmt.Sprintf("value %g is not a group in 1..%d", v, len(FLCGroupLevels))}
		}
		labels[i] = FLCGroupLevels[int(v)-1]
	}
	f, err := dataset.NewFactor(ColFLCGroup, labels, FLCGroupLevels, false)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(f)
}

// recodeBinary maps a 0/1 numeric column onto a two-level factor,
// levels[0] for 0 and levels[1] for 1.
func recodeBinary(t *dataset.Table, name string, levels []string) (*dataset.Table, error) {
	col, err := t.Float(name)
	if err != nil {
		return nil, err
	}
	n := col.Len()
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		v, ok := col.At(i)
		if !ok {
			return nil, &dataset.ValueError{Column: name, Row: i, Reason: "missing value"}
		}
		switch v {
		case 0:
			labels[i] = levels[0]
		case 1:
			labels[i] = levels[1]
		default:
			return nil, &dataset.ValueError{Column: name, Row: i, Reason: fmt.Sprintf("value %g is not 0 or 1", v)}
		}
	}
	f, err := dataset.NewFactor(name, labels, levels, false)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(f)
}

// castIntegral verifies every value in a float column is whole before casting
// to int. A fractional value fails the whole run; it is never truncated.
func castIntegral(t *dataset.Table, name string) (*dataset.Table, error) {
	col, err := t.Float(name)
	if err != nil {
		return nil, err
	}
	n := col.Len()
	vals := make([]int, n)
	for i := 0; i < n; i++ {
		v, ok := col.At(i)
		if !ok {
			return nil, &dataset.ValueError{Column: name, Row: i, Reason: "missing value in integer column"}
		}
		if v != math.Trunc(v) {
			return nil, &dataset.IntegralityError{Column: name, Row: i, Value: v}
		}
		vals[i] = int(v)
	}
	return t.WithColumn(dataset.NewIntColumn(name, vals))
}

// CollapseChapter folds chapter labels below chapterMinShare of the
// non-missing values, and any label outside the retained reference set,
// into ChapterOther. Missing labels stay missing. The collapse is
// idempotent: Others never re-expands.
func CollapseChapter(values []string) []string {
	counts := make(map[string]int)
	total := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		counts[v]++
		total++
	}
	retained := make(map[string]bool, len(RetainedChapters))
	for _, c := range RetainedChapters {
		retained[c] = true
	}
	out := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		share := float64(counts[v]) / float64(total)
		if retained[v] && share >= chapterMinShare {
			out[i] = v
		} else {
			out[i] = ChapterOther
		}
	}
	return out
}

func collapseChapterColumn(t *dataset.Table) (*dataset.Table, error) {
	col, err := t.Str(dataset.ColChapter)
	if err != nil {
		return nil, err
	}
	collapsed := CollapseChapter(col.Values())
	levels := append(append([]string(nil), RetainedChapters...), ChapterOther)
	f, err := dataset.NewFactor(dataset.ColChapter, collapsed, levels, true)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(f)
}

// RecruitsBucket classifies a sample year into the early/middle/late
// recruitment window. Years outside the study window are an error: the
// buckets must partition the observed range with no gaps or overlaps.
func RecruitsBucket(year int) (string, error) {
	switch {
	case year < recruitMinYear || year > recruitMaxYear:
		return "", fmt.Errorf("sample year %d outside study window %d–%d", year, recruitMinYear, recruitMaxYear)
	case year <= recruitEarlyUpTo:
		return "early", nil
	case year <= recruitMiddleUpTo:
		return "middle", nil
	default:
		return "late", nil
	}
}

func bucketRecruits(t *dataset.Table) (*dataset.Table, error) {
	col, err := t.Int(ColSampleYear)
	if err != nil {
		return nil, err
	}
	n := col.Len()
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		b, err := RecruitsBucket(col.At(i))
		if err != nil {
			return nil, &dataset.ValueError{Column: ColSampleYear, Row: i, Reason: err.Error()}
		}
		labels[i] = b
	}
	f, err := dataset.NewFactor(ColRecruits, labels, RecruitLevels, false)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(f)
}

// deriveFLC computes flc = kappa + lambda and flc_ratio = kappa / lambda.
// A zero lambda makes the ratio undefined and fails the run explicitly
// rather than passing an infinity downstream.
func deriveFLC(t *dataset.Table) (*dataset.Table, error) {
	kappa, err := t.Float(dataset.ColKappa)
	if err != nil {
		return nil, err
	}
	lambda, err := t.Float(dataset.ColLambda)
	if err != nil {
		return nil, err
	}
	n := kappa.Len()
	flc := make([]float64, n)
	ratio := make([]float64, n)
	for i := 0; i < n; i++ {
		k, ok := kappa.At(i)
		if !ok {
			return nil, &dataset.ValueError{Column: dataset.ColKappa, Row: i, Reason: "missing value"}
		}
		l, ok := lambda.At(i)
		if !ok {
			return nil, &dataset.ValueError{Column: dataset.ColLambda, Row: i, Reason: "missing value"}
		}
		if l == 0 {
			return nil, &dataset.ValueError{Column: dataset.ColLambda, Row: i, Reason: "lambda is zero; flc_ratio undefined"}
		}
		flc[i] = k + l
		ratio[i] = k / l
	}
	t, err = t.WithColumn(dataset.NewFloatColumn(ColFLC, flc))
	if err != nil {
		return nil, err
	}
	return t.WithColumn(dataset.NewFloatColumn(ColFLCRatio, ratio))
}

// RatioRange buckets a kappa/lambda ratio against the clinical reference range.
func RatioRange(ratio float64) string {
	switch {
	case ratio < ratioLow:
		return "low"
	case ratio > ratioHigh:
		return "high"
	default:
		return "normal"
	}
}

func bucketRatioRange(t *dataset.Table) (*dataset.Table, error) {
	col, err := t.Float(ColFLCRatio)
	if err != nil {
		return nil, err
	}
	n := col.Len()
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		v, _ := col.At(i)
		labels[i] = RatioRange(v)
	}
	f, err := dataset.NewFactor(ColFLCRatioRange, labels, RatioRangeLevels, false)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(f)
}
