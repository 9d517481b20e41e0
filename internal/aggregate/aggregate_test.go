package aggregate

import (
	"math"
	"testing"

	"github.com/MwillianM/FlchainExploration/internal/dataset"
	"github.com/MwillianM/FlchainExploration/internal/transform"
)

func factor(t *testing.T, name string, values, levels []string, allowMissing bool) *dataset.Factor {
	t.Helper()
	f, err := dataset.NewFactor(name, values, levels, allowMissing)
	if err != nil {
		t.Fatalf("factor %s: %v", name, err)
	}
	return f
}

// analysisTable builds a 12-subject transformed table: three occupied FLC
// groups with linearly rising mean FLC and death rates 0.25/0.50/0.75.
func analysisTable(t *testing.T) *dataset.Table {
	t.Helper()
	grp := []string{
		"1", "1", "1", "1",
		"2", "2", "2", "2",
		"3", "3", "3", "3",
	}
	flc := []float64{
		2.0, 2.2, 2.4, 2.6,
		3.0, 3.2, 3.4, 3.6,
		4.0, 4.2, 4.4, 4.6,
	}
	death := []string{
		"alive", "dead", "alive", "alive",
		"dead", "alive", "dead", "alive",
		"dead", "dead", "dead", "alive",
	}
	sex := []string{
		"Female", "Male", "Female", "Male",
		"Female", "Male", "Female", "Male",
		"Female", "Male", "Female", "Male",
	}
	chapter := []string{
		"", "Circulatory", "", "",
		"Neoplasms", "", "Circulatory", "",
		"Circulatory", "Neoplasms", "Respiratory", "",
	}
	ratioRange := []string{
		"normal", "normal", "normal", "normal",
		"low", "low", "normal", "normal",
		"normal", "normal", "normal", "normal",
	}
	chapterLevels := append(append([]string(nil), transform.RetainedChapters...), transform.ChapterOther)

	creatVals := []float64{1.4, 0, 0.8, 1.0, 1.2, 0, 0.9, 1.1, 1.3, 1.0, 0, 1.2}
	creatMiss := []bool{false, true, false, false, false, true, false, false, false, false, true, false}
	creat, err := dataset.NewFloatColumnWithMissing(dataset.ColCreatinine, creatVals, creatMiss)
	if err != nil {
		t.Fatalf("creatinine: %v", err)
	}

	tbl, err := dataset.New(
		factor(t, transform.ColFLCGroup, grp, transform.FLCGroupLevels, false),
		dataset.NewFloatColumn(transform.ColFLC, flc),
		factor(t, dataset.ColDeath, death, transform.DeathLevels, false),
		factor(t, dataset.ColSex, sex, transform.SexLevels, false),
		factor(t, dataset.ColChapter, chapter, chapterLevels, true),
		factor(t, transform.ColFLCRatioRange, ratioRange, transform.RatioRangeLevels, false),
		creat,
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return tbl
}

func almost(t *testing.T, got, want, tol float64, what string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %g, want %g", what, got, want)
	}
}

func TestByFLCGroup(t *testing.T) {
	tbl := analysisTable(t)
	groups, err := ByFLCGroup(tbl)
	if err != nil {
		t.Fatalf("ByFLCGroup: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3 (empty levels omitted)", len(groups))
	}

	total := 0
	for i, g := range groups {
		total += g.Count
		if g.Group != transform.FLCGroupLevels[i] {
			t.Fatalf("group %d = %q, out of level order", i, g.Group)
		}
		if g.DeathRate < 0 || g.DeathRate > 1 {
			t.Fatalf("group %s death rate %g outside [0,1]", g.Group, g.DeathRate)
		}
	}
	if total != tbl.NumRows() {
		t.Fatalf("group counts sum to %d, want %d", total, tbl.NumRows())
	}

	almost(t, groups[0].FLCMean, 2.3, 1e-12, "group 1 mean")
	almost(t, groups[1].FLCMean, 3.3, 1e-12, "group 2 mean")
	almost(t, groups[2].FLCMean, 4.3, 1e-12, "group 3 mean")
	almost(t, groups[0].FLCMin, 2.0, 0, "group 1 min")
	almost(t, groups[2].FLCMax, 4.6, 0, "group 3 max")
	almost(t, groups[0].DeathRate, 0.25, 1e-12, "group 1 death rate")
	almost(t, groups[1].DeathRate, 0.50, 1e-12, "group 2 death rate")
	almost(t, groups[2].DeathRate, 0.75, 1e-12, "group 3 death rate")
}

func TestByFLCGroupDeterministic(t *testing.T) {
	tbl := analysisTable(t)
	a, err := ByFLCGroup(tbl)
	if err != nil {
		t.Fatalf("ByFLCGroup: %v", err)
	}
	b, err := ByFLCGroup(tbl)
	if err != nil {
		t.Fatalf("ByFLCGroup: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("group %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDeathRateBySex(t *testing.T) {
	rates, err := DeathRateBy(analysisTable(t), dataset.ColSex)
	if err != nil {
		t.Fatalf("DeathRateBy: %v", err)
	}
	if len(rates) != 2 || rates[0].Level != "Female" || rates[1].Level != "Male" {
		t.Fatalf("rates = %+v", rates)
	}
	almost(t, rates[0].Rate, 4.0/6, 1e-12, "female death rate")
	almost(t, rates[1].Rate, 2.0/6, 1e-12, "male death rate")
}

func TestDeathRateByExcludesMissing(t *testing.T) {
	rates, err := DeathRateBy(analysisTable(t), dataset.ColChapter)
	if err != nil {
		t.Fatalf("DeathRateBy: %v", err)
	}
	// Only dead subjects carry a chapter, so every occupied level has rate 1
	// and the counts cover only the six non-missing rows.
	total := 0
	for _, r := range rates {
		total += r.Count
		if r.Rate != 1 {
			t.Fatalf("chapter %s rate = %g, want 1", r.Level, r.Rate)
		}
	}
	if total != 6 {
		t.Fatalf("chapter counts sum to %d, want 6", total)
	}
	if len(rates) != 3 {
		t.Fatalf("got %d chapter levels, want 3 occupied ones", len(rates))
	}
}

func TestMeanBy(t *testing.T) {
	means, err := MeanBy(analysisTable(t), transform.ColFLCRatioRange, transform.ColFLC)
	if err != nil {
		t.Fatalf("MeanBy: %v", err)
	}
	if len(means) != 2 {
		t.Fatalf("got %d levels, want 2 (high is unoccupied)", len(means))
	}
	if means[0].Level != "low" || means[1].Level != "normal" {
		t.Fatalf("level order = %q, %q", means[0].Level, means[1].Level)
	}
	almost(t, means[0].Mean, 3.1, 1e-12, "low mean")
	almost(t, means[1].Mean, 3.34, 1e-12, "normal mean")
	if means[0].Count != 2 || means[1].Count != 10 {
		t.Fatalf("counts = %d/%d, want 2/10", means[0].Count, means[1].Count)
	}
}

func TestSummarize(t *testing.T) {
	tbl := analysisTable(t)
	creat, err := tbl.Float(dataset.ColCreatinine)
	if err != nil {
		t.Fatalf("creatinine: %v", err)
	}
	s := Summarize(creat)
	if s.Count != 9 || s.Missing != 3 {
		t.Fatalf("count/missing = %d/%d, want 9/3", s.Count, s.Missing)
	}
	almost(t, s.Min, 0.8, 0, "min")
	almost(t, s.Max, 1.4, 0, "max")
	almost(t, s.Mean, 1.1, 1e-12, "mean")
	almost(t, s.Std, 0.19365, 1e-4, "std")
}

func TestSummarizeAllMissing(t *testing.T) {
	col, err := dataset.NewFloatColumnWithMissing("x", []float64{0, 0}, []bool{true, true})
	if err != nil {
		t.Fatalf("column: %v", err)
	}
	s := Summarize(col)
	if s.Count != 0 || s.Missing != 2 || s.Mean != 0 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestCorrelation(t *testing.T) {
	x := dataset.NewFloatColumn("x", []float64{1, 2, 3, 4})
	y := dataset.NewFloatColumn("y", []float64{3, 5, 7, 9})
	tbl, err := dataset.New(x, y)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	r, err := Correlation(tbl, "x", "y")
	if err != nil {
		t.Fatalf("Correlation: %v", err)
	}
	almost(t, r, 1, 1e-12, "correlation of exact line")
}

func TestCorrelationPairwiseMissing(t *testing.T) {
	x := dataset.NewFloatColumn("x", []float64{1, 2, 3, 4})
	y, err := dataset.NewFloatColumnWithMissing("y", []float64{2, 4, 0, 8}, []bool{false, false, true, false})
	if err != nil {
		t.Fatalf("column: %v", err)
	}
	tbl, err := dataset.New(x, y)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	r, err := Correlation(tbl, "x", "y")
	if err != nil {
		t.Fatalf("Correlation: %v", err)
	}
	almost(t, r, 1, 1e-12, "correlation over present pairs")
}

func TestCorrelationDegenerate(t *testing.T) {
	x := dataset.NewFloatColumn("x", []float64{5, 5, 5})
	y := dataset.NewFloatColumn("y", []float64{1, 2, 3})
	tbl, err := dataset.New(x, y)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	r, err := Correlation(tbl, "x", "y")
	if err != nil {
		t.Fatalf("Correlation: %v", err)
	}
	if r != 0 {
		t.Fatalf("constant column correlation = %g, want 0", r)
	}
}
