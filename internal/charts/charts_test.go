package charts

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/MwillianM/FlchainExploration/internal/aggregate"
	"github.com/MwillianM/FlchainExploration/internal/dataset"
	"github.com/MwillianM/FlchainExploration/internal/regress"
	"github.com/MwillianM/FlchainExploration/internal/transform"
)

func chartTable(t *testing.T) *dataset.Table {
	t.Helper()
	n := 24
	age := make([]int, n)
	kappa := make([]float64, n)
	lambda := make([]float64, n)
	flc := make([]float64, n)
	grp := make([]string, n)
	rec := make([]string, n)
	death := make([]string, n)
	for i := 0; i < n; i++ {
		age[i] = 50 + i
		kappa[i] = 1.0 + 0.1*float64(i)
		lambda[i] = 0.8 + 0.05*float64(i)
		flc[i] = kappa[i] + lambda[i]
		grp[i] = transform.FLCGroupLevels[i%3]
		rec[i] = transform.RecruitLevels[i%3]
		if i%4 == 0 {
			death[i] = "dead"
		} else {
			death[i] = "alive"
		}
	}
	grpF, err := dataset.NewFactor(transform.ColFLCGroup, grp, transform.FLCGroupLevels, false)
	if err != nil {
		t.Fatalf("group factor: %v", err)
	}
	recF, err := dataset.NewFactor(transform.ColRecruits, rec, transform.RecruitLevels, false)
	if err != nil {
		t.Fatalf("recruits factor: %v", err)
	}
	deathF, err := dataset.NewFactor(dataset.ColDeath, death, transform.DeathLevels, false)
	if err != nil {
		t.Fatalf("death factor: %v", err)
	}
	tbl, err := dataset.New(
		dataset.NewIntColumn(dataset.ColAge, age),
		dataset.NewFloatColumn(dataset.ColKappa, kappa),
		dataset.NewFloatColumn(dataset.ColLambda, lambda),
		dataset.NewFloatColumn(transform.ColFLC, flc),
		grpF, recF, deathF,
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return tbl
}

func TestRenderAll(t *testing.T) {
	tbl := chartTable(t)
	groups, err := aggregate.ByFLCGroup(tbl)
	if err != nil {
		t.Fatalf("ByFLCGroup: %v", err)
	}
	m, err := regress.Fit(groups)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	dir := t.TempDir()
	paths, err := RenderAll(tbl, groups, m, DefaultOptions(dir))
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	want := []string{
		"age_histogram.png",
		"flc_histogram.png",
		"kappa_by_group_boxplot.png",
		"lambda_by_group_boxplot.png",
		"flc_vs_age_scatter.png",
		"flc_by_recruits_freqpoly.png",
		"death_rate_regression.png",
	}
	if len(paths) != len(want) {
		t.Fatalf("rendered %d charts, want %d", len(paths), len(want))
	}
	for i, name := range want {
		if filepath.Base(paths[i]) != name {
			t.Fatalf("chart %d = %s, want %s", i, filepath.Base(paths[i]), name)
		}
		info, err := os.Stat(paths[i])
		if err != nil {
			t.Fatalf("stat %s: %v", paths[i], err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", paths[i])
		}
	}
}

func TestHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	vals := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}
	if err := Histogram(vals, "values", "x", DefaultOptions(""), path); err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestRegressionPlotWithoutModel(t *testing.T) {
	groups := []aggregate.GroupAggregate{
		{Group: "1", FLCMean: 2.3, DeathRate: 0.25},
		{Group: "2", FLCMean: 3.3, DeathRate: 0.50},
	}
	path := filepath.Join(t.TempDir(), "reg.png")
	if err := RegressionPlot(groups, nil, DefaultOptions(""), path); err != nil {
		t.Fatalf("RegressionPlot: %v", err)
	}
}

func TestJitterScatterSeeded(t *testing.T) {
	tbl := chartTable(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	if err := JitterScatter(tbl, DefaultOptions(dir), rand.New(rand.NewSource(9)), a); err != nil {
		t.Fatalf("JitterScatter: %v", err)
	}
	if err := JitterScatter(tbl, DefaultOptions(dir), rand.New(rand.NewSource(9)), b); err != nil {
		t.Fatalf("JitterScatter: %v", err)
	}
	ab, err := os.ReadFile(a)
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	bb, err := os.ReadFile(b)
	if err != nil {
		t.Fatalf("read b: %v", err)
	}
	if string(ab) != string(bb) {
		t.Fatalf("same seed produced different scatter renders")
	}
}
